package conflict

import "slices"

type frameworkTemplate struct {
	approach       string
	steps          []string
	considerations []string
	action         string
}

var frameworks = map[Type]frameworkTemplate{
	TypeFactual: {
		approach: "Verify the disputed facts against authoritative sources",
		steps: []string{
			"Identify the specific factual claims in dispute",
			"Locate primary sources or measurements for each claim",
			"Check how recent and how reliable each source is",
			"Correct or retract the claim the evidence does not support",
		},
		considerations: []string{
			"Both streams may rely on incomplete data",
			"Definitions may differ between the two claims",
		},
		action: "Verify the contested facts before acting on either conclusion",
	},
	TypeLogical: {
		approach: "Analyze the logical structure of both arguments",
		steps: []string{
			"Lay out the premises behind each conclusion",
			"Check whether each conclusion follows from its premises",
			"Identify hidden assumptions or skipped steps",
			"Keep the argument whose reasoning holds up",
		},
		considerations: []string{
			"A valid argument can still rest on a false premise",
			"Both arguments may be partially correct under different conditions",
		},
		action: "Trace each argument from premises to conclusion and resolve the broken link",
	},
	TypeMethodological: {
		approach: "Evaluate which method fits the problem's constraints",
		steps: []string{
			"List the constraints and goals each method addresses",
			"Compare the cost, risk and time of each method",
			"Consider combining the methods or running them in sequence",
			"Select the method with the best fit and record why",
		},
		considerations: []string{
			"Different methods can be valid for different phases",
			"Team familiarity affects how well a method performs",
		},
		action: "Compare the competing approaches against the stated constraints and pick one explicitly",
	},
	TypeEvaluative: {
		approach: "Clarify the values and priorities behind each position",
		steps: []string{
			"Name the value each stream is optimizing for",
			"Ask stakeholders to rank the competing priorities",
			"Look for an option that satisfies the top-ranked values",
			"Document the trade-off that was accepted",
		},
		considerations: []string{
			"Priorities may legitimately differ between stakeholders",
			"Short-term and long-term value can pull in opposite directions",
		},
		action: "Agree on priorities with stakeholders before choosing between the positions",
	},
	TypePredictive: {
		approach: "Evaluate the models and assumptions behind each forecast",
		steps: []string{
			"Make the assumptions behind each prediction explicit",
			"Check each model against historical outcomes",
			"Build scenarios that cover both predictions",
			"Define early indicators that show which forecast is playing out",
		},
		considerations: []string{
			"Forecasts carry uncertainty that single numbers hide",
			"Plans should stay robust across the plausible scenarios",
		},
		action: "Plan for both forecasts and monitor leading indicators to see which one holds",
	},
}

var urgency = map[Severity]string{
	SeverityCritical: "IMMEDIATE ACTION REQUIRED: ",
	SeverityHigh:     "HIGH PRIORITY: ",
}

// GenerateResolutionFramework returns the resolution plan for c's type, with
// the recommended action prefixed by an urgency marker for high and critical
// conflicts.
func (e *Engine) GenerateResolutionFramework(c Conflict) ResolutionFramework {
	tpl, ok := frameworks[c.Type]
	if !ok {
		tpl = frameworks[TypeMethodological]
	}
	return ResolutionFramework{
		Approach:          tpl.approach,
		Steps:             slices.Clone(tpl.steps),
		Considerations:    slices.Clone(tpl.considerations),
		RecommendedAction: urgency[c.Severity] + tpl.action,
	}
}
