package stream

import (
	"context"
	"fmt"
	"strings"
)

// Skeptical challenges assumptions and looks for failure modes.
type Skeptical struct {
	*Base
}

// NewSkeptical creates a skeptical stream.
func NewSkeptical(opts Options) *Skeptical {
	s := &Skeptical{}
	s.Base = NewBase(opts.ID, KindSkeptical, opts.Delay, s.analyze)
	return s
}

func (s *Skeptical) analyze(ctx context.Context, p Problem, b *Base) (Result, error) {
	var res Result

	if err := b.Step(ctx, 0.3); err != nil {
		return res, err
	}
	text := strings.Join(append([]string{p.Description, p.Context}, p.Constraints...), " ")
	found := risks(text)
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Scanned the statement for %d risk markers", len(riskWords)))

	if err := b.Step(ctx, 0.6); err != nil {
		return res, err
	}
	for _, r := range found {
		in := Insight{
			Content:    fmt.Sprintf("Unverified assumption around %q could invalidate the plan", r),
			Source:     KindSkeptical,
			Confidence: 0.7,
			Importance: 0.75,
		}
		res.Insights = append(res.Insights, in)
		b.Publish(in)
	}
	if len(found) == 0 {
		res.Insights = append(res.Insights, Insight{
			Content:    "No risks are stated, which is itself a gap in the analysis",
			Source:     KindSkeptical,
			Confidence: 0.55,
			Importance: 0.5,
		})
	}
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Flagged %d assumptions for verification", len(found)))

	if err := b.Step(ctx, 0.85); err != nil {
		return res, err
	}
	if len(p.Goals) == 0 {
		res.Insights = append(res.Insights, Insight{
			Content:    "Goals lack explicit success metrics",
			Source:     KindSkeptical,
			Confidence: 0.65,
			Importance: 0.6,
		})
		res.Reasoning = append(res.Reasoning, "No goals were given, so success cannot be measured")
	}

	subject := topic(p)
	res.Confidence = 0.7
	if len(found) > 0 {
		res.Conclusion = fmt.Sprintf("The proposed direction for %s is risky until %d key assumptions are tested", subject, len(found))
	} else {
		res.Conclusion = fmt.Sprintf("The approach to %s appears sound but remains unvalidated", subject)
	}
	return res, nil
}
