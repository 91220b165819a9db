package stream

import (
	"context"
	"fmt"
)

// Methodical analyzes a problem by breaking it into ordered, verifiable steps.
type Methodical struct {
	*Base
}

// NewMethodical creates a methodical stream.
func NewMethodical(opts Options) *Methodical {
	m := &Methodical{}
	m.Base = NewBase(opts.ID, KindMethodical, opts.Delay, m.analyze)
	return m
}

func (m *Methodical) analyze(ctx context.Context, p Problem, b *Base) (Result, error) {
	var res Result

	if err := b.Step(ctx, 0.2); err != nil {
		return res, err
	}
	clauses := sentences(p.Description + ". " + p.Context)
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Decomposed the problem into %d statements", len(clauses)))

	if err := b.Step(ctx, 0.4); err != nil {
		return res, err
	}
	for _, c := range p.Constraints {
		res.Insights = append(res.Insights, Insight{
			Content:    "Constraint to satisfy: " + c,
			Source:     KindMethodical,
			Confidence: 0.85,
			Importance: 0.8,
		})
	}
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Catalogued %d constraints", len(p.Constraints)))

	if err := b.Step(ctx, 0.6); err != nil {
		return res, err
	}
	for _, g := range p.Goals {
		res.Insights = append(res.Insights, Insight{
			Content:    "Goal needs a measurable success criterion: " + g,
			Source:     KindMethodical,
			Confidence: 0.75,
			Importance: 0.6,
		})
	}
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Mapped %d goals to measurable outcomes", len(p.Goals)))

	if err := b.Step(ctx, 0.8); err != nil {
		return res, err
	}
	phases := min(5, max(2, len(clauses)+len(p.Goals)))
	subject := topic(p)
	phased := Insight{
		Content:    fmt.Sprintf("Sequence the work on %s into %d phases", subject, phases),
		Source:     KindMethodical,
		Confidence: 0.8,
		Importance: 0.7,
	}
	res.Insights = append(res.Insights, phased)
	b.Publish(phased)
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Ordered the work into %d phases with a checkpoint after each", phases))

	confidence := 0.8
	if len(p.Constraints) > 0 {
		confidence += 0.05
	}
	if len(p.Goals) > 0 {
		confidence += 0.05
	}
	res.Confidence = clamp01(min(confidence, 0.95))
	res.Conclusion = fmt.Sprintf("We should address %s in %d sequential phases, validating each constraint before moving on", subject, phases)
	return res, nil
}
