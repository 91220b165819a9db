package stream

import (
	"context"
	"fmt"
)

// Divergent looks for alternative framings instead of a single answer.
type Divergent struct {
	*Base
}

// NewDivergent creates a divergent stream.
func NewDivergent(opts Options) *Divergent {
	d := &Divergent{}
	d.Base = NewBase(opts.ID, KindDivergent, opts.Delay, d.analyze)
	return d
}

func (d *Divergent) analyze(ctx context.Context, p Problem, b *Base) (Result, error) {
	var res Result

	if err := b.Step(ctx, 0.25); err != nil {
		return res, err
	}
	kw := keywords(p.Description + " " + p.Context)
	if len(kw) > 3 {
		kw = kw[:3]
	}
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Extracted %d pivot terms from the problem", len(kw)))

	if err := b.Step(ctx, 0.5); err != nil {
		return res, err
	}
	for _, w := range kw {
		res.Insights = append(res.Insights, Insight{
			Content:    "Reframe the problem around " + w,
			Source:     KindDivergent,
			Confidence: 0.6,
			Importance: 0.5,
		})
	}
	res.Reasoning = append(res.Reasoning, "Generated one reframing per pivot term")

	if err := b.Step(ctx, 0.75); err != nil {
		return res, err
	}
	subject := topic(p)
	res.Insights = append(res.Insights, Insight{
		Content:    "Consider the opposite of the obvious approach to " + subject,
		Source:     KindDivergent,
		Confidence: 0.55,
		Importance: 0.45,
	})
	res.Reasoning = append(res.Reasoning, "Inverted the default approach to test its necessity")

	options := max(2, len(kw)+1)
	res.Confidence = 0.65
	res.Conclusion = fmt.Sprintf("We suggest exploring %d alternative framings of %s before committing to a single solution", options, subject)
	return res, nil
}
