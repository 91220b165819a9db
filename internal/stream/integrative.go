package stream

import (
	"context"
	"fmt"
)

// Integrative combines perspectives, including insights shared by other
// streams while it runs.
type Integrative struct {
	*Base
}

// NewIntegrative creates an integrative stream.
func NewIntegrative(opts Options) *Integrative {
	i := &Integrative{}
	i.Base = NewBase(opts.ID, KindIntegrative, opts.Delay, i.analyze)
	return i
}

func (i *Integrative) analyze(ctx context.Context, p Problem, b *Base) (Result, error) {
	var res Result
	subject := topic(p)

	if err := b.Step(ctx, 0.3); err != nil {
		return res, err
	}
	res.Insights = append(res.Insights, Insight{
		Content:    "Balance structured execution with exploration for " + subject,
		Source:     KindIntegrative,
		Confidence: 0.75,
		Importance: 0.65,
	})
	res.Reasoning = append(res.Reasoning, "Weighed structure against exploration")

	// Give other streams a chance to share before folding their insights in.
	if err := b.Step(ctx, 0.7); err != nil {
		return res, err
	}
	shared := b.Received()
	borrowed := 0
	for _, in := range shared {
		if borrowed == 2 || in.Importance < 0.7 {
			continue
		}
		res.Insights = append(res.Insights, Insight{
			Content:    "Cross-perspective: " + in.Content,
			Source:     KindIntegrative,
			Confidence: clamp01(in.Confidence * 0.9),
			Importance: clamp01(in.Importance * 0.9),
		})
		borrowed++
	}
	res.Reasoning = append(res.Reasoning, fmt.Sprintf("Integrated %d of %d insights shared by other streams", borrowed, len(shared)))

	res.Confidence = 0.75
	res.Conclusion = fmt.Sprintf("We recommend a balanced plan for %s that combines phased delivery, room for alternatives, and explicit risk checks", subject)
	return res, nil
}
