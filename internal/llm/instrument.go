package llm

import (
	"context"
	"time"

	"github.com/pavelanni/quizgen/internal/metrics"
)

type instrumented struct {
	next     TextGenerator
	provider string
}

// Instrument records call latency and outcome for every Generate call.
func Instrument(next TextGenerator, provider string) TextGenerator {
	return &instrumented{next: next, provider: provider}
}

func (i *instrumented) Generate(ctx context.Context, p Prompt) (string, error) {
	start := time.Now()
	out, err := i.next.Generate(ctx, p)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.LLMDuration().WithLabelValues(i.provider, outcome).Observe(time.Since(start).Seconds())
	return out, err
}
