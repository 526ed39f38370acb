package generation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/socialchef/thermochef/internal/metrics"
	"github.com/socialchef/thermochef/internal/telemetry"
)

type instrumented struct {
	next     Generator
	provider string
	tracer   trace.Tracer
}

// Instrumented wraps g with a tracing span and the external API metrics.
func Instrumented(g Generator, provider string) Generator {
	if g == nil {
		return nil
	}
	return &instrumented{
		next:     g,
		provider: provider,
		tracer:   telemetry.Tracer("thermochef/generation"),
	}
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := i.tracer.Start(ctx, "generation.Generate",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("provider", i.provider),
			attribute.Int("prompt.length", len(prompt)),
		),
	)
	defer span.End()

	startTime := time.Now()
	out, err := i.next.Generate(ctx, prompt)
	duration := time.Since(startTime).Seconds()

	status := "success"
	if err != nil {
		status = ClassifyError(err, i.provider).Type
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetAttributes(attribute.Int("output.length", len(out)))
	}

	attrs := metric.WithAttributes(attribute.String("provider", i.provider))
	metrics.AIGenerationDuration.Record(ctx, duration, attrs)
	metrics.ExternalAPIDuration.Record(ctx, duration, attrs)
	metrics.ExternalAPICallsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", i.provider),
		attribute.String("status", status),
	))

	return out, err
}
