package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultTransport is the base transport used by the instrumented clients.
var DefaultTransport = http.DefaultTransport

// Span attributes set on outbound calls to a generation provider.
const (
	AttrProvider       = "generation.provider"
	AttrUpstreamStatus = "generation.upstream.status_code"
)

type contextKey string

const providerKey contextKey = "generation.provider"

// WithProvider tags outbound requests made with ctx as calls to the named generation provider.
func WithProvider(ctx context.Context, provider string) context.Context {
	return context.WithValue(ctx, providerKey, provider)
}

// ProviderFromContext returns the provider name set by WithProvider.
func ProviderFromContext(ctx context.Context) string {
	provider, _ := ctx.Value(providerKey).(string)
	return provider
}

// SpanName names the client span. Provider calls read "generate Gemini: POST /models/x:generateContent",
// anything else "POST /convert".
func SpanName(_ string, r *http.Request) string {
	if provider := ProviderFromContext(r.Context()); provider != "" {
		return fmt.Sprintf("generate %s: %s %s", provider, r.Method, r.URL.Path)
	}
	return fmt.Sprintf("%s %s", r.Method, r.URL.Path)
}

// providerTransport marks the span failed on transport errors and on upstream 4xx/5xx,
// which otelhttp leaves unset for client spans below 500.
type providerTransport struct {
	base http.RoundTripper
}

func (t *providerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	span := trace.SpanFromContext(req.Context())
	if provider := ProviderFromContext(req.Context()); provider != "" {
		span.SetAttributes(attribute.String(AttrProvider, provider))
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int(AttrUpstreamStatus, resp.StatusCode))
	if resp.StatusCode >= 400 {
		span.SetStatus(codes.Error, fmt.Sprintf("upstream status %d", resp.StatusCode))
	}
	return resp, nil
}

func newOtelTransport(base http.RoundTripper) http.RoundTripper {
	return otelhttp.NewTransport(&providerTransport{base: base}, otelhttp.WithSpanNameFormatter(SpanName))
}

// InstrumentedClient is shared by providers built without an explicit timeout.
var InstrumentedClient = &http.Client{
	Transport: newOtelTransport(DefaultTransport),
	Timeout:   120 * time.Second,
}

// NewInstrumentedClient returns a traced client that gives up after timeout.
func NewInstrumentedClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: newOtelTransport(DefaultTransport),
		Timeout:   timeout,
	}
}
