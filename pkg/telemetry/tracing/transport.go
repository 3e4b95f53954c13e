package tracing

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/nicolangr/activeagent/pkg/telemetry/logging"
)

// Transport wraps next so every request runs inside a client span and
// carries the trace context in its headers. A disabled Tracer returns next
// unchanged.
func (t *Tracer) Transport(next http.RoundTripper) http.RoundTripper {
	if t == nil || !t.enabled {
		return next
	}
	if next == nil {
		next = http.DefaultTransport
	}
	return &roundTripper{tracer: t, next: next}
}

type roundTripper struct {
	tracer *Tracer
	next   http.RoundTripper
}

func (rt *roundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	attrs := []attribute.KeyValue{
		attribute.String(AttrHTTPMethod, req.Method),
		attribute.String(AttrServerAddress, req.URL.Host),
		attribute.String(AttrURLPath, req.URL.Path),
	}
	if provider := logging.GetProvider(req.Context()); provider != "" {
		attrs = append(attrs, attribute.String(AttrProvider, provider))
	}
	if id := logging.GetRequestID(req.Context()); id != "" {
		attrs = append(attrs, attribute.String(AttrRequestID, id))
	}

	ctx, span := rt.tracer.Start(req.Context(), "HTTP "+req.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	// A RoundTripper must not modify the caller's request.
	req = req.Clone(ctx)
	rt.tracer.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := rt.next.RoundTrip(req)
	if err != nil {
		SetError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int(AttrHTTPStatusCode, resp.StatusCode))
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}
	return resp, nil
}
