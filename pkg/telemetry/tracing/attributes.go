package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. HTTP keys follow the OpenTelemetry semantic conventions;
// the rest live under the "activeagent." namespace.
const (
	AttrProvider  = "activeagent.provider"
	AttrModel     = "activeagent.model"
	AttrRequestID = "activeagent.request_id"
	AttrInputs    = "activeagent.inputs"

	AttrEmbeddingDimensions = "activeagent.embedding.dimensions"

	AttrHTTPMethod     = "http.request.method"
	AttrHTTPStatusCode = "http.response.status_code"
	AttrServerAddress  = "server.address"
	AttrURLPath        = "url.path"
)

// SetProviderAttributes sets the provider and model on span. An empty model
// is left out.
func SetProviderAttributes(span trace.Span, provider, model string) {
	attrs := []attribute.KeyValue{attribute.String(AttrProvider, provider)}
	if model != "" {
		attrs = append(attrs, attribute.String(AttrModel, model))
	}
	span.SetAttributes(attrs...)
}

// SetError records err on span and marks it failed. A nil err is ignored.
func SetError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// TraceID returns the hex trace ID of the span in ctx, or "" when there is
// no valid span.
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}
