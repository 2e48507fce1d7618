package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Eclipse-Softworks/Luna-SDK-sub001/internal/constants"
	"github.com/Eclipse-Softworks/Luna-SDK-sub001/pkg/luna"
)

// Span attribute keys.
const (
	AttrRequestID  = attribute.Key("luna.request_id")
	AttrAttempts   = attribute.Key("luna.attempts")
	AttrErrorCode  = attribute.Key("luna.error.code")
	AttrErrorKind  = attribute.Key("luna.error.kind")
	AttrRetryWait  = attribute.Key("luna.retry.wait_ms")
	AttrHTTPMethod = attribute.Key("http.request.method")
	AttrHTTPPath   = attribute.Key("url.path")
	AttrHTTPStatus = attribute.Key("http.response.status_code")
)

// Tracer starts one span per logical call.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from provider, or from the global provider when nil.
func NewTracer(provider trace.TracerProvider) *Tracer {
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	return &Tracer{
		tracer: provider.Tracer(constants.SDKName, trace.WithInstrumentationVersion(constants.SDKVersion)),
	}
}

// StartRequest starts the span of a call.
func (t *Tracer) StartRequest(ctx context.Context, method, path, requestID string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, "luna "+method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			AttrHTTPMethod.String(method),
			AttrHTTPPath.String(path),
			AttrRequestID.String(requestID),
		),
	)
}

// RecordRetry adds a retry event to span.
func RecordRetry(span trace.Span, attempt int, waitMillis int64, err *luna.Error) {
	attrs := []attribute.KeyValue{
		attribute.Int("attempt", attempt),
		AttrRetryWait.Int64(waitMillis),
	}
	if err != nil {
		attrs = append(attrs, AttrErrorCode.String(err.Code), AttrErrorKind.String(err.Kind.String()))
	}

	span.AddEvent("retry", trace.WithAttributes(attrs...))
}

// EndRequest records the outcome of a call and ends span.
func EndRequest(span trace.Span, requestID string, status, attempts int, err error) {
	span.SetAttributes(AttrRequestID.String(requestID), AttrAttempts.Int(attempts))

	if status > 0 {
		span.SetAttributes(AttrHTTPStatus.Int(status))
	}

	if err != nil {
		if lunaErr, ok := luna.AsError(err); ok {
			span.SetAttributes(AttrErrorCode.String(lunaErr.Code), AttrErrorKind.String(lunaErr.Kind.String()))
		}

		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}

	span.End()
}
