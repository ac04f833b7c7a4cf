package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name for application spans
const TracerName = "wayfarer-backend"

// Span attribute keys used by application services
const (
	SpanAttrUserID      = "user.id"
	SpanAttrViewerID    = "viewer.id"
	SpanAttrPlaceID     = "place.id"
	SpanAttrReviewID    = "review.id"
	SpanAttrFollowing   = "feed.following_count"
	SpanAttrReviews     = "feed.review_count"
	SpanAttrPlaces      = "feed.distinct_places"
	SpanAttrLookupFails = "feed.place_lookup_failures"
)

// StartServiceSpan starts an internal span named "{service}.{method}".
// The caller must End the returned span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "feed", "following")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records err on span and marks the span failed.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// GetTraceID returns the trace id of the span in ctx, or "".
func GetTraceID(ctx context.Context) string {
	traceID := trace.SpanFromContext(ctx).SpanContext().TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
