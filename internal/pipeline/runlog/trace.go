package runlog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	TraceID string
	SpanID  string
}

// ExtractTraceInfo reads the active span from ctx. Both fields are empty
// when ctx carries no valid span, e.g. when tracing is disabled.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return TraceInfo{}
	}
	return TraceInfo{
		TraceID: sc.TraceID().String(),
		SpanID:  sc.SpanID().String(),
	}
}

// NewEntry builds an entry stamped with a fresh run id, the current time and
// the trace info found in ctx.
func NewEntry(ctx context.Context, pipeline string, outcome Outcome, step string, status int, message string) *Entry {
	ti := ExtractTraceInfo(ctx)
	return &Entry{
		RunID:      uuid.NewString(),
		Pipeline:   pipeline,
		Outcome:    outcome,
		Step:       step,
		HTTPStatus: status,
		Message:    message,
		TraceID:    ti.TraceID,
		SpanID:     ti.SpanID,
		RecordedAt: time.Now().UTC(),
	}
}
