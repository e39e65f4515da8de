// Package runlog defines the audit trail of pipeline runs.
//
// Every request that goes through a pipeline leaves one entry: which
// pipeline ran, whether it was accepted, and if not which step rejected it
// and why. Entries carry the OpenTelemetry trace and span ids active at the
// time, so a rejected request can be joined with its trace.
package runlog

import (
	"errors"
	"time"
)

// Outcome is how a pipeline run ended.
type Outcome string

const (
	OutcomeAccepted Outcome = "ACCEPTED"
	OutcomeRejected Outcome = "REJECTED"
	OutcomeErrored  Outcome = "ERRORED"
)

// ErrNoEntries is returned when a pipeline has no recorded runs.
var ErrNoEntries = errors.New("runlog: no entries")

// Entry is a single row in the pipeline_runs table.
type Entry struct {
	// RunID uniquely identifies this run.
	RunID string

	// Pipeline is the pipeline name, e.g. "orders.update".
	Pipeline string

	Outcome Outcome

	// Step is the name of the step that rejected the request; empty when
	// the run was accepted.
	Step string

	// HTTPStatus is the status code sent back to the client.
	HTTPStatus int

	// Message is the rejection message; empty when accepted.
	Message string

	TraceID string
	SpanID  string

	RecordedAt time.Time
}
