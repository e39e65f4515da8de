// Package pipeline runs an ordered list of validation steps in front of a
// terminal handler. The first step that fails short-circuits the run; the
// handler only executes once every step has passed.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/grubdash/internal/pipeline/runlog"
)

const tracerName = "github.com/jcmexdev/grubdash/internal/pipeline"

// handlerStep is the step name recorded when the terminal handler fails.
const handlerStep = "handler"

// Step represents a single check in a pipeline.
// Steps must not keep per-request state: one pipeline serves every request
// for its endpoint, so anything derived from the request goes into
// Request.Locals.
type Step interface {
	Name() string
	Execute(ctx context.Context, req *Request) error
}

// StepFunc adapts a plain function into a named Step.
type StepFunc struct {
	name string
	fn   func(ctx context.Context, req *Request) error
}

// NewStep is the constructor for StepFunc.
func NewStep(name string, fn func(ctx context.Context, req *Request) error) *StepFunc {
	return &StepFunc{name: name, fn: fn}
}

func (s *StepFunc) Name() string { return s.name }

func (s *StepFunc) Execute(ctx context.Context, req *Request) error { return s.fn(ctx, req) }

// Result is the successful outcome of a pipeline. A nil Data means the
// response carries no body.
type Result struct {
	Status int
	Data   any
}

// OK wraps data in a 200 result.
func OK(data any) Result { return Result{Status: http.StatusOK, Data: data} }

// Created wraps data in a 201 result.
func Created(data any) Result { return Result{Status: http.StatusCreated, Data: data} }

// NoContent is the empty 204 result.
func NoContent() Result { return Result{Status: http.StatusNoContent} }

// Handler is the terminal business-logic function of a pipeline.
type Handler func(ctx context.Context, req *Request) (Result, error)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithRunLog records every run in repo. A nil repo disables recording.
func WithRunLog(repo runlog.Repository) Option {
	return func(p *Pipeline) { p.runLog = repo }
}

// Pipeline manages the execution of a collection of Steps followed by a Handler.
type Pipeline struct {
	name    string
	steps   []Step
	handler Handler
	runLog  runlog.Repository // nil-safe: recording skipped if nil
}

// New builds a pipeline. Steps run in the given order.
func New(name string, steps []Step, handler Handler, opts ...Option) *Pipeline {
	p := &Pipeline{name: name, steps: steps, handler: handler}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the pipeline name, e.g. "dishes.create".
func (p *Pipeline) Name() string { return p.name }

// StepNames lists the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, s := range p.steps {
		names[i] = s.Name()
	}
	return names
}

// Run executes the steps sequentially and then the handler.
// If a step fails the remaining steps and the handler are skipped and the
// failure is returned as an *Error.
func (p *Pipeline) Run(ctx context.Context, req *Request) (Result, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "pipeline "+p.name)
	defer span.End()

	if req.Locals == nil {
		req.Locals = make(map[string]any)
	}

	for _, step := range p.steps {
		slog.DebugContext(ctx, "executing step", "pipeline", p.name, "step", step.Name())
		if err := step.Execute(ctx, req); err != nil {
			perr := AsError(err)
			slog.InfoContext(ctx, "request rejected",
				"pipeline", p.name,
				"step", step.Name(),
				"kind", perr.Kind.String(),
				"status", perr.Status,
				"message", perr.Message,
			)
			p.fail(ctx, span, step.Name(), perr)
			return Result{}, perr
		}
	}

	res, err := p.handler(ctx, req)
	if err != nil {
		perr := AsError(err)
		if perr.Status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "handler failed", "pipeline", p.name, "error", err)
		}
		p.fail(ctx, span, handlerStep, perr)
		return Result{}, perr
	}

	span.SetAttributes(attribute.Int("http.response.status_code", res.Status))
	p.record(ctx, runlog.OutcomeAccepted, "", res.Status, "")
	return res, nil
}

func (p *Pipeline) fail(ctx context.Context, span trace.Span, step string, perr *Error) {
	span.SetAttributes(
		attribute.String("pipeline.failed_step", step),
		attribute.Int("http.response.status_code", perr.Status),
	)
	span.SetStatus(otelcodes.Error, perr.Message)

	outcome := runlog.OutcomeRejected
	if perr.Status >= http.StatusInternalServerError {
		outcome = runlog.OutcomeErrored
	}
	p.record(ctx, outcome, step, perr.Status, perr.Message)
}

func (p *Pipeline) record(ctx context.Context, outcome runlog.Outcome, step string, status int, message string) {
	if p.runLog == nil {
		return
	}
	entry := runlog.NewEntry(ctx, p.name, outcome, step, status, message)
	if err := p.runLog.Save(ctx, entry); err != nil {
		slog.WarnContext(ctx, "failed to record pipeline run", "pipeline", p.name, "error", err)
	}
}
