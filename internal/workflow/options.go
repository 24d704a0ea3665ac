package workflow

import (
	"time"

	"github.com/maxkimambo/subflow/internal/events"
	"github.com/maxkimambo/subflow/internal/executor"
	"github.com/maxkimambo/subflow/internal/retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/maxkimambo/subflow/internal/workflow"

type options struct {
	generator executor.Generator
	policy    *retry.Policy
	bus       *events.Bus
	ids       IDGenerator
	tracer    trace.Tracer
	dlq       *retry.DeadLetterQueue
	now       func() time.Time
}

// Option configures a Run.
type Option func(*options)

// WithGenerator sets the text-generation capability tasks execute against.
func WithGenerator(g executor.Generator) Option {
	return func(o *options) { o.generator = g }
}

// WithPolicy replaces the default retry policy.
func WithPolicy(p *retry.Policy) Option {
	return func(o *options) { o.policy = p }
}

// WithRetryLimit is shorthand for WithPolicy(retry.NewPolicy(limit)).
func WithRetryLimit(limit int) Option {
	return func(o *options) { o.policy = retry.NewPolicy(limit) }
}

// WithBus sets the bus events are emitted on.
func WithBus(b *events.Bus) Option {
	return func(o *options) { o.bus = b }
}

func WithIDGenerator(g IDGenerator) Option {
	return func(o *options) { o.ids = g }
}

func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithDeadLetterQueue collects tasks that exhaust their attempts.
func WithDeadLetterQueue(q *retry.DeadLetterQueue) Option {
	return func(o *options) { o.dlq = q }
}

func withClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// fillDefaults replaces options that were set to nil.
func (o *options) fillDefaults() {
	d := defaultOptions()
	if o.generator == nil {
		o.generator = d.generator
	}
	if o.policy == nil {
		o.policy = d.policy
	}
	if o.bus == nil {
		o.bus = events.NewBus(nil)
	}
	if o.ids == nil {
		o.ids = d.ids
	}
	if o.tracer == nil {
		o.tracer = d.tracer
	}
	if o.dlq == nil {
		o.dlq = d.dlq
	}
	if o.now == nil {
		o.now = d.now
	}
}

func defaultOptions() *options {
	return &options{
		generator: executor.EchoGenerator{},
		policy:    retry.NewDefaultPolicy(),
		ids:       UUIDGenerator{},
		tracer:    otel.Tracer(tracerName),
		dlq:       retry.NewDeadLetterQueue(),
		now:       time.Now,
	}
}
