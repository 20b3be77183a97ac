package tracing

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/taskpoolio/taskpool/pkg/pool"
)

const tracerName = "github.com/taskpoolio/taskpool"

// Init installs a global tracer provider that exports spans to w
// (stderr/stdout in practice). It returns a shutdown function that
// flushes pending spans.
func Init(w io.Writer) (func(context.Context) error, error) {
	opts := []stdouttrace.Option{stdouttrace.WithPrettyPrint()}
	if w != nil {
		opts = append(opts, stdouttrace.WithWriter(w))
	}
	exporter, err := stdouttrace.New(opts...)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}

// tracedTask records a span around the wrapped task's execution.
type tracedTask struct {
	inner  pool.Task
	tracer trace.Tracer
	name   string
}

// WrapTask wraps a task so each execution is recorded as a span named
// name under the globally installed tracer provider.
func WrapTask(t pool.Task, name string) pool.Task {
	return &tracedTask{
		inner:  t,
		tracer: otel.Tracer(tracerName),
		name:   name,
	}
}

// Execute implements pool.Task
func (t *tracedTask) Execute(ctx context.Context) error {
	ctx, span := t.tracer.Start(ctx, t.name)
	defer span.End()

	err := t.inner.Execute(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// Group implements pool.Task
func (t *tracedTask) Group() *pool.TaskGroup {
	return t.inner.Group()
}

// Name implements pool.Named
func (t *tracedTask) Name() string {
	return t.name
}
