// Package tracing installs an OpenTelemetry tracer provider that writes spans
// with the stdout exporter. Without Init the global provider stays a no-op.
package tracing

import (
	"context"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Shutdown flushes and stops the installed provider.
type Shutdown func(ctx context.Context) error

// Init installs a provider exporting to output. An empty output writes to
// stderr so spans do not interleave with task output.
func Init(serviceName, serviceVersion, output string) (Shutdown, error) {
	var w io.Writer = os.Stderr
	var closer io.Closer
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}
	shutdown, err := InitWithWriter(serviceName, serviceVersion, w)
	if err != nil {
		if closer != nil {
			_ = closer.Close()
		}
		return nil, err
	}
	return func(ctx context.Context) error {
		err := shutdown(ctx)
		if closer != nil {
			if cerr := closer.Close(); err == nil {
				err = cerr
			}
		}
		return err
	}, nil
}

// InitWithWriter installs a provider exporting pretty-printed spans to w.
func InitWithWriter(serviceName, serviceVersion string, w io.Writer) (Shutdown, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	res, err := resource.New(context.Background(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
