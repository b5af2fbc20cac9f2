// Copyright © 2024 The cstlint authors

// Package profile records where a lint run spends its time.
//
// A Session hands out an OpenTelemetry tracer. The lint runner opens a span
// for the run, each file and each rule; when profiling is enabled the spans
// are written out as JSON when the session stops.
package profile

import (
	"context"
	"io"

	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// TracerName is the instrumentation name of the tracer handed out by a
// Session.
const TracerName = "github.com/luthersystems/cstlint"

// Session is a profiling session.
type Session struct {
	tp     *sdktrace.TracerProvider
	tracer trace.Tracer
}

// Disabled returns a session whose tracer records nothing.
func Disabled() *Session {
	return &Session{tracer: noop.NewTracerProvider().Tracer(TracerName)}
}

// Start begins a session that writes every finished span to w as indented
// JSON.
func Start(w io.Writer, version string) (*Session, error) {
	exp, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithPrettyPrint(),
	)
	if err != nil {
		return nil, err
	}
	return newSession(sdktrace.WithBatcher(exp), version), nil
}

func newSession(processor sdktrace.TracerProviderOption, version string) *Session {
	res := resource.NewWithAttributes(semconv.SchemaURL,
		semconv.ServiceName("cstlint"),
		semconv.ServiceVersion(version),
	)
	tp := sdktrace.NewTracerProvider(
		processor,
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	return &Session{tp: tp, tracer: tp.Tracer(TracerName)}
}

// Enabled reports whether spans are being recorded.
func (s *Session) Enabled() bool {
	return s.tp != nil
}

// Tracer returns the session's tracer.
func (s *Session) Tracer() trace.Tracer {
	return s.tracer
}

// Stop flushes outstanding spans and ends the session. It is safe to call
// on a disabled session.
func (s *Session) Stop(ctx context.Context) error {
	if s.tp == nil {
		return nil
	}
	return s.tp.Shutdown(ctx)
}
