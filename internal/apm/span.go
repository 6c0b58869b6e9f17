package apm

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span is a thin wrapper over an OTEL span.
type Span interface {
	End()
	SetAttributes(attrs ...attribute.KeyValue)
	AddEvent(name string, attrs ...attribute.KeyValue)
	RecordError(err error)
	SetStatus(code codes.Code, description string)
}

type openSpan struct {
	span trace.Span
}

// NewSpan wraps an OTEL span.
func NewSpan(span trace.Span) Span {
	return &openSpan{span: span}
}

func (s *openSpan) End() {
	s.span.End()
}

func (s *openSpan) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

func (s *openSpan) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

func (s *openSpan) RecordError(err error) {
	s.span.RecordError(err)
}

func (s *openSpan) SetStatus(code codes.Code, description string) {
	s.span.SetStatus(code, description)
}
