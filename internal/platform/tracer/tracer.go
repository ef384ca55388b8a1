// Package tracer defines a narrow tracing interface so callers can record
// spans around identity-provider network calls without depending on
// OpenTelemetry APIs throughout the codebase.
package tracer

import "context"

// Span represents a single traced operation.
type Span interface {
	// End completes the span, recording any error.
	End(err error)
	// SetAttributes adds attributes to the span.
	SetAttributes(attrs ...Attribute)
	// AddEvent records an event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer starts spans.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans and events.
type Attribute struct {
	Key   string
	Value any
}

// String constructs a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool constructs a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}
