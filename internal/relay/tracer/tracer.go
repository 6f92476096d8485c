// Package tracer abstracts span creation so the relay can be traced with
// OpenTelemetry in production and a no-op in tests.
package tracer

import "context"

// Attribute is a string key/value pair attached to spans and events.
type Attribute struct {
	Key   string
	Value string
}

// Attr builds an Attribute.
func Attr(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Tracer starts spans around relay phases.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is a unit of traced work.
type Span interface {
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}
