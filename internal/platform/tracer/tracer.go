// Package tracer is the tracing seam used by the agent service.
//
// Services depend on the small Tracer interface here rather than on OpenTelemetry
// directly. NoopTracer serves tests and the CLI; OTelTracer adapts the global
// OpenTelemetry provider for the server.
//
// Identity numbers never go into span attributes raw. Use privacy.HashIdentityNumber
// for AttrIdentityHash.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)
	SetAttributes(attrs ...Attribute)
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
//
//	ctx, span := t.Start(ctx, tracer.SpanAgentCreate,
//	    tracer.String(tracer.AttrIdentityType, "sa_id"),
//	)
//	defer func() { span.End(err) }()
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute is a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration records value in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanAgentCreate     = "agent.create"
	SpanAgentUpdate     = "agent.update"
	SpanAgentGet        = "agent.get"
	SpanAgentList       = "agent.list"
	SpanAgentDelete     = "agent.delete"
	SpanAgentTransition = "agent.transition"
	SpanIdentityCheck   = "identity.validate"
)

// Attribute keys.
const (
	AttrAgentID      = "agent.id"
	AttrIdentityType = "identity.type"
	AttrIdentityHash = "identity.hash"
	AttrValid        = "identity.valid"
	AttrCacheHit     = "cache.hit"
	AttrResultCount  = "result.count"
	AttrTransition   = "agent.transition"
)

// Event names.
const (
	EventCacheInvalidated = "cache.invalidated"
	EventPublished        = "event.published"
)
