package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/baggage"
	"go.opentelemetry.io/otel/trace"
)

func Tracer() trace.Tracer {
	return otel.Tracer("sms-relay")
}

func Attr(key, val string) attribute.KeyValue {
	return attribute.String(key, val)
}

func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// WithBroadcast tags the context with a broadcast correlation id so spans from
// the fan-out can be grouped.
func WithBroadcast(ctx context.Context, broadcastID string) context.Context {
	if broadcastID == "" {
		return ctx
	}
	member, err := baggage.NewMember("broadcast.id", broadcastID)
	if err != nil {
		return ctx
	}
	bag, err := baggage.New(member)
	if err != nil {
		return ctx
	}
	return baggage.ContextWithBaggage(ctx, bag)
}

func BroadcastIDFromContext(ctx context.Context) string {
	bag := baggage.FromContext(ctx)
	return bag.Member("broadcast.id").Value()
}
