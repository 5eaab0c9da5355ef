package services

import "context"

type contextKey string

const (
	buildIDKey   contextKey = "build_id"
	speakerKey   contextKey = "speaker"
	requestIDKey contextKey = "request_id"
)

// WithBuildID annotates context with the index build identifier.
func WithBuildID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, buildIDKey, id)
}

// BuildIDFromContext returns the index build identifier if present.
func BuildIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(buildIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSpeaker annotates context with the speaker index being queried.
func WithSpeaker(ctx context.Context, speaker int) context.Context {
	return context.WithValue(ctx, speakerKey, speaker)
}

// SpeakerFromContext extracts the speaker index if present.
func SpeakerFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(speakerKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
