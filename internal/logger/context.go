package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are added to every record logged with a context carrying them.
type LogFields struct {
	Component string // e.g. "fourfold.orchestrator"
	ProblemID string
	StreamID  string
}

// WithLogFields enriches ctx with fields. Non-empty values in fields replace
// the ones already present.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.Component != "" {
		merged.Component = fields.Component
	}
	if fields.ProblemID != "" {
		merged.ProblemID = fields.ProblemID
	}
	if fields.StreamID != "" {
		merged.StreamID = fields.StreamID
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields returns the fields stored in ctx, or the zero value.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

// Truncate shortens s to maxLen bytes, appending "..." when it was cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
