package telemetry

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields are request-scoped attributes stamped onto every log record
// written with the request context.
type LogFields struct {
	RequestID      string
	OrganizationID string
	UserID         string
}

// WithLogFields merges fields into the context. Non-empty values win.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := GetLogFields(ctx)
	if fields.RequestID != "" {
		merged.RequestID = fields.RequestID
	}
	if fields.OrganizationID != "" {
		merged.OrganizationID = fields.OrganizationID
	}
	if fields.UserID != "" {
		merged.UserID = fields.UserID
	}
	return context.WithValue(ctx, logFieldsKey, merged)
}

func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}
