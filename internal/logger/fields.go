package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldProvider tags log entries with the AI provider name.
	FieldProvider = "ai_provider"
	// FieldModel tags log entries with the model identifier.
	FieldModel = "ai_model"
)

// Field is one string-valued structured logging field.
type Field struct {
	Key   string
	Value string
}

// Fields converts key/value pairs into zap fields, dropping entries whose
// key or value is blank so log lines stay compact.
func Fields(pairs ...Field) []zap.Field {
	result := make([]zap.Field, 0, len(pairs))
	for _, pair := range pairs {
		key := strings.TrimSpace(pair.Key)
		value := strings.TrimSpace(pair.Value)
		if key == "" || value == "" {
			continue
		}
		result = append(result, zap.String(key, value))
	}
	return result
}

// With attaches fields to the logger. A nil logger becomes a no-op logger so
// callers never have to guard against panics.
func With(log *zap.Logger, fields ...zap.Field) *zap.Logger {
	if log == nil {
		log = zap.NewNop()
	}
	if len(fields) == 0 {
		return log
	}
	return log.With(fields...)
}

// WithModel tags the logger with the AI provider and model fields.
func WithModel(log *zap.Logger, provider, model string) *zap.Logger {
	return With(log, Fields(
		Field{Key: FieldProvider, Value: provider},
		Field{Key: FieldModel, Value: model},
	)...)
}
