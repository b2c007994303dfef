package logger

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/resume-screener/internal/screening"
)

const (
	// FieldResumeSource is the structured log field key for where the resume came from.
	FieldResumeSource = "resume_source"
	// FieldJobSource is the structured log field key for where the job description came from.
	FieldJobSource = "job_source"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// If the logger is nil or no fields are supplied, the input logger is returned
// unchanged, defaulting to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SourceFields describes the origin of both screening inputs.
// Empty values are ignored to keep log entries compact.
func SourceFields(resumeSource, jobSource string) []zap.Field {
	return StringFields(
		StringField{Key: FieldResumeSource, Value: resumeSource},
		StringField{Key: FieldJobSource, Value: jobSource},
	)
}

// ResultFields returns the fields that summarize a screening outcome.
func ResultFields(r screening.MatchResult) []zap.Field {
	return []zap.Field{
		zap.Int("score", r.Score),
		zap.String("decision", string(r.Decision)),
		zap.Strings("strengths", r.Strengths),
		zap.Strings("gaps", r.Gaps),
	}
}
