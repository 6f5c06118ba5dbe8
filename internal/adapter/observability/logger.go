package observability

import (
	"context"

	llmhttp "github.com/bkyoung/doc-reviewer/internal/adapter/llm/http"
	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
)

// ReviewLogger adapts llmhttp.Logger to review.Logger interface.
// This allows the review orchestrator to use the same structured logging
// infrastructure as the LLM HTTP clients.
type ReviewLogger struct {
	logger llmhttp.Logger
}

// NewReviewLogger creates a new review logger adapter.
func NewReviewLogger(logger llmhttp.Logger) review.Logger {
	return &ReviewLogger{logger: logger}
}

// LogInfo logs an informational message with structured fields.
func (l *ReviewLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogInfo(ctx, message, fields)
}

// LogWarning logs a warning message with structured fields.
func (l *ReviewLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	l.logger.LogWarning(ctx, message, fields)
}
