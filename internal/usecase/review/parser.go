package review

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/bkyoung/doc-reviewer/internal/domain"
)

// The reviewer may wrap its JSON reply in a fenced code block, either
// tagged ```json or a bare ```.
var fencePattern = regexp.MustCompile("```(?:json)?\\s*([\\s\\S]*?)```")

// ParseReply decodes the reviewer's reply into a ReviewResult. The fence,
// if present, is stripped before decoding. A decoding failure is returned
// as an error for the caller to handle explicitly; this function never
// fabricates a result.
func ParseReply(text string) (domain.ReviewResult, error) {
	jsonText := strings.TrimSpace(text)
	if matches := fencePattern.FindStringSubmatch(text); len(matches) > 1 {
		jsonText = strings.TrimSpace(matches[1])
	}

	var result domain.ReviewResult
	if err := json.Unmarshal([]byte(jsonText), &result); err != nil {
		return domain.ReviewResult{}, fmt.Errorf("decode reviewer reply: %w", err)
	}
	return result, nil
}

// ErrorResult is the zero-issue result recorded when a file's review
// failed. The failure reason is surfaced in the summary and absorbed.
func ErrorResult(err error) domain.ReviewResult {
	return domain.ReviewResult{
		Issues:  []domain.Issue{},
		Summary: fmt.Sprintf("Error during review: %s", err),
	}
}
