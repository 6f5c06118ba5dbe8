// Package markdown renders review runs into Markdown report files.
package markdown

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
)

type clock func() string

// Writer renders review runs into Markdown files. It implements the
// review.ArtifactWriter interface.
type Writer struct {
	outputDir string
	now       clock
}

// NewWriter constructs a Markdown writer with a timestamp supplier.
func NewWriter(outputDir string, now clock) *Writer {
	return &Writer{outputDir: outputDir, now: now}
}

// Write persists a Markdown report of the run to disk.
func (w *Writer) Write(ctx context.Context, rec review.RunRecord) (string, error) {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	filename := fmt.Sprintf("%s_pr%d_%s.md",
		sanitise(rec.Repository),
		rec.PullNumber,
		w.now(),
	)
	path := filepath.Join(w.outputDir, filename)

	content := buildContent(rec)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write markdown: %w", err)
	}

	return path, nil
}

func buildContent(rec review.RunRecord) string {
	var builder strings.Builder
	caser := cases.Title(language.English)
	builder.WriteString("# Documentation Review Report\n\n")
	builder.WriteString(fmt.Sprintf("- Repository: %s\n", rec.Repository))
	builder.WriteString(fmt.Sprintf("- Pull request: #%d\n", rec.PullNumber))
	builder.WriteString(fmt.Sprintf("- Range: %s...%s\n", rec.BaseSHA, rec.HeadSHA))
	builder.WriteString(fmt.Sprintf("- Files reviewed: %d\n", rec.FilesReviewed))
	builder.WriteString(fmt.Sprintf("- Issues found: %d\n\n", rec.TotalIssues))

	if rec.TotalIssues == 0 {
		builder.WriteString("No issues reported.\n")
		return builder.String()
	}

	builder.WriteString("## Issues\n\n")
	for _, fr := range rec.Results {
		if len(fr.Result.Issues) == 0 {
			continue
		}
		builder.WriteString(fmt.Sprintf("### %s\n\n", fr.Path))
		for _, issue := range fr.Result.Issues {
			builder.WriteString(fmt.Sprintf("- Line %d, %s (%s): %s\n",
				issue.Line, caser.String(issue.Severity), issue.Category, issue.Issue))
			if issue.Suggestion != "" {
				builder.WriteString(fmt.Sprintf("  - Suggestion: %s\n", issue.Suggestion))
			}
		}
		builder.WriteString("\n")
	}

	return builder.String()
}

func sanitise(value string) string {
	if value == "" {
		return "unknown"
	}
	value = strings.ToLower(value)
	value = strings.ReplaceAll(value, "/", "-")
	value = strings.ReplaceAll(value, " ", "-")
	return value
}
