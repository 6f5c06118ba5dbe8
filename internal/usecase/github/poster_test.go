package github_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/bkyoung/doc-reviewer/internal/adapter/github"
	"github.com/bkyoung/doc-reviewer/internal/domain"
	"github.com/bkyoung/doc-reviewer/internal/usecase/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCommentClient struct {
	commitComments []adapter.CommitCommentRequest
	commitErr      func(comment adapter.CommitCommentRequest) error
	issueBodies    []string
	issueErr       error
}

func (m *mockCommentClient) CreateCommitComment(_ context.Context, _, _, _ string, comment adapter.CommitCommentRequest) error {
	if m.commitErr != nil {
		if err := m.commitErr(comment); err != nil {
			return err
		}
	}
	m.commitComments = append(m.commitComments, comment)
	return nil
}

func (m *mockCommentClient) CreateIssueComment(_ context.Context, _, _ string, _ int, body string) error {
	m.issueBodies = append(m.issueBodies, body)
	return m.issueErr
}

func issues(n int) []domain.Issue {
	out := make([]domain.Issue, n)
	for i := range out {
		out[i] = domain.Issue{
			Line:       i + 1,
			Severity:   domain.SeverityMinor,
			Category:   "grammar",
			Issue:      "issue text",
			Suggestion: "fix it",
		}
	}
	return out
}

func TestPostIssues_PostsAllUnderCap(t *testing.T) {
	client := &mockCommentClient{}
	poster := github.NewCommentPoster(client)

	out := poster.PostIssues(context.Background(), github.PostIssuesInput{
		Owner: "acme", Repo: "docs", CommitSHA: "head", Path: "docs/a.md",
		Issues: issues(3), MaxIssues: 20,
	})

	assert.Equal(t, 3, out.Posted)
	assert.Zero(t, out.Failed)
	require.Len(t, client.commitComments, 3)
	assert.Equal(t, "docs/a.md", client.commitComments[0].Path)
	assert.Equal(t, 1, client.commitComments[0].Line)
}

func TestPostIssues_CapsAtMaxInOrder(t *testing.T) {
	client := &mockCommentClient{}
	poster := github.NewCommentPoster(client)

	out := poster.PostIssues(context.Background(), github.PostIssuesInput{
		Path: "docs/a.md", Issues: issues(7), MaxIssues: 2,
	})

	assert.Equal(t, 2, out.Posted)
	require.Len(t, client.commitComments, 2)
	assert.Equal(t, 1, client.commitComments[0].Line, "reviewer's order is preserved")
	assert.Equal(t, 2, client.commitComments[1].Line)
}

func TestPostIssues_FailureDoesNotBlockSiblings(t *testing.T) {
	client := &mockCommentClient{
		commitErr: func(comment adapter.CommitCommentRequest) error {
			if comment.Line == 2 {
				return errors.New("422 line not in diff")
			}
			return nil
		},
	}
	poster := github.NewCommentPoster(client)

	out := poster.PostIssues(context.Background(), github.PostIssuesInput{
		Path: "docs/a.md", Issues: issues(3), MaxIssues: 20,
	})

	assert.Equal(t, 2, out.Posted)
	assert.Equal(t, 1, out.Failed)
	require.Len(t, client.commitComments, 2)
}

func TestPostIssues_NoIssues(t *testing.T) {
	client := &mockCommentClient{}
	poster := github.NewCommentPoster(client)

	out := poster.PostIssues(context.Background(), github.PostIssuesInput{
		Path: "docs/a.md", Issues: nil, MaxIssues: 20,
	})

	assert.Zero(t, out.Posted)
	assert.Empty(t, client.commitComments)
}

func TestPostSummary(t *testing.T) {
	client := &mockCommentClient{}
	poster := github.NewCommentPoster(client)

	err := poster.PostSummary(context.Background(), "acme", "docs", 42, "summary body")

	require.NoError(t, err)
	require.Len(t, client.issueBodies, 1)
	assert.Equal(t, "summary body", client.issueBodies[0])
}

func TestPostSummary_PropagatesError(t *testing.T) {
	client := &mockCommentClient{issueErr: errors.New("403")}
	poster := github.NewCommentPoster(client)

	err := poster.PostSummary(context.Background(), "acme", "docs", 42, "summary body")

	require.Error(t, err)
}

func TestFormatIssueComment(t *testing.T) {
	body := github.FormatIssueComment(domain.Issue{
		Line:       12,
		Severity:   domain.SeverityCritical,
		Category:   "internal_links",
		Issue:      "Link uses an absolute URL",
		Suggestion: "Use a root-relative path",
	})

	assert.Contains(t, body, "🚨 **CRITICAL** - internal_links")
	assert.Contains(t, body, "Link uses an absolute URL")
	assert.Contains(t, body, "**Suggestion:**\nUse a root-relative path")
	assert.Contains(t, body, "*AI Documentation Review* | [Severity: critical]")
}

func TestFormatIssueComment_Badges(t *testing.T) {
	tests := []struct {
		severity string
		badge    string
	}{
		{domain.SeverityCritical, "🚨"},
		{domain.SeverityMajor, "⚠️"},
		{domain.SeverityMinor, "ℹ️"},
		{"", "ℹ️"},
		{"unheard-of", "ℹ️"},
	}

	for _, tt := range tests {
		body := github.FormatIssueComment(domain.Issue{Severity: tt.severity, Issue: "x"})
		assert.Contains(t, body, tt.badge, "severity %q", tt.severity)
	}
}
