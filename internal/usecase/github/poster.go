// Package github provides use cases for publishing review output to GitHub.
package github

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bkyoung/doc-reviewer/internal/adapter/github"
	"github.com/bkyoung/doc-reviewer/internal/domain"
)

// CommentClient defines the interface for posting comments to GitHub.
// This interface allows for mocking in tests.
type CommentClient interface {
	CreateCommitComment(ctx context.Context, owner, repo, sha string, comment github.CommitCommentRequest) error
	CreateIssueComment(ctx context.Context, owner, repo string, pullNumber int, body string) error
}

// CommentPoster publishes per-issue line comments and the run summary.
// Posting failures are logged and absorbed so one bad comment never blocks
// its siblings.
type CommentPoster struct {
	client CommentClient
}

// NewCommentPoster creates a poster backed by the given client.
func NewCommentPoster(client CommentClient) *CommentPoster {
	return &CommentPoster{client: client}
}

// PostIssuesInput contains everything needed to comment on one file.
type PostIssuesInput struct {
	Owner     string
	Repo      string
	CommitSHA string
	Path      string
	Issues    []domain.Issue
	MaxIssues int
}

// PostIssuesOutput reports posting counts for one file.
type PostIssuesOutput struct {
	Posted int
	Failed int
}

// PostIssues posts up to MaxIssues line comments on the head commit, in
// the reviewer's returned order.
func (p *CommentPoster) PostIssues(ctx context.Context, input PostIssuesInput) PostIssuesOutput {
	issues := input.Issues
	if input.MaxIssues > 0 && len(issues) > input.MaxIssues {
		issues = issues[:input.MaxIssues]
	}

	out := PostIssuesOutput{}
	for _, issue := range issues {
		comment := github.CommitCommentRequest{
			Body: FormatIssueComment(issue),
			Path: input.Path,
			Line: issue.Line,
		}
		if err := p.client.CreateCommitComment(ctx, input.Owner, input.Repo, input.CommitSHA, comment); err != nil {
			log.Printf("failed to post comment on %s line %d: %v", input.Path, issue.Line, err)
			out.Failed++
			continue
		}
		out.Posted++
	}
	return out
}

// PostSummary posts the run-level summary as one pull request comment.
func (p *CommentPoster) PostSummary(ctx context.Context, owner, repo string, pullNumber int, body string) error {
	return p.client.CreateIssueComment(ctx, owner, repo, pullNumber, body)
}

var severityBadges = map[string]string{
	domain.SeverityCritical: "🚨",
	domain.SeverityMajor:    "⚠️",
	domain.SeverityMinor:    "ℹ️",
}

// FormatIssueComment renders one issue as a line comment body.
func FormatIssueComment(issue domain.Issue) string {
	severity := issue.Severity
	if severity == "" {
		severity = domain.SeverityMinor
	}
	badge, ok := severityBadges[severity]
	if !ok {
		badge = severityBadges[domain.SeverityMinor]
	}
	category := issue.Category
	if category == "" {
		category = "general"
	}

	return fmt.Sprintf(`%s **%s** - %s

%s

**Suggestion:**
%s

---
*AI Documentation Review* | [Severity: %s]`,
		badge, strings.ToUpper(severity), category, issue.Issue, issue.Suggestion, severity)
}
