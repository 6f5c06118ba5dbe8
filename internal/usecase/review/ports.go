package review

import (
	"context"

	"github.com/bkyoung/doc-reviewer/internal/domain"
	"github.com/bkyoung/doc-reviewer/internal/feedback"
)

// Host is the source-repository host boundary. The orchestrator consumes
// exactly the capabilities it needs: revision comparison, file content
// retrieval, and review comment listing. Comment posting goes through the
// CommentPoster port.
type Host interface {
	// CompareCommits returns the files changed between two revisions,
	// in the host's enumeration order.
	CompareCommits(ctx context.Context, owner, repo, base, head string) ([]domain.ChangedFile, error)

	// FileContent returns the full content of a file at the given revision.
	FileContent(ctx context.Context, owner, repo, path, ref string) (string, error)

	// ListReviewComments returns review comments previously posted on the
	// pull request.
	ListReviewComments(ctx context.Context, owner, repo string, pullNumber int) ([]domain.ReviewComment, error)
}

// ProviderRequest is the outbound payload for the LLM reviewer.
type ProviderRequest struct {
	Prompt    string
	MaxTokens int
}

// ProviderReply is the reviewer's raw reply. The text is decoded by the
// orchestrator so that an unparseable reply is an explicit outcome rather
// than a provider error.
type ProviderReply struct {
	Text      string
	Model     string
	TokensIn  int
	TokensOut int
}

// Provider is the LLM reviewer boundary.
type Provider interface {
	Review(ctx context.Context, req ProviderRequest) (ProviderReply, error)
}

// PostIssuesRequest asks the poster to publish per-issue line comments on
// the head commit.
type PostIssuesRequest struct {
	Owner     string
	Repo      string
	CommitSHA string
	Path      string
	Issues    []domain.Issue
	MaxIssues int
}

// PostIssuesResult reports how many comments were posted and how many
// failed. Failures never abort the run.
type PostIssuesResult struct {
	Posted int
	Failed int
}

// CommentPoster publishes review output back to the source host.
type CommentPoster interface {
	PostIssues(ctx context.Context, req PostIssuesRequest) PostIssuesResult
	PostSummary(ctx context.Context, owner, repo string, pullNumber int, body string) error
}

// FeedbackStore persists feedback state across runs.
type FeedbackStore interface {
	Load() (feedback.State, error)
	Save(state feedback.State) error
}

// RunRecord captures one completed run for the history store.
type RunRecord struct {
	Repository    string
	PullNumber    int
	BaseSHA       string
	HeadSHA       string
	FilesReviewed int
	TotalIssues   int
	Results       []domain.FileResult
}

// RunStore optionally records completed runs.
type RunStore interface {
	RecordRun(ctx context.Context, rec RunRecord) error
}

// ArtifactWriter optionally writes a run summary artifact to disk.
type ArtifactWriter interface {
	Write(ctx context.Context, rec RunRecord) (string, error)
}

// Logger provides structured progress logging for the orchestrator.
type Logger interface {
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogWarning(ctx context.Context, message string, fields map[string]interface{})
}
