package review_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bkyoung/doc-reviewer/internal/config"
	"github.com/bkyoung/doc-reviewer/internal/domain"
	"github.com/bkyoung/doc-reviewer/internal/feedback"
	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockHost struct {
	compareFunc  func(ctx context.Context, owner, repo, base, head string) ([]domain.ChangedFile, error)
	contentFunc  func(ctx context.Context, owner, repo, path, ref string) (string, error)
	commentsFunc func(ctx context.Context, owner, repo string, pullNumber int) ([]domain.ReviewComment, error)
}

func (m *mockHost) CompareCommits(ctx context.Context, owner, repo, base, head string) ([]domain.ChangedFile, error) {
	return m.compareFunc(ctx, owner, repo, base, head)
}

func (m *mockHost) FileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	if m.contentFunc == nil {
		return "file content", nil
	}
	return m.contentFunc(ctx, owner, repo, path, ref)
}

func (m *mockHost) ListReviewComments(ctx context.Context, owner, repo string, pullNumber int) ([]domain.ReviewComment, error) {
	if m.commentsFunc == nil {
		return nil, nil
	}
	return m.commentsFunc(ctx, owner, repo, pullNumber)
}

type mockProvider struct {
	reviewFunc func(ctx context.Context, req review.ProviderRequest) (review.ProviderReply, error)
	calls      int
}

func (m *mockProvider) Review(ctx context.Context, req review.ProviderRequest) (review.ProviderReply, error) {
	m.calls++
	return m.reviewFunc(ctx, req)
}

type mockPoster struct {
	issueReqs   []review.PostIssuesRequest
	postIssues  func(req review.PostIssuesRequest) review.PostIssuesResult
	summaryBody string
	summaryErr  error
	summaryHits int
}

func (m *mockPoster) PostIssues(_ context.Context, req review.PostIssuesRequest) review.PostIssuesResult {
	m.issueReqs = append(m.issueReqs, req)
	if m.postIssues != nil {
		return m.postIssues(req)
	}
	return review.PostIssuesResult{Posted: len(req.Issues)}
}

func (m *mockPoster) PostSummary(_ context.Context, _, _ string, _ int, body string) error {
	m.summaryHits++
	m.summaryBody = body
	return m.summaryErr
}

type mockFeedbackStore struct {
	state   feedback.State
	loadErr error
	saved   *feedback.State
	saveErr error
}

func (m *mockFeedbackStore) Load() (feedback.State, error) {
	return m.state, m.loadErr
}

func (m *mockFeedbackStore) Save(state feedback.State) error {
	m.saved = &state
	return m.saveErr
}

type nopLogger struct{}

func (nopLogger) LogInfo(context.Context, string, map[string]interface{})    {}
func (nopLogger) LogWarning(context.Context, string, map[string]interface{}) {}

func testPolicy() config.Policy {
	return config.DefaultPolicy()
}

func changedDoc(path string) domain.ChangedFile {
	return domain.ChangedFile{Path: path, Status: domain.FileStatusModified, Patch: "@@ -1 +1 @@\n+hello"}
}

const cleanReply = `{"issues": [], "summary": "No issues found. Changes look good!"}`

func newTestOrchestrator(t *testing.T, host *mockHost, provider *mockProvider, poster *mockPoster, store *mockFeedbackStore) *review.Orchestrator {
	t.Helper()
	orch, err := review.NewOrchestrator(host, provider, poster, store, nopLogger{})
	require.NoError(t, err)
	return orch
}

func TestRun_NothingToReview(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{
				{Path: "main.go", Status: domain.FileStatusModified, Patch: "@@"},
				{Path: "docs/reference/api.md", Status: domain.FileStatusModified, Patch: "@@"},
			}, nil
		},
	}
	provider := &mockProvider{}
	poster := &mockPoster{}
	store := &mockFeedbackStore{}
	orch := newTestOrchestrator(t, host, provider, poster, store)

	result, err := orch.Run(context.Background(), review.RunRequest{
		Owner: "acme", Repo: "docs", PullNumber: 7,
		BaseSHA: "base", HeadSHA: "head",
		Policy: testPolicy(),
	})

	require.NoError(t, err)
	assert.True(t, result.NothingToReview)
	assert.Zero(t, provider.calls, "reviewer is never called")
	assert.Zero(t, poster.summaryHits, "no summary is posted")
	assert.Nil(t, store.saved, "feedback state is untouched")
}

func TestRun_CompareFailureAborts(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return nil, errors.New("boom")
		},
	}
	orch := newTestOrchestrator(t, host, &mockProvider{}, &mockPoster{}, &mockFeedbackStore{})

	_, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "compare")
}

func TestRun_ReviewsEligibleFiles(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{
				changedDoc("docs/guide.md"),
				{Path: "src/app.ts", Status: domain.FileStatusModified, Patch: "@@"},
				changedDoc("docs/intro.mdx"),
			}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(_ context.Context, req review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply, Model: "test"}, nil
		},
	}
	poster := &mockPoster{}
	store := &mockFeedbackStore{state: feedback.State{TotalReviews: 3}}
	orch := newTestOrchestrator(t, host, provider, poster, store)

	result, err := orch.Run(context.Background(), review.RunRequest{
		Owner: "acme", Repo: "docs", PullNumber: 7,
		BaseSHA: "base", HeadSHA: "head",
		Policy: testPolicy(),
	})

	require.NoError(t, err)
	assert.False(t, result.NothingToReview)
	assert.Equal(t, 2, result.FilesReviewed)
	assert.Equal(t, 2, provider.calls)
	assert.Equal(t, []string{"docs/guide.md", "docs/intro.mdx"},
		[]string{result.Results[0].Path, result.Results[1].Path}, "enumeration order is preserved")
	assert.Equal(t, 1, poster.summaryHits)
	assert.Contains(t, poster.summaryBody, "✅")
	require.NotNil(t, store.saved)
	assert.Equal(t, 4, store.saved.TotalReviews)
}

func TestRun_ProviderFailureBecomesErrorResult(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md"), changedDoc("docs/b.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(_ context.Context, req review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{}, errors.New("overloaded")
		},
	}
	poster := &mockPoster{}
	orch := newTestOrchestrator(t, host, provider, poster, &mockFeedbackStore{})

	result, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err, "per-file failures never abort the run")
	require.Equal(t, 2, result.FilesReviewed)
	for _, fr := range result.Results {
		assert.Empty(t, fr.Result.Issues)
		assert.Contains(t, fr.Result.Summary, "Error during review: overloaded")
	}
	assert.Equal(t, 1, poster.summaryHits, "summary still goes out")
}

func TestRun_UnparseableReplyBecomesErrorResult(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: "not json at all"}, nil
		},
	}
	orch := newTestOrchestrator(t, host, provider, &mockPoster{}, &mockFeedbackStore{})

	result, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err)
	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Result.Summary, "Error during review:")
}

func TestRun_SkipsRemovedAndPatchlessFiles(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{
				{Path: "docs/gone.md", Status: domain.FileStatusRemoved, Patch: "@@"},
				{Path: "docs/huge.md", Status: domain.FileStatusModified, Patch: ""},
				changedDoc("docs/keep.md"),
			}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply}, nil
		},
	}
	orch := newTestOrchestrator(t, host, provider, &mockPoster{}, &mockFeedbackStore{})

	result, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err)
	require.Equal(t, 1, result.FilesReviewed)
	assert.Equal(t, "docs/keep.md", result.Results[0].Path)
}

func TestRun_SkipsFileWhenContentUnavailable(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md"), changedDoc("docs/b.md")}, nil
		},
		contentFunc: func(_ context.Context, _, _, path, _ string) (string, error) {
			if path == "docs/a.md" {
				return "", errors.New("404")
			}
			return "content", nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply}, nil
		},
	}
	orch := newTestOrchestrator(t, host, provider, &mockPoster{}, &mockFeedbackStore{})

	result, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err)
	require.Equal(t, 1, result.FilesReviewed)
	assert.Equal(t, "docs/b.md", result.Results[0].Path)
}

func TestRun_AllContentFetchesFailStillCompletesRun(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md"), changedDoc("docs/b.md")}, nil
		},
		contentFunc: func(context.Context, string, string, string, string) (string, error) {
			return "", errors.New("404")
		},
	}
	provider := &mockProvider{}
	poster := &mockPoster{}
	store := &mockFeedbackStore{}
	orch := newTestOrchestrator(t, host, provider, poster, store)

	result, err := orch.Run(context.Background(), review.RunRequest{
		Owner: "acme", Repo: "docs", PullNumber: 7,
		BaseSHA: "base", HeadSHA: "head",
		Policy: testPolicy(),
	})

	require.NoError(t, err)
	assert.False(t, result.NothingToReview, "eligible files existed, only their fetches failed")
	assert.Zero(t, result.FilesReviewed)
	assert.Zero(t, provider.calls)
	assert.Equal(t, 1, poster.summaryHits, "summary still goes out")
	assert.Contains(t, poster.summaryBody, "✅")
	require.NotNil(t, store.saved, "feedback is still persisted")
	assert.Equal(t, 1, store.saved.TotalReviews)
}

func TestRun_PostsIssuesWithPolicyCap(t *testing.T) {
	issueReply := `{"issues": [{"line": 1, "severity": "major", "category": "grammar", "issue": "x", "suggestion": "y"}], "summary": "one"}`
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: issueReply}, nil
		},
	}
	poster := &mockPoster{}
	orch := newTestOrchestrator(t, host, provider, poster, &mockFeedbackStore{})

	policy := testPolicy()
	policy.MaxIssuesPerFile = 5
	result, err := orch.Run(context.Background(), review.RunRequest{
		Owner: "acme", Repo: "docs", HeadSHA: "head",
		Policy: policy,
	})

	require.NoError(t, err)
	require.Len(t, poster.issueReqs, 1)
	req := poster.issueReqs[0]
	assert.Equal(t, "head", req.CommitSHA)
	assert.Equal(t, "docs/a.md", req.Path)
	assert.Equal(t, 5, req.MaxIssues)
	assert.Equal(t, 1, result.CommentsPosted)
	assert.Contains(t, poster.summaryBody, "Found **1 issue(s)** across **1 file(s)**.")
}

func TestRun_SummaryFailureIsAbsorbed(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply}, nil
		},
	}
	poster := &mockPoster{summaryErr: errors.New("403")}
	store := &mockFeedbackStore{}
	orch := newTestOrchestrator(t, host, provider, poster, store)

	result, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err)
	assert.Equal(t, 1, result.FilesReviewed)
	require.NotNil(t, store.saved, "feedback is still persisted")
	assert.Equal(t, 1, store.saved.TotalReviews)
}

func TestRun_FeedbackLoadFailureIsAbsorbed(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply}, nil
		},
	}
	store := &mockFeedbackStore{loadErr: errors.New("corrupt")}
	orch := newTestOrchestrator(t, host, provider, &mockPoster{}, store)

	_, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err)
	assert.Nil(t, store.saved, "nothing is saved over unreadable state")
}

func TestRun_PromptBudgetSkipsOversizedFile(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply}, nil
		},
	}
	orch := newTestOrchestrator(t, host, provider, &mockPoster{}, &mockFeedbackStore{})
	orch.SetPromptBudget(func(s string) int { return len(s) }, 10)

	result, err := orch.Run(context.Background(), review.RunRequest{Policy: testPolicy()})

	require.NoError(t, err)
	assert.Zero(t, provider.calls, "reviewer is never called for oversized prompts")
	require.Len(t, result.Results, 1)
	assert.Contains(t, result.Results[0].Result.Summary, "token budget")
}

type mockRunStore struct {
	recorded []review.RunRecord
	err      error
}

func (m *mockRunStore) RecordRun(_ context.Context, rec review.RunRecord) error {
	m.recorded = append(m.recorded, rec)
	return m.err
}

func TestRun_RecordsRunHistory(t *testing.T) {
	host := &mockHost{
		compareFunc: func(context.Context, string, string, string, string) ([]domain.ChangedFile, error) {
			return []domain.ChangedFile{changedDoc("docs/a.md")}, nil
		},
	}
	provider := &mockProvider{
		reviewFunc: func(context.Context, review.ProviderRequest) (review.ProviderReply, error) {
			return review.ProviderReply{Text: cleanReply}, nil
		},
	}
	store := &mockRunStore{}
	orch := newTestOrchestrator(t, host, provider, &mockPoster{}, &mockFeedbackStore{})
	orch.SetRunStore(store)

	_, err := orch.Run(context.Background(), review.RunRequest{
		Owner: "acme", Repo: "docs", PullNumber: 7,
		BaseSHA: "base", HeadSHA: "head",
		Policy: testPolicy(),
	})

	require.NoError(t, err)
	require.Len(t, store.recorded, 1)
	assert.Equal(t, "acme/docs", store.recorded[0].Repository)
	assert.Equal(t, 7, store.recorded[0].PullNumber)
	assert.Equal(t, 1, store.recorded[0].FilesReviewed)
}
