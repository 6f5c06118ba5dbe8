package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/bkyoung/doc-reviewer/internal/config"
	"github.com/bkyoung/doc-reviewer/internal/domain"
)

// Marker present in every comment this tool posts. Used to recognize our
// own comments when reading back pull request feedback.
const commentMarker = "AI Documentation Review"

// RunRequest identifies the pull request and revision range to review.
type RunRequest struct {
	Owner      string
	Repo       string
	PullNumber int
	BaseSHA    string
	HeadSHA    string
	Policy     config.Policy
}

// RunResult summarizes a completed run.
type RunResult struct {
	// NothingToReview is true when no eligible documentation files changed.
	// In that case nothing was posted and no state was persisted.
	NothingToReview bool

	FilesReviewed  int
	TotalIssues    int
	CommentsPosted int
	CommentsFailed int
	Results        []domain.FileResult
	ArtifactPath   string
}

// Orchestrator drives one review run end to end: compare revisions, review
// each eligible file, post comments, and persist feedback state. Only
// failures that make the run meaningless (comparison, prompt setup) abort
// it; per-file and posting failures are recorded and absorbed.
type Orchestrator struct {
	host     Host
	provider Provider
	poster   CommentPoster
	feedback FeedbackStore
	prompts  *PromptBuilder
	logger   Logger

	runStore  RunStore
	artifacts ArtifactWriter

	estimateTokens  func(string) int
	maxPromptTokens int
	maxTokens       int
}

// NewOrchestrator wires the required collaborators. Optional collaborators
// are attached with the Set methods.
func NewOrchestrator(host Host, provider Provider, poster CommentPoster, feedbackStore FeedbackStore, logger Logger) (*Orchestrator, error) {
	prompts, err := NewPromptBuilder()
	if err != nil {
		return nil, err
	}
	return &Orchestrator{
		host:      host,
		provider:  provider,
		poster:    poster,
		feedback:  feedbackStore,
		prompts:   prompts,
		logger:    logger,
		maxTokens: defaultMaxTokens,
	}, nil
}

// SetRunStore attaches an optional run history store.
func (o *Orchestrator) SetRunStore(store RunStore) {
	o.runStore = store
}

// SetArtifactWriter attaches an optional run artifact writer.
func (o *Orchestrator) SetArtifactWriter(writer ArtifactWriter) {
	o.artifacts = writer
}

// SetMaxTokens overrides the reviewer's completion token cap.
func (o *Orchestrator) SetMaxTokens(maxTokens int) {
	if maxTokens > 0 {
		o.maxTokens = maxTokens
	}
}

// SetPromptBudget enables prompt-size gating: files whose rendered prompt
// exceeds budget estimated tokens are skipped. A zero budget disables the
// gate.
func (o *Orchestrator) SetPromptBudget(estimate func(string) int, budget int) {
	o.estimateTokens = estimate
	o.maxPromptTokens = budget
}

// Run executes a full review of the pull request described by req.
func (o *Orchestrator) Run(ctx context.Context, req RunRequest) (RunResult, error) {
	filter, err := NewFilter(req.Policy.ExcludePatterns)
	if err != nil {
		return RunResult{}, err
	}

	o.logger.LogInfo(ctx, "starting documentation review", map[string]interface{}{
		"repository":  req.Owner + "/" + req.Repo,
		"pull_number": req.PullNumber,
		"base":        shortSHA(req.BaseSHA),
		"head":        shortSHA(req.HeadSHA),
	})

	changed, err := o.host.CompareCommits(ctx, req.Owner, req.Repo, req.BaseSHA, req.HeadSHA)
	if err != nil {
		return RunResult{}, fmt.Errorf("compare %s...%s: %w", req.BaseSHA, req.HeadSHA, err)
	}

	eligible := eligibleFiles(filter, changed)
	if len(eligible) == 0 {
		o.logger.LogInfo(ctx, "no documentation files to review", map[string]interface{}{
			"changed_files": len(changed),
		})
		return RunResult{NothingToReview: true}, nil
	}

	o.logger.LogInfo(ctx, "reviewing documentation files", map[string]interface{}{
		"files": len(eligible),
	})

	result := RunResult{}
	for _, file := range eligible {
		o.logger.LogInfo(ctx, "reviewing file", map[string]interface{}{
			"path": file.Path,
		})
		task, ok := o.buildTask(ctx, req, file)
		if !ok {
			continue
		}
		fileResult := o.reviewFile(ctx, task, req.Policy.EnabledChecks)
		result.Results = append(result.Results, domain.FileResult{Path: task.Path, Result: fileResult})

		posted := o.poster.PostIssues(ctx, PostIssuesRequest{
			Owner:     req.Owner,
			Repo:      req.Repo,
			CommitSHA: req.HeadSHA,
			Path:      task.Path,
			Issues:    fileResult.Issues,
			MaxIssues: req.Policy.MaxIssuesPerFile,
		})
		result.CommentsPosted += posted.Posted
		result.CommentsFailed += posted.Failed
	}
	result.FilesReviewed = len(result.Results)
	result.TotalIssues = domain.TotalIssues(result.Results)

	summary := BuildSummary(result.Results)
	if err := o.poster.PostSummary(ctx, req.Owner, req.Repo, req.PullNumber, summary); err != nil {
		o.logger.LogWarning(ctx, "failed to post summary comment", map[string]interface{}{
			"error": err.Error(),
		})
	}

	o.learnFromFeedback(ctx, req)
	o.persistFeedback(ctx)
	o.recordRun(ctx, req, &result)

	return result, nil
}

// eligibleFiles keeps the changed files whose path the filter accepts.
// Eligibility is decided on the path alone; whether a file can actually be
// reviewed is settled per file inside the run loop.
func eligibleFiles(filter *Filter, changed []domain.ChangedFile) []domain.ChangedFile {
	var eligible []domain.ChangedFile
	for _, file := range changed {
		if filter.ShouldReview(file.Path) {
			eligible = append(eligible, file)
		}
	}
	return eligible
}

// buildTask assembles the diff and HEAD content for one file. Removed
// files, files without a patch, and files whose content cannot be fetched
// are skipped; the run carries on with the remaining files.
func (o *Orchestrator) buildTask(ctx context.Context, req RunRequest, file domain.ChangedFile) (domain.ReviewTask, bool) {
	if file.Status == domain.FileStatusRemoved {
		o.logger.LogWarning(ctx, "skipping removed file", map[string]interface{}{
			"path": file.Path,
		})
		return domain.ReviewTask{}, false
	}
	if file.Patch == "" {
		o.logger.LogWarning(ctx, "skipping file without a diff", map[string]interface{}{
			"path": file.Path,
		})
		return domain.ReviewTask{}, false
	}

	content, err := o.host.FileContent(ctx, req.Owner, req.Repo, file.Path, req.HeadSHA)
	if err != nil {
		o.logger.LogWarning(ctx, "skipping file, content unavailable", map[string]interface{}{
			"path":  file.Path,
			"error": err.Error(),
		})
		return domain.ReviewTask{}, false
	}

	return domain.ReviewTask{
		Path:    file.Path,
		Diff:    file.Patch,
		Content: content,
	}, true
}

// reviewFile sends one file to the reviewer and decodes the reply. Every
// failure after the prompt renders collapses into an error result so the
// run continues.
func (o *Orchestrator) reviewFile(ctx context.Context, task domain.ReviewTask, checks []string) domain.ReviewResult {
	prompt, err := o.prompts.Build(task.Path, checks, task.Diff, task.Content)
	if err != nil {
		return ErrorResult(err)
	}

	if o.maxPromptTokens > 0 && o.estimateTokens != nil {
		if estimated := o.estimateTokens(prompt); estimated > o.maxPromptTokens {
			o.logger.LogWarning(ctx, "skipping file, prompt exceeds token budget", map[string]interface{}{
				"path":      task.Path,
				"estimated": estimated,
				"budget":    o.maxPromptTokens,
			})
			return ErrorResult(fmt.Errorf("prompt exceeds token budget (%d > %d)", estimated, o.maxPromptTokens))
		}
	}

	reply, err := o.provider.Review(ctx, ProviderRequest{Prompt: prompt, MaxTokens: o.maxTokens})
	if err != nil {
		o.logger.LogWarning(ctx, "review request failed", map[string]interface{}{
			"path":  task.Path,
			"error": err.Error(),
		})
		return ErrorResult(err)
	}

	result, err := ParseReply(reply.Text)
	if err != nil {
		o.logger.LogWarning(ctx, "could not decode reviewer reply", map[string]interface{}{
			"path":  task.Path,
			"error": err.Error(),
		})
		return ErrorResult(err)
	}
	return result
}

// learnFromFeedback reads back comments on the pull request and counts
// reactions to our own. Today this only logs what it finds; the counter
// groundwork is here for when pattern learning lands.
func (o *Orchestrator) learnFromFeedback(ctx context.Context, req RunRequest) {
	comments, err := o.host.ListReviewComments(ctx, req.Owner, req.Repo, req.PullNumber)
	if err != nil {
		o.logger.LogWarning(ctx, "could not list review comments", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	ours := 0
	for _, comment := range comments {
		if strings.Contains(comment.Body, commentMarker) {
			ours++
		}
	}
	o.logger.LogInfo(ctx, "collected prior review comments", map[string]interface{}{
		"total": len(comments),
		"ours":  ours,
	})
}

// persistFeedback bumps the review counter. Failures are logged and
// absorbed; the review itself already succeeded.
func (o *Orchestrator) persistFeedback(ctx context.Context) {
	state, err := o.feedback.Load()
	if err != nil {
		o.logger.LogWarning(ctx, "could not load feedback state", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	state.TotalReviews++
	if err := o.feedback.Save(state); err != nil {
		o.logger.LogWarning(ctx, "could not save feedback state", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// recordRun hands the completed run to the optional history store and
// artifact writer.
func (o *Orchestrator) recordRun(ctx context.Context, req RunRequest, result *RunResult) {
	rec := RunRecord{
		Repository:    req.Owner + "/" + req.Repo,
		PullNumber:    req.PullNumber,
		BaseSHA:       req.BaseSHA,
		HeadSHA:       req.HeadSHA,
		FilesReviewed: result.FilesReviewed,
		TotalIssues:   result.TotalIssues,
		Results:       result.Results,
	}

	if o.runStore != nil {
		if err := o.runStore.RecordRun(ctx, rec); err != nil {
			o.logger.LogWarning(ctx, "could not record run history", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if o.artifacts != nil {
		path, err := o.artifacts.Write(ctx, rec)
		if err != nil {
			o.logger.LogWarning(ctx, "could not write run artifact", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			result.ArtifactPath = path
		}
	}
}

// shortSHA trims a revision to the conventional 8-character display form.
func shortSHA(sha string) string {
	if len(sha) > 8 {
		return sha[:8]
	}
	return sha
}
