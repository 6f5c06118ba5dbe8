package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/doc-reviewer/internal/adapter/cli"
	"github.com/bkyoung/doc-reviewer/internal/adapter/git"
	githubadapter "github.com/bkyoung/doc-reviewer/internal/adapter/github"
	"github.com/bkyoung/doc-reviewer/internal/adapter/llm"
	"github.com/bkyoung/doc-reviewer/internal/adapter/llm/anthropic"
	llmhttp "github.com/bkyoung/doc-reviewer/internal/adapter/llm/http"
	"github.com/bkyoung/doc-reviewer/internal/adapter/observability"
	"github.com/bkyoung/doc-reviewer/internal/adapter/output/markdown"
	"github.com/bkyoung/doc-reviewer/internal/adapter/store/sqlite"
	"github.com/bkyoung/doc-reviewer/internal/config"
	"github.com/bkyoung/doc-reviewer/internal/domain"
	"github.com/bkyoung/doc-reviewer/internal/feedback"
	usecasegithub "github.com/bkyoung/doc-reviewer/internal/usecase/github"
	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
	"github.com/bkyoung/doc-reviewer/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Redact API keys from URLs in error messages before logging
		log.Println(llmhttp.RedactURLSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	env, err := readEnvironment(os.Getenv)
	if err != nil {
		return err
	}

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "dr",
		EnvPrefix:   "DR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	policy, err := config.LoadPolicy(cfg.Review.PolicyPath)
	if err != nil {
		return fmt.Errorf("policy load failed: %w", err)
	}

	logger := buildLogger(cfg.Observability.Logging)
	retryConf := buildRetryConfig(cfg.HTTP)
	timeout := parseDuration(cfg.HTTP.Timeout, 60*time.Second)

	// Anthropic reviewer
	anthropicClient := anthropic.NewHTTPClient(env.AnthropicAPIKey, cfg.Anthropic.Model)
	anthropicClient.SetTimeout(timeout)
	anthropicClient.SetRetryConfig(retryConf)
	if logger != nil {
		anthropicClient.SetLogger(logger)
	}
	provider := anthropic.NewProvider(cfg.Anthropic.Model, anthropicClient)
	if cfg.Anthropic.SystemPrompt != "" {
		provider.SetSystemPrompt(cfg.Anthropic.SystemPrompt)
	}

	// GitHub host
	githubClient := githubadapter.NewClient(env.GitHubToken)
	githubClient.SetTimeout(timeout)
	githubClient.SetRetryConfig(retryConf)
	host := &githubHostAdapter{client: githubClient}

	commentPoster := usecasegithub.NewCommentPoster(githubClient)
	poster := &githubPosterAdapter{poster: commentPoster}

	feedbackStore := feedback.NewFileStore(cfg.Review.FeedbackPath)

	var reviewLogger review.Logger = nopLogger{}
	if logger != nil {
		reviewLogger = observability.NewReviewLogger(logger)
	}

	orchestrator, err := review.NewOrchestrator(host, provider, poster, feedbackStore, reviewLogger)
	if err != nil {
		return fmt.Errorf("orchestrator setup failed: %w", err)
	}
	if cfg.Anthropic.MaxTokens > 0 {
		orchestrator.SetMaxTokens(cfg.Anthropic.MaxTokens)
	}
	if cfg.Review.MaxPromptTokens > 0 {
		orchestrator.SetPromptBudget(llm.EstimateTokens, cfg.Review.MaxPromptTokens)
	}

	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0o755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else if runStore, err := sqlite.NewStore(cfg.Store.Path); err != nil {
			log.Printf("warning: failed to initialize store: %v", err)
		} else {
			orchestrator.SetRunStore(runStore)
			defer runStore.Close()
		}
	}

	if cfg.Output.Directory != "" {
		nowFunc := func() string {
			return time.Now().UTC().Format("20060102T150405Z")
		}
		orchestrator.SetArtifactWriter(markdown.NewWriter(cfg.Output.Directory, nowFunc))
	}

	// CI hands over refs on some triggers; the compare API wants SHAs
	resolver := git.NewResolver(cfg.Git.RepositoryDir)
	baseSHA, headSHA := resolveRevisions(resolver, env.BaseRev, env.HeadRev)

	root := cli.NewRootCommand(cli.Dependencies{
		Reviewer: orchestrator,
		Request: review.RunRequest{
			Owner:      env.Owner,
			Repo:       env.Repo,
			PullNumber: env.PullNumber,
			BaseSHA:    baseSHA,
			HeadSHA:    headSHA,
			Policy:     policy,
		},
		Version: version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// environment holds the required execution environment values.
type environment struct {
	AnthropicAPIKey string
	GitHubToken     string
	Owner           string
	Repo            string
	PullNumber      int
	BaseRev         string
	HeadRev         string
}

// readEnvironment validates the required environment values. A missing
// value fails the whole run before any network call is made.
func readEnvironment(getenv func(string) string) (environment, error) {
	env := environment{
		AnthropicAPIKey: getenv("ANTHROPIC_API_KEY"),
		GitHubToken:     getenv("GITHUB_TOKEN"),
		BaseRev:         getenv("BASE_SHA"),
		HeadRev:         getenv("HEAD_SHA"),
	}

	var missing []string
	if env.AnthropicAPIKey == "" {
		missing = append(missing, "ANTHROPIC_API_KEY")
	}
	if env.GitHubToken == "" {
		missing = append(missing, "GITHUB_TOKEN")
	}
	repoName := getenv("REPO_NAME")
	if repoName == "" {
		missing = append(missing, "REPO_NAME")
	}
	prNumber := getenv("PR_NUMBER")
	if prNumber == "" {
		missing = append(missing, "PR_NUMBER")
	}
	if env.BaseRev == "" {
		missing = append(missing, "BASE_SHA")
	}
	if env.HeadRev == "" {
		missing = append(missing, "HEAD_SHA")
	}
	if len(missing) > 0 {
		return environment{}, fmt.Errorf("missing required environment values: %v", missing)
	}

	owner, repo, err := cli.SplitRepository(repoName)
	if err != nil {
		return environment{}, fmt.Errorf("REPO_NAME: %w", err)
	}
	env.Owner, env.Repo = owner, repo

	if _, err := fmt.Sscanf(prNumber, "%d", &env.PullNumber); err != nil || env.PullNumber <= 0 {
		return environment{}, fmt.Errorf("PR_NUMBER %q is not a positive integer", prNumber)
	}

	return env, nil
}

// resolveRevisions maps refs to SHAs via the local checkout. Resolution
// failures fall back to the raw value; the compare API accepts refs too
// when they are visible on the remote.
func resolveRevisions(resolver *git.Resolver, base, head string) (string, string) {
	baseSHA, err := resolver.Resolve(base)
	if err != nil {
		log.Printf("warning: could not resolve base %q locally: %v", base, err)
		baseSHA = base
	}
	headSHA, err := resolver.Resolve(head)
	if err != nil {
		log.Printf("warning: could not resolve head %q locally: %v", head, err)
		headSHA = head
	}
	return baseSHA, headSHA
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "dr"))
	}
	return paths
}

// buildLogger creates the shared structured logger, or nil when disabled.
func buildLogger(cfg config.LoggingConfig) llmhttp.Logger {
	if !cfg.Enabled {
		return nil
	}

	logLevel := llmhttp.LogLevelInfo
	switch cfg.Level {
	case "debug":
		logLevel = llmhttp.LogLevelDebug
	case "error":
		logLevel = llmhttp.LogLevelError
	}

	var logFormat llmhttp.LogFormat
	switch cfg.Format {
	case "json":
		logFormat = llmhttp.LogFormatJSON
	case "human":
		logFormat = llmhttp.LogFormatHuman
	default: // auto
		if review.IsOutputTerminal() {
			logFormat = llmhttp.LogFormatHuman
		} else {
			logFormat = llmhttp.LogFormatJSON
		}
	}

	return llmhttp.NewDefaultLogger(logLevel, logFormat, cfg.RedactAPIKeys)
}

func buildRetryConfig(cfg config.HTTPConfig) llmhttp.RetryConfig {
	conf := llmhttp.DefaultRetryConfig()
	if cfg.MaxRetries > 0 {
		conf.MaxRetries = cfg.MaxRetries
	}
	conf.InitialBackoff = parseDuration(cfg.InitialBackoff, conf.InitialBackoff)
	conf.MaxBackoff = parseDuration(cfg.MaxBackoff, conf.MaxBackoff)
	if cfg.BackoffMultiplier > 0 {
		conf.Multiplier = cfg.BackoffMultiplier
	}
	return conf
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("warning: invalid duration %q, using %s", value, fallback)
		return fallback
	}
	return parsed
}

// githubHostAdapter bridges the GitHub client to the review.Host port.
type githubHostAdapter struct {
	client *githubadapter.Client
}

func (a *githubHostAdapter) CompareCommits(ctx context.Context, owner, repo, base, head string) ([]domain.ChangedFile, error) {
	compared, err := a.client.CompareCommits(ctx, owner, repo, base, head)
	if err != nil {
		return nil, err
	}
	files := make([]domain.ChangedFile, 0, len(compared.Files))
	for _, f := range compared.Files {
		files = append(files, domain.ChangedFile{
			Path:   f.Filename,
			Status: f.Status,
			Patch:  f.Patch,
		})
	}
	return files, nil
}

func (a *githubHostAdapter) FileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	return a.client.FileContent(ctx, owner, repo, path, ref)
}

func (a *githubHostAdapter) ListReviewComments(ctx context.Context, owner, repo string, pullNumber int) ([]domain.ReviewComment, error) {
	comments, err := a.client.ListPullComments(ctx, owner, repo, pullNumber)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ReviewComment, 0, len(comments))
	for _, c := range comments {
		out = append(out, domain.ReviewComment{
			ID:     c.ID,
			Body:   c.Body,
			Author: c.User.Login,
		})
	}
	return out, nil
}

// githubPosterAdapter bridges the comment poster use case to the
// review.CommentPoster port.
type githubPosterAdapter struct {
	poster *usecasegithub.CommentPoster
}

func (a *githubPosterAdapter) PostIssues(ctx context.Context, req review.PostIssuesRequest) review.PostIssuesResult {
	out := a.poster.PostIssues(ctx, usecasegithub.PostIssuesInput{
		Owner:     req.Owner,
		Repo:      req.Repo,
		CommitSHA: req.CommitSHA,
		Path:      req.Path,
		Issues:    req.Issues,
		MaxIssues: req.MaxIssues,
	})
	return review.PostIssuesResult{Posted: out.Posted, Failed: out.Failed}
}

func (a *githubPosterAdapter) PostSummary(ctx context.Context, owner, repo string, pullNumber int, body string) error {
	return a.poster.PostSummary(ctx, owner, repo, pullNumber, body)
}

// nopLogger satisfies review.Logger when logging is disabled.
type nopLogger struct{}

func (nopLogger) LogInfo(context.Context, string, map[string]interface{})    {}
func (nopLogger) LogWarning(context.Context, string, map[string]interface{}) {}
