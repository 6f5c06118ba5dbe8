// Package cli wires the cobra command surface for the doc reviewer.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bkyoung/doc-reviewer/internal/usecase/review"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// PullRequestReviewer defines the dependency required to run the review command.
type PullRequestReviewer interface {
	Run(ctx context.Context, req review.RunRequest) (review.RunResult, error)
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Reviewer PullRequestReviewer

	// Request carries the environment-derived defaults; flags may
	// override the repository and revision fields.
	Request review.RunRequest

	Args    Arguments
	Version string
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "dr",
		Short: "AI documentation review for pull requests",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(reviewCommand(deps.Reviewer, deps.Request))

	var showVersion bool
	root.PersistentFlags().BoolVarP(&showVersion, "version", "v", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func reviewCommand(reviewer PullRequestReviewer, defaults review.RunRequest) *cobra.Command {
	var repository string
	var pullNumber int
	var baseSHA string
	var headSHA string

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review the documentation changes of a pull request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := defaults
			if repository != "" {
				owner, repo, err := SplitRepository(repository)
				if err != nil {
					return err
				}
				req.Owner, req.Repo = owner, repo
			}
			if pullNumber > 0 {
				req.PullNumber = pullNumber
			}
			if baseSHA != "" {
				req.BaseSHA = baseSHA
			}
			if headSHA != "" {
				req.HeadSHA = headSHA
			}

			if req.Owner == "" || req.Repo == "" {
				return fmt.Errorf("repository not specified; set REPO_NAME or pass --repo owner/name")
			}
			if req.PullNumber <= 0 {
				return fmt.Errorf("pull request number not specified; set PR_NUMBER or pass --pr-number")
			}
			if req.BaseSHA == "" || req.HeadSHA == "" {
				return fmt.Errorf("revision range not specified; set BASE_SHA and HEAD_SHA or pass --base and --head")
			}

			result, err := reviewer.Run(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.NothingToReview {
				fmt.Fprintln(out, "No documentation files to review.")
				return nil
			}
			fmt.Fprintf(out, "Reviewed %d file(s), found %d issue(s), posted %d comment(s).\n",
				result.FilesReviewed, result.TotalIssues, result.CommentsPosted)
			if result.CommentsFailed > 0 {
				fmt.Fprintf(out, "%d comment(s) failed to post.\n", result.CommentsFailed)
			}
			if result.ArtifactPath != "" {
				fmt.Fprintf(out, "Report written to %s\n", result.ArtifactPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repository, "repo", "", "Repository as owner/name (defaults to REPO_NAME)")
	cmd.Flags().IntVar(&pullNumber, "pr-number", 0, "Pull request number (defaults to PR_NUMBER)")
	cmd.Flags().StringVar(&baseSHA, "base", "", "Base revision (defaults to BASE_SHA)")
	cmd.Flags().StringVar(&headSHA, "head", "", "Head revision (defaults to HEAD_SHA)")

	return cmd
}

// SplitRepository splits an owner/name identifier into its parts.
func SplitRepository(full string) (owner, repo string, err error) {
	parts := strings.SplitN(full, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("repository %q is not in owner/name form", full)
	}
	return parts[0], parts[1], nil
}
