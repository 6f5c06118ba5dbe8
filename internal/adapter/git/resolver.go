// Package git resolves revision identifiers against a local checkout.
package git

import (
	"fmt"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Resolver turns revision identifiers (branch names, tags, abbreviated
// hashes) into full commit SHAs using the local checkout. CI environments
// sometimes hand over refs rather than SHAs; the compare API wants SHAs.
type Resolver struct {
	repoDir string
}

// NewResolver constructs a resolver for the provided repository directory.
func NewResolver(repoDir string) *Resolver {
	return &Resolver{repoDir: repoDir}
}

// Resolve returns the full commit SHA for rev. A value that already looks
// like a full SHA is returned unchanged without opening the repository.
func (r *Resolver) Resolve(rev string) (string, error) {
	if isFullSHA(rev) {
		return rev, nil
	}

	repo, err := goGit.PlainOpenWithOptions(r.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("open repo: %w", err)
	}

	candidates := []string{
		rev,
		fmt.Sprintf("refs/heads/%s", rev),
		fmt.Sprintf("refs/remotes/origin/%s", rev),
	}

	var lastErr error
	for _, candidate := range candidates {
		hash, err := repo.ResolveRevision(plumbing.Revision(candidate))
		if err != nil {
			lastErr = err
			continue
		}
		return hash.String(), nil
	}
	return "", fmt.Errorf("unable to resolve ref %s: %w", rev, lastErr)
}

func isFullSHA(rev string) bool {
	if len(rev) != 40 {
		return false
	}
	for _, c := range rev {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
