package review

import (
	"fmt"
	"strings"

	"github.com/bkyoung/doc-reviewer/internal/domain"
)

const reviewCoverageList = `- Grammar and spelling (American English)
- Google Developer Documentation Style Guide adherence
- MDX/Mintlify syntax
- Frontmatter completeness
- Code block formatting and language tags
- Internal link formats
- Image alt text`

const allClearSummary = `## ✅ AI Documentation Review Complete

All changed documentation files look good! No issues found.

The review checked for:
` + reviewCoverageList + "\n"

// BuildSummary renders the run-level comment posted on the pull request.
// Files appear in the order they were reviewed; the headline counts only
// files that had issues.
func BuildSummary(results []domain.FileResult) string {
	total := domain.TotalIssues(results)
	if total == 0 {
		return allClearSummary
	}

	filesWithIssues := 0
	for _, fr := range results {
		if len(fr.Result.Issues) > 0 {
			filesWithIssues++
		}
	}

	var b strings.Builder
	b.WriteString("## 📝 AI Documentation Review Complete\n\n")
	fmt.Fprintf(&b, "Found **%d issue(s)** across **%d file(s)**.\n\n", total, filesWithIssues)
	b.WriteString("### Files Reviewed\n")

	for _, fr := range results {
		if len(fr.Result.Issues) == 0 {
			fmt.Fprintf(&b, "\n- `%s`: ✓ No issues", fr.Path)
			continue
		}
		critical, major, minor := fr.Result.SeverityCounts()
		fmt.Fprintf(&b, "\n- `%s`: %d critical, %d major, %d minor",
			fr.Path, critical, major, minor)
	}

	b.WriteString("\n\n### Review Coverage\nThe review checked for:\n")
	b.WriteString(reviewCoverageList)
	b.WriteString("\n\n---\n*This review only covers changed lines, not pre-existing content.*\n")

	return b.String()
}
