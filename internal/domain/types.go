package domain

// Issue severities assigned by the reviewer.
const (
	SeverityCritical = "critical"
	SeverityMajor    = "major"
	SeverityMinor    = "minor"
)

// File statuses reported by the revision comparison.
const (
	FileStatusAdded    = "added"
	FileStatusModified = "modified"
	FileStatusRemoved  = "removed"
	FileStatusRenamed  = "renamed"
)

// ChangedFile is a single entry from comparing the base and head revisions.
type ChangedFile struct {
	Path   string
	Status string
	Patch  string
}

// ReviewTask captures everything the reviewer needs for one file.
// One task per eligible changed file, discarded after producing a result.
type ReviewTask struct {
	Path    string
	Diff    string
	Content string
}

// Issue is a single problem the reviewer reported for one file.
type Issue struct {
	Line       int    `json:"line"`
	Severity   string `json:"severity"`
	Category   string `json:"category"`
	Issue      string `json:"issue"`
	Suggestion string `json:"suggestion"`
}

// ReviewResult is the reviewer's structured reply for one file.
type ReviewResult struct {
	Issues  []Issue `json:"issues"`
	Summary string  `json:"summary"`
}

// SeverityCounts tallies issues by severity. Unknown severities are
// counted as minor, matching how they are rendered in comments.
func (r ReviewResult) SeverityCounts() (critical, major, minor int) {
	for _, issue := range r.Issues {
		switch issue.Severity {
		case SeverityCritical:
			critical++
		case SeverityMajor:
			major++
		default:
			minor++
		}
	}
	return critical, major, minor
}

// FileResult pairs a reviewed path with its result. The run-level summary
// aggregates these in file enumeration order.
type FileResult struct {
	Path   string
	Result ReviewResult
}

// TotalIssues sums issue counts across file results.
func TotalIssues(results []FileResult) int {
	total := 0
	for _, fr := range results {
		total += len(fr.Result.Issues)
	}
	return total
}

// ReviewComment is a review comment previously posted on the pull request,
// as returned by the source host.
type ReviewComment struct {
	ID     int64
	Body   string
	Author string
}
