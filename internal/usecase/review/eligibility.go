package review

import (
	"fmt"
	"regexp"
	"strings"
)

// Documentation file extensions eligible for review.
var docExtensions = []string{".md", ".mdx"}

// Filter decides which changed files are eligible for review.
// A file is eligible when its path ends in a documentation extension and
// matches none of the exclude patterns.
type Filter struct {
	patterns []*regexp.Regexp
}

// NewFilter compiles the exclude patterns. Glob syntax: `**` matches any
// sequence of path segments, `*` matches within a single segment, and
// patterns are anchored at the start of the path.
func NewFilter(excludePatterns []string) (*Filter, error) {
	patterns := make([]*regexp.Regexp, 0, len(excludePatterns))
	for _, pattern := range excludePatterns {
		re, err := compilePattern(pattern)
		if err != nil {
			return nil, fmt.Errorf("exclude pattern %q: %w", pattern, err)
		}
		patterns = append(patterns, re)
	}
	return &Filter{patterns: patterns}, nil
}

// ShouldReview reports whether the file at path is eligible.
func (f *Filter) ShouldReview(path string) bool {
	if !hasDocExtension(path) {
		return false
	}
	for _, re := range f.patterns {
		if re.MatchString(path) {
			return false
		}
	}
	return true
}

func hasDocExtension(path string) bool {
	for _, ext := range docExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// compilePattern translates an exclude glob into an anchored regexp.
// Quoting first keeps literal dots literal; the quoted wildcards are then
// rewritten, widest first so `**` is not consumed by the `*` rewrite.
func compilePattern(pattern string) (*regexp.Regexp, error) {
	quoted := regexp.QuoteMeta(pattern)
	quoted = strings.ReplaceAll(quoted, `\*\*`, `.*`)
	quoted = strings.ReplaceAll(quoted, `\*`, `[^/]*`)
	return regexp.Compile("^" + quoted)
}
