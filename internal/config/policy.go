package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Policy is the repo-local review policy, persisted as JSON alongside the
// GitHub Actions workflow. It is loaded once per run and never mutated.
type Policy struct {
	EnabledChecks    []string `mapstructure:"enabled_checks"`
	ExcludePatterns  []string `mapstructure:"exclude_patterns"`
	MaxIssuesPerFile int      `mapstructure:"max_issues_per_file"`
}

// DefaultPolicy returns the built-in policy used when no policy file exists.
func DefaultPolicy() Policy {
	return Policy{
		EnabledChecks: []string{
			"grammar",
			"spelling",
			"style_guide",
			"mdx_syntax",
			"frontmatter",
			"code_blocks",
			"internal_links",
		},
		ExcludePatterns:  []string{"**/reference/**", "**/node_modules/**"},
		MaxIssuesPerFile: 20,
	}
}

// LoadPolicy reads the policy file at path. A missing file yields the
// default policy; an unreadable or malformed file is an error.
func LoadPolicy(path string) (Policy, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultPolicy(), nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return Policy{}, fmt.Errorf("read policy %s: %w", path, err)
	}

	policy := DefaultPolicy()
	if err := v.Unmarshal(&policy); err != nil {
		return Policy{}, fmt.Errorf("unmarshal policy %s: %w", path, err)
	}

	if policy.MaxIssuesPerFile <= 0 {
		return Policy{}, fmt.Errorf("policy %s: max_issues_per_file must be positive", path)
	}

	return policy, nil
}
