package config

// Config represents the full application configuration.
type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Anthropic     AnthropicConfig     `yaml:"anthropic"`
	Review        ReviewConfig        `yaml:"review"`
	Git           GitConfig           `yaml:"git"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// HTTPConfig holds shared HTTP client settings.
// MaxRetries defaults to zero: a CI review run does not retry failed
// network calls unless explicitly configured to.
type HTTPConfig struct {
	Timeout           string  `yaml:"timeout"`
	MaxRetries        int     `yaml:"maxRetries"`
	InitialBackoff    string  `yaml:"initialBackoff"`
	MaxBackoff        string  `yaml:"maxBackoff"`
	BackoffMultiplier float64 `yaml:"backoffMultiplier"`
}

// AnthropicConfig configures the LLM reviewer.
type AnthropicConfig struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"maxTokens"`

	// SystemPrompt is prepended to every review request when set.
	SystemPrompt string `yaml:"systemPrompt"`
}

// ReviewConfig configures review behavior beyond the repo-local policy file.
type ReviewConfig struct {
	// PolicyPath is the repo-local review policy JSON file.
	PolicyPath string `yaml:"policyPath"`

	// FeedbackPath is the persisted feedback state JSON file.
	FeedbackPath string `yaml:"feedbackPath"`

	// MaxPromptTokens caps the estimated prompt size per file.
	// Files whose prompt exceeds the cap are skipped with a log line.
	// Zero disables the cap.
	MaxPromptTokens int `yaml:"maxPromptTokens"`
}

// GitConfig points at the local checkout used for revision resolution.
type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
}

// OutputConfig configures the run artifact directory.
// Empty disables artifact writing.
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// StoreConfig configures the run-history persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures request/response logging.
type LoggingConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Level         string `yaml:"level"`  // debug, info, error
	Format        string `yaml:"format"` // json, human, or auto (human on a terminal)
	RedactAPIKeys bool   `yaml:"redactAPIKeys"`
}
