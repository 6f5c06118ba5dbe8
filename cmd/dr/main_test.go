package main

import (
	"strings"
	"testing"
	"time"

	"github.com/bkyoung/doc-reviewer/internal/config"
	llmhttp "github.com/bkyoung/doc-reviewer/internal/adapter/llm/http"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string { return values[key] }
}

func completeEnv() map[string]string {
	return map[string]string{
		"ANTHROPIC_API_KEY": "sk-ant-test",
		"GITHUB_TOKEN":      "ghp_test",
		"REPO_NAME":         "acme/docs",
		"PR_NUMBER":         "42",
		"BASE_SHA":          "base",
		"HEAD_SHA":          "head",
	}
}

func TestReadEnvironment(t *testing.T) {
	env, err := readEnvironment(envMap(completeEnv()))
	if err != nil {
		t.Fatalf("readEnvironment returned error: %v", err)
	}

	if env.Owner != "acme" || env.Repo != "docs" {
		t.Errorf("unexpected repository: %s/%s", env.Owner, env.Repo)
	}
	if env.PullNumber != 42 {
		t.Errorf("unexpected pull number: %d", env.PullNumber)
	}
	if env.BaseRev != "base" || env.HeadRev != "head" {
		t.Errorf("unexpected revisions: %s %s", env.BaseRev, env.HeadRev)
	}
}

func TestReadEnvironment_MissingValues(t *testing.T) {
	required := []string{"ANTHROPIC_API_KEY", "GITHUB_TOKEN", "REPO_NAME", "PR_NUMBER", "BASE_SHA", "HEAD_SHA"}
	for _, key := range required {
		t.Run(key, func(t *testing.T) {
			values := completeEnv()
			delete(values, key)

			_, err := readEnvironment(envMap(values))
			if err == nil {
				t.Fatalf("expected error when %s is missing", key)
			}
			if !strings.Contains(err.Error(), key) {
				t.Errorf("error %q does not name %s", err, key)
			}
		})
	}
}

func TestReadEnvironment_BadRepoName(t *testing.T) {
	values := completeEnv()
	values["REPO_NAME"] = "no-slash"

	if _, err := readEnvironment(envMap(values)); err == nil {
		t.Fatal("expected error for repository without owner")
	}
}

func TestReadEnvironment_BadPRNumber(t *testing.T) {
	for _, bad := range []string{"abc", "-1", "0"} {
		values := completeEnv()
		values["PR_NUMBER"] = bad

		if _, err := readEnvironment(envMap(values)); err == nil {
			t.Errorf("expected error for PR_NUMBER=%q", bad)
		}
	}
}

func TestBuildRetryConfig_Defaults(t *testing.T) {
	conf := buildRetryConfig(config.HTTPConfig{})

	if conf.MaxRetries != 0 {
		t.Errorf("expected zero retries by default, got %d", conf.MaxRetries)
	}
}

func TestBuildRetryConfig_Overrides(t *testing.T) {
	conf := buildRetryConfig(config.HTTPConfig{
		MaxRetries:        3,
		InitialBackoff:    "1s",
		MaxBackoff:        "10s",
		BackoffMultiplier: 1.5,
	})

	if conf.MaxRetries != 3 {
		t.Errorf("MaxRetries = %d, want 3", conf.MaxRetries)
	}
	if conf.InitialBackoff != time.Second {
		t.Errorf("InitialBackoff = %s, want 1s", conf.InitialBackoff)
	}
	if conf.MaxBackoff != 10*time.Second {
		t.Errorf("MaxBackoff = %s, want 10s", conf.MaxBackoff)
	}
	if conf.Multiplier != 1.5 {
		t.Errorf("Multiplier = %v, want 1.5", conf.Multiplier)
	}
}

func TestParseDuration(t *testing.T) {
	if got := parseDuration("", 5*time.Second); got != 5*time.Second {
		t.Errorf("empty value should use fallback, got %s", got)
	}
	if got := parseDuration("nonsense", 5*time.Second); got != 5*time.Second {
		t.Errorf("invalid value should use fallback, got %s", got)
	}
	if got := parseDuration("90s", 5*time.Second); got != 90*time.Second {
		t.Errorf("parseDuration(90s) = %s", got)
	}
}

func TestBuildLogger(t *testing.T) {
	if buildLogger(config.LoggingConfig{Enabled: false}) != nil {
		t.Error("disabled logging should produce a nil logger")
	}

	logger := buildLogger(config.LoggingConfig{Enabled: true, Level: "debug", Format: "json"})
	if logger == nil {
		t.Fatal("enabled logging should produce a logger")
	}
	if _, ok := logger.(*llmhttp.DefaultLogger); !ok {
		t.Errorf("unexpected logger type %T", logger)
	}
}
