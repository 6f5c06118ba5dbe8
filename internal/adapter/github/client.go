package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	llmhttp "github.com/bkyoung/doc-reviewer/internal/adapter/llm/http"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultTimeout = 30 * time.Second
)

// Client is an HTTP client for the slice of the GitHub REST API this tool
// consumes: commit comparison, file contents, and commenting.
type Client struct {
	token      string
	baseURL    string
	httpClient *http.Client
	retryConf  llmhttp.RetryConfig
}

// NewClient creates a new GitHub API client with the given token.
// The token should be a GitHub personal access token or GITHUB_TOKEN from Actions.
func NewClient(token string) *Client {
	return &Client{
		token:      token,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		retryConf:  llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *Client) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *Client) SetTimeout(timeout time.Duration) {
	c.httpClient.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior.
func (c *Client) SetRetryConfig(conf llmhttp.RetryConfig) {
	c.retryConf = conf
}

// CompareCommits fetches the files changed between base and head.
func (c *Client) CompareCommits(ctx context.Context, owner, repo, base, head string) (*CompareResponse, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/compare/%s...%s",
		c.baseURL, owner, repo, base, head)

	var compared CompareResponse
	if err := c.getJSON(ctx, endpoint, &compared); err != nil {
		return nil, err
	}
	return &compared, nil
}

// FileContent fetches the decoded content of a file at the given ref.
func (c *Client) FileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/contents/%s?ref=%s",
		c.baseURL, owner, repo, path, url.QueryEscape(ref))

	var contents ContentsResponse
	if err := c.getJSON(ctx, endpoint, &contents); err != nil {
		return "", err
	}

	if contents.Encoding != "base64" {
		return contents.Content, nil
	}
	// GitHub wraps base64 content at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(contents.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode content of %s: %w", path, err)
	}
	return string(decoded), nil
}

// CreateCommitComment posts a comment on a specific line of a commit.
func (c *Client) CreateCommitComment(ctx context.Context, owner, repo, sha string, comment CommitCommentRequest) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s/comments",
		c.baseURL, owner, repo, sha)
	return c.postJSON(ctx, endpoint, comment, nil)
}

// CreateIssueComment posts a plain comment on a pull request.
func (c *Client) CreateIssueComment(ctx context.Context, owner, repo string, pullNumber int, body string) error {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/issues/%d/comments",
		c.baseURL, owner, repo, pullNumber)
	return c.postJSON(ctx, endpoint, IssueCommentRequest{Body: body}, nil)
}

// ListPullComments fetches review comments on a pull request.
func (c *Client) ListPullComments(ctx context.Context, owner, repo string, pullNumber int) ([]PullComment, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/pulls/%d/comments",
		c.baseURL, owner, repo, pullNumber)

	var comments []PullComment
	if err := c.getJSON(ctx, endpoint, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	return c.execute(ctx, http.MethodGet, endpoint, nil, out)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, payload, out interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.execute(ctx, http.MethodPost, endpoint, jsonData, out)
}

// execute runs one API call inside the retry wrapper, mapping error
// responses to typed errors so retry decisions stay centralized.
func (c *Client) execute(ctx context.Context, method, endpoint string, body []byte, out interface{}) error {
	var resp *http.Response
	err := llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, reqErr := http.NewRequestWithContext(ctx, method, endpoint, reader)
		if reqErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Provider:  providerName,
			}
		}

		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		var callErr error
		resp, callErr = c.httpClient.Do(req)
		if callErr != nil {
			// Could be timeout or network error
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Provider:  providerName,
			}
		}

		if resp.StatusCode >= 400 {
			bodyBytes, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				return &llmhttp.Error{
					Type:       llmhttp.ErrTypeUnknown,
					Message:    fmt.Sprintf("HTTP %d (failed to read response: %v)", resp.StatusCode, readErr),
					StatusCode: resp.StatusCode,
					Retryable:  resp.StatusCode >= 500,
					Provider:   providerName,
				}
			}
			return MapHTTPError(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
