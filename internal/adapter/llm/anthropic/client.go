package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	llmhttp "github.com/bkyoung/doc-reviewer/internal/adapter/llm/http"
)

const (
	defaultBaseURL          = "https://api.anthropic.com"
	defaultTimeout          = 60 * time.Second
	defaultAnthropicVersion = "2023-06-01"
)

// HTTPClient is an HTTP client for the Anthropic API.
type HTTPClient struct {
	apiKey    string
	model     string
	baseURL   string
	client    *http.Client
	retryConf llmhttp.RetryConfig
	logger    llmhttp.Logger
}

// NewHTTPClient creates a new Anthropic HTTP client.
func NewHTTPClient(apiKey, model string) *HTTPClient {
	return &HTTPClient{
		apiKey:    apiKey,
		model:     model,
		baseURL:   defaultBaseURL,
		client:    &http.Client{Timeout: defaultTimeout},
		retryConf: llmhttp.DefaultRetryConfig(),
	}
}

// SetBaseURL sets a custom base URL (for testing).
func (c *HTTPClient) SetBaseURL(url string) {
	c.baseURL = url
}

// SetTimeout sets the HTTP timeout.
func (c *HTTPClient) SetTimeout(timeout time.Duration) {
	c.client.Timeout = timeout
}

// SetRetryConfig overrides the retry behavior.
func (c *HTTPClient) SetRetryConfig(conf llmhttp.RetryConfig) {
	c.retryConf = conf
}

// SetLogger wires a structured logger for request/response logging.
func (c *HTTPClient) SetLogger(logger llmhttp.Logger) {
	c.logger = logger
}

// CallOptions contains options for the API call.
type CallOptions struct {
	MaxTokens int
	System    string
}

// APIResponse represents the parsed response from the API.
type APIResponse struct {
	Text       string
	TokensIn   int
	TokensOut  int
	Model      string
	StopReason string
}

// Call makes a request to the Anthropic Messages API and returns the
// concatenated text blocks of the reply.
func (c *HTTPClient) Call(ctx context.Context, prompt string, options CallOptions) (*APIResponse, error) {
	reqBody := MessagesRequest{
		Model: c.model,
		Messages: []Message{
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens: options.MaxTokens,
	}
	if options.System != "" {
		reqBody.System = options.System
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/v1/messages"
	started := time.Now()

	if c.logger != nil {
		c.logger.LogRequest(ctx, llmhttp.RequestLog{
			Provider:    providerName,
			Model:       c.model,
			Timestamp:   started,
			PromptChars: len(prompt),
			APIKey:      c.apiKey,
		})
	}

	var resp *http.Response
	err = llmhttp.RetryWithBackoff(ctx, func(ctx context.Context) error {
		req, reqErr := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
		if reqErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeUnknown,
				Message:   reqErr.Error(),
				Retryable: false,
				Provider:  providerName,
			}
		}

		// Anthropic uses x-api-key instead of Authorization
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", defaultAnthropicVersion)

		var callErr error
		resp, callErr = c.client.Do(req)
		if callErr != nil {
			return &llmhttp.Error{
				Type:      llmhttp.ErrTypeTimeout,
				Message:   callErr.Error(),
				Retryable: true,
				Provider:  providerName,
			}
		}

		if resp.StatusCode >= 400 {
			bodyBytes, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return c.handleErrorResponse(resp.StatusCode, bodyBytes)
		}

		return nil
	}, c.retryConf)

	if err != nil {
		if c.logger != nil {
			c.logger.LogError(ctx, llmhttp.ErrorLog{
				Provider:  providerName,
				Model:     c.model,
				Timestamp: time.Now(),
				Duration:  time.Since(started),
				Error:     err,
			})
		}
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var messagesResp MessagesResponse
	if err := json.Unmarshal(bodyBytes, &messagesResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(messagesResp.Content) == 0 {
		return nil, fmt.Errorf("no content in response")
	}

	var textParts []string
	for _, block := range messagesResp.Content {
		if block.Type == "text" {
			textParts = append(textParts, block.Text)
		}
	}

	if c.logger != nil {
		c.logger.LogResponse(ctx, llmhttp.ResponseLog{
			Provider:   providerName,
			Model:      messagesResp.Model,
			Timestamp:  time.Now(),
			Duration:   time.Since(started),
			TokensIn:   messagesResp.Usage.InputTokens,
			TokensOut:  messagesResp.Usage.OutputTokens,
			StatusCode: resp.StatusCode,
			StopReason: messagesResp.StopReason,
		})
	}

	return &APIResponse{
		Text:       strings.Join(textParts, ""),
		TokensIn:   messagesResp.Usage.InputTokens,
		TokensOut:  messagesResp.Usage.OutputTokens,
		Model:      messagesResp.Model,
		StopReason: messagesResp.StopReason,
	}, nil
}

// handleErrorResponse maps HTTP status codes to typed errors.
func (c *HTTPClient) handleErrorResponse(statusCode int, body []byte) error {
	var errResp ErrorResponse
	message := fmt.Sprintf("HTTP %d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
	}

	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeAuthentication,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Provider:   providerName,
		}
	case http.StatusTooManyRequests:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeRateLimit,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Provider:   providerName,
		}
	case http.StatusBadRequest:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeInvalidRequest,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Provider:   providerName,
		}
	case 529: // Anthropic-specific: overloaded
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Provider:   providerName,
		}
	case http.StatusServiceUnavailable, http.StatusInternalServerError:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeServiceUnavailable,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  true,
			Provider:   providerName,
		}
	default:
		return &llmhttp.Error{
			Type:       llmhttp.ErrTypeUnknown,
			Message:    message,
			StatusCode: statusCode,
			Retryable:  false,
			Provider:   providerName,
		}
	}
}
