package http

import (
	"fmt"
	"regexp"
)

const (
	// MaxLoggedResponseLength is the maximum length of response text to include in logs.
	// Responses longer than this are truncated to prevent logging sensitive data.
	MaxLoggedResponseLength = 200
)

// TruncateForLogging safely truncates a response string for logging purposes.
// Returns the first MaxLoggedResponseLength characters plus a truncation
// indicator if truncated.
func TruncateForLogging(response string) string {
	if len(response) <= MaxLoggedResponseLength {
		return response
	}
	return response[:MaxLoggedResponseLength] + fmt.Sprintf("... [truncated, total length=%d bytes]", len(response))
}

// RedactURLSecrets redacts API keys and other secrets from URLs in error
// messages. This prevents credentials from being exposed when URLs with
// query parameters appear in error messages or logs.
//
// Example:
//
//	input:  "https://api.example.com/endpoint?key=secret123&foo=bar"
//	output: "https://api.example.com/endpoint?key=[REDACTED]&foo=bar"
func RedactURLSecrets(text string) string {
	if text == "" {
		return text
	}

	patterns := []string{
		`key=([^&"\s]+)`,
		`apiKey=([^&"\s]+)`,
		`api_key=([^&"\s]+)`,
		`token=([^&"\s]+)`,
		`access_token=([^&"\s]+)`,
	}

	result := text
	for _, pattern := range patterns {
		re := regexp.MustCompile(pattern)
		result = re.ReplaceAllStringFunc(result, func(match string) string {
			idx := regexp.MustCompile(`=`).FindStringIndex(match)
			if idx == nil {
				return match
			}
			return match[:idx[1]] + "[REDACTED]"
		})
	}

	return result
}
