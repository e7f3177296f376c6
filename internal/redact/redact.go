// Package redact removes sensitive information from strings before they are
// logged or returned in error responses. Upstream errors from the push
// service and the database can carry API keys, authorization headers,
// subscription identifiers and connection strings; none of those may leak.
package redact

import "regexp"

// Redaction placeholders.
const (
	RedactionPlaceholder          = "[REDACTED]"
	RedactedAuthPlaceholder       = "[REDACTED_AUTH]"
	RedactedCredentialPlaceholder = "[REDACTED_CREDENTIAL]"
	RedactedKeyPlaceholder        = "[REDACTED_KEY]"
	RedactedIDPlaceholder         = "[REDACTED_ID]"
	RedactedURLPlaceholder        = "[REDACTED_URL]"
	RedactedPathPlaceholder       = "[REDACTED_PATH]"
	RedactedEmailPlaceholder      = "[REDACTED_EMAIL]"
)

type rule struct {
	pattern     *regexp.Regexp
	placeholder string
}

// rules are applied in order. Connection strings and URLs go before paths
// so that a URL is replaced whole rather than piecemeal.
var rules = []rule{
	{
		regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb)://[^\s"']+`),
		RedactedCredentialPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)authorization:?\s*(key|basic|bearer)\s+[A-Za-z0-9_\-.~+/=]+`),
		RedactedAuthPlaceholder,
	},
	{
		regexp.MustCompile(`(?i)(api[_-]?key|rest[_-]?key|app[_-]?key|token|secret|password)(['"\s:=]+)[A-Za-z0-9_\-.~+/=]{6,}`),
		RedactedKeyPlaceholder,
	},
	{
		regexp.MustCompile(`https?://[^\s"']+`),
		RedactedURLPlaceholder,
	},
	{
		regexp.MustCompile(`\b[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\b`),
		RedactedIDPlaceholder,
	},
	{
		regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`),
		RedactedEmailPlaceholder,
	},
	{
		regexp.MustCompile(`(/[\w.-]+){2,}`),
		RedactedPathPlaceholder,
	},
	{
		regexp.MustCompile(`(?:goroutine \d+|panic:)[\s\S]*?(\n\t.*)+`),
		"[STACK_TRACE_REDACTED]",
	},
}

// String redacts sensitive information from the input string.
func String(input string) string {
	if input == "" {
		return input
	}

	result := input
	for _, r := range rules {
		result = r.pattern.ReplaceAllString(result, r.placeholder)
	}
	return result
}

// Error redacts sensitive information from an error's Error() output.
func Error(err error) string {
	if err == nil {
		return ""
	}
	return String(err.Error())
}
