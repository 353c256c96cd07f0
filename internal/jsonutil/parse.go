// Package jsonutil parses JSON out of model responses that may be wrapped in
// markdown code fences or surrounded by prose. The text channel from the
// model is only semi-trusted: the system prompt demands a bare JSON object,
// but models routinely fence their output anyway, so parsing is preceded by
// an explicit normalization step.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences removes a leading ``` or ```lang fence line and, when
// present, the matching closing ``` line. Text without a leading fence is
// returned unchanged (after trimming surrounding whitespace). A fence that is
// never closed loses only the opening line; the remainder is kept so a
// truncated-but-parseable payload still gets a chance at the JSON decoder.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	lines := strings.Split(text, "\n")
	if len(lines) < 2 {
		return text
	}

	// Drop the opening fence line (```, ```json, etc.).
	body := lines[1:]

	// Drop the closing fence line if one exists.
	for i := len(body) - 1; i >= 0; i-- {
		if strings.TrimSpace(body[i]) == "```" {
			body = body[:i]
			break
		}
	}

	return strings.TrimSpace(strings.Join(body, "\n"))
}

// ExtractObject returns the JSON object embedded in text, tolerating prose
// before the first { and after the last }. It fails when no braces are found.
func ExtractObject(text string) (string, error) {
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return "", fmt.Errorf("no JSON object found")
	}
	end := strings.LastIndex(text, "}")
	if end == -1 || end < start {
		return "", fmt.Errorf("no closing } found")
	}

	return text[start : end+1], nil
}

// Parse normalizes raw model output (fence strip + object extraction) and
// unmarshals it into T.
func Parse[T any](raw string) (T, error) {
	var result T

	text := StripMarkdownFences(raw)
	jsonStr, err := ExtractObject(text)
	if err != nil {
		return result, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("invalid JSON: %w", err)
	}
	return result, nil
}
