package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var errNoJSON = errors.New("no JSON object or array in response")

// ExtractJSON pulls the first balanced JSON object or array out of model
// text. Markdown code fences and surrounding prose are ignored.
func ExtractJSON(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(stripFences(text))
	if json.Valid([]byte(text)) && (strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[")) {
		return json.RawMessage(text), nil
	}

	start := strings.IndexAny(text, "{[")
	for start >= 0 {
		if end := matchClose(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}
		next := strings.IndexAny(text[start+1:], "{[")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, errNoJSON
}

func stripFences(text string) string {
	i := strings.Index(text, "```")
	if i < 0 {
		return text
	}
	rest := text[i+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if j := strings.Index(rest, "```"); j >= 0 {
		rest = rest[:j]
	}
	return rest
}

// matchClose returns the index of the bracket closing text[start], honoring
// JSON string escapes, or -1.
func matchClose(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// finishContent turns raw model text into Response content: extracted and
// validated JSON when a schema was requested, a JSON string otherwise.
func finishContent(schema *Schema, text string) (json.RawMessage, error) {
	if schema == nil {
		b, err := json.Marshal(text)
		if err != nil {
			return nil, fmt.Errorf("encode text response: %w", err)
		}
		return b, nil
	}

	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, &ErrInvalidResponse{Content: json.RawMessage(text), Err: err}
	}
	if err := validateResponse(schema, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
