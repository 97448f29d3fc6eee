package classify

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseResponse extracts a Classification from raw model output. Models wrap
// JSON in markdown fences or surround it with prose often enough that the
// parser strips fences first and then falls back to the first balanced JSON
// object anywhere in the text.
func ParseResponse(raw string) (Classification, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Classification{}, fmt.Errorf("empty classifier response")
	}

	text = stripFences(text)

	var c Classification
	if err := json.Unmarshal([]byte(text), &c); err == nil {
		return withDefaults(c), nil
	}

	obj, ok := firstJSONObject(text)
	if !ok {
		return Classification{}, fmt.Errorf("no JSON object in classifier response")
	}
	if err := json.Unmarshal([]byte(obj), &c); err != nil {
		return Classification{}, fmt.Errorf("classifier response is not valid JSON: %w", err)
	}
	return withDefaults(c), nil
}

func withDefaults(c Classification) Classification {
	if strings.TrimSpace(c.Explanation) == "" {
		c.Explanation = DefaultExplanation
	}
	return c
}

// stripFences removes a surrounding markdown code fence, with or without a
// language tag.
func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	rest := strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	if end := strings.LastIndex(rest, "```"); end >= 0 {
		rest = rest[:end]
	}
	return strings.TrimSpace(rest)
}

// firstJSONObject returns the first balanced {...} substring. Braces inside
// string literals are accounted for.
func firstJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}
