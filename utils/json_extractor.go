package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoJSONFound is returned when no valid JSON object/array is found in the input
var ErrNoJSONFound = errors.New("no valid JSON object or array found in response")

// ExtractJSON pulls a JSON document out of an LLM response that may contain
// markdown code fences or prose around the payload.
//
// Order of attempts:
//  1. the response as-is
//  2. the response with surrounding ``` fences stripped
//  3. the first balanced [...] or {...} span, tracking quoted strings and
//     escape sequences so brackets inside string values are ignored
func ExtractJSON(response string) (string, error) {
	if strings.TrimSpace(response) == "" {
		return "", ErrNoJSONFound
	}

	if json.Valid([]byte(response)) {
		return response, nil
	}

	cleaned := stripCodeFences(response)
	if json.Valid([]byte(cleaned)) {
		return cleaned, nil
	}

	if span := balancedSpan(cleaned); span != "" && json.Valid([]byte(span)) {
		return span, nil
	}

	return "", fmt.Errorf("%w: response length=%d", ErrNoJSONFound, len(response))
}

// ExtractJSONTo extracts JSON from response and unmarshals it into the target
func ExtractJSONTo(response string, target interface{}) error {
	jsonStr, err := ExtractJSON(response)
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(jsonStr), target)
}

// stripCodeFences removes a surrounding markdown code block, including an
// optional language tag after the opening fence. Both fences must be present.
func stripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	inner := strings.TrimSuffix(strings.TrimPrefix(trimmed, "```"), "```")
	// drop the language tag on the opening fence line, e.g. "json"
	if idx := strings.IndexByte(inner, '\n'); idx != -1 {
		firstLine := strings.TrimSpace(inner[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "[{") {
			inner = inner[idx+1:]
		}
	}
	return strings.TrimSpace(inner)
}

// balancedSpan returns the first complete bracket-balanced JSON span in s,
// preferring whichever of [ or { appears first.
func balancedSpan(s string) string {
	startObj := strings.IndexByte(s, '{')
	startArr := strings.IndexByte(s, '[')

	var start int
	var openChar, closeChar byte

	switch {
	case startObj == -1 && startArr == -1:
		return ""
	case startObj == -1 || (startArr != -1 && startArr < startObj):
		start, openChar, closeChar = startArr, '[', ']'
	default:
		start, openChar, closeChar = startObj, '{', '}'
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}

		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}

	return ""
}
