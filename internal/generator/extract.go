package generator

import (
	"encoding/json"
	"strings"
)

// ExtractJSONObject scans raw for brace-delimited spans in order of
// appearance and returns the first one that decodes to a JSON object with a
// non-empty "title" or "description" string. Text around the object and
// nested objects inside it are tolerated. When no span qualifies the error
// is ErrUnparseableOutput.
func ExtractJSONObject(raw string) (map[string]any, error) {
	for start := strings.IndexByte(raw, '{'); start >= 0; {
		if end := matchingBrace(raw, start); end > start {
			var obj map[string]any
			if err := json.Unmarshal([]byte(raw[start:end+1]), &obj); err == nil && hasCardContent(obj) {
				return obj, nil
			}
		}

		next := strings.IndexByte(raw[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, ErrUnparseableOutput
}

// matchingBrace returns the index of the '}' closing the '{' at start, or -1
// when the span is unbalanced. Braces inside JSON strings are ignored.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false
	escape := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escape {
			escape = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escape = true
			case '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func hasCardContent(obj map[string]any) bool {
	for _, key := range []string{"title", "description"} {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
