// Package llm - util.go locates the JSON payload inside model responses.
package llm

import "strings"

// ExtractJSONArray returns the first balanced JSON array in text that is empty
// or opens with an object, ignoring fences and prose. Bracketed prose such as
// "[0,1]" is skipped. It returns false when no such array exists.
func ExtractJSONArray(text string) (string, bool) {
	text = stripFence(strings.TrimSpace(text))
	for offset := 0; offset < len(text); {
		idx := strings.IndexByte(text[offset:], '[')
		if idx < 0 {
			return "", false
		}
		start := offset + idx
		offset = start + 1

		end := matchingBracket(text, start)
		if end < 0 {
			continue
		}
		inner := strings.TrimSpace(text[start+1 : end])
		if inner == "" || inner[0] == '{' {
			return text[start : end+1], true
		}
	}
	return "", false
}

func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	// Skip a language identifier on the first line
	if idx := strings.Index(text, "\n"); idx >= 0 {
		firstLine := text[:idx]
		if len(firstLine) < 20 && !strings.ContainsAny(firstLine, " {[") {
			text = text[idx+1:]
		}
	}
	if idx := strings.LastIndex(text, "```"); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

// matchingBracket returns the index of the bracket closing the one at start,
// honoring JSON string literals and escapes, or -1.
func matchingBracket(text string, start int) int {
	var stack []byte
	inString := false
	escaped := false

	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
