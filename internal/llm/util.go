// Package llm - util.go provides shared utilities for LLM response processing.
package llm

import (
	"encoding/json"
	"regexp"
	"strings"
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses and
// strips any conversational preamble or trailing text around the JSON value.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	switch {
	case strings.HasPrefix(text, "```json"):
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	case strings.HasPrefix(text, "```"):
		text = strings.TrimPrefix(text, "```")
		// Skip potential language identifier on first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	return extractFirstJSONValue(text)
}

// extractFirstJSONValue returns the first balanced object or array in text.
// Text without any balanced value is returned unchanged.
func extractFirstJSONValue(text string) string {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return text
	}
	var value string
	if text[start] == '{' {
		value = extractJSONObject(text[start:])
	} else {
		value = extractJSONArray(text[start:])
	}
	if value == "" {
		return text
	}
	return value
}

// extractJSONObject returns the balanced {...} prefix of s, or "" if s does not start with '{'.
func extractJSONObject(s string) string {
	return extractBalanced(s, '{', '}')
}

// extractJSONArray returns the balanced [...] prefix of s, or "" if s does not start with '['.
func extractJSONArray(s string) string {
	return extractBalanced(s, '[', ']')
}

func extractBalanced(s string, open, closer byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
		case open:
			depth++
		case closer:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

var (
	unquotedKeyRe     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_]*)(\s*:)`)
	trailingCommaRe   = regexp.MustCompile(`,(\s*[}\]])`)
	singleQuotedStrRe = regexp.MustCompile(`'((?:[^'\\]|\\.)*)'`)
)

// RepairJSON applies lightweight fixes for common model output mistakes:
// single-quoted strings, unquoted keys, trailing commas, and unclosed brackets.
// Valid input is returned as cleaned. The result is not guaranteed to be valid JSON.
func RepairJSON(text string) string {
	text = CleanJSONBlock(text)
	if json.Valid([]byte(text)) {
		return text
	}
	if !strings.Contains(text, `"`) && strings.Contains(text, "'") {
		text = singleQuotedStrRe.ReplaceAllStringFunc(text, func(m string) string {
			inner := m[1 : len(m)-1]
			inner = strings.ReplaceAll(inner, `\'`, `'`)
			inner = strings.ReplaceAll(inner, `"`, `\"`)
			return `"` + inner + `"`
		})
	}
	text = unquotedKeyRe.ReplaceAllString(text, `$1"$2"$3`)
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	return closeBrackets(text)
}

// closeBrackets appends closers for any brackets left open outside strings,
// terminating an unterminated string first.
func closeBrackets(s string) string {
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
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
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if len(stack) == 0 && !inString {
		return s
	}
	var b strings.Builder
	b.WriteString(strings.TrimRight(s, " \t\r\n"))
	if inString {
		b.WriteByte('"')
	}
	out := strings.TrimRight(b.String(), ",")
	b.Reset()
	b.WriteString(out)
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(stack[i])
	}
	return b.String()
}
