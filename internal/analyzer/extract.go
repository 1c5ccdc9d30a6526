package analyzer

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractJSON finds the JSON object in a model reply.
//
// When the reply contains a fenced code block, only the first block is
// considered. The text is then scanned for the first balanced {...} that is
// valid JSON; braces inside strings do not count. Failing that, the span from
// the first '{' to the last '}' is returned, and with no braces at all the
// text itself.
func ExtractJSON(text string) string {
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchObject(text, start); end > 0 {
			if obj := text[start:end]; json.Valid([]byte(obj)) {
				return obj
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		return text[first : last+1]
	}
	return text
}

// matchObject returns the index just past the brace closing the object that
// opens at start, or -1 when the text ends first.
func matchObject(text string, start int) int {
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
				return i + 1
			}
		}
	}
	return -1
}
