package textutil

import "strings"

// Truncate shortens text to at most limit runes, appending an ellipsis when
// anything was cut. A limit <= 3 returns the bare prefix.
func Truncate(text string, limit int) string {
	runes := []rune(strings.TrimSpace(text))
	if limit <= 0 || len(runes) <= limit {
		return string(runes)
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return strings.TrimSpace(string(runes[:limit-3])) + "..."
}

// WrapLines word-wraps text into at most maxLines lines of at most width
// runes each. Overflow beyond the final line is dropped; a single word longer
// than width is hard-cut.
func WrapLines(text string, width, maxLines int) []string {
	if width <= 0 || maxLines <= 0 {
		return nil
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	lines := make([]string, 0, maxLines)
	var current strings.Builder
	for _, word := range words {
		if len([]rune(word)) > width {
			word = string([]rune(word)[:width])
		}
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case len([]rune(current.String()))+1+len([]rune(word)) <= width:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			if len(lines) == maxLines {
				return lines
			}
			current.Reset()
			current.WriteString(word)
		}
	}
	if current.Len() > 0 && len(lines) < maxLines {
		lines = append(lines, current.String())
	}
	return lines
}
