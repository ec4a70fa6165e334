package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"taskbook/internal/storage"
)

const tabWidth = 8

// Wrap breaks text into lines no wider than width display cells. Lines
// break at whitespace; a word is split only when it is wider than width on
// its own. Whitespace inside a line is kept as typed, whitespace at a line
// boundary is dropped. Text with no visible characters wraps to a single
// placeholder line.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	chunks := splitChunks(cleanWhitespace(text))

	var (
		lines []string
		cur   []string
		curW  int
	)
	flush := func() {
		if n := len(cur); n > 0 && isBlank(cur[n-1]) {
			cur = cur[:n-1]
		}
		if len(cur) > 0 {
			lines = append(lines, strings.Join(cur, ""))
		}
		cur, curW = cur[:0], 0
	}

	for i := 0; i < len(chunks); {
		c := chunks[i]
		if len(cur) == 0 && isBlank(c) {
			i++
			continue
		}
		w := runewidth.StringWidth(c)
		if curW+w <= width {
			cur = append(cur, c)
			curW += w
			i++
			continue
		}
		if !isBlank(c) && w > width {
			head, tail := cutWidth(c, width-curW, len(cur) == 0)
			if head != "" {
				cur = append(cur, head)
			}
			chunks[i] = tail
		}
		flush()
	}
	flush()

	if len(lines) == 0 {
		return []string{storage.Placeholder}
	}
	return lines
}

// splitChunks splits s into alternating runs of whitespace and non-whitespace.
func splitChunks(s string) []string {
	var chunks []string
	start := 0
	prevSpace := false
	for i, r := range s {
		space := unicode.IsSpace(r)
		if i > start && space != prevSpace {
			chunks = append(chunks, s[start:i])
			start = i
		}
		prevSpace = space
	}
	if start < len(s) {
		chunks = append(chunks, s[start:])
	}
	return chunks
}

// cutWidth splits word so that head fits in room cells. When force is set
// head holds at least one rune, so a line can always make progress.
func cutWidth(word string, room int, force bool) (head, tail string) {
	w := 0
	for i, r := range word {
		rw := runewidth.RuneWidth(r)
		if w+rw > room {
			if i == 0 && force {
				size := utf8.RuneLen(r)
				return word[:size], word[size:]
			}
			return word[:i], word[i:]
		}
		w += rw
	}
	return word, ""
}

func cleanWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
