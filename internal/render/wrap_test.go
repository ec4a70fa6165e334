package render

import (
	"reflect"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		width int
		want  []string
	}{
		{"fits", "Chapter 3", 32, []string{"Chapter 3"}},
		{"empty", "", 10, []string{"-"}},
		{"only spaces", "    ", 10, []string{"-"}},
		{"exact width", "Physical Education and Health", 18, []string{"Physical Education", "and Health"}},
		{"breaks at spaces", "aaa bbb ccc ddd", 7, []string{"aaa bbb", "ccc ddd"}},
		{"keeps inner spaces", "a  b   c", 10, []string{"a  b   c"}},
		{"drops spaces at breaks", "abcd   efgh", 6, []string{"abcd", "efgh"}},
		{"long word alone", "abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"long word after short", "ab cdefghij", 4, []string{"ab c", "defg", "hij"}},
		{"leading space dropped", "  lead", 10, []string{"lead"}},
		{"newline becomes space", "one\ntwo", 20, []string{"one two"}},
		{"wide runes", "日本語テキスト", 6, []string{"日本語", "テキス", "ト"}},
		{"wide rune wider than column", "日本", 1, []string{"日", "本"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.text, tt.width)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Wrap(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
			}
		})
	}
}

func TestWrapPreservesWords(t *testing.T) {
	texts := []string{
		"Read the chapter about the industrial revolution and write a summary",
		"Kerjakan soal latihan bab tiga halaman empat puluh dua sampai lima puluh",
		"x",
		"one two  three   four    five",
	}
	for _, text := range texts {
		longest := 0
		for _, w := range strings.Fields(text) {
			longest = max(longest, runewidth.StringWidth(w))
		}
		for width := longest; width <= 40; width++ {
			lines := Wrap(text, width)
			for _, l := range lines {
				if w := runewidth.StringWidth(l); w > width {
					t.Errorf("Wrap(%q, %d): line %q is %d wide", text, width, l, w)
				}
				if l != strings.TrimSpace(l) {
					t.Errorf("Wrap(%q, %d): line %q has edge whitespace", text, width, l)
				}
			}
			got := strings.Fields(strings.Join(lines, " "))
			if !reflect.DeepEqual(got, strings.Fields(text)) {
				t.Errorf("Wrap(%q, %d) lost words: %q", text, width, lines)
			}
		}
	}
}

func TestWrapLineCount(t *testing.T) {
	// Words of equal length pack evenly, so the line count is exact.
	text := strings.TrimSpace(strings.Repeat("abcd ", 12))
	lines := Wrap(text, 9)
	if len(lines) != 6 {
		t.Errorf("got %d lines, want 6: %q", len(lines), lines)
	}
}
