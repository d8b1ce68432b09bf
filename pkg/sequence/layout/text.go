package layout

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

// TextMeasurer reports the rendered width of a single line of text.
type TextMeasurer interface {
	Width(line string) float64
}

// charWidthRatio is the average advance of a narrow glyph relative to the
// font size for the sans-serif faces used in SVG output.
const charWidthRatio = 0.6

// ApproxMeasurer estimates text width from terminal cell counts, so wide
// (CJK, emoji) runes count double. It needs no font files.
type ApproxMeasurer struct {
	FontSize float64
}

// Width implements [TextMeasurer].
func (m ApproxMeasurer) Width(line string) float64 {
	return float64(runewidth.StringWidth(line)) * m.FontSize * charWidthRatio
}

var lineBreak = regexp.MustCompile(`(?i)<br\s*/?>|\r?\n`)

// SplitLines splits text at newlines and <br> tags. Empty text is one
// empty line.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// Wrap splits text into hard lines and greedily word-wraps each to
// maxWidth. Words wider than maxWidth are broken between runes.
func Wrap(text string, maxWidth float64, m TextMeasurer) []string {
	var out []string
	for _, line := range SplitLines(text) {
		out = append(out, wrapLine(line, maxWidth, m)...)
	}
	return out
}

func wrapLine(line string, maxWidth float64, m TextMeasurer) []string {
	words := strings.Fields(line)
	if len(words) == 0 {
		return []string{""}
	}

	var out []string
	cur := ""
	for _, w := range words {
		candidate := w
		if cur != "" {
			candidate = cur + " " + w
		}
		if m.Width(candidate) <= maxWidth {
			cur = candidate
			continue
		}
		if cur != "" {
			out = append(out, cur)
		}
		if m.Width(w) <= maxWidth {
			cur = w
			continue
		}
		pieces := breakWord(w, maxWidth, m)
		out = append(out, pieces[:len(pieces)-1]...)
		cur = pieces[len(pieces)-1]
	}
	return append(out, cur)
}

func breakWord(w string, maxWidth float64, m TextMeasurer) []string {
	var out []string
	var b strings.Builder
	for _, r := range w {
		if b.Len() > 0 && m.Width(b.String()+string(r)) > maxWidth {
			out = append(out, b.String())
			b.Reset()
		}
		b.WriteRune(r)
	}
	return append(out, b.String())
}

// widest returns the width of the longest line.
func widest(lines []string, m TextMeasurer) float64 {
	var w float64
	for _, l := range lines {
		w = max(w, m.Width(l))
	}
	return w
}
