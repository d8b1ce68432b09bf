package styles

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/lifeline/pkg/errors"
)

// Label returns a section or divider label as drawn, "[ text ]", or "" for
// an empty label.
func Label(text string) string {
	if text == "" {
		return ""
	}
	return "[ " + text + " ]"
}

// EscapeXML escapes s for use as SVG text content or a quoted attribute
// value.
func EscapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// WrapURL writes the output of fn inside an <a> element linking to url.
// An empty url, or one whose scheme [errors.ValidateLink] rejects, writes
// fn's output without a link.
func WrapURL(buf *bytes.Buffer, url string, fn func()) {
	link := url != "" && errors.ValidateLink(url) == nil
	if link {
		fmt.Fprintf(buf, `  <a href="%s" target="_blank">`, EscapeXML(url))
	}
	fn()
	if link {
		buf.WriteString("</a>")
	}
}

// writeLines writes one <tspan> per line, the first at y.
func writeLines(buf *bytes.Buffer, lines []string, x, y, lineHeight float64) {
	for i, l := range lines {
		fmt.Fprintf(buf, `<tspan x="%.2f" y="%.2f">%s</tspan>`, x, y+float64(i)*lineHeight, EscapeXML(l))
	}
}
