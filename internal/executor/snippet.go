package executor

import (
	"strings"

	"golang.org/x/net/html"
)

// stripHTML flattens provider snippets that arrive with embedded markup into
// plain text with collapsed whitespace. Plain snippets pass through with
// only a trim.
func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		if tt == html.TextToken {
			b.Write(z.Text())
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	if out == "" {
		return s
	}
	return out
}
