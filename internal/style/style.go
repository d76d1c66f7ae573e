// Package style enforces the site's editorial punctuation rule: em-dash
// class characters never appear in published copy. Detection is used by the
// prompt validators; substitution is the cleaning pass applied to generator
// output.
package style

import (
	"regexp"
	"strings"
)

// forbidden is the em-dash family: em dash, en dash, horizontal bar.
const forbidden = "—–―"

var dashRe = regexp.MustCompile(`\s*[—–―]+\s*`)

// HasForbiddenPunct reports whether s contains any em-dash class character.
func HasForbiddenPunct(s string) bool {
	return strings.ContainsAny(s, forbidden)
}

// StripForbiddenPunct rewrites em-dash class characters (with surrounding
// whitespace) into a comma separator. Applied to free text, never to URLs.
func StripForbiddenPunct(s string) string {
	if !HasForbiddenPunct(s) {
		return s
	}
	out := dashRe.ReplaceAllString(s, ", ")
	out = strings.TrimSuffix(strings.TrimSpace(out), ",")
	out = strings.TrimPrefix(out, ", ")
	return strings.TrimSpace(out)
}

// StripAll applies StripForbiddenPunct to every element of a list in place
// and returns it.
func StripAll(list []string) []string {
	for i, s := range list {
		list[i] = StripForbiddenPunct(s)
	}
	return list
}
