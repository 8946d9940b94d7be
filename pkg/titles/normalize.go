// Package titles turns the decorated titles streaming sites print into search keys.
package titles

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

type stripRule struct {
	name string
	re   *regexp.Regexp
}

var stripRules = []stripRule{
	{"tv tag", regexp.MustCompile(`(?i) \(TV\)`)},
	{"language tag", regexp.MustCompile(`(?i) \((Sub|Dub|Dubbed|Subbed)\)`)},
	{"season suffix", regexp.MustCompile(`(?i) Season \d+`)},
	{"part suffix", regexp.MustCompile(`(?i) Part \d+`)},
	{"year", regexp.MustCompile(` \(\d{4}\)`)},
	{"numeric suffix", regexp.MustCompile(` - \d+`)},
	{"watch prefix", regexp.MustCompile(`(?i)^Watch `)},
	{"online suffix", regexp.MustCompile(`(?i) Online$`)},
	{"english sub/dub suffix", regexp.MustCompile(`(?i)English Sub/Dub$`)},
}

// Normalize strips cosmetic markup from a raw title. The rules are applied until
// nothing changes, so Normalize(Normalize(s)) == Normalize(s).
// An empty result means the page carried no usable title.
func Normalize(raw string) string {
	s := raw
	for {
		// After the first pass every change only removes text, so this terminates.
		next := pass(s)
		if next == s {
			return s
		}
		s = next
	}
}

func pass(s string) string {
	s = norm.NFKC.String(s)
	s = collapseSpaces(s)
	for _, rule := range stripRules {
		s = rule.re.ReplaceAllString(s, "")
	}
	return collapseSpaces(s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
