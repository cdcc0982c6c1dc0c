package conversation

import (
	"sort"
	"strings"
)

// Keywords is a set of lower-cased whitespace tokens.
type Keywords map[string]struct{}

// ExtractKeywords lower-cases the text and splits it on whitespace.
// No stemming, no stop-word removal: "sudan," and "sudan" are different tokens.
func ExtractKeywords(text string) Keywords {
	fields := strings.Fields(strings.ToLower(text))
	kw := make(Keywords, len(fields))
	for _, f := range fields {
		kw[f] = struct{}{}
	}
	return kw
}

// Has reports whether token is in the set.
func (k Keywords) Has(token string) bool {
	_, ok := k[token]
	return ok
}

// Intersects reports whether the two sets share at least one token.
func (k Keywords) Intersects(other Keywords) bool {
	small, large := k, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for t := range small {
		if large.Has(t) {
			return true
		}
	}
	return false
}

// Sorted returns the tokens in lexical order.
func (k Keywords) Sorted() []string {
	out := make([]string, 0, len(k))
	for t := range k {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
