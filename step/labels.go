package step

import (
	"golang.org/x/text/unicode/norm"
)

// labelSet is a set of labels in Unicode normal form C, so that labels
// typed differently on different systems still match.
type labelSet map[string]struct{}

func newLabelSet(lists ...[]string) labelSet {
	set := labelSet{}
	for _, labels := range lists {
		for _, l := range labels {
			set[norm.NFC.String(l)] = struct{}{}
		}
	}

	return set
}

// matching counts the labels present in both sets.
func (s labelSet) matching(o labelSet) int {
	if len(o) < len(s) {
		s, o = o, s
	}

	n := 0
	for l := range s {
		if _, ok := o[l]; ok {
			n++
		}
	}

	return n
}
