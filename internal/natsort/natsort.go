// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package natsort orders strings so that embedded numbers compare by value:
// "figure9" sorts before "figure12". Text compares case-insensitively.
//
// Compare delegates to github.com/maruel/natural over case-folded strings.
// Key and SortKey.Compare implement the same rules by hand over a folded
// string computed once per name; both paths yield the same order. Strings
// that are equal after folding are ordered by their raw bytes so the order
// is total.
package natsort

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/maruel/natural"
	"golang.org/x/text/cases"
)

// folder is shared; cases.Caser is not safe for concurrent use but this
// package is only used from a single goroutine.
var folder = cases.Fold()

func fold(s string) string {
	return folder.String(s)
}

// Compare returns -1, 0 or +1 depending on whether a sorts before, equal to,
// or after b in natural order.
func Compare(a, b string) int {
	fa, fb := fold(a), fold(b)
	switch {
	case natural.Less(fa, fb):
		return -1
	case natural.Less(fb, fa):
		return 1
	}
	return strings.Compare(a, b)
}

// Less reports whether a sorts before b in natural order.
func Less(a, b string) bool {
	return Compare(a, b) < 0
}

// Sort sorts names in place in natural order.
func Sort(names []string) {
	slices.SortStableFunc(names, Compare)
}

// Sorted returns a naturally sorted copy of names.
func Sorted(names []string) []string {
	out := slices.Clone(names)
	Sort(out)
	return out
}

// compareFolded orders two folded strings. Common prefixes are skipped up to
// the first digit. Digit runs that both fit in a uint64 compare by value and,
// when equal with more text on both sides, the walk continues after them.
// Everything else compares bytewise from the current position, so equal
// values like "01" and "1" at the end of a name, and runs too long for a
// uint64, fall back to byte order.
func compareFolded(a, b string) int {
	for {
		p := commonPrefix(a, b)
		a, b = a[p:], b[p:]
		if a == "" || b == "" {
			return strings.Compare(a, b)
		}

		ia, ib := digitRun(a), digitRun(b)
		if ia > 0 && ib > 0 {
			an, aerr := strconv.ParseUint(a[:ia], 10, 64)
			bn, berr := strconv.ParseUint(b[:ib], 10, 64)
			if aerr == nil && berr == nil {
				if an != bn {
					return cmp.Compare(an, bn)
				}
				if ia != len(a) && ib != len(b) {
					a, b = a[ia:], b[ib:]
					continue
				}
			}
		}
		return strings.Compare(a, b)
	}
}

// commonPrefix returns the length of the shared prefix of a and b, stopping
// at the first digit on either side.
func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if isDigit(a[i]) || isDigit(b[i]) || a[i] != b[i] {
			return i
		}
	}
	return n
}

// digitRun returns the length of the leading run of ASCII digits in s.
func digitRun(s string) int {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return i
		}
	}
	return len(s)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
