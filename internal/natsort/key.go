// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package natsort

import (
	"slices"
	"strings"
)

// SortKey is a precomputed natural-order key for a string. Folding happens
// once, in Key, instead of on every comparison.
type SortKey struct {
	raw    string
	folded string
}

// Key builds the natural-order key of s.
func Key(s string) SortKey {
	return SortKey{raw: s, folded: fold(s)}
}

// Compare orders two keys; it agrees with the package-level Compare on the
// strings the keys were built from.
func (k SortKey) Compare(o SortKey) int {
	if c := compareFolded(k.folded, o.folded); c != 0 {
		return c
	}
	return strings.Compare(k.raw, o.raw)
}

// SortByKey sorts names in place by computing each key once. It produces
// the same order as Sort.
func SortByKey(names []string) {
	keys := make([]SortKey, len(names))
	for i, n := range names {
		keys[i] = Key(n)
	}
	slices.SortStableFunc(keys, SortKey.Compare)
	for i, k := range keys {
		names[i] = k.raw
	}
}
