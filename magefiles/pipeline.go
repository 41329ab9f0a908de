//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// qbank runs the freshly built CLI with args.
func qbank(args ...string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Normalize rebuilds the canonical tree from the configured sources.
func Normalize() error {
	mg.Deps(Init)
	return qbank("normalize")
}

// Audit lists question IDs missing from the canonical tree.
func Audit() error {
	return qbank("audit")
}

// Export renders every study format from the canonical tree.
func Export() error {
	for _, format := range []string{"deck", "book", "docs", "sheet"} {
		if err := qbank("export", format); err != nil {
			return err
		}
	}
	return nil
}

// Catalog ingests the canonical tree into the searchable catalog.
func Catalog() error {
	return qbank("catalog", "store")
}

// All runs normalize, export and catalog in order.
func All() {
	mg.SerialDeps(Normalize, Export, Catalog)
}
