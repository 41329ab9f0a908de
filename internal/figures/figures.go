// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package figures lists the figure files of a question directory in natural
// order. Listings are recomputed from the filesystem on every call.
package figures

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/pdiddy/qbank/internal/natsort"
)

// ImagePattern matches the figure formats the exporters render.
const ImagePattern = "*.{png,jpg,jpeg,gif,svg}"

// List returns the regular, non-hidden files directly inside dir, naturally
// sorted. A missing directory yields an empty list.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading figures directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() || IsHidden(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	natsort.Sort(names)
	return names, nil
}

// Images is List restricted to names matching ImagePattern, compared
// case-insensitively.
func Images(dir string) ([]string, error) {
	names, err := List(dir)
	if err != nil {
		return nil, err
	}
	images := names[:0]
	for _, n := range names {
		if IsImage(n) {
			images = append(images, n)
		}
	}
	return images, nil
}

// IsImage reports whether name has one of the rendered image extensions.
func IsImage(name string) bool {
	ok, _ := doublestar.Match(ImagePattern, strings.ToLower(filepath.Base(name)))
	return ok
}

// IsHidden reports whether name is a dotfile (e.g. ".DS_Store").
func IsHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
