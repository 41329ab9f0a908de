// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package figures

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "fig2.png", "fig10.png", "fig1.png", ".DS_Store", "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"fig1.png", "fig2.png", "fig10.png", "notes.txt"}, got)
}

func TestListMissingDirectory(t *testing.T) {
	got, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestListIsRecomputed(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a1.png")

	first, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1.png"}, first)

	touch(t, dir, "a0.png")
	second, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"a0.png", "a1.png"}, second)
}

func TestImages(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "figure12.JPG", "figure9.jpeg", "diagram.svg", "anim.gif", "readme.md", "scan.tiff")

	got, err := Images(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"anim.gif", "diagram.svg", "figure9.jpeg", "figure12.JPG"}, got)
}

func TestIsImage(t *testing.T) {
	tests := map[string]bool{
		"a.png":      true,
		"A.PNG":      true,
		"x/y/b.jpeg": true,
		"c.svg":      true,
		"d.webp":     false,
		"png":        false,
		"e.png.txt":  false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsImage(name), name)
	}
}
