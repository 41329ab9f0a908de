// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package locate

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qbank/internal/archive"
	"github.com/pdiddy/qbank/pkg/types"
)

// fakeExtractor implements archive.Extractor.
type fakeExtractor struct {
	calls []string
	err   error
}

func (f *fakeExtractor) Extract(archivePath, dest string) error {
	f.calls = append(f.calls, archivePath)
	return f.err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, content := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
}

func newTestLocator(t *testing.T, extractor archive.Extractor) (*Locator, string, string) {
	t.Helper()
	root := t.TempDir()
	cfg := types.NormalizeConfig{
		SourceRoot:   filepath.Join(root, "src"),
		ArchivesRoot: filepath.Join(root, "zips"),
		ScratchDir:   filepath.Join(root, "scratch"),
	}
	require.NoError(t, os.MkdirAll(cfg.SourceRoot, 0o755))
	require.NoError(t, os.MkdirAll(cfg.ArchivesRoot, 0o755))
	return NewLocator(cfg, extractor, nil), cfg.SourceRoot, cfg.ArchivesRoot
}

func TestLocateFolders(t *testing.T) {
	tests := []struct {
		name    string
		files   []string
		wantDir string
	}{
		{
			name:    "marker directly in padded folder",
			files:   []string{"001/question.txt"},
			wantDir: "001",
		},
		{
			name:    "marker directly in plain folder",
			files:   []string{"1/question.txt"},
			wantDir: "1",
		},
		{
			name:    "nested same-id folder",
			files:   []string{"001/001/question.txt"},
			wantDir: "001/001",
		},
		{
			name:    "any subfolder in natural order",
			files:   []string{"001/wrap10/question.txt", "001/wrap2/question.txt"},
			wantDir: "001/wrap2",
		},
		{
			name:    "folder itself wins over subfolder",
			files:   []string{"001/question.txt", "001/001/question.txt"},
			wantDir: "001",
		},
		{
			name:    "metadata folders are ignored",
			files:   []string{"001/__MACOSX/question.txt", "001/.hidden/question.txt", "001/real/question.txt"},
			wantDir: "001/real",
		},
		{
			name:    "padded folder without marker falls through to plain folder",
			files:   []string{"001/notes.txt", "1/question.txt"},
			wantDir: "1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, src, _ := newTestLocator(t, nil)
			for _, f := range tt.files {
				writeFile(t, filepath.Join(src, f), "x")
			}

			p, err := l.Locate(1)
			require.NoError(t, err)
			defer p.Cleanup()

			assert.True(t, p.Marker)
			assert.Equal(t, types.OriginFolder, p.Origin)
			assert.Equal(t, filepath.Join(src, filepath.FromSlash(tt.wantDir)), p.Dir)
		})
	}
}

func TestLocateZipArchive(t *testing.T) {
	l, _, zips := newTestLocator(t, archive.NewUnpacker(nil))
	writeZip(t, filepath.Join(zips, "4.zip"), map[string]string{
		"004/question.txt":             "4→Q",
		"004/question_figures/fig.png": "png",
	})

	p, err := l.Locate(4)
	require.NoError(t, err)

	assert.True(t, p.Marker)
	assert.Equal(t, types.OriginArchive, p.Origin)
	assert.Equal(t, filepath.Join(zips, "4.zip"), p.Source)
	assert.FileExists(t, filepath.Join(p.Dir, "question.txt"))
	assert.Equal(t, "004", filepath.Base(p.Dir))

	require.NoError(t, p.Cleanup())
	assert.NoDirExists(t, p.Root)
}

func TestLocateFolderBeforeArchive(t *testing.T) {
	ext := &fakeExtractor{}
	l, src, zips := newTestLocator(t, ext)
	writeFile(t, filepath.Join(src, "002", "question.txt"), "x")
	writeFile(t, filepath.Join(zips, "2.zip"), "zip")

	p, err := l.Locate(2)
	require.NoError(t, err)
	assert.Equal(t, types.OriginFolder, p.Origin)
	assert.Empty(t, ext.calls)
}

func TestLocateArchiveOrder(t *testing.T) {
	ext := &fakeExtractor{}
	l, _, zips := newTestLocator(t, ext)
	for _, name := range []string{"5.rar", "5.zip", "005.rar", "005.zip"} {
		writeFile(t, filepath.Join(zips, name), "x")
	}

	p, err := l.Locate(5)
	require.ErrorIs(t, err, ErrNoMarker)
	defer p.Cleanup()

	assert.Equal(t, []string{
		filepath.Join(zips, "005.zip"),
		filepath.Join(zips, "5.zip"),
		filepath.Join(zips, "005.rar"),
		filepath.Join(zips, "5.rar"),
	}, ext.calls)
}

func TestLocateExtractionFailure(t *testing.T) {
	ext := &fakeExtractor{err: errors.New("corrupt")}
	l, _, zips := newTestLocator(t, ext)
	writeFile(t, filepath.Join(zips, "12.rar"), "x")

	_, err := l.Locate(12)
	assert.ErrorIs(t, err, ErrNotFound)

	entries, err := os.ReadDir(l.cfg.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed extraction must not leave scratch directories")
}

func TestLocateNoMarkerFallback(t *testing.T) {
	l, src, _ := newTestLocator(t, nil)
	writeFile(t, filepath.Join(src, "007", "deep", "deeper", "question.txt"), "x")

	p, err := l.Locate(7)
	require.ErrorIs(t, err, ErrNoMarker)
	assert.False(t, p.Marker)
	assert.Equal(t, filepath.Join(src, "007"), p.Root)
	assert.Equal(t, p.Root, p.Dir)
}

func TestLocateNotFound(t *testing.T) {
	l, _, _ := newTestLocator(t, &fakeExtractor{})

	p, err := l.Locate(3)
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "003")
	assert.NoError(t, p.Cleanup())
}

func TestIDNames(t *testing.T) {
	assert.Equal(t, []string{"001", "1"}, IDNames(1))
	assert.Equal(t, []string{"042", "42"}, IDNames(42))
	assert.Equal(t, []string{"120"}, IDNames(120))
}

func TestIgnored(t *testing.T) {
	cases := map[string]bool{
		"__MACOSX": true,
		".git":     true,
		"001":      false,
		"":         false,
	}
	for name, want := range cases {
		assert.Equal(t, want, Ignored(name), name)
	}
}
