// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"archive/zip"
	"bytes"
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qbank/internal/archive"
	"github.com/pdiddy/qbank/internal/locate"
	"github.com/pdiddy/qbank/pkg/types"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
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

// snapshot maps every file and directory under root to its content.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	out := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		if d.IsDir() {
			out[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return out
}

func testConfig(t *testing.T) types.NormalizeConfig {
	t.Helper()
	root := t.TempDir()
	return types.NormalizeConfig{
		SourceRoot:   filepath.Join(root, "src"),
		ArchivesRoot: filepath.Join(root, "zips"),
		OutputRoot:   filepath.Join(root, "out"),
		ScratchDir:   filepath.Join(root, "scratch"),
		First:        1,
		Last:         5,
	}
}

func newNormalizer(cfg types.NormalizeConfig) *Normalizer {
	return New(cfg, locate.NewLocator(cfg, archive.NewUnpacker(nil), nil), nil)
}

// seedSources lays out questions 1, 2 and 4, leaving 3 and 5 absent.
func seedSources(t *testing.T, cfg types.NormalizeConfig) {
	t.Helper()
	writeFile(t, filepath.Join(cfg.SourceRoot, "001", "question.txt"), "1→What is X?")
	writeFile(t, filepath.Join(cfg.SourceRoot, "001", types.AnswerFile), "B")
	writeFile(t, filepath.Join(cfg.SourceRoot, "001", "question_figures", "fig1.png"), "p1")

	writeFile(t, filepath.Join(cfg.SourceRoot, "2", "002", "question.txt"), "2→Second")
	writeFile(t, filepath.Join(cfg.SourceRoot, "2", "002", "option_A.txt"), "alpha")

	writeZip(t, filepath.Join(cfg.ArchivesRoot, "4.zip"), map[string]string{
		"004/question.txt":                   "4→Zipped",
		"004/" + types.ExplanationFile:       "because",
		"004/figs/explain_figures/chart.png": "c",
	})
}

func TestRunNormalizesRange(t *testing.T) {
	cfg := testConfig(t)
	seedSources(t, cfg)

	var out bytes.Buffer
	report, err := newNormalizer(cfg).Run(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Normalized())
	assert.Equal(t, 2, report.Skipped())
	assert.Equal(t, []int{3, 5}, report.Missing)

	res, ok := report.Lookup(4)
	require.True(t, ok)
	assert.Equal(t, types.OriginArchive, res.Origin)

	for _, id := range []string{"001", "002", "004"} {
		dir := filepath.Join(cfg.OutputRoot, id)
		for _, f := range types.RequiredFiles {
			assert.FileExists(t, filepath.Join(dir, f))
		}
		for _, d := range types.FigureDirs {
			assert.DirExists(t, filepath.Join(dir, d))
		}
	}

	assert.Equal(t, "B", readFile(t, filepath.Join(cfg.OutputRoot, "001", types.AnswerFile)))
	assert.Equal(t, "?", readFile(t, filepath.Join(cfg.OutputRoot, "002", types.AnswerFile)))
	assert.Equal(t, "?", readFile(t, filepath.Join(cfg.OutputRoot, "004", types.AnswerFile)))
	assert.Equal(t, "because", readFile(t, filepath.Join(cfg.OutputRoot, "004", types.ExplanationFile)))
	assert.Equal(t, "alpha", readFile(t, filepath.Join(cfg.OutputRoot, "002", "option_A.txt")))
	assert.Equal(t, "", readFile(t, filepath.Join(cfg.OutputRoot, "002", "option_D.txt")))
	assert.Equal(t, "p1", readFile(t, filepath.Join(cfg.OutputRoot, "001", "question_figures", "fig1.png")))
	assert.Equal(t, "c", readFile(t, filepath.Join(cfg.OutputRoot, "004", "explain_figures", "chart.png")))
	assert.NoDirExists(t, filepath.Join(cfg.OutputRoot, "003"))

	assert.Contains(t, out.String(), "normalized: 001")
	assert.Contains(t, out.String(), "skipped:    003")
	assert.Contains(t, out.String(), "Missing: [3 5]")
	assert.FileExists(t, filepath.Join(cfg.OutputRoot, ReportFile))

	scratch, err := os.ReadDir(cfg.ScratchDir)
	require.NoError(t, err)
	assert.Empty(t, scratch, "extracted archives must be cleaned up")
}

func TestRunIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	seedSources(t, cfg)
	n := newNormalizer(cfg)

	_, err := n.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	first := snapshot(t, cfg.OutputRoot)

	_, err = n.Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, first, snapshot(t, cfg.OutputRoot))
}

func TestRunReplacesStaleOutput(t *testing.T) {
	cfg := testConfig(t)
	seedSources(t, cfg)
	writeFile(t, filepath.Join(cfg.OutputRoot, "001", "stale.txt"), "old")
	writeFile(t, filepath.Join(cfg.OutputRoot, "001", types.AnswerFile), "Z")

	_, err := newNormalizer(cfg).Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)

	assert.NoFileExists(t, filepath.Join(cfg.OutputRoot, "001", "stale.txt"))
	assert.Equal(t, "B", readFile(t, filepath.Join(cfg.OutputRoot, "001", types.AnswerFile)))
}

func TestRunWithoutSources(t *testing.T) {
	cfg := testConfig(t)

	report, err := newNormalizer(cfg).Run(context.Background(), &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Normalized())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, report.Missing)
}

func TestRunLocked(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.MkdirAll(cfg.OutputRoot, 0o755))

	held := flock.New(filepath.Join(cfg.OutputRoot, lockFile))
	ok, err := held.TryLock()
	require.NoError(t, err)
	require.True(t, ok)
	defer held.Unlock()

	_, err = newNormalizer(cfg).Run(context.Background(), &bytes.Buffer{})
	assert.ErrorIs(t, err, ErrLocked)
}

func TestRunCanceled(t *testing.T) {
	cfg := testConfig(t)
	seedSources(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newNormalizer(cfg).Run(ctx, &bytes.Buffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeWithoutMarker(t *testing.T) {
	tests := []struct {
		name       string
		strict     bool
		wantStatus types.ResultStatus
	}{
		{name: "lenient copies everything", wantStatus: types.StatusNormalized},
		{name: "strict skips", strict: true, wantStatus: types.StatusSkipped},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Strict = tt.strict
			writeFile(t, filepath.Join(cfg.SourceRoot, "006", "readme.md"), "notes")
			writeFile(t, filepath.Join(cfg.SourceRoot, "006", "__MACOSX", "junk"), "x")

			res, err := newNormalizer(cfg).NormalizeID(6)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)

			target := filepath.Join(cfg.OutputRoot, "006")
			if tt.strict {
				assert.NoDirExists(t, target)
				assert.Contains(t, res.Reason, "malformed")
				return
			}
			assert.True(t, res.Lenient)
			assert.Equal(t, "notes", readFile(t, filepath.Join(target, "readme.md")))
			assert.NoDirExists(t, filepath.Join(target, "__MACOSX"))
			assert.Equal(t, "?", readFile(t, filepath.Join(target, types.AnswerFile)))
		})
	}
}

func TestNormalizeFindsDeepMarker(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.SourceRoot, "008", "a", "b", "question.txt"), "8→Deep")
	writeFile(t, filepath.Join(cfg.SourceRoot, "008", "a", "b", types.AnswerFile), "C")

	res, err := newNormalizer(cfg).NormalizeID(8)
	require.NoError(t, err)
	assert.Equal(t, types.StatusNormalized, res.Status)
	assert.False(t, res.Lenient)
	assert.Equal(t, "C", readFile(t, filepath.Join(cfg.OutputRoot, "008", types.AnswerFile)))
	assert.NoDirExists(t, filepath.Join(cfg.OutputRoot, "008", "a"))
}

func TestNormalizeDirSkipsHiddenFigures(t *testing.T) {
	cfg := testConfig(t)
	src := filepath.Join(cfg.SourceRoot, "009")
	writeFile(t, filepath.Join(src, "question.txt"), "9→Q")
	writeFile(t, filepath.Join(src, "question_figures", "fig1.png"), "a")
	writeFile(t, filepath.Join(src, "question_figures", ".DS_Store"), "x")
	writeFile(t, filepath.Join(src, "unrelated", "other.txt"), "o")

	target, lenient, err := newNormalizer(cfg).NormalizeDir(src, 9)
	require.NoError(t, err)
	assert.False(t, lenient)

	assert.FileExists(t, filepath.Join(target, "question_figures", "fig1.png"))
	assert.NoFileExists(t, filepath.Join(target, "question_figures", ".DS_Store"))
	assert.NoDirExists(t, filepath.Join(target, "unrelated"))
}

func TestEnsureRequiredKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, types.AnswerFile), "A")

	require.NoError(t, EnsureRequired(dir, types.RequiredFiles))

	assert.Equal(t, "A", readFile(t, filepath.Join(dir, types.AnswerFile)))
	assert.Equal(t, "", readFile(t, filepath.Join(dir, types.ExplanationFile)))
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, len(types.RequiredFiles)+len(types.FigureDirs))
}

func TestFindMarkerDeepPrefersShallow(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "b", "question.txt"), "deep")
	writeFile(t, filepath.Join(root, "z", "question.txt"), "shallow")

	dir, ok := FindMarkerDeep(root)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "z"), dir)

	_, ok = FindMarkerDeep(filepath.Join(root, "missing"))
	assert.False(t, ok)
}
