// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qbank/pkg/types"
)

func bookConfig(t *testing.T) types.BookConfig {
	t.Helper()
	return types.BookConfig{
		Title:       "Collection",
		Description: "Practice questions.",
		Language:    "zh-TW",
		OutputDir:   filepath.Join(t.TempDir(), "mdbook"),
	}
}

func TestBookExport(t *testing.T) {
	root := canonicalFixture(t)
	cfg := bookConfig(t)

	var out bytes.Buffer
	result, err := NewBook(cfg, nil).Export(root, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Exported)

	src := filepath.Join(cfg.OutputDir, "src")
	assert.Equal(t,
		"# Summary\n\n- [Question 1](question_001.md)\n- [Question 2](question_002.md)\n",
		readTestFile(t, filepath.Join(src, "SUMMARY.md")))
	assert.Equal(t, "# Introduction\n\nPractice questions.\n", readTestFile(t, filepath.Join(src, "README.md")))
	assert.NoFileExists(t, filepath.Join(src, "question_003.md"))

	chapter := readTestFile(t, filepath.Join(src, "question_001.md"))
	assert.Contains(t, chapter, "# Question 1\n\n1→What is X?\n\n")
	assert.Contains(t, chapter, "**Question Figures:**\n\n#### fig2.png\n\n![fig2.png](normalized_questions/001/question_figures/fig2.png)\n\n#### fig10.png")
	assert.Contains(t, chapter, "**A:** alpha\n\n\n**B:** beta\n\n\n")
	assert.NotContains(t, chapter, "**C:**")
	assert.Contains(t, chapter, "**Correct Answer:** B")
	assert.Contains(t, chapter, "**Explanation:**\n\nline one")
	assert.Contains(t, chapter, "![chart.jpg](normalized_questions/001/explain_figures/chart.jpg)")

	second := readTestFile(t, filepath.Join(src, "question_002.md"))
	assert.NotContains(t, second, "Question Figures")
	assert.Contains(t, second, "**Correct Answer:** ?")

	// Chapter image links resolve through the symlink.
	assert.FileExists(t, filepath.Join(src, "normalized_questions", "001", "question_figures", "fig2.png"))
}

func TestBookConfigFile(t *testing.T) {
	cfg := bookConfig(t)
	_, err := NewBook(cfg, nil).Export(canonicalFixture(t), &bytes.Buffer{})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(cfg.OutputDir, "book.toml"))
	require.NoError(t, err)

	var got bookTOML
	require.NoError(t, toml.Unmarshal(data, &got))
	assert.Equal(t, "Collection", got.Book.Title)
	assert.Equal(t, "zh-TW", got.Book.Language)
	assert.Equal(t, []string{"Generated"}, got.Book.Authors)
	assert.True(t, got.Output.HTML.MathjaxSupport)
	assert.Equal(t, "navy", got.Output.HTML.PreferredDarkTheme)
}

func TestBookExportTwice(t *testing.T) {
	root := canonicalFixture(t)
	cfg := bookConfig(t)

	_, err := NewBook(cfg, nil).Export(root, &bytes.Buffer{})
	require.NoError(t, err)
	_, err = NewBook(cfg, nil).Export(root, &bytes.Buffer{})
	require.NoError(t, err, "an existing image link must be left alone")
}
