// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/qbank/pkg/types"
)

// mockBuilder implements tool.Runner for deck builds.
type mockBuilder struct {
	available bool
	err       error
	calls     [][]string
}

func (m *mockBuilder) Name() string    { return "md2anki" }
func (m *mockBuilder) Available() bool { return m.available }
func (m *mockBuilder) Run(args ...string) error {
	m.calls = append(m.calls, args)
	return m.err
}

func deckConfig(t *testing.T, style types.DeckStyle) types.DeckConfig {
	t.Helper()
	return types.DeckConfig{
		Style:     style,
		Title:     "Deck",
		OutputDir: filepath.Join(t.TempDir(), "anki"),
		FileName:  "deck.md",
	}
}

func TestDeckMd2anki(t *testing.T) {
	root := canonicalFixture(t)
	cfg := deckConfig(t, types.DeckMd2anki)

	var out bytes.Buffer
	result, err := NewDeck(cfg, nil, nil).Export(root, &out)
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Exported: 2, Skipped: 1}, result)

	md := readTestFile(t, filepath.Join(cfg.OutputDir, "deck.md"))
	wantCard := "## Question 001\n\n" +
		"1→What is X?\n\n" +
		"![fig2.png](media/q001_fig2.png)\n\n" +
		"![fig10.png](media/q001_fig10.png)\n\n" +
		"**選項：**\n\n" +
		"**A.** alpha\n\n" +
		"**B.** beta\n\n" +
		"---\n\n" +
		"**正確答案：B**\n\n" +
		"**解釋：**\n\n" +
		"line one\n\n" +
		"* heading\n\n" +
		"line two\n\n" +
		"![chart.jpg](media/q001_chart.jpg)\n\n" +
		"---\n\n"

	assert.True(t, strings.HasPrefix(md, "# Deck\n\n## Question 001\n"))
	assert.Contains(t, md, wantCard)
	assert.Contains(t, md, "## Question 002\n\n2→Second question\nwith detail\n\n**選項：**\n\n---\n\n**正確答案：?**")
	assert.NotContains(t, md, "Question 003")

	assert.Equal(t, "two", readTestFile(t, filepath.Join(cfg.OutputDir, "media", "q001_fig2.png")))
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "media", "q001_chart.jpg"))
	assert.NoFileExists(t, filepath.Join(cfg.OutputDir, "media", "q001_.DS_Store"))
}

func TestDeckMdankideck(t *testing.T) {
	root := canonicalFixture(t)
	cfg := deckConfig(t, types.DeckMdankideck)

	_, err := NewDeck(cfg, nil, nil).Export(root, &bytes.Buffer{})
	require.NoError(t, err)

	md := readTestFile(t, filepath.Join(cfg.OutputDir, "deck.md"))
	assert.Contains(t, md, "# Deck\n\n\n<h2 markdown=\"block\" style=\"font-size: 16px;\">\n001\n\nWhat is X?\n\n**選項：**\n\n- A. alpha\n")
	assert.Contains(t, md, "\n- C. \n")
	assert.Contains(t, md, "</h2>\n\n**正確答案：B**\n\n**解釋：**\nline one")
	assert.Contains(t, md, "002\n\nSecond question\nwith detail")
	assert.NoDirExists(t, filepath.Join(cfg.OutputDir, "media"))
}

func TestDeckBuild(t *testing.T) {
	tests := []struct {
		name     string
		builder  *mockBuilder
		wantOut  string
		wantArgs bool
	}{
		{
			name:     "successful build",
			builder:  &mockBuilder{available: true},
			wantOut:  "deck built with md2anki",
			wantArgs: true,
		},
		{
			name:     "builder failure is reported",
			builder:  &mockBuilder{available: true, err: errors.New("exit status 2")},
			wantOut:  "build failed: exit status 2",
			wantArgs: true,
		},
		{
			name:    "missing builder is skipped",
			builder: &mockBuilder{},
			wantOut: "build skipped",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := canonicalFixture(t)
			cfg := deckConfig(t, types.DeckMd2anki)
			cfg.Build = true

			var out bytes.Buffer
			_, err := NewDeck(cfg, tt.builder, nil).Export(root, &out)
			require.NoError(t, err)

			assert.Contains(t, out.String(), tt.wantOut)
			assert.FileExists(t, filepath.Join(cfg.OutputDir, "deck.md"))
			if !tt.wantArgs {
				assert.Empty(t, tt.builder.calls)
				return
			}
			require.Len(t, tt.builder.calls, 1)
			assert.Equal(t, []string{
				filepath.Join(cfg.OutputDir, "deck.md"),
				"-o-anki", filepath.Join(cfg.OutputDir, "deck.apkg"),
				"-file-dir", cfg.OutputDir,
			}, tt.builder.calls[0])
		})
	}
}

func TestDeckUnknownStyle(t *testing.T) {
	cfg := deckConfig(t, "flashy")
	_, err := NewDeck(cfg, nil, nil).Export(canonicalFixture(t), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestSanitizeHeadings(t *testing.T) {
	assert.Equal(t, "* Key point", sanitizeHeadings("## Key point"))
	assert.Equal(t, "plain", sanitizeHeadings("plain"))
}
