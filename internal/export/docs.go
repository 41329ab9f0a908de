// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/qbank/internal/figures"
	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/pkg/types"
)

const (
	docsDir        = "docs"
	docsFiguresDir = "figures"
	noteFile       = "note.md"
)

// noteTemplate seeds note.md for new questions. Existing notes are never
// overwritten.
const noteTemplate = `# Note

## 考點🎯

### 待補充重點整理
- 本題考點需要進一步分析整理
- 相關概念和重要知識點
- 臨床應用和實務考量

## 重要概念
- 核心概念1
- 核心概念2
- 容易混淆的地方

## 快速複習要點
1. 重點1
2. 重點2
3. 重點3

`

// mkdocsConfig is the generated mkdocs.yml.
type mkdocsConfig struct {
	SiteName           string           `yaml:"site_name"`
	DocsDir            string           `yaml:"docs_dir"`
	Theme              mkdocsTheme      `yaml:"theme"`
	MarkdownExtensions []string         `yaml:"markdown_extensions"`
	Nav                []map[string]any `yaml:"nav"`
}

type mkdocsTheme struct {
	Name string `yaml:"name"`
}

// Docs writes an mkdocs site with one folder per question.
type Docs struct {
	cfg types.DocsConfig
	log *charmlog.Logger
}

// NewDocs returns a Docs exporter.
func NewDocs(cfg types.DocsConfig, logger *charmlog.Logger) *Docs {
	return &Docs{cfg: cfg, log: logging.OrDiscard(logger)}
}

// Export writes docs/NNN/index.md, docs/NNN/note.md (only when absent) and
// docs/NNN/figures/ for every question under root, then mkdocs.yml.
func (d *Docs) Export(root string, w io.Writer) (BatchResult, error) {
	docs := filepath.Join(d.cfg.OutputDir, docsDir)
	if err := os.MkdirAll(docs, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating docs directory: %w", err)
	}

	var nav []map[string]any
	result, err := forEach(root, w, d.log, func(q types.Question) error {
		if err := d.writeQuestion(docs, q); err != nil {
			return err
		}
		nav = append(nav, map[string]any{
			q.Folder: []map[string]string{
				{"Question": q.Folder + "/index.md"},
				{"Note": q.Folder + "/" + noteFile},
			},
		})
		return nil
	})
	if err != nil {
		return result, err
	}

	cfg := mkdocsConfig{
		SiteName:           d.cfg.SiteName,
		DocsDir:            docsDir,
		Theme:              mkdocsTheme{Name: "material"},
		MarkdownExtensions: []string{"admonition", "pymdownx.details", "pymdownx.superfences", "pymdownx.tasklist"},
		Nav:                nav,
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return result, fmt.Errorf("marshaling mkdocs.yml: %w", err)
	}
	if err := writeFile(filepath.Join(d.cfg.OutputDir, "mkdocs.yml"), string(data)); err != nil {
		return result, fmt.Errorf("writing mkdocs.yml: %w", err)
	}

	fmt.Fprintf(w, "site written: %s\n", d.cfg.OutputDir)
	printSummary(w, result)
	return result, nil
}

func (d *Docs) writeQuestion(docs string, q types.Question) error {
	dir := filepath.Join(docs, q.Folder)

	figs, err := copyDocsFigures(q, filepath.Join(dir, docsFiguresDir))
	if err != nil {
		return err
	}
	if err := writeFile(filepath.Join(dir, "index.md"), docsIndex(q, figs)); err != nil {
		return err
	}

	note := filepath.Join(dir, noteFile)
	if _, err := os.Stat(note); os.IsNotExist(err) {
		return writeFile(note, noteTemplate)
	}
	return nil
}

// copyDocsFigures flattens both figure folders into dst and returns the
// copied names. dst is only created when there is something to copy.
func copyDocsFigures(q types.Question, dst string) ([]string, error) {
	var copied []string
	for _, dir := range types.FigureDirs {
		names, err := figures.List(filepath.Join(q.Dir, dir))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if err := copyFile(filepath.Join(q.Dir, dir, name), filepath.Join(dst, name)); err != nil {
				return nil, err
			}
			copied = append(copied, name)
		}
	}
	return copied, nil
}

func docsIndex(q types.Question, figs []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Question\n\n## %s\n\n%s\n\n", q.Folder, q.Text)

	if len(figs) > 0 {
		b.WriteString("## Figures\n\n")
		for _, name := range figs {
			fmt.Fprintf(&b, "![%s](%s/%s)\n\n", name, docsFiguresDir, name)
		}
	}

	b.WriteString("\n\n## Options\n\n")
	for _, letter := range types.OptionLetters {
		fmt.Fprintf(&b, "- [ ] **%s**. %s\n\n", letter, q.Option(letter))
	}

	b.WriteString("\n## Correct Answer\n\n??? note\n")
	for _, line := range strings.Split(q.Answer, "\n") {
		fmt.Fprintf(&b, "    %s\n", line)
	}

	fmt.Fprintf(&b, "\n\n## Explanation\n\n%s\n", q.Explanation)
	return b.String()
}
