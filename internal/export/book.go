// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/pkg/types"
)

const (
	bookSrcDir = "src"

	// bookImageLink is the symlink inside src/ that points at the canonical
	// root so chapter images resolve.
	bookImageLink = "normalized_questions"
)

// bookTOML is the mdBook configuration file.
type bookTOML struct {
	Book   bookSection   `toml:"book"`
	Output bookOutputSet `toml:"output"`
}

type bookSection struct {
	Title       string   `toml:"title"`
	Authors     []string `toml:"authors"`
	Description string   `toml:"description"`
	Language    string   `toml:"language"`
}

type bookOutputSet struct {
	HTML bookHTML `toml:"html"`
}

type bookHTML struct {
	DefaultTheme       string `toml:"default-theme"`
	PreferredDarkTheme string `toml:"preferred-dark-theme"`
	CurlyQuotes        bool   `toml:"curly-quotes"`
	MathjaxSupport     bool   `toml:"mathjax-support"`
}

// Book writes an mdBook source tree with one chapter per question.
type Book struct {
	cfg types.BookConfig
	log *charmlog.Logger
}

// NewBook returns a Book exporter.
func NewBook(cfg types.BookConfig, logger *charmlog.Logger) *Book {
	return &Book{cfg: cfg, log: logging.OrDiscard(logger)}
}

// Export writes book.toml, src/SUMMARY.md, src/README.md and
// src/question_NNN.md for every question under root.
func (bk *Book) Export(root string, w io.Writer) (BatchResult, error) {
	src := filepath.Join(bk.cfg.OutputDir, bookSrcDir)
	if err := os.MkdirAll(src, 0o755); err != nil {
		return BatchResult{}, fmt.Errorf("creating book source directory: %w", err)
	}

	var summary strings.Builder
	summary.WriteString("# Summary\n\n")

	result, err := forEach(root, w, bk.log, func(q types.Question) error {
		name := "question_" + q.Folder + ".md"
		if err := writeFile(filepath.Join(src, name), bookChapter(q)); err != nil {
			return err
		}
		fmt.Fprintf(&summary, "- [Question %d](%s)\n", q.ID, name)
		return nil
	})
	if err != nil {
		return result, err
	}

	if err := bk.writeConfig(); err != nil {
		return result, err
	}
	if err := writeFile(filepath.Join(src, "SUMMARY.md"), summary.String()); err != nil {
		return result, fmt.Errorf("writing SUMMARY.md: %w", err)
	}
	readme := fmt.Sprintf("# Introduction\n\n%s\n", bk.cfg.Description)
	if err := writeFile(filepath.Join(src, "README.md"), readme); err != nil {
		return result, fmt.Errorf("writing README.md: %w", err)
	}
	if err := linkImages(src, root); err != nil {
		return result, err
	}

	fmt.Fprintf(w, "book written: %s\n", bk.cfg.OutputDir)
	printSummary(w, result)
	return result, nil
}

func (bk *Book) writeConfig() error {
	cfg := bookTOML{
		Book: bookSection{
			Title:       bk.cfg.Title,
			Authors:     []string{"Generated"},
			Description: bk.cfg.Description,
			Language:    bk.cfg.Language,
		},
		Output: bookOutputSet{HTML: bookHTML{
			DefaultTheme:       "light",
			PreferredDarkTheme: "navy",
			CurlyQuotes:        true,
			MathjaxSupport:     true,
		}},
	}
	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling book.toml: %w", err)
	}
	return writeFile(filepath.Join(bk.cfg.OutputDir, "book.toml"), string(data))
}

// linkImages creates src/normalized_questions pointing at root, unless
// something already exists at that path.
func linkImages(src, root string) error {
	link := filepath.Join(src, bookImageLink)
	if _, err := os.Lstat(link); err == nil {
		return nil
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return err
	}
	target, err := filepath.Rel(absSrc, absRoot)
	if err != nil {
		target = absRoot
	}
	if err := os.Symlink(target, link); err != nil {
		return fmt.Errorf("linking canonical root into book: %w", err)
	}
	return nil
}

func bookChapter(q types.Question) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Question %d\n\n%s\n\n", q.ID, q.Text)

	if len(q.QuestionFigures) > 0 {
		b.WriteString("\n**Question Figures:**\n\n")
		writeBookFigures(&b, q, types.QuestionFiguresDir, q.QuestionFigures)
	}

	b.WriteString("\n**Options:**\n\n")
	for _, letter := range types.OptionLetters {
		if opt := q.Option(letter); opt != "" {
			fmt.Fprintf(&b, "**%s:** %s\n\n\n", letter, opt)
		}
	}

	fmt.Fprintf(&b, "\n**Correct Answer:** %s\n\n\n", q.Answer)

	if q.Explanation != "" {
		fmt.Fprintf(&b, "\n**Explanation:**\n\n%s\n\n", q.Explanation)
	}

	if len(q.ExplanationFigures) > 0 {
		b.WriteString("\n**Explanation Figures:**\n\n")
		writeBookFigures(&b, q, types.ExplanationFiguresDir, q.ExplanationFigures)
	}
	return b.String()
}

func writeBookFigures(b *strings.Builder, q types.Question, dir string, names []string) {
	for _, name := range names {
		link := strings.Join([]string{bookImageLink, q.Folder, dir, name}, "/")
		fmt.Fprintf(b, "#### %s\n\n![%s](%s)\n\n", name, name, link)
	}
}
