// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	charmlog "github.com/charmbracelet/log"

	"github.com/pdiddy/qbank/internal/figures"
	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/internal/question"
	"github.com/pdiddy/qbank/internal/tool"
	"github.com/pdiddy/qbank/pkg/types"
)

// mediaDir is the image folder next to the md2anki markdown file.
const mediaDir = "media"

// Deck writes flashcard markdown in one of two dialects and can hand the
// result to the matching deck builder.
type Deck struct {
	cfg     types.DeckConfig
	builder tool.Runner
	log     *charmlog.Logger
}

// NewDeck returns a Deck exporter. builder may be nil when cfg.Build is
// false.
func NewDeck(cfg types.DeckConfig, builder tool.Runner, logger *charmlog.Logger) *Deck {
	if cfg.Style == "" {
		cfg.Style = types.DeckMd2anki
	}
	return &Deck{cfg: cfg, builder: builder, log: logging.OrDiscard(logger)}
}

// Path returns the markdown file the deck is written to.
func (d *Deck) Path() string {
	return filepath.Join(d.cfg.OutputDir, d.cfg.FileName)
}

// Export renders every question under root into the deck markdown file.
// When building is enabled a builder failure is reported to w but does not
// discard the written markdown.
func (d *Deck) Export(root string, w io.Writer) (BatchResult, error) {
	var render func(*strings.Builder, types.Question) error
	switch d.cfg.Style {
	case types.DeckMd2anki:
		if err := os.MkdirAll(filepath.Join(d.cfg.OutputDir, mediaDir), 0o755); err != nil {
			return BatchResult{}, fmt.Errorf("creating media directory: %w", err)
		}
		render = d.md2ankiCard
	case types.DeckMdankideck:
		render = func(b *strings.Builder, q types.Question) error {
			b.WriteString("\n\n")
			b.WriteString(mdankideckCard(q))
			return nil
		}
	default:
		return BatchResult{}, fmt.Errorf("unknown deck style %q", d.cfg.Style)
	}

	var b strings.Builder
	if d.cfg.Style == types.DeckMdankideck {
		fmt.Fprintf(&b, "# %s\n", d.cfg.Title)
	} else {
		fmt.Fprintf(&b, "# %s\n\n", d.cfg.Title)
	}

	result, err := forEach(root, w, d.log, func(q types.Question) error {
		var card strings.Builder
		if err := render(&card, q); err != nil {
			return err
		}
		b.WriteString(card.String())
		return nil
	})
	if err != nil {
		return result, err
	}

	if err := writeFile(d.Path(), b.String()); err != nil {
		return result, fmt.Errorf("writing deck: %w", err)
	}
	fmt.Fprintf(w, "deck written: %s\n", d.Path())
	printSummary(w, result)

	if d.cfg.Build {
		d.build(w)
	}
	return result, nil
}

// md2ankiCard writes one card and copies its images into the media folder.
func (d *Deck) md2ankiCard(b *strings.Builder, q types.Question) error {
	qImages, err := d.copyMedia(q, types.QuestionFiguresDir)
	if err != nil {
		return err
	}
	eImages, err := d.copyMedia(q, types.ExplanationFiguresDir)
	if err != nil {
		return err
	}

	fmt.Fprintf(b, "## Question %s\n\n", q.Folder)
	fmt.Fprintf(b, "%s\n\n", q.Text)
	for _, img := range qImages {
		fmt.Fprintf(b, "![%s](%s)\n\n", img[0], img[1])
	}

	b.WriteString("**選項：**\n\n")
	for _, letter := range types.OptionLetters {
		if opt := q.Option(letter); opt != "" {
			fmt.Fprintf(b, "**%s.** %s\n\n", letter, opt)
		}
	}
	b.WriteString("---\n\n")

	fmt.Fprintf(b, "**正確答案：%s**\n\n", q.Answer)
	b.WriteString("**解釋：**\n\n")
	for _, line := range strings.Split(q.Explanation, "\n") {
		if strings.TrimSpace(line) != "" {
			fmt.Fprintf(b, "%s\n\n", sanitizeHeadings(line))
		}
	}
	for _, img := range eImages {
		fmt.Fprintf(b, "![%s](%s)\n\n", img[0], img[1])
	}
	b.WriteString("---\n\n")
	return nil
}

// copyMedia copies the images of one figure folder to media/qNNN_<name> and
// returns (original name, link) pairs.
func (d *Deck) copyMedia(q types.Question, figDir string) ([][2]string, error) {
	names, err := figures.Images(filepath.Join(q.Dir, figDir))
	if err != nil {
		return nil, err
	}
	var out [][2]string
	for _, name := range names {
		mediaName := fmt.Sprintf("q%s_%s", q.Folder, name)
		dst := filepath.Join(d.cfg.OutputDir, mediaDir, mediaName)
		if err := copyFile(filepath.Join(q.Dir, figDir, name), dst); err != nil {
			return nil, err
		}
		out = append(out, [2]string{name, mediaDir + "/" + mediaName})
	}
	return out, nil
}

// sanitizeHeadings keeps explanation text from opening new cards.
func sanitizeHeadings(line string) string {
	return strings.ReplaceAll(line, "##", "*")
}

func mdankideckCard(q types.Question) string {
	var b strings.Builder
	b.WriteString("<h2 markdown=\"block\" style=\"font-size: 16px;\">\n")
	fmt.Fprintf(&b, "%s\n\n", q.Folder)
	fmt.Fprintf(&b, "%s\n\n", question.StripNumberPrefix(q.Text, q.ID))
	b.WriteString("**選項：**\n")
	for _, letter := range types.OptionLetters {
		fmt.Fprintf(&b, "\n- %s. %s\n", letter, q.Option(letter))
	}
	b.WriteString("</h2>\n\n")
	fmt.Fprintf(&b, "**正確答案：%s**\n\n", q.Answer)
	b.WriteString("**解釋：**\n")
	b.WriteString(q.Explanation)
	return b.String()
}

func (d *Deck) build(w io.Writer) {
	if d.builder == nil || !d.builder.Available() {
		fmt.Fprintf(w, "build skipped: deck builder %q not found\n", d.builderName())
		d.log.Warn("deck builder not available", "builder", d.builderName())
		return
	}

	var args []string
	switch d.cfg.Style {
	case types.DeckMd2anki:
		base := strings.TrimSuffix(d.cfg.FileName, filepath.Ext(d.cfg.FileName))
		args = []string{d.Path(), "-o-anki", filepath.Join(d.cfg.OutputDir, base+".apkg"), "-file-dir", d.cfg.OutputDir}
	case types.DeckMdankideck:
		args = []string{d.cfg.OutputDir, d.cfg.OutputDir}
	}

	if err := d.builder.Run(args...); err != nil {
		fmt.Fprintf(w, "build failed: %v\n", err)
		d.log.Error("deck build failed", "builder", d.builder.Name(), "err", err)
		return
	}
	fmt.Fprintf(w, "deck built with %s\n", d.builder.Name())
}

func (d *Deck) builderName() string {
	if d.builder != nil {
		return d.builder.Name()
	}
	if d.cfg.BuilderBin != "" {
		return d.cfg.BuilderBin
	}
	return string(d.cfg.Style)
}
