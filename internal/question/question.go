// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package question reads canonical question directories produced by the
// normalize stage.
package question

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/pdiddy/qbank/internal/figures"
	"github.com/pdiddy/qbank/internal/natsort"
	"github.com/pdiddy/qbank/pkg/types"
)

// Entry is a numerically named child directory of a canonical root.
type Entry struct {
	ID     int
	Folder string
	Dir    string

	// HasMarker reports whether the directory holds the marker file.
	HasMarker bool
}

// Scan lists the numerically named directories under root, ordered by
// numeric value. Other entries are ignored.
func Scan(root string) ([]Entry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	var entries []Entry
	for _, e := range dirEntries {
		if !e.IsDir() || !isNumeric(e.Name()) {
			continue
		}
		id, err := strconv.Atoi(e.Name())
		if err != nil {
			continue
		}
		dir := filepath.Join(root, e.Name())
		_, statErr := os.Stat(filepath.Join(dir, types.MarkerFile))
		entries = append(entries, Entry{
			ID:        id,
			Folder:    e.Name(),
			Dir:       dir,
			HasMarker: statErr == nil,
		})
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if a.ID != b.ID {
			return a.ID - b.ID
		}
		return natsort.Compare(a.Folder, b.Folder)
	})
	return entries, nil
}

// Load reads the question in dir. Missing text files read as empty, except
// the answer which reads as the placeholder. Text is trimmed of surrounding
// whitespace and figure names are listed in natural order.
func Load(dir string) (types.Question, error) {
	folder := filepath.Base(dir)
	id, _ := strconv.Atoi(folder)

	q := types.Question{
		ID:      id,
		Folder:  folder,
		Dir:     dir,
		Options: make(map[string]string, len(types.OptionLetters)),
	}

	var err error
	if q.Text, err = readText(dir, types.MarkerFile); err != nil {
		return q, err
	}
	for _, letter := range types.OptionLetters {
		if q.Options[letter], err = readText(dir, types.OptionFile(letter)); err != nil {
			return q, err
		}
	}
	if q.Explanation, err = readText(dir, types.ExplanationFile); err != nil {
		return q, err
	}

	answer, err := os.ReadFile(filepath.Join(dir, types.AnswerFile))
	switch {
	case errors.Is(err, os.ErrNotExist):
		q.Answer = types.AnswerPlaceholder
	case err != nil:
		return q, fmt.Errorf("reading %s: %w", types.AnswerFile, err)
	default:
		q.Answer = strings.TrimSpace(string(answer))
	}

	if q.QuestionFigures, err = figures.List(filepath.Join(dir, types.QuestionFiguresDir)); err != nil {
		return q, err
	}
	if q.ExplanationFigures, err = figures.List(filepath.Join(dir, types.ExplanationFiguresDir)); err != nil {
		return q, err
	}
	return q, nil
}

func readText(dir, name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return strings.TrimSpace(string(data)), nil
}

// StripNumberPrefix removes a leading "<id>→" or "<ID:03d>→" from text and
// trims the remainder.
func StripNumberPrefix(text string, id int) string {
	for _, p := range []string{strconv.Itoa(id) + "→", types.DirName(id) + "→"} {
		if rest, ok := strings.CutPrefix(text, p); ok {
			return strings.TrimSpace(rest)
		}
	}
	return strings.TrimSpace(text)
}

// CleanText drops non-printable characters other than newline and tab and
// removes blank lines.
func CleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || unicode.IsPrint(r) {
			return r
		}
		return -1
	}, strings.TrimSpace(text))

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// SplitFirstLine returns the first line of text and everything after it.
func SplitFirstLine(text string) (first, rest string) {
	first, rest, _ = strings.Cut(text, "\n")
	return first, rest
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
