// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize rebuilds the canonical per-question directory tree from
// located payloads.
//
// Every canonical directory <output_root>/<ID:03d>/ is removed and recreated
// on each run, filled from the payload, and then completed so that all
// required text files and both figure folders exist.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/gofrs/flock"
	"github.com/otiai10/copy"

	"github.com/pdiddy/qbank/internal/figures"
	"github.com/pdiddy/qbank/internal/locate"
	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/pkg/types"
)

const (
	// ReportFile is written to the output root after every run.
	ReportFile = "report.yaml"

	lockFile = ".qbank.lock"
)

var (
	// ErrLocked is returned when another run holds the output root.
	ErrLocked = errors.New("output root is locked by another run")

	// ErrMalformed is returned in strict mode for payloads without any
	// marker file.
	ErrMalformed = errors.New("malformed payload: no " + types.MarkerFile)
)

// Locator finds payloads for question IDs.
type Locator interface {
	Locate(id int) (locate.Payload, error)
}

// Normalizer builds canonical directories under cfg.OutputRoot.
type Normalizer struct {
	cfg     types.NormalizeConfig
	locator Locator
	log     *charmlog.Logger
}

// New returns a Normalizer. A nil logger discards diagnostics.
func New(cfg types.NormalizeConfig, locator Locator, logger *charmlog.Logger) *Normalizer {
	if len(cfg.RequiredFiles) == 0 {
		cfg.RequiredFiles = types.RequiredFiles
	}
	return &Normalizer{cfg: cfg, locator: locator, log: logging.OrDiscard(logger)}
}

// Run normalizes every ID in the configured range, printing one status line
// per ID and a summary to w. Per-ID problems become skipped results; only
// environment failures (lock, unwritable output) are returned as errors.
// The report is also written to <output_root>/report.yaml.
func (n *Normalizer) Run(ctx context.Context, w io.Writer) (types.BatchReport, error) {
	report := types.BatchReport{First: n.cfg.First, Last: n.cfg.Last}

	if err := os.MkdirAll(n.cfg.OutputRoot, 0o755); err != nil {
		return report, fmt.Errorf("creating output root: %w", err)
	}

	lock := flock.New(filepath.Join(n.cfg.OutputRoot, lockFile))
	locked, err := lock.TryLock()
	if err != nil {
		return report, fmt.Errorf("locking output root: %w", err)
	}
	if !locked {
		return report, fmt.Errorf("%s: %w", n.cfg.OutputRoot, ErrLocked)
	}
	defer lock.Unlock()

	for _, id := range n.cfg.IDs() {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		res, err := n.NormalizeID(id)
		if err != nil {
			return report, err
		}
		report.Results = append(report.Results, res)
		printResult(w, res)
	}

	report.Missing, err = Audit(n.cfg.OutputRoot, n.cfg.First, n.cfg.Last)
	if err != nil {
		return report, err
	}

	fmt.Fprintf(w, "\nBatch summary: %d normalized, %d skipped (range %s-%s)\n",
		report.Normalized(), report.Skipped(), types.DirName(n.cfg.First), types.DirName(n.cfg.Last))
	if report.Complete() {
		fmt.Fprintf(w, "All %d questions present.\n", len(n.cfg.IDs()))
	} else {
		fmt.Fprintf(w, "Missing: %v\n", report.Missing)
	}

	if err := WriteReport(filepath.Join(n.cfg.OutputRoot, ReportFile), report); err != nil {
		return report, err
	}
	return report, nil
}

// NormalizeID locates and normalizes a single question. A missing or
// unusable source yields a skipped Result; the returned error is reserved
// for failures writing the output tree.
func (n *Normalizer) NormalizeID(id int) (types.Result, error) {
	res := types.Result{ID: id, Status: types.StatusSkipped}

	payload, err := n.locator.Locate(id)
	defer payload.Cleanup()

	switch {
	case err == nil, errors.Is(err, locate.ErrNoMarker):
	case errors.Is(err, locate.ErrNotFound):
		res.Reason = locate.ErrNotFound.Error()
		n.log.Warn("question skipped", "id", id, "reason", res.Reason)
		return res, nil
	default:
		res.Reason = err.Error()
		n.log.Warn("question skipped", "id", id, "reason", res.Reason)
		return res, nil
	}

	res.Origin, res.Source = payload.Origin, payload.Source

	dir := payload.Dir
	if !payload.Marker {
		dir = payload.Root
	}
	_, lenient, err := n.NormalizeDir(dir, id)
	if errors.Is(err, ErrMalformed) {
		res.Reason = err.Error()
		n.log.Warn("question skipped", "id", id, "source", payload.Source, "reason", res.Reason)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("normalizing question %s: %w", types.DirName(id), err)
	}

	res.Status = types.StatusNormalized
	res.Lenient = lenient
	if lenient {
		n.log.Warn("no marker file found, copied source as-is", "id", id, "source", payload.Source)
	}
	return res, nil
}

// NormalizeDir replaces the canonical directory for id with the contents of
// payload and returns its path. The marker directory is searched for
// breadth-first under payload; when none exists the whole payload is copied
// (lenient is true) unless the Normalizer is strict, in which case
// ErrMalformed is returned and no canonical directory is left behind.
func (n *Normalizer) NormalizeDir(payload string, id int) (target string, lenient bool, err error) {
	target = filepath.Join(n.cfg.OutputRoot, types.DirName(id))

	if err := os.RemoveAll(target); err != nil {
		return "", false, fmt.Errorf("removing %s: %w", target, err)
	}

	markerDir, found := FindMarkerDeep(payload)
	if !found && n.cfg.Strict {
		return "", false, ErrMalformed
	}

	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", false, fmt.Errorf("creating %s: %w", target, err)
	}

	if found {
		err = copyPayload(markerDir, target)
	} else {
		err = copyAll(payload, target)
	}
	if err != nil {
		return "", false, err
	}

	if err := EnsureRequired(target, n.cfg.RequiredFiles); err != nil {
		return "", false, err
	}
	return target, !found, nil
}

// FindMarkerDeep returns the shallowest directory under root that contains
// the marker file. Siblings are visited in natural order.
func FindMarkerDeep(root string) (string, bool) {
	queue := []string{root}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		if info, err := os.Stat(filepath.Join(dir, types.MarkerFile)); err == nil && info.Mode().IsRegular() {
			return dir, true
		}
		for _, name := range locate.Subdirs(dir) {
			queue = append(queue, filepath.Join(dir, name))
		}
	}
	return "", false
}

// copyPayload copies the plain files at src's top level and the figure
// folders, which may sit directly in src or one wrapper folder deeper.
func copyPayload(src, target string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("reading payload %s: %w", src, err)
	}

	for _, e := range entries {
		path := filepath.Join(src, e.Name())
		switch {
		case e.Type().IsRegular():
			if err := copyFile(path, filepath.Join(target, e.Name())); err != nil {
				return err
			}
		case e.IsDir() && isFigureDir(e.Name()):
			if err := copyFigures(path, filepath.Join(target, e.Name())); err != nil {
				return err
			}
		case e.IsDir() && !locate.Ignored(e.Name()):
			if err := copyNestedFigures(path, target); err != nil {
				return err
			}
		}
	}
	return nil
}

func copyNestedFigures(wrapper, target string) error {
	entries, err := os.ReadDir(wrapper)
	if err != nil {
		return fmt.Errorf("reading %s: %w", wrapper, err)
	}
	for _, e := range entries {
		if e.IsDir() && isFigureDir(e.Name()) {
			if err := copyFigures(filepath.Join(wrapper, e.Name()), filepath.Join(target, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// copyFigures copies the non-hidden regular files of src into dst.
func copyFigures(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dst, err)
	}
	names, err := figures.List(src)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := copyFile(filepath.Join(src, name), filepath.Join(dst, name)); err != nil {
			return err
		}
	}
	return nil
}

// copyAll is the lenient fallback: everything at src's top level is copied
// recursively, except archive-tool metadata.
func copyAll(src, target string) error {
	opts := copy.Options{
		PreserveTimes: true,
		Skip: func(info os.FileInfo, _, _ string) (bool, error) {
			return info.IsDir() && info.Name() == "__MACOSX", nil
		},
	}
	if err := copy.Copy(src, target, opts); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	if err := copy.Copy(src, dst, copy.Options{PreserveTimes: true}); err != nil {
		return fmt.Errorf("copying %s: %w", src, err)
	}
	return nil
}

func isFigureDir(name string) bool {
	for _, d := range types.FigureDirs {
		if name == d {
			return true
		}
	}
	return false
}

// EnsureRequired creates any missing figure folder and required text file
// in dir. A missing answer file gets the placeholder; other files are empty.
// Existing files are left untouched.
func EnsureRequired(dir string, required []string) error {
	for _, d := range types.FigureDirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", d, err)
		}
	}

	for _, name := range required {
		path := filepath.Join(dir, name)
		if _, err := os.Lstat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("checking %s: %w", path, err)
		}

		content := ""
		if name == types.AnswerFile {
			content = types.AnswerPlaceholder
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

func printResult(w io.Writer, res types.Result) {
	id := types.DirName(res.ID)
	switch {
	case res.Status == types.StatusSkipped:
		fmt.Fprintf(w, "skipped:    %s (%s)\n", id, res.Reason)
	case res.Lenient:
		fmt.Fprintf(w, "normalized: %s (%s %s, copied as-is)\n", id, res.Origin, res.Source)
	default:
		fmt.Fprintf(w, "normalized: %s (%s %s)\n", id, res.Origin, res.Source)
	}
}
