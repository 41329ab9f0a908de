// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package locate finds the payload directory that holds a question's files.
//
// Raw sources vary: a question folder may hold the files directly, may wrap
// them in a same-named subfolder or some other subfolder, or may only exist
// as a ZIP or RAR archive. The presence of the marker file (question.txt) is
// the only signal that a directory is a payload.
package locate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	charmlog "github.com/charmbracelet/log"

	"github.com/pdiddy/qbank/internal/archive"
	"github.com/pdiddy/qbank/internal/logging"
	"github.com/pdiddy/qbank/internal/natsort"
	"github.com/pdiddy/qbank/pkg/types"
)

var (
	// ErrNotFound means no folder or archive exists for the ID.
	ErrNotFound = errors.New("no source folder or archive")

	// ErrNoMarker means sources exist but none contains the marker file
	// within the searched depth. Locate still returns the source root so a
	// caller may apply a lenient fallback.
	ErrNoMarker = errors.New("no marker file in source")
)

// Payload is the located source for one question ID.
type Payload struct {
	ID int

	// Dir holds the marker file. When Marker is false it equals Root.
	Dir string

	// Root is the top-level source: the question folder or the scratch
	// directory an archive was extracted into.
	Root string

	Origin types.Origin

	// Source is the folder or archive path the payload came from.
	Source string

	// Marker reports whether Dir contains the marker file.
	Marker bool

	scratch string
}

// Cleanup removes the scratch directory of an extracted archive. It is a
// no-op for folder payloads.
func (p Payload) Cleanup() error {
	if p.scratch == "" {
		return nil
	}
	return os.RemoveAll(p.scratch)
}

// Locator searches the configured source and archive roots.
type Locator struct {
	cfg       types.NormalizeConfig
	extractor archive.Extractor
	log       *charmlog.Logger
}

// NewLocator returns a Locator over cfg's SourceRoot and ArchivesRoot.
// extractor may be nil, in which case archives are ignored.
func NewLocator(cfg types.NormalizeConfig, extractor archive.Extractor, logger *charmlog.Logger) *Locator {
	return &Locator{cfg: cfg, extractor: extractor, log: logging.OrDiscard(logger)}
}

// Locate finds the payload for id. The search order is:
//
//  1. each question folder (zero-padded name, then plain number): the folder
//     itself, a subfolder named after the ID, then any immediate subfolder;
//  2. each archive (.zip then .rar, padded name then plain), extracted into
//     a scratch directory and searched the same way.
//
// Extraction failures are logged and the next candidate is tried. When no
// candidate has the marker, Locate returns ErrNoMarker together with the
// first existing source, or ErrNotFound when nothing exists. Callers must
// call Payload.Cleanup when done.
func (l *Locator) Locate(id int) (Payload, error) {
	var fallback *Payload

	for _, folder := range l.folderCandidates(id) {
		if dir, ok := FindMarkerDir(folder, id); ok {
			return Payload{
				ID: id, Dir: dir, Root: folder,
				Origin: types.OriginFolder, Source: folder, Marker: true,
			}, nil
		}
		l.log.Debug("folder has no marker file", "id", id, "folder", folder)
		if fallback == nil {
			fallback = &Payload{
				ID: id, Dir: folder, Root: folder,
				Origin: types.OriginFolder, Source: folder,
			}
		}
	}

	for _, arc := range l.archiveCandidates(id) {
		scratch, err := l.extract(id, arc)
		if err != nil {
			l.log.Warn("archive extraction failed", "id", id, "archive", arc, "err", err)
			continue
		}
		p := Payload{
			ID: id, Dir: scratch, Root: scratch,
			Origin: types.OriginArchive, Source: arc, scratch: scratch,
		}
		if dir, ok := FindMarkerDir(scratch, id); ok {
			if fallback != nil {
				fallback.Cleanup()
			}
			p.Dir, p.Marker = dir, true
			return p, nil
		}
		l.log.Debug("archive has no marker file", "id", id, "archive", arc)
		if fallback == nil {
			fallback = &p
			continue
		}
		p.Cleanup()
	}

	if fallback != nil {
		return *fallback, fmt.Errorf("question %s: %w", types.DirName(id), ErrNoMarker)
	}
	return Payload{ID: id}, fmt.Errorf("question %s: %w", types.DirName(id), ErrNotFound)
}

func (l *Locator) extract(id int, archivePath string) (string, error) {
	if l.cfg.ScratchDir != "" {
		if err := os.MkdirAll(l.cfg.ScratchDir, 0o755); err != nil {
			return "", fmt.Errorf("creating scratch directory: %w", err)
		}
	}
	scratch, err := os.MkdirTemp(l.cfg.ScratchDir, "qbank-"+types.DirName(id)+"-")
	if err != nil {
		return "", fmt.Errorf("creating scratch directory: %w", err)
	}
	if err := l.extractor.Extract(archivePath, scratch); err != nil {
		os.RemoveAll(scratch)
		return "", err
	}
	return scratch, nil
}

// folderCandidates returns the existing question folders for id in search
// order.
func (l *Locator) folderCandidates(id int) []string {
	if l.cfg.SourceRoot == "" {
		return nil
	}
	var out []string
	for _, name := range IDNames(id) {
		p := filepath.Join(l.cfg.SourceRoot, name)
		if isDir(p) {
			out = append(out, p)
		}
	}
	return out
}

// archiveCandidates returns the existing archives for id in search order.
func (l *Locator) archiveCandidates(id int) []string {
	if l.cfg.ArchivesRoot == "" || l.extractor == nil {
		return nil
	}
	var out []string
	for _, ext := range archive.Extensions {
		for _, name := range IDNames(id) {
			p := filepath.Join(l.cfg.ArchivesRoot, name+ext)
			if isFile(p) {
				out = append(out, p)
			}
		}
	}
	return out
}

// IDNames returns the folder/archive base names that may denote id: the
// zero-padded form first, then the plain number when it differs.
func IDNames(id int) []string {
	padded, plain := types.DirName(id), strconv.Itoa(id)
	if padded == plain {
		return []string{padded}
	}
	return []string{padded, plain}
}

// FindMarkerDir searches root for the directory holding the marker file:
// root itself, then a subfolder named after id, then any immediate
// subfolder in natural order. Hidden folders and __MACOSX are ignored.
func FindMarkerDir(root string, id int) (string, bool) {
	if hasMarker(root) {
		return root, true
	}
	for _, name := range IDNames(id) {
		sub := filepath.Join(root, name)
		if hasMarker(sub) {
			return sub, true
		}
	}
	for _, name := range Subdirs(root) {
		sub := filepath.Join(root, name)
		if hasMarker(sub) {
			return sub, true
		}
	}
	return "", false
}

// Subdirs returns the names of root's immediate subdirectories in natural
// order, skipping hidden folders and archive-tool metadata folders.
func Subdirs(root string) []string {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !Ignored(e.Name()) {
			names = append(names, e.Name())
		}
	}
	natsort.SortByKey(names)
	return names
}

// Ignored reports whether a directory entry is archive or OS noise.
func Ignored(name string) bool {
	return name == "__MACOSX" || (len(name) > 0 && name[0] == '.')
}

func hasMarker(dir string) bool {
	return isFile(filepath.Join(dir, types.MarkerFile))
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}
