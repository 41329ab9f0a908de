// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package archive extracts question archives. ZIP archives are read
// in-process; RAR archives are handed to the external unar tool.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/qbank/internal/tool"
)

// Supported archive extensions, in lookup order.
const (
	ExtZip = ".zip"
	ExtRar = ".rar"
)

// Extensions lists the supported extensions in the order archives are tried.
var Extensions = []string{ExtZip, ExtRar}

// ErrUnsupported is returned for archives with an unknown extension.
var ErrUnsupported = errors.New("unsupported archive format")

// Extractor unpacks an archive into a destination directory.
type Extractor interface {
	Extract(archivePath, dest string) error
}

// Unpacker is the production Extractor. It dispatches on the file
// extension.
type Unpacker struct {
	// Unar runs the external RAR extraction tool.
	Unar tool.Runner
}

// NewUnpacker returns an Unpacker that extracts RAR archives with unar.
func NewUnpacker(unar tool.Runner) *Unpacker {
	return &Unpacker{Unar: unar}
}

// Extract unpacks archivePath into dest, creating dest if needed.
func (u *Unpacker) Extract(archivePath, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating extraction directory %s: %w", dest, err)
	}

	switch strings.ToLower(filepath.Ext(archivePath)) {
	case ExtZip:
		return ExtractZip(archivePath, dest)
	case ExtRar:
		if u.Unar == nil {
			return fmt.Errorf("extracting %s: no RAR tool configured", archivePath)
		}
		// -d forces a containing directory, -o sets where it is created.
		if err := u.Unar.Run("-d", "-o", dest, archivePath); err != nil {
			return fmt.Errorf("extracting %s: %w", archivePath, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, archivePath)
}

// ExtractZip unpacks a ZIP archive into dest. Entries that would land
// outside dest are rejected.
func ExtractZip(archivePath, dest string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("opening zip %s: %w", archivePath, err)
	}
	defer r.Close()

	root, err := filepath.Abs(dest)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", dest, err)
	}

	for _, f := range r.File {
		target, err := entryPath(root, f.Name)
		if err != nil {
			return fmt.Errorf("extracting %s: %w", archivePath, err)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := writeEntry(f, target); err != nil {
			return fmt.Errorf("extracting %s from %s: %w", f.Name, archivePath, err)
		}
	}
	return nil
}

func entryPath(root, name string) (string, error) {
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
