// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package tool runs the external programs qbank delegates to: unar for RAR
// archives and the flashcard deck builders (md2anki, mdankideck).
package tool

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Runner executes one external binary.
type Runner interface {
	// Name returns the binary name (e.g. "unar").
	Name() string

	// Available reports whether the binary exists on PATH.
	Available() bool

	// Run executes the binary with args and waits for it to exit. A non-zero
	// exit status is returned as an error carrying the captured stderr.
	Run(args ...string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args []string, stdout, stderr io.Writer) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args []string, stdout, stderr io.Writer) error {
	cmd := exec.Command(name, args...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	return cmd.Run()
}

// binary implements Runner for a named program. Stdout is forwarded to out
// (discarded when nil); stderr is captured for error messages.
type binary struct {
	bin  string
	out  io.Writer
	exec executor
}

var defaultExec = &osExecutor{}

// New returns a Runner for bin. The program's stdout is written to out,
// which may be nil.
func New(bin string, out io.Writer) Runner {
	return newBinary(bin, out, defaultExec)
}

func newBinary(bin string, out io.Writer, exec executor) *binary {
	if out == nil {
		out = io.Discard
	}
	return &binary{bin: bin, out: out, exec: exec}
}

func (b *binary) Name() string { return b.bin }

func (b *binary) Available() bool {
	_, err := b.exec.LookPath(b.bin)
	return err == nil
}

func (b *binary) Run(args ...string) error {
	var stderr bytes.Buffer
	if err := b.exec.Run(b.bin, args, b.out, &stderr); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("running %s: %w", b.bin, err)
		}
		return fmt.Errorf("running %s: %w: %s", b.bin, err, msg)
	}
	return nil
}
