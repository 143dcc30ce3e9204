// Package ci writes GitHub Actions step outputs.
package ci

import (
	"fmt"
	"io"
	"os"
)

// Writer appends name=value pairs to the GITHUB_OUTPUT file when the
// environment provides one and falls back to the legacy ::set-output
// workflow command on stderr otherwise. Stdout stays reserved for the
// generated document.
type Writer struct {
	outputPath string
	fallback   io.Writer
}

// NewWriter builds a writer from the ambient GITHUB_OUTPUT variable.
func NewWriter() *Writer {
	return &Writer{
		outputPath: os.Getenv("GITHUB_OUTPUT"),
		fallback:   os.Stderr,
	}
}

// Set writes one output value.
func (w *Writer) Set(name, value string) error {
	if w.outputPath == "" {
		_, err := fmt.Fprintf(w.fallback, "::set-output name=%s::%s\n", name, value)
		return err
	}
	f, err := os.OpenFile(w.outputPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", w.outputPath, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, "%s=%s\n", name, value); err != nil {
		return fmt.Errorf("writing output %s: %w", name, err)
	}
	return nil
}
