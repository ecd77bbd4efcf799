// Package selection provides the text the user wants to work on: piped input,
// a file, the clipboard, or a source tree. Providers are read synchronously at
// the moment of submission.
package selection

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

// Provider returns the current selection. An empty string means nothing is
// selected and is not an error.
type Provider interface {
	Selection(ctx context.Context) (string, error)
}

// Static is a fixed selection, typically taken from command line arguments.
type Static string

func (s Static) Selection(ctx context.Context) (string, error) {
	return string(s), nil
}

// Reader reads its source once and returns the same text on every call.
type Reader struct {
	r    io.Reader
	once sync.Once
	text string
	err  error
}

// NewReader returns a Provider over r, usually os.Stdin.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

func (p *Reader) Selection(ctx context.Context) (string, error) {
	p.once.Do(func() {
		b, err := io.ReadAll(p.r)
		if err != nil {
			p.err = fmt.Errorf("failed to read selection: %w", err)
			return
		}
		p.text = trimLineEnd(string(b))
	})
	return p.text, p.err
}

// File reads the selection from a file on every call.
type File struct {
	Path string
}

func (f File) Selection(ctx context.Context) (string, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return trimLineEnd(string(b)), nil
}

// Clipboard reads the system clipboard.
type Clipboard struct {
	read func() (string, error)
}

// NewClipboard returns a Provider backed by the system clipboard.
func NewClipboard() *Clipboard {
	return &Clipboard{read: clipboard.ReadAll}
}

func (c *Clipboard) Selection(ctx context.Context) (string, error) {
	if c.read == nil {
		return "", fmt.Errorf("clipboard is not available")
	}
	text, err := c.read()
	if err != nil {
		return "", fmt.Errorf("failed to read clipboard: %w", err)
	}
	return text, nil
}

// ClipboardAvailable reports whether the platform has a usable clipboard.
func ClipboardAvailable() bool {
	return !clipboard.Unsupported
}

// trimLineEnd drops trailing line breaks only; leading indentation is part
// of the selection.
func trimLineEnd(s string) string {
	return strings.TrimRight(s, "\r\n")
}

// PipedStdin reports whether stdin is a pipe or file rather than a terminal.
func PipedStdin() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
