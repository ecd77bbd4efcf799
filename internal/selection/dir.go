package selection

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/boyter/gocodewalker"
)

// DefaultDirMaxBytes caps how much source a Dir selection collects.
const DefaultDirMaxBytes = 64 * 1024

// Dir selects the source files under Root, skipping anything ignored by
// .gitignore or .ignore files. Each file is prefixed with a path header.
// Files are added whole until MaxBytes is reached; only a first file that
// alone exceeds MaxBytes is truncated.
type Dir struct {
	Root     string
	MaxBytes int
}

func (d Dir) Selection(ctx context.Context) (string, error) {
	if st, err := os.Stat(d.Root); err != nil {
		return "", fmt.Errorf("failed to read directory: %w", err)
	} else if !st.IsDir() {
		return "", fmt.Errorf("not a directory: %s", d.Root)
	}

	maxBytes := d.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultDirMaxBytes
	}

	files, err := d.walk(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		rel, err := filepath.Rel(d.Root, path)
		if err != nil {
			rel = path
		}
		section := fmt.Sprintf("// %s\n%s\n", filepath.ToSlash(rel), strings.TrimRight(string(content), "\n"))
		if b.Len()+len(section) > maxBytes {
			// A first file larger than the cap is cut rather than dropped.
			if b.Len() == 0 {
				b.WriteString(strings.ToValidUTF8(section[:maxBytes], ""))
			}
			break
		}
		b.WriteString(section)
	}
	return strings.TrimSpace(b.String()), nil
}

// walk returns the non-ignored files under Root in a stable order.
func (d Dir) walk(ctx context.Context) ([]string, error) {
	queue := make(chan *gocodewalker.File, 100)
	walker := gocodewalker.NewFileWalker(d.Root, queue)

	errc := make(chan error, 1)
	go func() {
		errc <- walker.Start()
	}()

	var files []string
	for f := range queue {
		if ctx.Err() != nil {
			walker.Terminate()
			continue
		}
		files = append(files, f.Location)
	}
	if err := <-errc; err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", d.Root, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}
