package selection

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	text, err := Static("hello").Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestReader_ReadsOnce(t *testing.T) {
	p := NewReader(strings.NewReader("  piped text\n"))

	first, err := p.Selection(context.Background())
	require.NoError(t, err)
	second, err := p.Selection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "  piped text", first)
	assert.Equal(t, first, second)
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sel.txt")
	require.NoError(t, os.WriteFile(path, []byte("from file\n"), 0644))

	text, err := File{Path: path}.Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from file", text)

	require.NoError(t, os.WriteFile(path, []byte("\tif ok {\n\t\treturn\n\t}\r\n\n"), 0644))
	text, err = File{Path: path}.Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "\tif ok {\n\t\treturn\n\t}", text, "indentation is kept")

	_, err = File{Path: filepath.Join(t.TempDir(), "missing")}.Selection(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestClipboard(t *testing.T) {
	c := &Clipboard{read: func() (string, error) { return "copied", nil }}
	text, err := c.Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "copied", text)

	c = &Clipboard{read: func() (string, error) { return "", errors.New("no display") }}
	_, err = c.Selection(context.Background())
	assert.ErrorContains(t, err, "no display")

	_, err = (&Clipboard{}).Selection(context.Background())
	assert.Error(t, err)
}

func TestDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.go"), []byte("package b\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.go"), []byte("package a\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "skip.log"), []byte("noise\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, ".gitignore"), []byte("*.log\n"), 0644))

	text, err := Dir{Root: root}.Selection(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "// a.go\npackage a\n// b.go\npackage b", text)
	assert.NotContains(t, text, "noise")
}

func TestDir_RespectsMaxBytes(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("aaaa"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte(strings.Repeat("b", 100)), 0644))

	text, err := Dir{Root: root, MaxBytes: 20}.Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "// a.txt\naaaa", text)
}

func TestDir_TruncatesOversizedFirstFile(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "big.txt"), []byte(strings.Repeat("b", 100)), 0644))

	text, err := Dir{Root: root, MaxBytes: 20}.Selection(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "// big.txt\n"+strings.Repeat("b", 9), text)
	assert.Len(t, text, 20)
}

func TestDir_NotADirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := Dir{Root: path}.Selection(context.Background())
	assert.ErrorContains(t, err, "not a directory")
}

// sequence returns its values in order, repeating the last one.
type sequence struct {
	mu     sync.Mutex
	values []string
	errs   []error
	i      int
}

func (s *sequence) Selection(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.i
	if idx >= len(s.values) {
		idx = len(s.values) - 1
	} else {
		s.i++
	}
	var err error
	if idx < len(s.errs) {
		err = s.errs[idx]
	}
	return s.values[idx], err
}

func TestWatcher_Poll(t *testing.T) {
	src := &sequence{values: []string{"", "first", "first", "", "second"}}
	w := NewWatcher(src, time.Millisecond, nil)
	ctx := context.Background()

	changed, err := w.Poll(ctx)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "", w.Snapshot())

	changed, _ = w.Poll(ctx)
	assert.True(t, changed)
	assert.Equal(t, "first", w.Snapshot())

	snapshot := w.Snapshot()

	changed, _ = w.Poll(ctx)
	assert.False(t, changed, "same selection")

	changed, _ = w.Poll(ctx)
	assert.False(t, changed, "empty selection keeps the previous one")
	assert.Equal(t, "first", w.Snapshot())

	changed, _ = w.Poll(ctx)
	assert.True(t, changed)
	assert.Equal(t, "second", w.Snapshot())
	assert.Equal(t, "first", snapshot)
}

func TestWatcher_PollError(t *testing.T) {
	src := &sequence{values: []string{"ignored"}, errs: []error{errors.New("boom")}}
	w := NewWatcher(src, time.Millisecond, nil)

	changed, err := w.Poll(context.Background())
	assert.Error(t, err)
	assert.False(t, changed)
	assert.Equal(t, "", w.Snapshot())
}

func TestWatcher_Run(t *testing.T) {
	src := &sequence{values: []string{"a", "a", "b", "", "c"}}
	w := NewWatcher(src, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	var got []string
	err := w.Run(ctx, func(text string) {
		got = append(got, text)
		if text == "c" {
			cancel()
		}
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
