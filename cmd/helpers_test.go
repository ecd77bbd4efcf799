package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/aicompanion/companion/internal/pipeline"
	"github.com/aicompanion/companion/internal/settings"
	"github.com/pterm/pterm"
)

var (
	outBuf bytes.Buffer
	errBuf bytes.Buffer
)

// setupStdoutCapture routes pterm output into outBuf and notices meant for
// stderr into errBuf for the test. The prefix printers keep the writer they
// were created with, so each is pointed at outBuf explicitly.
func setupStdoutCapture(t *testing.T) {
	t.Helper()
	outBuf.Reset()
	errBuf.Reset()

	printers := []*pterm.PrefixPrinter{&pterm.Info, &pterm.Success, &pterm.Warning, &pterm.Error}
	writers := make([]io.Writer, len(printers))
	for i, p := range printers {
		writers[i] = p.Writer
		p.Writer = &outBuf
	}
	oldStderr := stderr
	stderr = &errBuf

	pterm.SetDefaultOutput(&outBuf)
	pterm.DisableStyling()
	t.Cleanup(func() {
		for i, p := range printers {
			p.Writer = writers[i]
		}
		stderr = oldStderr
		pterm.SetDefaultOutput(os.Stdout)
		pterm.EnableStyling()
	})
}

type FakeCompleter struct {
	SubmitFunc func(ctx context.Context, body pipeline.RequestBody) (*pipeline.CompletionResult, error)
}

func (f *FakeCompleter) Submit(ctx context.Context, body pipeline.RequestBody) (*pipeline.CompletionResult, error) {
	if f.SubmitFunc != nil {
		return f.SubmitFunc(ctx, body)
	}
	return &pipeline.CompletionResult{}, nil
}

// FakeStore is an in-memory settings.Store.
type FakeStore struct {
	Settings     settings.Settings
	Entries      []string
	SaveErr      error
	SetHistories int
	Saves        int
}

func newFakeStore(history ...string) *FakeStore {
	return &FakeStore{Settings: settings.Defaults(), Entries: history}
}

func (f *FakeStore) Load() (settings.Settings, error) { return f.Settings, nil }

func (f *FakeStore) Save(s settings.Settings) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.Saves++
	f.Settings = s
	return nil
}

func (f *FakeStore) History() ([]string, error) {
	return append([]string(nil), f.Entries...), nil
}

func (f *FakeStore) SetHistory(h []string) error {
	if f.SaveErr != nil {
		return f.SaveErr
	}
	f.SetHistories++
	f.Entries = append([]string(nil), h...)
	return nil
}

func (f *FakeStore) Path() string { return "/tmp/companion/config.yaml" }

type FakeCredentialStore struct {
	Stored    string
	ResolveFn func(explicit string) (string, string, error)
	DeleteErr error
}

func (f *FakeCredentialStore) Resolve(explicit string) (string, string, error) {
	if f.ResolveFn != nil {
		return f.ResolveFn(explicit)
	}
	if explicit != "" {
		return explicit, settings.SourceFlag, nil
	}
	if f.Stored == "" {
		return "", "", settings.ErrNoAPIKey
	}
	return f.Stored, settings.SourceKeyring, nil
}

func (f *FakeCredentialStore) Store(key string) error {
	f.Stored = key
	return nil
}

func (f *FakeCredentialStore) Delete() error {
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	f.Stored = ""
	return nil
}
