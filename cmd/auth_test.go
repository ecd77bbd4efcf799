package cmd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthLogin_WithKey(t *testing.T) {
	setupStdoutCapture(t)
	creds := &FakeCredentialStore{}
	a := AuthCmd{
		creds:  creds,
		prompt: func() (string, error) { t.Fatal("prompt should not be called"); return "", nil },
	}

	require.NoError(t, a.Login(AuthLoginInput{Key: "  sk-test-1234  "}))
	assert.Equal(t, "sk-test-1234", creds.Stored)
	assert.Contains(t, outBuf.String(), "1234")
	assert.NotContains(t, outBuf.String(), "sk-test-1234")
}

func TestAuthLogin_PromptsAndOpensBrowser(t *testing.T) {
	setupStdoutCapture(t)
	creds := &FakeCredentialStore{}
	var opened string
	a := AuthCmd{
		creds:   creds,
		openURL: func(u string) error { opened = u; return errors.New("no browser") },
		prompt:  func() (string, error) { return "sk-prompted", nil },
	}

	require.NoError(t, a.Login(AuthLoginInput{Open: true}))
	assert.Equal(t, APIKeysURL, opened)
	assert.Equal(t, "sk-prompted", creds.Stored)
	assert.Contains(t, outBuf.String(), "no browser")
}

func TestAuthLogin_EmptyPrompt(t *testing.T) {
	setupStdoutCapture(t)
	creds := &FakeCredentialStore{}
	a := AuthCmd{creds: creds, prompt: func() (string, error) { return "   ", nil }}

	err := a.Login(AuthLoginInput{})
	assert.EqualError(t, err, "no API key entered")
	assert.Empty(t, creds.Stored)
}

func TestAuthLogout(t *testing.T) {
	setupStdoutCapture(t)
	creds := &FakeCredentialStore{Stored: "sk-old"}
	a := AuthCmd{creds: creds}

	require.NoError(t, a.Logout())
	assert.Empty(t, creds.Stored)

	creds.DeleteErr = errors.New("keyring locked")
	assert.ErrorContains(t, a.Logout(), "keyring locked")
}

func TestAuthStatus(t *testing.T) {
	setupStdoutCapture(t)
	a := AuthCmd{creds: &FakeCredentialStore{}}

	require.NoError(t, a.Status(""))
	assert.Contains(t, outBuf.String(), "No API key configured")

	outBuf.Reset()
	a = AuthCmd{creds: &FakeCredentialStore{Stored: "sk-abcdefgh"}}
	require.NoError(t, a.Status(""))
	assert.Contains(t, outBuf.String(), "efgh")
	assert.Contains(t, outBuf.String(), "keyring")
}
