package cli

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func withTerminal(t *testing.T, tty bool, pw func(int) ([]byte, error)) {
	t.Helper()
	oldTTY, oldRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = oldTTY, oldRead })
	isTerminal = func(int) bool { return tty }
	if pw != nil {
		readPassword = pw
	}
}

func TestGetSimpleText(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("  hello world \n"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)
	assert.Equal(t, "Name?\n> ", out.String())
}

func TestGetSimpleTextEOF(t *testing.T) {
	var out bytes.Buffer
	got, err := GetSimpleText(rdr("lastline"), "Name?", &out)
	require.NoError(t, err)
	assert.Equal(t, "lastline", got)

	_, err = GetSimpleText(rdr(""), "Name?", &out)
	require.ErrorIs(t, err, io.EOF)
}

func TestGetDefaultText(t *testing.T) {
	var out bytes.Buffer

	got, err := GetDefaultText(rdr("\n"), "City", "Recife", &out)
	require.NoError(t, err)
	assert.Equal(t, "Recife", got)
	assert.Contains(t, out.String(), "City [Recife]")

	got, err = GetDefaultText(rdr("Olinda\n"), "City", "Recife", &out)
	require.NoError(t, err)
	assert.Equal(t, "Olinda", got)

	got, err = GetDefaultText(rdr("-\n"), "City", "Recife", &out)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetPassword_PipedInput(t *testing.T) {
	withTerminal(t, false, func(int) ([]byte, error) {
		t.Fatal("terminal must not be used")
		return nil, nil
	})
	var out bytes.Buffer
	pw, err := GetPassword(rdr("secret\n"), "Enter password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), pw)
	assert.Equal(t, "Enter password: ", out.String())
}

func TestGetPassword_Terminal(t *testing.T) {
	withTerminal(t, true, func(int) ([]byte, error) { return []byte("hidden"), nil })
	var out bytes.Buffer
	pw, err := GetPassword(rdr(""), "Enter password", &out)
	require.NoError(t, err)
	assert.Equal(t, []byte("hidden"), pw)
}

func TestGetPassword_Error(t *testing.T) {
	withTerminal(t, true, func(int) ([]byte, error) { return nil, errors.New("boom") })
	var out bytes.Buffer
	_, err := GetPassword(rdr(""), "Enter password", &out)
	require.Error(t, err)
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	for in, want := range map[string]bool{"y\n": true, "YES\n": true, "n\n": false, "\n": false, "maybe\n": false} {
		got, err := Confirm(rdr(in), "Sure?", &out)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	assert.Contains(t, out.String(), "Sure? (y/N)")
}
