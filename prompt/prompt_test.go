package prompt

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/howeyc/gopass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTerminal(input string, masked func() ([]byte, error)) (*Terminal, *bytes.Buffer) {
	var out bytes.Buffer
	return &Terminal{
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    &out,
		masked: masked,
	}, &out
}

func TestInput(t *testing.T) {
	term, out := newTerminal("  user@domain.com \nnext\n", nil)

	got, err := term.Input("username (ex. user@domain.com):")
	require.NoError(t, err)
	assert.Equal(t, "user@domain.com", got)
	assert.Contains(t, out.String(), "username (ex. user@domain.com): ")

	got, err = term.Input("again:")
	require.NoError(t, err)
	assert.Equal(t, "next", got)
}

func TestInputWithoutNewline(t *testing.T) {
	term, _ := newTerminal("last", nil)

	got, err := term.Input("username:")
	require.NoError(t, err)
	assert.Equal(t, "last", got)

	_, err = term.Input("username:")
	assert.Error(t, err)
}

func TestMasked(t *testing.T) {
	term, out := newTerminal("", func() ([]byte, error) {
		return []byte(" secret "), nil
	})

	got, err := term.Masked("password:")
	require.NoError(t, err)
	assert.Equal(t, " secret ", got)
	assert.Contains(t, out.String(), "password: ")
}

func TestMaskedErrors(t *testing.T) {
	term, _ := newTerminal("", func() ([]byte, error) {
		return nil, gopass.ErrInterrupted
	})
	_, err := term.Masked("password:")
	assert.EqualError(t, err, "interrupted")

	boom := errors.New("not a terminal")
	term, _ = newTerminal("", func() ([]byte, error) { return nil, boom })
	_, err = term.Masked("password:")
	assert.ErrorIs(t, err, boom)
}
