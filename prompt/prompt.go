// Package prompt asks the operator for login details on the terminal.
package prompt

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/howeyc/gopass"
)

// Terminal reads plain answers line by line and masked answers without echo.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	masked func() ([]byte, error)
}

// New returns a Terminal on stdin, writing labels to stderr.
func New() *Terminal {
	return &Terminal{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stderr,
		masked: gopass.GetPasswdMasked,
	}
}

// Input prints label and reads one line.
func (t *Terminal) Input(label string) (string, error) {
	t.label(label)
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Masked prints label and reads one line, echoing '*' per character.
func (t *Terminal) Masked(label string) (string, error) {
	t.label(label)
	b, err := t.masked()
	if err != nil {
		if errors.Is(err, gopass.ErrInterrupted) {
			return "", errors.New("interrupted")
		}
		return "", err
	}
	return string(b), nil
}

func (t *Terminal) label(label string) {
	c := color.New(color.FgYellow)
	c.Fprintf(t.out, "%s ", label)
}
