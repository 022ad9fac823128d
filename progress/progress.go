// Package progress shows a spinner on stderr while the browser works.
package progress

import (
	"io"
	"os"
	"time"

	"github.com/theckman/yacspin"
	"golang.org/x/term"
)

// Indicator signals that an operation is in progress.
type Indicator interface {
	Start()
	Stop()
	Fail()
}

// New returns a spinner labelled suffix, or a Nop when stderr is not a
// terminal.
func New(suffix string) (Indicator, error) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return Nop{}, nil
	}
	return newSpinner(os.Stderr, suffix, false)
}

// Spinner is an Indicator drawn with yacspin. Stop and Fail on a spinner
// that is not running do nothing.
type Spinner struct {
	s       *yacspin.Spinner
	running bool
}

func newSpinner(w io.Writer, suffix string, notTTY bool) (*Spinner, error) {
	s, err := yacspin.New(yacspin.Config{
		Writer:            w,
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[59],
		Suffix:            " " + suffix,
		StopFailCharacter: "✗",
		StopFailMessage:   "Log in failed",
		StopFailColors:    []string{"fgRed"},
		NotTTY:            notTTY,
	})
	if err != nil {
		return nil, err
	}
	return &Spinner{s: s}, nil
}

func (p *Spinner) Start() {
	if p.running {
		return
	}
	if err := p.s.Start(); err == nil {
		p.running = true
	}
}

func (p *Spinner) Stop() {
	if !p.running {
		return
	}
	_ = p.s.Stop()
	p.running = false
}

func (p *Spinner) Fail() {
	if !p.running {
		return
	}
	_ = p.s.StopFail()
	p.running = false
}

// Nop is an Indicator that shows nothing.
type Nop struct{}

func (Nop) Start() {}
func (Nop) Stop()  {}
func (Nop) Fail()  {}
