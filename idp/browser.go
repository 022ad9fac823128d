package idp

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

// Browser engines understood by NewLauncher.
const (
	EngineChrome = "chrome"
	EngineRod    = "rod"
)

// BrowserOptions configure the headless browser behind a Session.
type BrowserOptions struct {
	// Timeout bounds the whole session; zero means no limit.
	Timeout time.Duration
	// Debug sends the browser protocol traffic to Log.
	Debug bool
	Log   logrus.FieldLogger
}

// NewLauncher returns the Launcher for engine.
func NewLauncher(engine string, opts BrowserOptions) (Launcher, error) {
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	switch engine {
	case EngineChrome, "":
		return chromeLauncher(opts), nil
	case EngineRod:
		return rodLauncher(opts), nil
	}
	return nil, fmt.Errorf("unknown browser engine %q (chrome or rod)", engine)
}

func sessionContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

func existsExpr(sel string) string {
	return fmt.Sprintf("document.querySelector(%s) !== null", strconv.Quote(sel))
}
