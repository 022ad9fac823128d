package idp

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/chromedp/chromedp"
)

// Chrome is a Session backed by a headless Chrome driven through chromedp.
type Chrome struct {
	Ctxt   context.Context
	Cancel context.CancelFunc

	cancelAlloc   context.CancelFunc
	cancelTimeout context.CancelFunc
	done          chan struct{}
	once          sync.Once
	endErr        error
}

// ISSUE: https://github.com/chromedp/chromedp/issues/75
// Timeouts waiting for nodes to be ready can cause multi-second lockups, so
// every session runs under the configured overall timeout.
func chromeLauncher(opts BrowserOptions) Launcher {
	return func(ctx context.Context, userAgent string) (Session, error) {
		c := &Chrome{done: make(chan struct{})}
		ctx, c.cancelTimeout = sessionContext(ctx, opts.Timeout)

		allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("disable-web-security", true),
			chromedp.Flag("headless", true),
			chromedp.Flag("no-first-run", true),
			chromedp.Flag("no-default-browser-check", true),
			chromedp.UserAgent(userAgent),
		)
		allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
		c.cancelAlloc = cancelAlloc

		var ctxOpts []chromedp.ContextOption
		if opts.Debug {
			ctxOpts = append(ctxOpts, chromedp.WithLogf(opts.Log.Debugf))
		}
		c.Ctxt, c.Cancel = chromedp.NewContext(allocCtx, ctxOpts...)

		// an empty Run starts the browser
		if err := chromedp.Run(c.Ctxt); err != nil {
			_ = c.End()
			return nil, err
		}

		c.handleInterrupt()
		return c, nil
	}
}

// handleInterrupt makes sure a SIGINT does not leave an orphaned
// chrome-headless process behind.
func (c *Chrome) handleInterrupt() {
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT)
	go func() {
		defer signal.Stop(signalChan)
		select {
		case <-signalChan:
			_ = c.End()
			os.Exit(1)
		case <-c.done:
		}
	}()
}

func (c *Chrome) Navigate(url string) error {
	return chromedp.Run(c.Ctxt, chromedp.Navigate(url))
}

func (c *Chrome) Type(sel, text string) error {
	return chromedp.Run(c.Ctxt, chromedp.SendKeys(sel, text, chromedp.ByQuery))
}

func (c *Chrome) Click(sel string) error {
	return chromedp.Run(c.Ctxt, chromedp.Click(sel, chromedp.ByQuery))
}

func (c *Chrome) Wait(sel string) error {
	return chromedp.Run(c.Ctxt, chromedp.WaitReady(sel, chromedp.ByQuery))
}

func (c *Chrome) Exists(sel string) (bool, error) {
	var ok bool
	err := chromedp.Run(c.Ctxt, chromedp.Evaluate(existsExpr(sel), &ok))
	return ok, err
}

func (c *Chrome) Evaluate(expr string, res interface{}) error {
	return chromedp.Run(c.Ctxt, chromedp.Evaluate(expr, res))
}

// End closes the browser. Only the first call has an effect.
func (c *Chrome) End() error {
	c.once.Do(func() {
		close(c.done)
		c.endErr = chromedp.Cancel(c.Ctxt)
		c.cancelAlloc()
		c.cancelTimeout()
	})
	return c.endErr
}
