package idp

import (
	"context"
	"sync"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/rod/lib/utils"
)

// Rod is a Session backed by a headless Chromium driven through go-rod.
type Rod struct {
	browser *rod.Browser
	page    *rod.Page
	l       *launcher.Launcher
	cancel  context.CancelFunc
	once    sync.Once
	endErr  error
}

func rodLauncher(opts BrowserOptions) Launcher {
	return func(ctx context.Context, userAgent string) (Session, error) {
		ctx, cancel := sessionContext(ctx, opts.Timeout)
		r := &Rod{cancel: cancel}

		r.l = launcher.New().Context(ctx).Headless(true).Set("disable-web-security")
		u, err := r.l.Launch()
		if err != nil {
			cancel()
			return nil, err
		}

		r.browser = rod.New().ControlURL(u).Context(ctx)
		if opts.Debug {
			r.browser = r.browser.Trace(true).Logger(utils.Log(func(msg ...interface{}) {
				opts.Log.Debug(msg...)
			}))
		}
		if err := r.browser.Connect(); err != nil {
			r.l.Kill()
			cancel()
			return nil, err
		}

		if r.page, err = r.browser.Page(proto.TargetCreateTarget{}); err != nil {
			_ = r.End()
			return nil, err
		}
		if err := r.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			_ = r.End()
			return nil, err
		}
		return r, nil
	}
}

func (r *Rod) Navigate(url string) error {
	if err := r.page.Navigate(url); err != nil {
		return err
	}
	return r.page.WaitLoad()
}

func (r *Rod) Type(sel, text string) error {
	el, err := r.page.Element(sel)
	if err != nil {
		return err
	}
	return el.Input(text)
}

func (r *Rod) Click(sel string) error {
	el, err := r.page.Element(sel)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *Rod) Wait(sel string) error {
	if err := r.page.WaitLoad(); err != nil {
		return err
	}
	_, err := r.page.Element(sel)
	return err
}

func (r *Rod) Exists(sel string) (bool, error) {
	has, _, err := r.page.Has(sel)
	return has, err
}

func (r *Rod) Evaluate(expr string, res interface{}) error {
	obj, err := r.page.Eval("() => " + expr)
	if err != nil {
		return err
	}
	return obj.Value.Unmarshal(res)
}

// End closes the browser. Only the first call has an effect.
func (r *Rod) End() error {
	r.once.Do(func() {
		r.endErr = r.browser.Close()
		r.l.Cleanup()
		r.cancel()
	})
	return r.endErr
}
