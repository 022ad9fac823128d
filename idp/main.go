// Package idp contains the headless browser tasks to navigate the Google
// sign-in pages (username, password, authenticator code) and return the
// base-64 encoded SAML assertion.
package idp

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Session is a single scripted browser tab. Selectors are CSS selectors.
// A Session is driven by one goroutine at a time.
type Session interface {
	Navigate(url string) error
	Type(sel, text string) error
	Click(sel string) error
	// Wait blocks until sel is present in the DOM.
	Wait(sel string) error
	Exists(sel string) (bool, error)
	// Evaluate runs a read-only JS expression and decodes its result into res.
	Evaluate(expr string, res interface{}) error
	End() error
}

// Launcher opens a new browser session that identifies itself with userAgent.
type Launcher func(ctx context.Context, userAgent string) (Session, error)

// Prompter asks the operator for input.
type Prompter interface {
	Input(label string) (string, error)
	Masked(label string) (string, error)
}

// Progress tells the operator that work is in progress.
type Progress interface {
	Start()
	Stop()
	Fail()
}

// UserAgent builds the browser user-agent from the application's
// description and version.
func UserAgent(description, version string) string {
	return fmt.Sprintf("%s v.%s", description, version)
}

// Flow logs into the IdP and extracts the SAML assertion.
type Flow struct {
	Page      Page
	Launch    Launcher
	Prompt    Prompter
	Progress  Progress
	Log       logrus.FieldLogger
	UserAgent string
	// MFA enables the authenticator code step.
	MFA bool
}

// Login signs in at entryURL and returns the base-64 encoded SAMLResponse.
// Empty username or password are prompted for. The first error indicator
// shown by the IdP aborts the login with an *AuthenticationError.
func (f *Flow) Login(ctx context.Context, entryURL, username, password string) (assertion string, err error) {
	if username == "" {
		if username, err = f.prompt(f.Prompt.Input, usernameLabel, "username"); err != nil {
			return "", err
		}
	}

	f.Progress.Start()
	defer func() {
		if err != nil {
			f.Progress.Fail()
			return
		}
		f.Progress.Stop()
	}()

	s, err := f.Launch(ctx, f.UserAgent)
	if err != nil {
		return "", fmt.Errorf("unable to start a browser: %w", err)
	}
	defer func() {
		if endErr := s.End(); endErr != nil {
			f.log().Debugf("ending browser session: %v", endErr)
		}
	}()

	f.log().Infof("Fetching IdP login page %s.", entryURL)
	if err = s.Navigate(entryURL); err != nil {
		return "", fmt.Errorf("loading %s: %w", entryURL, err)
	}

	f.log().Info("Submitting username.")
	if err = submit(s, f.Page.Email, username, f.Page.SignIn); err != nil {
		return "", fmt.Errorf("submitting username: %w", err)
	}
	if err = f.checkpoint(s, "username"); err != nil {
		return "", err
	}

	if password == "" {
		f.Progress.Stop()
		if password, err = f.prompt(f.Prompt.Masked, passwordLabel, "password"); err != nil {
			return "", err
		}
		f.Progress.Start()
	}

	f.log().Info("Submitting password.")
	if err = submit(s, f.Page.Password, password, f.Page.SignIn); err != nil {
		return "", fmt.Errorf("submitting password: %w", err)
	}
	if err = f.checkpoint(s, "password"); err != nil {
		return "", err
	}

	if f.MFA {
		if err = f.verify(s); err != nil {
			return "", err
		}
	}

	f.log().Info("Waiting for SAML assertion.")
	return f.readAssertion(s)
}

// prompt reads a value with read and rejects empty answers.
func (f *Flow) prompt(read func(string) (string, error), label, what string) (string, error) {
	v, err := read(label)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", what, err)
	}
	if v == "" {
		return "", fmt.Errorf("%s: %w", what, ErrMissingInput)
	}
	return v, nil
}

func (f *Flow) log() logrus.FieldLogger {
	if f.Log == nil {
		return logrus.StandardLogger()
	}
	return f.Log
}
