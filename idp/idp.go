package idp

import (
	"fmt"
	"strconv"
)

// Page holds the selectors of the IdP login pages. Every field is a CSS
// selector and must match the provider's markup exactly.
type Page struct {
	Email     string
	Password  string
	Code      string
	SignIn    string
	Submit    string
	Error     string
	Assertion string
}

// GooglePage is the page layout of the Google account sign-in flow.
var GooglePage = Page{
	Email:     `input[name="Email"]`,
	Password:  `input[name="Passwd"]`,
	Code:      `input[name="Pin"]`,
	SignIn:    `input[name="signIn"]`,
	Submit:    `input[id="submit"]`,
	Error:     `#error-msg`,
	Assertion: `input[name="SAMLResponse"]`,
}

const (
	usernameLabel = "username (ex. user@domain.com):"
	passwordLabel = "password:"
	codeLabel     = "Verification code from authenticator app:"
)

// submit types value into field, clicks button and waits for the page body.
func submit(s Session, field, value, button string) error {
	if err := s.Type(field, value); err != nil {
		return err
	}
	if err := s.Click(button); err != nil {
		return err
	}
	return s.Wait("body")
}

// checkpoint looks for the error indicator after a submission. When it is
// present the page body is logged and its text returned as an
// AuthenticationError.
func (f *Flow) checkpoint(s Session, step string) error {
	failed, err := s.Exists(f.Page.Error)
	if err != nil {
		return fmt.Errorf("checking %s result: %w", step, err)
	}
	if !failed {
		return nil
	}

	var body string
	if err := s.Evaluate(property("body", "innerHTML"), &body); err == nil {
		f.log().WithField("step", step).Debugf("page body after rejected %s:\n%s", step, body)
	}

	var msg string
	if err := s.Evaluate(property(f.Page.Error, "innerText"), &msg); err != nil {
		return fmt.Errorf("reading %s error message: %w", step, err)
	}
	return &AuthenticationError{Step: step, Message: msg}
}

// property returns a JS expression reading prop from the first element
// matching sel.
func property(sel, prop string) string {
	return fmt.Sprintf("document.querySelector(%s).%s", strconv.Quote(sel), prop)
}
