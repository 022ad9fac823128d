package idp

import "fmt"

// readAssertion waits for the hidden assertion field and returns its value
// untouched.
func (f *Flow) readAssertion(s Session) (string, error) {
	var res string

	if err := s.Wait(f.Page.Assertion); err != nil {
		return "", fmt.Errorf("waiting for SAML assertion: %w", err)
	}
	if err := s.Evaluate(property(f.Page.Assertion, "value"), &res); err != nil {
		return "", fmt.Errorf("reading SAML assertion: %w", err)
	}
	return res, nil
}
