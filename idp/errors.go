package idp

import "errors"

// ErrMissingInput is returned when an operator prompt comes back empty.
var ErrMissingInput = errors.New("no value entered")

// AuthenticationError carries the text of the IdP's error indicator after a
// rejected submission.
type AuthenticationError struct {
	Step    string
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}
