package idp

import "fmt"

// verify submits the authenticator app code. The code is always prompted
// for; it is only valid for a few seconds.
func (f *Flow) verify(s Session) error {
	f.Progress.Stop()
	code, err := f.prompt(f.Prompt.Masked, codeLabel, "verification code")
	if err != nil {
		return err
	}
	f.Progress.Start()

	f.log().Info("Submitting verification code.")
	if err := submit(s, f.Page.Code, code, f.Page.Submit); err != nil {
		return fmt.Errorf("submitting verification code: %w", err)
	}
	return f.checkpoint(s, "verification code")
}
