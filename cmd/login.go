package cmd

import (
	"context"

	"gsts/idp"
	"gsts/progress"
	"gsts/prompt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// login runs the IdP login with the configured options and returns the
// base-64 encoded SAML assertion.
func login(ctx context.Context) (string, error) {
	log := logrus.WithField("engine", viper.GetString("engine"))

	launch, err := idp.NewLauncher(viper.GetString("engine"), idp.BrowserOptions{
		Timeout: viper.GetDuration("timeout"),
		Debug:   debug,
		Log:     log,
	})
	if err != nil {
		return "", err
	}

	spinner, err := progress.New("Logging in...")
	if err != nil {
		return "", err
	}

	flow := &idp.Flow{
		Page:      idp.GooglePage,
		Launch:    launch,
		Prompt:    prompt.New(),
		Progress:  spinner,
		Log:       log,
		UserAgent: idp.UserAgent(description, rootCmd.Version),
		MFA:       viper.GetBool("mfa"),
	}

	return flow.Login(ctx,
		viper.GetString("idp_entry_url"),
		viper.GetString("username"),
		viper.GetString("password"),
	)
}
