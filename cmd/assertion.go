package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var assertionCmd = &cobra.Command{
	Use:         "assertion",
	Short:       "Prints the base-64 encoded SAML assertion to STDOUT.",
	Long:        ``,
	Run:         assertionCommand,
	Annotations: map[string]string{"login-only": "true"},
}

func init() {
	rootCmd.AddCommand(assertionCmd)
}

func assertionCommand(cmd *cobra.Command, args []string) {
	SAMLResponse, err := login(context.Background())
	if err != nil {
		fatalError(fmt.Sprintf("failed to log in via IdP: %v", err))
	}
	fmt.Println(SAMLResponse)
}
