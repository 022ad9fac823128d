package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"gsts/saml"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:         "roles",
	Short:       "Lists the AWS roles the IdP grants.",
	Long:        ``,
	Run:         rolesCommand,
	Annotations: map[string]string{"login-only": "true"},
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func rolesCommand(cmd *cobra.Command, args []string) {
	SAMLResponse, err := login(context.Background())
	if err != nil {
		fatalError(fmt.Sprintf("failed to log in via IdP: %v", err))
	}

	roles, err := saml.Roles(SAMLResponse)
	if err != nil {
		fatalError(err.Error())
	}
	printRoles(os.Stdout, roles)
}

func printRoles(w io.Writer, roles []saml.Role) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tPROVIDER")
	for _, r := range roles {
		fmt.Fprintf(tw, "%s\t%s\n", r.RoleARN, r.PrincipalARN)
	}
	tw.Flush()
}
