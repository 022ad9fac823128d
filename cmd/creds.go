package cmd

import (
	"context"
	"fmt"

	"gsts/profile"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

var outFile string
var outProfile string
var outCfg *ini.File

// credsCmd represents the creds command
var credsCmd = &cobra.Command{
	Use:    "creds",
	Short:  "Writes new STS credentials to a file.",
	Long:   ``,
	Run:    credsCommand,
	PreRun: validateCredsArgs,
}

func init() {
	rootCmd.AddCommand(credsCmd)

	credsCmd.Flags().StringVar(&outFile, "out-file", "~/.aws/credentials", "file to write credentials to")
	credsCmd.Flags().StringVar(&outProfile, "out-profile", "saml", "name to write single credentials to")
}

func validateCredsArgs(cmd *cobra.Command, args []string) {
	var err error

	if len(profilesFlag) == 0 {
		p := profile.New()
		p.Name = outProfile
		p.Account = account
		p.Role = role
		p.IDProvider = viper.GetString("id_provider")
		p.Duration = viper.GetInt("duration")
		if err = p.Validate(); err != nil {
			fatalError(err.Error())
		}
		profiles = append(profiles, p)
	} else {
		for _, k := range profilesFlag {
			p, err := profile.NewFromConfig(k)
			if err != nil {
				fatalError(err.Error())
			}
			profiles = append(profiles, p)
		}
	}

	if outFile, err = homedir.Expand(outFile); err != nil {
		fatalError(fmt.Sprintf("could not use out-file: %v", err))
	}
	outCfg, err = ini.LooseLoad(outFile)
	if err != nil {
		fatalError(fmt.Sprintf("could not use out-file: %v", err))
	}
}

func credsCommand(cmd *cobra.Command, args []string) {
	SAMLResponse, err := login(context.Background())
	if err != nil {
		fatalError(fmt.Sprintf("failed to fetch credentials via IdP: %v", err))
	}

	fmt.Printf("Writing credentials to %s.\n", outFile)

	svc := stsClient()
	for _, p := range profiles {
		creds, err := p.Credentials(svc, SAMLResponse)
		if err != nil {
			fatalError(fmt.Sprintf("could not fetch STS credentials: %v.", err))
		}

		fmt.Printf("Received AWS STS credentials for %s, writing to file.\n", p.Name)

		writeCredentials(outCfg, p.Name, creds)
		if err = outCfg.SaveTo(outFile); err != nil {
			color.Yellow("Problem saving profile: %v", err)
		}
	}
}

// writeCredentials replaces section name of cfg with creds.
func writeCredentials(cfg *ini.File, name string, creds *sts.Credentials) {
	sect := cfg.Section(name)
	// Clear any current keys to make sure we don't accidentaly carry over anything extra
	for _, k := range sect.KeyStrings() {
		sect.DeleteKey(k)
	}
	sect.Key("aws_access_key_id").SetValue(aws.StringValue(creds.AccessKeyId))
	sect.Key("aws_secret_access_key").SetValue(aws.StringValue(creds.SecretAccessKey))
	sect.Key("aws_session_token").SetValue(aws.StringValue(creds.SessionToken))
	sect.Key("aws_security_token").SetValue(aws.StringValue(creds.SessionToken))
}

// AssumeRoleWithSAML is unsigned, so STS needs no credentials of its own.
func stsClient() stsiface.STSAPI {
	sess := session.Must(session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	}))
	return sts.New(sess)
}
