package cmd

import (
	"fmt"
	"os"
	"time"

	"gsts/idp"
	"gsts/profile"

	"github.com/fatih/color"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const description = "Fetch AWS STS credentials via Google SAML"

var (
	cfgFile           string
	account           string
	role              string
	username          string
	entryURL          string
	mfa               bool
	engine            string
	timeout           time.Duration
	duration          int
	idProvider        string
	profilesFlag      []string
	singleProfileFlag string
	profiles          []profile.Profile
	debug             bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:              "gsts",
	Short:            description + ".",
	Long:             ``,
	Version:          `0.1.0`,
	PersistentPreRun: validateRootArgs,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gsts.toml)")
	rootCmd.PersistentFlags().StringVar(&username, "username", "", "username for IdP login (prompted if empty)")
	rootCmd.PersistentFlags().StringVar(&entryURL, "idp-entry-url", "", "IdP-initiated SSO URL that starts the login")
	rootCmd.PersistentFlags().BoolVar(&mfa, "mfa", true, "prompt for an authenticator app code after the password")
	rootCmd.PersistentFlags().StringVar(&engine, "engine", idp.EngineChrome, "headless browser engine (chrome or rod)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 120*time.Second, "overall timeout of the browser session")
	rootCmd.PersistentFlags().StringVar(&account, "account", "", "account number of role")
	rootCmd.PersistentFlags().StringVar(&role, "role", "", "name of the role")
	rootCmd.PersistentFlags().IntVar(&duration, "duration", profile.DefaultDuration, "requested duration of credentials, in seconds")
	rootCmd.PersistentFlags().StringVar(&idProvider, "id-provider", profile.DefaultIDProvider, "name of the Identity Provider in IAM")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging and browser protocol output to STDERR")

	rootCmd.PersistentFlags().StringSliceVar(&profilesFlag, "profiles", nil, "profiles to get STS credentials for")
	rootCmd.PersistentFlags().StringVar(&singleProfileFlag, "profile", "", "single profile to get STS credentials for")

	viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	viper.BindPFlag("idp_entry_url", rootCmd.PersistentFlags().Lookup("idp-entry-url"))
	viper.BindPFlag("mfa", rootCmd.PersistentFlags().Lookup("mfa"))
	viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	viper.BindPFlag("timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	viper.BindPFlag("duration", rootCmd.PersistentFlags().Lookup("duration"))
	viper.BindPFlag("id_provider", rootCmd.PersistentFlags().Lookup("id-provider"))
}

func validateRootArgs(cmd *cobra.Command, args []string) {
	// --account/--role and profile.* sections are mutually exclusive, and
	// flags can come from the config file, so nothing can be marked
	// required up front. Check the invalid combinations instead.

	if debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if viper.GetString("idp_entry_url") == "" {
		fatalError("the IdP entry URL must be set via --idp-entry-url flag or config file.")
	}

	// the login-only commands don't assume a role
	if cmd.Annotations["login-only"] == "true" {
		return
	}

	// Hack to allow a single profile to be passed by --profile
	if singleProfileFlag != "" {
		profilesFlag = append(profilesFlag, singleProfileFlag)
	}

	if profilesFlag == nil && account == "" {
		fatalError("must use --profiles or --account/--role.")
	}

	if profilesFlag != nil && (account != "" || role != "") {
		fatalError("cannot use --profiles and --account/--role together.")
	}

	if account != "" && role == "" {
		fatalError("--account and --role must be used together.")
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			fatalError(err.Error())
		}

		// Search config in home directory with name ".gsts" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigName(".gsts")
	}

	viper.SetEnvPrefix("GSTS")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		logrus.Infof("Loaded config file: %s", viper.ConfigFileUsed())
	} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
		color.Yellow("Error reading config file: %v", err)
	}
}

func fatalError(message string) {
	color.Red("ERROR: %s", message)
	os.Exit(1)
}
