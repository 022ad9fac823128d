package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"gsts/profile"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	subCmd  string
	subArgs []string
)

// execCmd represents the exec command
var execCmd = &cobra.Command{
	Use:    "exec [command [args...]]",
	Short:  "Execute a command or spawn a shell with new AWS STS credentials.",
	Long:   ``,
	Run:    execCommand,
	PreRun: validateExecArgs,
}

func init() {
	rootCmd.AddCommand(execCmd)
}

func validateExecArgs(cmd *cobra.Command, args []string) {
	var err error
	profilesCount := len(profilesFlag)
	p := profile.New()

	if profilesCount > 1 {
		fatalError("exec command can only use a single --profile argument.")
	}
	if profilesCount == 0 {
		p.Account = account
		p.Role = role
		p.Name = fmt.Sprintf("%s/%s", p.Account, p.Role)
		p.IDProvider = viper.GetString("id_provider")
		p.Duration = viper.GetInt("duration")
		if err = p.Validate(); err != nil {
			fatalError(err.Error())
		}
	} else {
		if p, err = profile.NewFromConfig(profilesFlag[0]); err != nil {
			fatalError(err.Error())
		}
	}

	profiles = append(profiles, p)
}

func execCommand(cmd *cobra.Command, args []string) {
	p := profiles[0]

	SAMLResponse, err := login(context.Background())
	if err != nil {
		fatalError(fmt.Sprintf("failed to fetch credentials via IdP: %v", err))
	}

	creds, err := p.Credentials(stsClient(), SAMLResponse)
	if err != nil {
		fatalError(fmt.Sprintf("could not fetch STS credentials: %v.", err))
	}

	fmt.Printf("Received AWS STS credentials for %s, spawning sub-command.\n", p.Name)

	env := credentialsEnv(environ(os.Environ()), p.Name, creds)

	subCmd = os.Getenv("SHELL")
	subArgs = nil
	if len(args) > 0 {
		subCmd = args[:1][0]
		subArgs = args[1:]
	}

	sh := exec.Command(subCmd, subArgs...)
	sh.Env = env
	sh.Stdin = os.Stdin
	sh.Stdout = os.Stdout
	sh.Stderr = os.Stderr

	if err := sh.Start(); err != nil {
		fatalError(err.Error())
	}

	// Apologies to 99designs
	// https://github.com/99designs/aws-vault/blob/master/cli/exec.go
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	waitCh := make(chan error, 1)
	go func() {
		waitCh <- sh.Wait()
		close(waitCh)
	}()

	for {
		select {
		case sig := <-signals:
			if err := sh.Process.Signal(sig); err != nil {
				fatalError(err.Error())
			}
		case err := <-waitCh:
			var waitStatus syscall.WaitStatus
			if exitError, ok := err.(*exec.ExitError); ok {
				waitStatus = exitError.Sys().(syscall.WaitStatus)
				os.Exit(waitStatus.ExitStatus())
			}
			if err != nil {
				fatalError(err.Error())
			}
			return
		}
	}
}

// credentialsEnv replaces any AWS credentials in env with creds.
func credentialsEnv(env environ, name string, creds *sts.Credentials) environ {
	env.Unset("AWS_ACCESS_KEY_ID")
	env.Unset("AWS_SECRET_ACCESS_KEY")
	env.Unset("AWS_CREDENTIAL_FILE")
	env.Unset("AWS_DEFAULT_PROFILE")
	env.Unset("AWS_PROFILE")

	env.Set("AWS_ACCESS_KEY_ID", aws.StringValue(creds.AccessKeyId))
	env.Set("AWS_SECRET_ACCESS_KEY", aws.StringValue(creds.SecretAccessKey))
	env.Set("AWS_SESSION_TOKEN", aws.StringValue(creds.SessionToken))
	env.Set("AWS_SECURITY_TOKEN", aws.StringValue(creds.SessionToken))
	env.Set("GSTS_PROFILE", name)
	return env
}

// environ is a slice of strings representing the environment, in the form "key=value".
type environ []string

// Unset an environment variable by key
func (e *environ) Unset(key string) {
	for i := range *e {
		if strings.HasPrefix((*e)[i], key+"=") {
			(*e)[i] = (*e)[len(*e)-1]
			*e = (*e)[:len(*e)-1]
			break
		}
	}
}

// Set adds an environment variable, replacing any existing ones of the same key
func (e *environ) Set(key, val string) {
	e.Unset(key)
	*e = append(*e, key+"="+val)
}
