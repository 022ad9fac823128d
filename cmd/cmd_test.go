package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"gsts/saml"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/ini.v1"
)

var testCreds = &sts.Credentials{
	AccessKeyId:     aws.String("ASIAEXAMPLE"),
	SecretAccessKey: aws.String("secret"),
	SessionToken:    aws.String("token"),
}

func TestEnviron(t *testing.T) {
	env := environ{"HOME=/home/user", "AWS_PROFILE=old", "PATH=/bin"}

	env.Unset("AWS_PROFILE")
	env.Unset("MISSING")
	env.Set("PATH", "/usr/bin")
	env.Set("NEW", "1")

	got := []string(env)
	sort.Strings(got)
	assert.Equal(t, []string{"HOME=/home/user", "NEW=1", "PATH=/usr/bin"}, got)
}

func TestCredentialsEnv(t *testing.T) {
	env := credentialsEnv(environ{
		"AWS_PROFILE=default",
		"AWS_ACCESS_KEY_ID=AKIAOLD",
		"AWS_DEFAULT_PROFILE=default",
		"SHELL=/bin/zsh",
	}, "prod", testCreds)

	got := []string(env)
	sort.Strings(got)
	assert.Equal(t, []string{
		"AWS_ACCESS_KEY_ID=ASIAEXAMPLE",
		"AWS_SECRET_ACCESS_KEY=secret",
		"AWS_SECURITY_TOKEN=token",
		"AWS_SESSION_TOKEN=token",
		"GSTS_PROFILE=prod",
		"SHELL=/bin/zsh",
	}, got)
}

func TestWriteCredentials(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")
	require.NoError(t, os.WriteFile(path, []byte(`[default]
aws_access_key_id = AKIADEFAULT

[prod]
aws_access_key_id = AKIAOLD
region = us-east-1
`), 0o600))

	cfg, err := ini.LooseLoad(path)
	require.NoError(t, err)
	writeCredentials(cfg, "prod", testCreds)
	writeCredentials(cfg, "saml", testCreds)
	require.NoError(t, cfg.SaveTo(path))

	cfg, err = ini.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "AKIADEFAULT", cfg.Section("default").Key("aws_access_key_id").String())

	prod := cfg.Section("prod")
	assert.Equal(t, []string{"aws_access_key_id", "aws_secret_access_key", "aws_session_token", "aws_security_token"}, prod.KeyStrings())
	assert.Equal(t, "ASIAEXAMPLE", prod.Key("aws_access_key_id").String())
	assert.Equal(t, "token", cfg.Section("saml").Key("aws_session_token").String())
}

func TestWriteCredentialsNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials")

	cfg, err := ini.LooseLoad(path)
	require.NoError(t, err)
	writeCredentials(cfg, "saml", testCreds)
	require.NoError(t, cfg.SaveTo(path))

	cfg, err = ini.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.Section("saml").Key("aws_secret_access_key").String())
}

func TestPrintRoles(t *testing.T) {
	var buf bytes.Buffer
	printRoles(&buf, []saml.Role{
		{RoleARN: "arn:aws:iam::1:role/admin", PrincipalARN: "arn:aws:iam::1:saml-provider/google"},
	})
	assert.Equal(t, "ROLE                       PROVIDER\n"+
		"arn:aws:iam::1:role/admin  arn:aws:iam::1:saml-provider/google\n", buf.String())
}
