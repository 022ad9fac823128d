package profile

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const config = `
[profile.prod]
account = "123456789012"
role = "admin"
duration = 7200

[profile.dev]
account = "210987654321"
role = "developer"
id_provider = "gsuite"

[profile.broken]
role = "admin"
`

func loadConfig(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.SetConfigType("toml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(config)))
}

func TestNewFromConfig(t *testing.T) {
	loadConfig(t)

	p, err := NewFromConfig("prod")
	require.NoError(t, err)
	assert.Equal(t, Profile{Name: "prod", Account: "123456789012", Role: "admin", IDProvider: "google", Duration: 7200}, p)
	assert.Equal(t, "arn:aws:iam::123456789012:role/admin", p.RoleARN())
	assert.Equal(t, "arn:aws:iam::123456789012:saml-provider/google", p.PrincipalARN())

	p, err = NewFromConfig("dev")
	require.NoError(t, err)
	assert.Equal(t, "gsuite", p.IDProvider)
	assert.Equal(t, DefaultDuration, p.Duration)

	_, err = NewFromConfig("broken")
	assert.ErrorContains(t, err, `missing required key "account"`)

	_, err = NewFromConfig("missing")
	assert.ErrorContains(t, err, "unable to find profile missing")

	assert.Equal(t, []string{"broken", "dev", "prod"}, Names())
}

func TestNewFromConfigFlagOverrides(t *testing.T) {
	loadConfig(t)
	viper.Set("duration", 1800)
	viper.Set("id_provider", "other")

	p, err := NewFromConfig("prod")
	require.NoError(t, err)
	assert.Equal(t, 1800, p.Duration)
	assert.Equal(t, "other", p.IDProvider)
}

func TestValidate(t *testing.T) {
	p := New()
	assert.Error(t, p.Validate())

	p.Account = "123456789012"
	assert.ErrorContains(t, p.Validate(), `"role"`)

	p.Role = "admin"
	assert.NoError(t, p.Validate())

	p.Duration = 60
	assert.ErrorContains(t, p.Validate(), "duration")
}

type fakeSTS struct {
	stsiface.STSAPI
	input *sts.AssumeRoleWithSAMLInput
	err   error
}

func (f *fakeSTS) AssumeRoleWithSAML(in *sts.AssumeRoleWithSAMLInput) (*sts.AssumeRoleWithSAMLOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sts.AssumeRoleWithSAMLOutput{Credentials: &sts.Credentials{
		AccessKeyId:     aws.String("ASIAEXAMPLE"),
		SecretAccessKey: aws.String("secret"),
		SessionToken:    aws.String("token"),
	}}, nil
}

func assertionFor(roles ...string) string {
	var b strings.Builder
	b.WriteString(`<Response><Attribute Name="https://aws.amazon.com/SAML/Attributes/Role">`)
	for _, r := range roles {
		b.WriteString("<AttributeValue>" + r + "</AttributeValue>")
	}
	b.WriteString("</Attribute></Response>")
	return base64.StdEncoding.EncodeToString([]byte(b.String()))
}

func TestCredentials(t *testing.T) {
	p := Profile{Name: "prod", Account: "123456789012", Role: "admin", IDProvider: "google", Duration: 3600}
	assertion := assertionFor("arn:aws:iam::123456789012:role/admin,arn:aws:iam::123456789012:saml-provider/google")

	svc := &fakeSTS{}
	creds, err := p.Credentials(svc, assertion)
	require.NoError(t, err)
	assert.Equal(t, "ASIAEXAMPLE", aws.StringValue(creds.AccessKeyId))
	assert.Equal(t, "arn:aws:iam::123456789012:role/admin", aws.StringValue(svc.input.RoleArn))
	assert.Equal(t, "arn:aws:iam::123456789012:saml-provider/google", aws.StringValue(svc.input.PrincipalArn))
	assert.Equal(t, int64(3600), aws.Int64Value(svc.input.DurationSeconds))
	assert.Equal(t, assertion, aws.StringValue(svc.input.SAMLAssertion))
}

func TestCredentialsRoleNotGranted(t *testing.T) {
	p := Profile{Account: "123456789012", Role: "admin", IDProvider: "google", Duration: 3600}
	svc := &fakeSTS{}

	_, err := p.Credentials(svc, assertionFor("arn:aws:iam::123456789012:role/readonly,arn:aws:iam::123456789012:saml-provider/google"))
	assert.ErrorContains(t, err, "not granted")
	assert.Nil(t, svc.input)
}

func TestCredentialsOpaqueAssertion(t *testing.T) {
	p := Profile{Account: "123456789012", Role: "admin", IDProvider: "google", Duration: 3600}
	boom := errors.New("InvalidIdentityToken")
	svc := &fakeSTS{err: boom}

	_, err := p.Credentials(svc, "QUJDRUY=")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "QUJDRUY=", aws.StringValue(svc.input.SAMLAssertion))
}
