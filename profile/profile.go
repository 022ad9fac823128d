package profile

import (
	"fmt"
	"sort"

	"gsts/saml"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"
	"github.com/spf13/viper"
)

// Defaults shared by the flags and profile sections.
const (
	DefaultIDProvider = "google"
	DefaultDuration   = 3600
)

type Profile struct {
	Name       string
	Account    string `mapstructure:"account"`
	Role       string `mapstructure:"role"`
	IDProvider string `mapstructure:"id_provider"`
	Duration   int    `mapstructure:"duration"`
}

func Profiles() map[string]interface{} {
	return viper.GetStringMap("profile")
}

// Names lists the configured profiles, sorted.
func Names() []string {
	var names []string
	for k := range Profiles() {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func New() Profile {
	return Profile{
		IDProvider: DefaultIDProvider,
		Duration:   DefaultDuration,
	}
}

func NewFromConfig(name string) (Profile, error) {
	p := New()
	p.Name = name

	if _, ok := Profiles()[name]; !ok {
		return p, fmt.Errorf("unable to find profile %s in config", name)
	}
	sectionKey := fmt.Sprintf("profile.%s", name)
	section := viper.Sub(sectionKey)
	if section != nil {
		if err := section.Unmarshal(&p); err != nil {
			return p, fmt.Errorf("unable to decode %s into struct: %v", name, err)
		}
	}

	// Override values from config w/ flag since unmarshalling from a viper sub
	// doesn't get the dot-path overrides from flag binding. So we have to check
	// if the flag-set value is non-default.
	// https://github.com/spf13/viper/issues/307
	if d := viper.GetInt("duration"); d != 0 && d != DefaultDuration {
		p.Duration = d
	}

	if idp := viper.GetString("id_provider"); idp != "" && idp != DefaultIDProvider {
		p.IDProvider = idp
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("error validating profile %s: %v", name, err)
	}

	return p, nil
}

func (p *Profile) Validate() error {
	if p.Account == "" {
		return fmt.Errorf(`missing required key "account"`)
	}
	if p.Role == "" {
		return fmt.Errorf(`missing required key "role"`)
	}
	if p.Duration < 900 || p.Duration > 43200 {
		return fmt.Errorf("duration %d must be between 900 and 43200 seconds", p.Duration)
	}
	return nil
}

func (p *Profile) RoleARN() string {
	return fmt.Sprintf("arn:aws:iam::%s:role/%s", p.Account, p.Role)
}

func (p *Profile) PrincipalARN() string {
	return fmt.Sprintf("arn:aws:iam::%s:saml-provider/%s", p.Account, p.IDProvider)
}

// Credentials exchanges the SAML assertion for STS credentials of the
// profile's role. When the assertion can be read and does not grant the
// role, STS is not called.
func (p *Profile) Credentials(svc stsiface.STSAPI, samlAssertion string) (*sts.Credentials, error) {
	roleArn := p.RoleARN()
	if roles, err := saml.Roles(samlAssertion); err == nil {
		if _, ok := saml.Find(roles, roleArn); !ok {
			return nil, fmt.Errorf("role %s is not granted by the IdP", roleArn)
		}
	}

	input := &sts.AssumeRoleWithSAMLInput{
		PrincipalArn:    aws.String(p.PrincipalARN()),
		RoleArn:         aws.String(roleArn),
		DurationSeconds: aws.Int64(int64(p.Duration)),
		SAMLAssertion:   aws.String(samlAssertion),
	}
	resp, err := svc.AssumeRoleWithSAML(input)
	if err != nil {
		return nil, err
	}
	return resp.Credentials, nil
}
