// Package saml reads the AWS role grants out of a base-64 encoded
// SAMLResponse.
package saml

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// RoleAttribute is the SAML attribute listing the roles the user may assume.
const RoleAttribute = "https://aws.amazon.com/SAML/Attributes/Role"

// ErrNoRoles is returned when the assertion grants no AWS role.
var ErrNoRoles = errors.New("no AWS roles in SAML assertion")

// Role is one role/provider pair granted by the IdP.
type Role struct {
	RoleARN      string
	PrincipalARN string
}

// Decode base-64 decodes the assertion and parses the XML.
func Decode(assertion string) (*etree.Document, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(assertion))
	if err != nil {
		return nil, fmt.Errorf("decoding SAML assertion: %w", err)
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("parsing SAML assertion: %w", err)
	}
	return doc, nil
}

// Roles lists the AWS roles granted by the assertion.
func Roles(assertion string) ([]Role, error) {
	doc, err := Decode(assertion)
	if err != nil {
		return nil, err
	}

	var roles []Role
	for _, attr := range doc.FindElements(".//Attribute") {
		if attr.SelectAttrValue("Name", "") != RoleAttribute {
			continue
		}
		for _, v := range attr.SelectElements("AttributeValue") {
			r, err := parseRole(v.Text())
			if err != nil {
				return nil, err
			}
			roles = append(roles, r)
		}
	}
	if len(roles) == 0 {
		return nil, ErrNoRoles
	}
	return roles, nil
}

// parseRole splits "role-arn,provider-arn"; the IdP may send either order.
func parseRole(v string) (Role, error) {
	parts := strings.Split(strings.TrimSpace(v), ",")
	if len(parts) != 2 {
		return Role{}, fmt.Errorf("malformed role value %q", v)
	}
	a, b := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
	if strings.Contains(a, ":saml-provider/") {
		a, b = b, a
	}
	if !strings.Contains(a, ":role/") || !strings.Contains(b, ":saml-provider/") {
		return Role{}, fmt.Errorf("malformed role value %q", v)
	}
	return Role{RoleARN: a, PrincipalARN: b}, nil
}

// Find returns the grant for roleARN.
func Find(roles []Role, roleARN string) (Role, bool) {
	for _, r := range roles {
		if r.RoleARN == roleARN {
			return r, true
		}
	}
	return Role{}, false
}
