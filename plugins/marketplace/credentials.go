package marketplace

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// CredentialTypeName is the name nodes use to request marketplace credentials.
const CredentialTypeName = "aiMarketplaceApi"

// Credentials hold the tokens issued by the marketplace login endpoint. Only
// IDToken is sent; the others are carried so a login result can be stored.
type Credentials struct {
	IDToken      string `json:"idToken" mapstructure:"idToken"`
	AccessToken  string `json:"accessToken,omitempty" mapstructure:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty" mapstructure:"refreshToken"`
}

// HasToken reports whether a bearer token is available.
func (c *Credentials) HasToken() bool {
	return c != nil && strings.TrimSpace(c.IDToken) != ""
}

// AuthorizationHeader returns the bearer header value.
func (c *Credentials) AuthorizationHeader() string {
	return "Bearer " + c.IDToken
}

// CredentialsFromMap decodes a credential record as the host stores it.
func CredentialsFromMap(raw map[string]any) (*Credentials, error) {
	if raw == nil {
		return nil, nil
	}
	var c Credentials
	if err := mapstructure.WeakDecode(raw, &c); err != nil {
		return nil, fmt.Errorf("failed to decode %s credentials: %w", CredentialTypeName, err)
	}
	return &c, nil
}

// CredentialProperty describes one field of the credential form.
type CredentialProperty struct {
	Name     string `json:"name"`
	Display  string `json:"displayName"`
	Required bool   `json:"required"`
	Secret   bool   `json:"secret"`
}

// CredentialType is the host-facing description of the credential and the
// request used to test it.
type CredentialType struct {
	Name        string               `json:"name"`
	DisplayName string               `json:"displayName"`
	Properties  []CredentialProperty `json:"properties"`
	TestRequest Operation            `json:"-"`
}

// MarketplaceCredentialType describes aiMarketplaceApi. A credential is tested
// by calling the health endpoint with the bearer header.
var MarketplaceCredentialType = CredentialType{
	Name:        CredentialTypeName,
	DisplayName: "AI Marketplace API",
	Properties: []CredentialProperty{
		{Name: "idToken", Display: "ID Token", Required: true, Secret: true},
		{Name: "accessToken", Display: "Access Token", Secret: true},
		{Name: "refreshToken", Display: "Refresh Token", Secret: true},
	},
	TestRequest: Operation{Resource: ResourceHealth, Action: ActionCheck},
}

// LoginTokens is the typed view of a login response.
type LoginTokens struct {
	IDToken      string `mapstructure:"idToken"`
	AccessToken  string `mapstructure:"accessToken"`
	RefreshToken string `mapstructure:"refreshToken"`
	SessionToken string `mapstructure:"sessionToken"`
	ExpiresIn    int    `mapstructure:"expiresIn"`
}

// DecodeLoginTokens extracts tokens from a login payload. The payload must be
// a JSON object carrying an idToken.
func DecodeLoginTokens(payload any) (LoginTokens, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return LoginTokens{}, fmt.Errorf("login response is %T, expected an object", payload)
	}
	var tokens LoginTokens
	if err := mapstructure.WeakDecode(obj, &tokens); err != nil {
		return LoginTokens{}, fmt.Errorf("failed to decode login response: %w", err)
	}
	if tokens.IDToken == "" {
		return LoginTokens{}, fmt.Errorf("login response has no idToken")
	}
	return tokens, nil
}

// Credentials converts the login result into a credential record.
func (t LoginTokens) Credentials() Credentials {
	return Credentials{IDToken: t.IDToken, AccessToken: t.AccessToken, RefreshToken: t.RefreshToken}
}
