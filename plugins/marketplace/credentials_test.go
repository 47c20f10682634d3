package marketplace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsFromMap(t *testing.T) {
	creds, err := CredentialsFromMap(nil)
	require.NoError(t, err)
	assert.Nil(t, creds)
	assert.False(t, creds.HasToken())

	creds, err = CredentialsFromMap(map[string]any{
		"idToken":      "id",
		"accessToken":  "acc",
		"refreshToken": "ref",
		"unrelated":    true,
	})
	require.NoError(t, err)
	assert.Equal(t, &Credentials{IDToken: "id", AccessToken: "acc", RefreshToken: "ref"}, creds)
	assert.True(t, creds.HasToken())
	assert.Equal(t, "Bearer id", creds.AuthorizationHeader())

	creds, err = CredentialsFromMap(map[string]any{"accessToken": "acc"})
	require.NoError(t, err)
	assert.False(t, creds.HasToken())
}

func TestDecodeLoginTokens(t *testing.T) {
	tokens, err := DecodeLoginTokens(map[string]any{
		"idToken":      "id",
		"accessToken":  "acc",
		"refreshToken": "ref",
		"sessionToken": "acc",
		"expiresIn":    float64(3600),
	})
	require.NoError(t, err)
	assert.Equal(t, 3600, tokens.ExpiresIn)
	assert.Equal(t, Credentials{IDToken: "id", AccessToken: "acc", RefreshToken: "ref"}, tokens.Credentials())

	_, err = DecodeLoginTokens(map[string]any{"accessToken": "acc"})
	assert.ErrorContains(t, err, "no idToken")

	_, err = DecodeLoginTokens("text")
	assert.ErrorContains(t, err, "expected an object")
}

func TestMarketplaceCredentialType(t *testing.T) {
	assert.Equal(t, CredentialTypeName, MarketplaceCredentialType.Name)
	assert.Equal(t, Operation{ResourceHealth, ActionCheck}, MarketplaceCredentialType.TestRequest)
	assert.False(t, RequiresAuth(MarketplaceCredentialType.TestRequest))

	required := 0
	for _, p := range MarketplaceCredentialType.Properties {
		if p.Required {
			required++
			assert.Equal(t, "idToken", p.Name)
		}
	}
	assert.Equal(t, 1, required)
}
