package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icdevs/inspect-mo-sub000/internal/auth"
)

func TestProviderChain_ApiKeyMatch(t *testing.T) {
	chain := auth.NewProviderChain()
	p := auth.NewAPIKeyProvider()
	p.AddKey("secret-key")
	chain.RegisterProvider(p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "secret-key")

	principal, err := chain.Authenticate(req.Context(), req)
	require.NoError(t, err)
	assert.False(t, principal.Anonymous)
	assert.Contains(t, principal.ID, "apikey:")
}

func TestProviderChain_NoMatchIsAnonymous(t *testing.T) {
	chain := auth.NewProviderChain()
	p := auth.NewAPIKeyProvider()
	p.AddKey("secret-key")
	chain.RegisterProvider(p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	principal, err := chain.Authenticate(req.Context(), req)
	require.NoError(t, err)
	assert.True(t, principal.Anonymous)
}

func TestProviderChain_InvalidKeyRejects(t *testing.T) {
	chain := auth.NewProviderChain()
	p := auth.NewAPIKeyProvider()
	p.AddKey("secret-key")
	chain.RegisterProvider(p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-API-Key", "wrong-key")

	_, err := chain.Authenticate(req.Context(), req)
	assert.Error(t, err)
}

func TestListProviders(t *testing.T) {
	chain := auth.NewProviderChain()
	chain.RegisterProvider(auth.NewAPIKeyProvider())
	chain.RegisterProvider(auth.NewServiceAccountProvider())
	assert.Equal(t, []string{"apikey", "service_account"}, chain.ListProviders())
}
