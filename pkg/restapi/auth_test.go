package restapi

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTokenServer answers the client credentials exchange with token
func newTokenServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := &atomic.Int32{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("client-id:client-secret")), r.Header.Get("Authorization"))
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		assert.Empty(t, r.PostForm.Get("client_secret"), "secret must only travel in the header")

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)

	return server, calls
}

func TestBasicAuthenticator(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://harvest.greenhouse.io/v1/users", nil)
	require.NoError(t, NewBasicAuthenticator("secret-key").Authenticate(context.Background(), req))

	username, password, ok := req.BasicAuth()
	require.True(t, ok)
	assert.Equal(t, "secret-key", username)
	assert.Equal(t, "", password)
}

func TestOAuthAuthenticatorCachesToken(t *testing.T) {
	server, calls := newTokenServer(t, http.StatusOK, `{"access_token":"T","token_type":"bearer","expires_in":3600}`)
	auth := NewOAuthAuthenticator("client-id", "client-secret", server.URL, server.Client())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "https://harvest.greenhouse.io/v3/candidates", nil)
		require.NoError(t, auth.Authenticate(context.Background(), req))
		assert.Equal(t, "Bearer T", req.Header.Get("Authorization"))
	}

	assert.Equal(t, int32(1), calls.Load(), "token must be exchanged once per run")
}

func TestOAuthAuthenticatorWithoutExpiry(t *testing.T) {
	server, calls := newTokenServer(t, http.StatusOK, `{"access_token":"T"}`)
	auth := NewOAuthAuthenticator("client-id", "client-secret", server.URL, server.Client())

	token, err := auth.Token()
	require.NoError(t, err)
	assert.Equal(t, "T", token.AccessToken)
	assert.Equal(t, "Bearer", token.Type())

	_, err = auth.Token()
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestOAuthAuthenticatorFailure(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "invalid client", status: http.StatusUnauthorized, body: `{"error":"invalid_client"}`},
		{name: "server error", status: http.StatusInternalServerError, body: `oops`},
		{name: "missing token", status: http.StatusOK, body: `{"token_type":"bearer"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server, calls := newTokenServer(t, tc.status, tc.body)
			auth := NewOAuthAuthenticator("client-id", "client-secret", server.URL, server.Client())

			req := httptest.NewRequest(http.MethodGet, "https://harvest.greenhouse.io/v3/candidates", nil)
			err := auth.Authenticate(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAuthentication)
			assert.NotContains(t, err.Error(), "client-secret")
			assert.Empty(t, req.Header.Get("Authorization"))
			assert.Equal(t, int32(1), calls.Load(), "token endpoint is not retried")
		})
	}
}
