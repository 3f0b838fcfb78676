package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-intel/internal/common/errors"
)

func createTestIdentityServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/v1/token", r.URL.Path)
		assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))

		var creds map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, "owner@example.com", creds["email"])

		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSignIn_Success(t *testing.T) {
	server := createTestIdentityServer(t, http.StatusOK, `{
		"access_token": "tok",
		"token_type": "bearer",
		"expires_in": 3600,
		"refresh_token": "ref",
		"user": {"id": 1234, "email": "owner@example.com"}
	}`)

	client := NewIdentityClient(server.URL, "anon-key", time.Second)
	session, err := client.SignIn(context.Background(), "owner@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "tok", session.AccessToken)
	assert.Equal(t, "1234", session.UserID)
	assert.True(t, session.ExpiresAt.After(time.Now()))
}

func TestSignIn_StringUserID(t *testing.T) {
	server := createTestIdentityServer(t, http.StatusOK,
		`{"access_token": "tok", "expires_in": 60, "user": {"id": "a1b2"}}`)

	client := NewIdentityClient(server.URL, "anon-key", time.Second)
	session, err := client.SignIn(context.Background(), "owner@example.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "a1b2", session.UserID)
}

func TestSignIn_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode errors.ErrorCode
	}{
		{"bad credentials", http.StatusBadRequest, `{"error":"invalid_grant"}`, errors.ErrCodeConfiguration},
		{"server error", http.StatusBadGateway, ``, errors.ErrCodeTransientProvider},
		{"forbidden", http.StatusForbidden, `nope`, errors.ErrCodeProviderRejected},
		{"garbage body", http.StatusOK, `not json`, errors.ErrCodeProviderRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := createTestIdentityServer(t, tt.status, tt.body)
			client := NewIdentityClient(server.URL, "anon-key", time.Second)

			_, err := client.SignIn(context.Background(), "owner@example.com", "secret")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
		})
	}
}

func TestSignIn_RequiresCredentials(t *testing.T) {
	client := NewIdentityClient("http://127.0.0.1:0", "anon-key", time.Second)
	_, err := client.SignIn(context.Background(), "", "")
	assert.ErrorIs(t, err, errors.ErrValidationFailed)
}
