// internal/common/auth/identity.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"property-intel/internal/common/errors"
	httpclient "property-intel/internal/common/http"
)

// IdentityClient exchanges user credentials for a bearer token against a
// GoTrue-compatible identity endpoint.
type IdentityClient struct {
	http *httpclient.Client
}

// Session is the result of a successful sign-in. UserID is opaque to the core.
type Session struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresAt    time.Time
	UserID       string
	Email        string
}

// TokenResponse holds the response from the token endpoint.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID    json.RawMessage `json:"id"`
		Email string          `json:"email"`
	} `json:"user"`
}

func NewIdentityClient(baseURL, apiKey string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		http: httpclient.NewClient(baseURL, timeout, map[string]string{
			"apikey": apiKey,
		}),
	}
}

// SignIn performs a password grant. Bad credentials surface as a
// configuration error since retrying them cannot succeed.
func (c *IdentityClient) SignIn(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, errors.NewValidationError("email and password are required")
	}

	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	resp, err := c.http.PostJSON(ctx, "/auth/v1/token", url.Values{"grant_type": {"password"}}, body)
	if err != nil {
		return nil, errors.NewTransientProviderError(1, fmt.Errorf("token request: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		return nil, errors.NewConfigurationError("identity provider rejected the credentials")
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, errors.NewTransientProviderError(1, fmt.Errorf("identity provider returned status %d", resp.StatusCode))
	default:
		return nil, errors.NewProviderRejectedError(resp.StatusCode, string(resp.Body))
	}

	var tokenResp TokenResponse
	if err := json.Unmarshal(resp.Body, &tokenResp); err != nil {
		return nil, errors.NewProviderRejectedError(resp.StatusCode, "undecodable token response")
	}
	if tokenResp.AccessToken == "" {
		return nil, errors.NewProviderRejectedError(resp.StatusCode, "token response without access_token")
	}

	return &Session{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		TokenType:    tokenResp.TokenType,
		ExpiresAt:    time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second),
		UserID:       rawID(tokenResp.User.ID),
		Email:        tokenResp.User.Email,
	}, nil
}

// rawID accepts both string and numeric user ids.
func rawID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}
