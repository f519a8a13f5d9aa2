// AngelaMos | 2026
// oauth.go

package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	ProviderGoogle = "google"

	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleProfile is the identity-provider view of a user, as returned by
// the userinfo endpoint after a successful code exchange.
type GoogleProfile struct {
	ProviderUserID string
	Email          string
	Name           string
	AvatarURL      string
}

type GoogleClient struct {
	conf *oauth2.Config
}

func NewGoogleClient(clientID, clientSecret, callbackURL string) *GoogleClient {
	return &GoogleClient{
		conf: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint:     google.Endpoint,
			RedirectURL:  callbackURL,
			Scopes:       []string{"openid", "email", "profile"},
		},
	}
}

// StateToken returns a random value bound to the redirect via a cookie,
// checked on callback against CSRF.
func (c *GoogleClient) StateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *GoogleClient) AuthURL(state string) string {
	return c.conf.AuthCodeURL(state)
}

// FetchProfile exchanges the authorization code and reads the userinfo
// endpoint with the resulting token.
func (c *GoogleClient) FetchProfile(
	ctx context.Context,
	code string,
) (*GoogleProfile, error) {
	token, err := c.conf.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	client := c.conf.Client(ctx, token)

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		ID      string `json:"id"`
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}

	return &GoogleProfile{
		ProviderUserID: payload.ID,
		Email:          payload.Email,
		Name:           payload.Name,
		AvatarURL:      payload.Picture,
	}, nil
}
