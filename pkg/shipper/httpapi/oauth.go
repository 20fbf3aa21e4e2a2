package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/tournevent/carrierkit/pkg/shipper"
)

// tokenRefreshMargin is how long before expiry a token is renewed.
const tokenRefreshMargin = time.Minute

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   json.Number `json:"expires_in"`
	Scope       string      `json:"scope"`
}

// ParseAccessToken decodes an OAuth2 token response. expires_in may be a
// number or a numeric string.
func ParseAccessToken(body string, now time.Time) (shipper.AccessToken, error) {
	var tr tokenResponse
	if err := json.Unmarshal([]byte(body), &tr); err != nil {
		return shipper.AccessToken{}, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return shipper.AccessToken{}, fmt.Errorf("token response has no access_token")
	}

	token := shipper.AccessToken{
		Token:     tr.AccessToken,
		TokenType: tr.TokenType,
		Scope:     tr.Scope,
	}
	if tr.ExpiresIn != "" {
		secs, err := tr.ExpiresIn.Int64()
		if err != nil {
			return shipper.AccessToken{}, fmt.Errorf("invalid expires_in %q: %w", tr.ExpiresIn, err)
		}
		token.ExpiresAt = now.Add(time.Duration(secs) * time.Second)
	}
	return token, nil
}

// ClientCredentialsForm builds a form encoded client credentials grant.
func ClientCredentialsForm(tokenURL, clientID, clientSecret, scope string) *shipper.Request {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	if scope != "" {
		form.Set("scope", scope)
	}

	return &shipper.Request{
		Method:  "POST",
		URL:     tokenURL,
		Body:    form.Encode(),
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	}
}

// ClientCredentialsJSON builds a JSON encoded client credentials grant.
func ClientCredentialsJSON(tokenURL, clientID, clientSecret, scope string) *shipper.Request {
	body, _ := json.Marshal(struct {
		GrantType    string `json:"grant_type"`
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
		Scope        string `json:"scope,omitempty"`
	}{"client_credentials", clientID, clientSecret, scope})

	return &shipper.Request{
		Method:  "POST",
		URL:     tokenURL,
		Body:    string(body),
		Headers: map[string]string{"Content-Type": "application/json"},
	}
}

// TokenSource fetches a bearer token and reuses it until shortly before it
// expires. It is safe for concurrent use.
type TokenSource struct {
	carrier string
	doer    Doer
	request func() *shipper.Request
	now     func() time.Time

	mu    sync.Mutex
	token shipper.AccessToken
}

// NewTokenSource creates a token source. request builds the grant request.
func NewTokenSource(carrier string, doer Doer, request func() *shipper.Request) *TokenSource {
	return &TokenSource{
		carrier: carrier,
		doer:    doer,
		request: request,
		now:     time.Now,
	}
}

// Token returns a valid token, requesting a new one when needed.
func (s *TokenSource) Token(ctx context.Context) (shipper.AccessToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if !s.token.Expired(now.Add(tokenRefreshMargin)) {
		return s.token, nil
	}

	resp, err := s.doer.Do(ctx, s.request())
	if err != nil {
		return shipper.AccessToken{}, err
	}
	if !resp.OK() {
		return shipper.AccessToken{}, shipper.NewShipperError(s.carrier, "AUTH_ERROR", "token request rejected", resp.Body).
			WithStatusCode(resp.Status)
	}

	token, err := ParseAccessToken(resp.Body, now)
	if err != nil {
		return shipper.AccessToken{}, shipper.NewShipperError(s.carrier, "AUTH_ERROR", "invalid token response").WithCause(err)
	}
	s.token = token
	return token, nil
}

// SetClock overrides time.Now, for tests.
func (s *TokenSource) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Authorize sets the Authorization header on req.
func Authorize(req *shipper.Request, token shipper.AccessToken) {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	tokenType := token.TokenType
	if tokenType == "" || tokenType == "bearer" {
		tokenType = "Bearer"
	}
	req.Headers["Authorization"] = tokenType + " " + token.Token
}
