package httpapi_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tournevent/carrierkit/pkg/shipper"
	"github.com/tournevent/carrierkit/pkg/shipper/httpapi"
)

var epoch = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func TestParseAccessToken(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"numeric expiry", `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`},
		{"string expiry", `{"access_token":"tok","token_type":"Bearer","expires_in":"3600"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := httpapi.ParseAccessToken(tt.body, epoch)
			require.NoError(t, err)
			assert.Equal(t, "tok", token.Token)
			assert.Equal(t, epoch.Add(time.Hour), token.ExpiresAt)
		})
	}
}

func TestParseAccessToken_Errors(t *testing.T) {
	_, err := httpapi.ParseAccessToken("not json", epoch)
	assert.Error(t, err)

	_, err = httpapi.ParseAccessToken(`{"token_type":"Bearer"}`, epoch)
	assert.Error(t, err)
}

func TestClientCredentialsForm(t *testing.T) {
	req := httpapi.ClientCredentialsForm("https://auth.test/token", "id", "secret", "scope/.default")

	values, err := url.ParseQuery(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "client_credentials", values.Get("grant_type"))
	assert.Equal(t, "scope/.default", values.Get("scope"))
	assert.Equal(t, "application/x-www-form-urlencoded", req.Headers["Content-Type"])
}

func TestClientCredentialsJSON(t *testing.T) {
	req := httpapi.ClientCredentialsJSON("https://auth.test/token", "id", "secret", "")
	assert.JSONEq(t, `{"grant_type":"client_credentials","client_id":"id","client_secret":"secret"}`, req.Body)
}

func TestTokenSource_ReusesToken(t *testing.T) {
	mock := httpapi.NewMock().
		Respond(200, `{"access_token":"first","expires_in":600}`).
		Respond(200, `{"access_token":"second","expires_in":600}`)

	now := epoch
	source := httpapi.NewTokenSource("tforce", mock, func() *shipper.Request {
		return httpapi.ClientCredentialsForm("https://auth.test/token", "id", "secret", "")
	})
	source.SetClock(func() time.Time { return now })

	ctx := context.Background()
	token, err := source.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", token.Token)

	now = epoch.Add(5 * time.Minute)
	token, err = source.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", token.Token)

	now = epoch.Add(9*time.Minute + 30*time.Second)
	token, err = source.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", token.Token, "renewed inside the refresh margin")
	assert.Len(t, mock.Requests(), 2)
}

func TestTokenSource_Rejected(t *testing.T) {
	mock := httpapi.NewMock().Respond(401, `{"error":"invalid_client"}`)
	source := httpapi.NewTokenSource("uspsship", mock, func() *shipper.Request { return &shipper.Request{} })

	_, err := source.Token(context.Background())
	var se *shipper.ShipperError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.StatusCode)
}

func TestAuthorize(t *testing.T) {
	req := &shipper.Request{}
	httpapi.Authorize(req, shipper.AccessToken{Token: "abc", TokenType: "bearer"})
	assert.Equal(t, "Bearer abc", req.Headers["Authorization"])
}
