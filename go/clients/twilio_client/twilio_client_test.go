package twilio_client

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{
		AccountSID:   "AC123",
		APIKeySID:    "SK456",
		APIKeySecret: "shhh",
		TTL:          10 * time.Minute,
	}
}

func TestGetToken_Claims(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Unix(1_700_000_000, 0))
	client := NewTwilioClient(testConfig(), clock)

	signed, err := client.GetToken(context.Background(), "TOWN1234", "player-1")
	require.NoError(t, err)

	claims, err := client.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "player-1", claims.Grants.Identity)
	require.NotNil(t, claims.Grants.Video)
	assert.Equal(t, "TOWN1234", claims.Grants.Video.Room)
	assert.Equal(t, "SK456-1700000000", claims.ID)
	assert.Equal(t, "SK456", claims.Issuer)
	assert.Equal(t, "AC123", claims.Subject)
	assert.Equal(t, time.Unix(1_700_000_600, 0), claims.ExpiresAt.Time)

	parsed, _, err := jwt.NewParser().ParseUnverified(signed, &AccessTokenClaims{})
	require.NoError(t, err)
	assert.Equal(t, ContentType, parsed.Header["cty"])
	assert.Equal(t, "HS256", parsed.Header["alg"])
}

func TestValidateToken_Expired(t *testing.T) {
	clock := clockwork.NewFakeClock()
	client := NewTwilioClient(testConfig(), clock)

	signed, err := client.GetToken(context.Background(), "TOWN1234", "player-1")
	require.NoError(t, err)

	clock.Advance(11 * time.Minute)
	_, err = client.ValidateToken(signed)
	assert.Error(t, err)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	clock := clockwork.NewFakeClock()
	signer := NewTwilioClient(testConfig(), clock)
	other := testConfig()
	other.APIKeySecret = "different"
	verifier := NewTwilioClient(other, clock)

	signed, err := signer.GetToken(context.Background(), "TOWN1234", "player-1")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(signed)
	assert.Error(t, err)
}

func TestGetToken_DevelopmentCredentials(t *testing.T) {
	client := NewTwilioClient(Config{}, nil)

	signed, err := client.GetToken(context.Background(), "TOWN1234", "player-1")
	require.NoError(t, err)
	assert.NotEmpty(t, signed)

	claims, err := client.ValidateToken(signed)
	require.NoError(t, err)
	assert.Equal(t, "AC-dev", claims.Subject)
	assert.Equal(t, time.Hour, claims.ExpiresAt.Sub(claims.IssuedAt.Time))
}

func TestGetToken_Errors(t *testing.T) {
	client := NewTwilioClient(testConfig(), clockwork.NewFakeClock())

	_, err := client.GetToken(context.Background(), "", "player-1")
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.GetToken(ctx, "TOWN1234", "player-1")
	assert.ErrorIs(t, err, context.Canceled)
}
