package twilio_client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

const (
	// ContentType marks the JWT as a Twilio access token
	ContentType = "twilio-fpa;v=1"

	DefaultTTL = time.Hour
)

// Config holds the account credentials used to sign video tokens
type Config struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
	TTL          time.Duration
}

// VideoGrant scopes a token to one room
type VideoGrant struct {
	Room string `json:"room,omitempty"`
}

type Grants struct {
	Identity string      `json:"identity"`
	Video    *VideoGrant `json:"video,omitempty"`
}

// AccessTokenClaims is the payload of a video access token
type AccessTokenClaims struct {
	Grants Grants `json:"grants"`
	jwt.RegisteredClaims
}

// TwilioClient issues signed access tokens for the video call of a town
type TwilioClient struct {
	accountSID string
	apiKeySID  string
	secret     []byte
	ttl        time.Duration
	clock      clockwork.Clock
}

// NewTwilioClient builds an issuer. Missing credentials fall back to a
// random development secret so tokens are still issued but won't be
// accepted by the real service.
func NewTwilioClient(cfg Config, clock clockwork.Clock) *TwilioClient {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.AccountSID == "" || cfg.APIKeySID == "" || cfg.APIKeySecret == "" {
		log.Warn().Msg("twilio credentials missing, issuing development video tokens")
		if cfg.AccountSID == "" {
			cfg.AccountSID = "AC-dev"
		}
		if cfg.APIKeySID == "" {
			cfg.APIKeySID = "SK-dev"
		}
		cfg.APIKeySecret = uuid.NewString()
	}

	return &TwilioClient{
		accountSID: cfg.AccountSID,
		apiKeySID:  cfg.APIKeySID,
		secret:     []byte(cfg.APIKeySecret),
		ttl:        cfg.TTL,
		clock:      clock,
	}
}

// GetToken issues a token that lets playerID join the video room of townID
func (c *TwilioClient) GetToken(ctx context.Context, townID, playerID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if townID == "" || playerID == "" {
		return "", errors.New("town id and player id are required")
	}

	now := c.clock.Now()
	claims := AccessTokenClaims{
		Grants: Grants{
			Identity: playerID,
			Video:    &VideoGrant{Room: townID},
		},
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%s-%d", c.apiKeySID, now.Unix()),
			Issuer:    c.apiKeySID,
			Subject:   c.accountSID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token.Header["cty"] = ContentType

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign video token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a token issued by this client
func (c *TwilioClient) ValidateToken(tokenString string) (*AccessTokenClaims, error) {
	claims := &AccessTokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	}, jwt.WithTimeFunc(c.clock.Now))
	if err != nil {
		return nil, fmt.Errorf("invalid video token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("invalid video token")
	}
	return claims, nil
}
