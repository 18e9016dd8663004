// Package token mints and verifies the signed credential that binds a
// participant to a room. The credential is opaque to clients; the gateway
// decodes identity and room from it on every connect and rejoin.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hilthontt/quorum/internal/domain"
)

type Claims struct {
	RoomID string `json:"roomID"`
	Name   string `json:"name"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

func NewIssuer(secret string, ttl time.Duration) *Issuer {
	return &Issuer{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "quorum",
	}
}

// Sign mints an HS256 token with the participant ID as subject. The token
// lifetime matches the room lifetime; a token never outlives its room by
// more than clock skew.
func (i *Issuer) Sign(roomID, userID, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		RoomID: roomID,
		Name:   name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string and returns its claims. All
// failure modes (bad signature, expiry, malformed input) collapse into
// domain.ErrInvalidToken; callers never branch on JWT internals.
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return i.secret, nil
	})
	if err != nil || !tok.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.RoomID == "" || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
