package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// OwnerTokenTTL is how long an owner token issued at verification stays valid.
const OwnerTokenTTL = 30 * 24 * time.Hour

const ownerTokenType = "listing_owner"

var (
	ErrInvalidToken = errors.New("invalid owner token")
	ErrExpiredToken = errors.New("owner token expired")
)

// OwnerTokenClaims authorize a profile to edit one listing.
type OwnerTokenClaims struct {
	ProfileID string `json:"sub"`
	ListingID string `json:"listing_id"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateOwnerToken signs an HS256 token for (profileID, listingID).
func GenerateOwnerToken(profileID, listingID string, ttl time.Duration, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("secret is required for token generation")
	}
	now := time.Now()
	claims := OwnerTokenClaims{
		ProfileID: profileID,
		ListingID: listingID,
		Type:      ownerTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// VerifyOwnerToken checks signature, expiry and required claims.
func VerifyOwnerToken(token, secret string) (*OwnerTokenClaims, error) {
	if secret == "" {
		return nil, errors.New("secret is required for token verification")
	}
	var claims OwnerTokenClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if claims.Type != ownerTokenType || claims.ProfileID == "" || claims.ListingID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
