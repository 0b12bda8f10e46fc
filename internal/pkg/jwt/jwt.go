package jwt

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

// SessionClaims represents an authenticated admin session. The fingerprint
// binds the token to the client identity and user agent it was issued to.
type SessionClaims struct {
	Username    string `json:"username"`
	Fingerprint string `json:"fp"`
	jwt.RegisteredClaims
}

// ClaimTokenClaims carries the id of a just-submitted warranty claim for
// the confirmation page. The record itself is always refetched from the
// store; the token is only a pointer.
type ClaimTokenClaims struct {
	ClaimID uint `json:"claim_id"`
	jwt.RegisteredClaims
}

// Fingerprint derives a stable client fingerprint from the source address
// and user agent.
func Fingerprint(clientIP, userAgent string) string {
	sum := sha256.Sum256([]byte(clientIP + "|" + userAgent))
	return hex.EncodeToString(sum[:16])
}

// GenerateSessionToken generates a signed admin session token
func GenerateSessionToken(username, fingerprint, secret string, expiryMinutes int) (string, error) {
	claims := SessionClaims{
		Username:    username,
		Fingerprint: fingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "claimdesk",
			Subject:   username,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateSessionToken validates a session token and returns its claims
func ValidateSessionToken(tokenString, secret string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrTokenInvalid
}

// GenerateClaimToken generates a short-lived token pointing at a claim id
func GenerateClaimToken(claimID uint, secret string, expiryMinutes int) (string, error) {
	claims := ClaimTokenClaims{
		ClaimID: claimID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(expiryMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Issuer:    "claimdesk",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateClaimToken validates a claim token and returns the claim id
func ValidateClaimToken(tokenString, secret string) (uint, error) {
	token, err := jwt.ParseWithClaims(tokenString, &ClaimTokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(secret), nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, ErrTokenExpired
		}
		return 0, ErrTokenInvalid
	}

	if claims, ok := token.Claims.(*ClaimTokenClaims); ok && token.Valid {
		return claims.ClaimID, nil
	}

	return 0, ErrTokenInvalid
}
