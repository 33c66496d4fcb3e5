package auth

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AppleIssuer is both the audience of the client secret and the issuer of id tokens
const AppleIssuer = "https://appleid.apple.com"

var (
	ErrAppleTokenMalformed = errors.New("apple id token malformed")
	ErrAppleTokenClaims    = errors.New("apple id token claims rejected")
)

// AppleSecretSigner produces the ES256 client secret Apple expects on the token endpoint
type AppleSecretSigner struct {
	teamID   string
	clientID string
	keyID    string
	key      *ecdsa.PrivateKey
	ttl      time.Duration
}

// NewAppleSecretSigner parses the PEM encoded .p8 key issued by Apple
func NewAppleSecretSigner(teamID, clientID, keyID, privateKeyPEM string) (*AppleSecretSigner, error) {
	key, err := jwt.ParseECPrivateKeyFromPEM([]byte(privateKeyPEM))
	if err != nil {
		return nil, fmt.Errorf("parse apple private key: %w", err)
	}
	return &AppleSecretSigner{
		teamID:   teamID,
		clientID: clientID,
		keyID:    keyID,
		key:      key,
		ttl:      5 * time.Minute,
	}, nil
}

// Sign returns a client secret valid from now for the signer's ttl
func (s *AppleSecretSigner) Sign(now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    s.teamID,
		Subject:   s.clientID,
		Audience:  jwt.ClaimStrings{AppleIssuer},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = s.keyID
	return token.SignedString(s.key)
}

// AppleIDClaims is the subset of the id_token Apple returns from the code exchange
type AppleIDClaims struct {
	Email         string `json:"email"`
	EmailVerified any    `json:"email_verified"`
	jwt.RegisteredClaims
}

// Verified reports the email_verified claim, which Apple sends either as a bool or a string
func (c *AppleIDClaims) Verified() bool {
	switch v := c.EmailVerified.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	}
	return false
}

// ParseAppleIDToken decodes the id_token received directly from Apple's token endpoint
// over TLS in response to our authenticated request. The signature is not re-checked;
// issuer, audience and expiry are.
func ParseAppleIDToken(idToken, clientID string, now time.Time) (*AppleIDClaims, error) {
	claims := &AppleIDClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(idToken, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAppleTokenMalformed, err)
	}
	if claims.Issuer != AppleIssuer {
		return nil, fmt.Errorf("%w: issuer %q", ErrAppleTokenClaims, claims.Issuer)
	}
	if !slices.Contains(claims.Audience, clientID) {
		return nil, fmt.Errorf("%w: audience mismatch", ErrAppleTokenClaims)
	}
	if claims.ExpiresAt == nil || !now.Before(claims.ExpiresAt.Time) {
		return nil, fmt.Errorf("%w: expired", ErrAppleTokenClaims)
	}
	return claims, nil
}
