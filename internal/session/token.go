package session

import (
	"fmt"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

var supportedTokenAlgs = []jose.SignatureAlgorithm{
	jose.HS256, jose.HS384, jose.HS512,
	jose.RS256, jose.RS384, jose.RS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.EdDSA,
}

// TokenInfo holds display-only claims of a bearer token.
type TokenInfo struct {
	Subject   string    `json:"subject,omitempty"`
	Issuer    string    `json:"issuer,omitempty"`
	IssuedAt  time.Time `json:"issuedAt,omitzero"`
	ExpiresAt time.Time `json:"expiresAt,omitzero"`
}

// InspectToken reads the claims of a JWT bearer token without verifying its
// signature. The result must never be used for authorization decisions; the
// backend stays the only authority on token validity.
func InspectToken(token string) (TokenInfo, error) {
	parsed, err := jwt.ParseSigned(token, supportedTokenAlgs)
	if err != nil {
		return TokenInfo{}, fmt.Errorf("parsing token: %w", err)
	}

	var claims jwt.Claims
	if err := parsed.UnsafeClaimsWithoutVerification(&claims); err != nil {
		return TokenInfo{}, fmt.Errorf("reading token claims: %w", err)
	}

	info := TokenInfo{
		Subject: claims.Subject,
		Issuer:  claims.Issuer,
	}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time()
	}
	if claims.Expiry != nil {
		info.ExpiresAt = claims.Expiry.Time()
	}

	return info, nil
}
