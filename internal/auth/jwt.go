package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/saikat7890/Lost-and-Found-System/pkg/middleware"
)

// Issuer is the expected iss claim when one is configured.
const Issuer = "trackitdown-auth"

// Claims represents the JWT claims of an access token.
type Claims struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	// AccountCreatedAt is the caller's account creation time as unix seconds.
	AccountCreatedAt int64 `json:"account_created_at,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier checks HMAC-signed access tokens issued by the identity
// provider.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for tokens signed with secret. An empty
// issuer accepts any iss claim.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses and validates token and returns the caller it identifies.
// The subject claim is used when user_id is absent.
func (v *TokenVerifier) Verify(token string) (*middleware.Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid access token claims")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return nil, errors.New("access token has no user id")
	}

	out := &middleware.Claims{
		UserID: userID,
		Name:   claims.Name,
		Email:  claims.Email,
	}
	if claims.AccountCreatedAt > 0 {
		out.AccountCreatedAt = time.Unix(claims.AccountCreatedAt, 0).UTC()
	}
	return out, nil
}

// Sign issues an access token for c that expires after ttl. It exists for
// local development and tests; production tokens come from the identity
// provider.
func (v *TokenVerifier) Sign(c middleware.Claims, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := &Claims{
		UserID: c.UserID,
		Name:   c.Name,
		Email:  c.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.UserID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if !c.AccountCreatedAt.IsZero() {
		claims.AccountCreatedAt = c.AccountCreatedAt.Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}
