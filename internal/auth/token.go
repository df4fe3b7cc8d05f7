package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"agency/internal/cache"
	"agency/internal/core"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingSub   = errors.New("token subject is required")
)

// Claims are the bearer token claims mapped onto core.Identity.
type Claims struct {
	jwt.RegisteredClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

const (
	verifiedCacheSize = 1024
	verifiedCacheTTL  = 5 * time.Minute
)

// TokenVerifier validates HS256 bearer tokens. Verified tokens are
// remembered until the earlier of their expiry and verifiedCacheTTL.
type TokenVerifier struct {
	secret   []byte
	issuer   string
	verified *cache.LRU[core.Identity]
}

func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		verified: cache.NewLRU[core.Identity](verifiedCacheSize),
	}
}

// Verify parses tokenString and returns the identity it carries.
func (v *TokenVerifier) Verify(tokenString string) (core.Identity, error) {
	sum := sha256.Sum256([]byte(tokenString))
	key := hex.EncodeToString(sum[:])
	if id, ok := v.verified.Get(key); ok {
		return id, nil
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return core.Identity{}, ErrExpiredToken
		}
		return core.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return core.Identity{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return core.Identity{}, ErrMissingSub
	}

	id := core.Identity{
		UID:         claims.Subject,
		DisplayName: claims.Name,
		Email:       claims.Email,
	}
	expiresAt := time.Now().Add(verifiedCacheTTL)
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(expiresAt) {
		expiresAt = claims.ExpiresAt.Time
	}
	v.verified.Set(key, id, expiresAt)
	return id, nil
}

// Issue signs a token for id. Used by operators to mint tokens and by tests.
func (v *TokenVerifier) Issue(id core.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    v.issuer,
			Subject:   id.UID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Name:  id.DisplayName,
		Email: id.Email,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}
