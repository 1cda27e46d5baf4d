// Package auth issues and verifies bearer tokens and hashes passwords.
package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is the fixed validity window of an access token. Tokens are not
// renewable; once expired the user has to log in again.
const TokenTTL = 24 * time.Hour

// ErrInvalidToken is returned for every verification failure. Expired,
// malformed and badly signed tokens are deliberately indistinguishable.
var ErrInvalidToken = errors.New("invalid or expired token")

// Identity is the caller identity carried by a token.
type Identity struct {
	UserID uint
	Role   string
}

type tokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type TokenService struct {
	secret []byte
	ttl    time.Duration

	// Now is the clock used for iat/exp and for expiry checks.
	Now func() time.Time
}

func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = TokenTTL
	}
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		Now:    time.Now,
	}
}

// TTL reports how long issued tokens stay valid.
func (s *TokenService) TTL() time.Duration { return s.ttl }

// Issue signs {sub, role, iat, exp} with HS256.
func (s *TokenService) Issue(userID uint, role string) (string, error) {
	now := s.Now()
	claims := tokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// Verify checks signature and expiry and returns the identity in the token.
func (s *TokenService) Verify(tokenString string) (Identity, error) {
	claims := &tokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}

	userID, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || userID == 0 || claims.Role == "" {
		return Identity{}, ErrInvalidToken
	}

	return Identity{UserID: uint(userID), Role: claims.Role}, nil
}
