// Package auth parses bearer tokens and hashes customer credentials.
// Issuing tokens for real users happens outside this service; Issue exists
// for development and the token:issue command.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

// Claims holds the typed JWT payload.
type Claims struct {
	Role       string `json:"role"`
	CustomerID string `json:"customer_id,omitempty"`
	jwt.RegisteredClaims
}

// Keys signs and verifies HS256 tokens with one shared secret.
type Keys struct {
	secret []byte
	now    func() time.Time
}

func NewKeys(secret string) (*Keys, error) {
	if secret == "" {
		return nil, errors.New("auth: empty JWT secret")
	}
	return &Keys{secret: []byte(secret), now: time.Now}, nil
}

// Issue mints a token for role. customerID is required for customers.
func (k *Keys) Issue(role, customerID string, ttl time.Duration) (string, error) {
	if role != RoleAdmin && role != RoleCustomer {
		return "", fmt.Errorf("auth: unknown role %q", role)
	}
	if role == RoleCustomer && customerID == "" {
		return "", errors.New("auth: customer token needs a customer id")
	}
	now := k.now()
	claims := Claims{
		Role:       role,
		CustomerID: customerID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   customerID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(k.secret)
}

// Parse validates signature and expiry and returns the claims.
func (k *Keys) Parse(raw string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(*jwt.Token) (any, error) {
		return k.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(k.now))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}

// HashPassword returns a bcrypt hash of the plain-text secret.
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	return string(b), err
}

// CheckPassword compares a bcrypt hash against the plain-text candidate.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
