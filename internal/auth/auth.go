package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidToken is returned for expired, malformed or tampered tokens.
// No further detail is exposed to clients.
var ErrInvalidToken = errors.New("invalid token")

// Authenticator is the injected credential capability: the rest of the
// system never depends on a specific hashing or token library's call shape.
type Authenticator interface {
	HashPassword(password string) (string, error)
	VerifyPassword(password, hash string) bool
	IssueToken(subject string) (string, error)
	VerifyToken(token string) (subject string, err error)
}

// JWTAuthenticator implements Authenticator with bcrypt password hashes and
// HS256-signed JWTs carrying the user's email as subject.
type JWTAuthenticator struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// NewJWTAuthenticator creates a JWTAuthenticator. A non-positive ttl
// defaults to 24 hours.
func NewJWTAuthenticator(secret string, ttl time.Duration) *JWTAuthenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTAuthenticator{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "cloudwatch",
	}
}

func (a *JWTAuthenticator) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (a *JWTAuthenticator) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// IssueToken signs a token for the given subject (the user's email).
func (a *JWTAuthenticator) IssueToken(subject string) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// VerifyToken validates signature, algorithm and expiry, and returns the
// token subject.
func (a *JWTAuthenticator) VerifyToken(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
