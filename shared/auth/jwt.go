package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a token fails signature or claim validation.
var ErrInvalidToken = errors.New("invalid token")

// Claims identifies a verified account.
type Claims struct {
	UserID string `json:"uid"`
	Phone  string `json:"phone"`
	jwt.RegisteredClaims
}

// Config holds the signing settings for access tokens. An empty Secret disables token issuing.
type Config struct {
	Secret    string        `env:"SECRET"`
	Issuer    string        `env:"ISSUER"     envDefault:"property-listing-api"`
	Audience  string        `env:"AUDIENCE"   envDefault:"property-listing-api"`
	ExpiresIn time.Duration `env:"EXPIRES_IN" envDefault:"24h"`
}

// JWTAuthenticator issues and validates HS256 access tokens.
type JWTAuthenticator struct {
	secret    []byte
	issuer    string
	audience  string
	expiresIn time.Duration
	now       func() time.Time
}

// NewJWTAuthenticator creates a new JWTAuthenticator instance.
func NewJWTAuthenticator(cfg Config) *JWTAuthenticator {
	return &JWTAuthenticator{
		secret:    []byte(cfg.Secret),
		issuer:    cfg.Issuer,
		audience:  cfg.Audience,
		expiresIn: cfg.ExpiresIn,
		now:       time.Now,
	}
}

// IssueAccessToken signs a token for the given account.
func (a *JWTAuthenticator) IssueAccessToken(userID, phone string) (string, error) {
	now := a.now()
	claims := Claims{
		UserID: userID,
		Phone:  phone,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.expiresIn)),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    a.issuer,
			Audience:  jwt.ClaimStrings{a.audience},
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseAccessToken validates tokenString and returns its claims.
func (a *JWTAuthenticator) ParseAccessToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}

		return a.secret, nil
	},
		jwt.WithExpirationRequired(),
		jwt.WithAudience(a.audience),
		jwt.WithIssuer(a.issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
