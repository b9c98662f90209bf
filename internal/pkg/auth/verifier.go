package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ManuelReschke/PhaseGate/internal/pkg/env"
)

const defaultLeeway = 30 * time.Second

var (
	ErrMissingSecret = errors.New("SUPABASE_JWT_SECRET must be set")
	ErrInvalidToken  = errors.New("invalid token")
	ErrInvalidSub    = errors.New("token subject is not a user id")
)

// Claims are the Supabase access-token claims the service reads.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Verifier validates HS256 access tokens signed with the project JWT secret.
type Verifier struct {
	secret   []byte
	audience string
	parser   *jwt.Parser
}

// NewVerifierFromEnv reads SUPABASE_JWT_SECRET and SUPABASE_JWT_AUDIENCE.
func NewVerifierFromEnv() (*Verifier, error) {
	return NewVerifier(
		env.GetEnv("SUPABASE_JWT_SECRET", ""),
		env.GetEnv("SUPABASE_JWT_AUDIENCE", "authenticated"),
	)
}

// NewVerifier builds a verifier. An empty audience disables the aud check.
func NewVerifier(secret, audience string) (*Verifier, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSecret
	}

	opts := []jwt.ParserOption{
		jwt.WithLeeway(defaultLeeway),
		jwt.WithExpirationRequired(),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
	}
	if audience = strings.TrimSpace(audience); audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &Verifier{
		secret:   []byte(secret),
		audience: audience,
		parser:   jwt.NewParser(opts...),
	}, nil
}

// Audience returns the required aud claim, empty when not checked.
func (v *Verifier) Audience() string {
	return v.audience
}

// Verify parses the token and returns its claims and the user id in sub.
func (v *Verifier) Verify(tokenString string) (*Claims, uuid.UUID, error) {
	claims := &Claims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil || userID == uuid.Nil {
		return nil, uuid.Nil, ErrInvalidSub
	}
	return claims, userID, nil
}

// Sign issues a token for userID. Used by the CLI and tests.
func (v *Verifier) Sign(userID uuid.UUID, audience string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		Role: "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ExtractBearerToken returns the token of an "Authorization: Bearer" header.
func ExtractBearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
