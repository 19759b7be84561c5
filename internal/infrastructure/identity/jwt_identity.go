// Package identity implements the external identity collaborator:
// bearer-token verification and credential checks. The core never
// manages users or tokens itself; it only consumes the resolved actor.
package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/hima852/expenseflow/internal/application/port"
	"github.com/hima852/expenseflow/internal/domain/entity"
	"github.com/hima852/expenseflow/pkg/utils"
)

// ErrUnauthenticated is returned for missing, malformed, or expired
// tokens and for failed credential checks.
var ErrUnauthenticated = errors.New("authentication required")

// Claims is the JWT payload carried by issued tokens.
type Claims struct {
	UserID     int64  `json:"user_id"`
	Role       string `json:"role"`
	Department string `json:"department"`
	jwt.RegisteredClaims
}

// JWTIdentity implements port.IdentityService with HS256 tokens and
// bcrypt credential checks against the user table.
type JWTIdentity struct {
	secret   []byte
	tokenTTL time.Duration
	userRepo port.UserRepository
	logger   *zap.Logger
}

// NewJWTIdentity creates a new identity service.
func NewJWTIdentity(secret string, tokenTTL time.Duration, userRepo port.UserRepository, logger *zap.Logger) *JWTIdentity {
	return &JWTIdentity{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Authenticate resolves a bearer token to the acting principal.
func (s *JWTIdentity) Authenticate(ctx context.Context, token string) (entity.Actor, error) {
	if token == "" {
		return entity.Actor{}, ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		s.logger.Debug("Token verification failed", zap.Error(err))
		return entity.Actor{}, ErrUnauthenticated
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok {
		return entity.Actor{}, ErrUnauthenticated
	}

	return entity.Actor{
		UserID:     claims.UserID,
		Role:       claims.Role,
		Department: claims.Department,
	}, nil
}

// CheckCredentials verifies an email/password pair. The error is the
// same for unknown users and wrong passwords.
func (s *JWTIdentity) CheckCredentials(ctx context.Context, email, password string) (entity.Actor, error) {
	if err := utils.ValidateEmail(email); err != nil {
		return entity.Actor{}, ErrUnauthenticated
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return entity.Actor{}, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return entity.Actor{}, ErrUnauthenticated
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return entity.Actor{}, ErrUnauthenticated
	}

	return entity.Actor{
		UserID:     user.ID,
		Role:       user.Role,
		Department: user.Department,
	}, nil
}

// IssueToken mints a signed token for an actor.
func (s *JWTIdentity) IssueToken(actor entity.Actor) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:     actor.UserID,
		Role:       actor.Role,
		Department: actor.Department,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify interface compliance
var _ port.IdentityService = (*JWTIdentity)(nil)
