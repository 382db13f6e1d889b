package session

import (
	"context"
	"fmt"
	"time"

	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Repository interface {
	CreateRefreshToken(ctx context.Context, record RefreshToken, tokenHash string) error
	GetRefreshToken(ctx context.Context, id uuid.UUID) (RefreshToken, string, error)
}

type TokenCodec interface {
	GenerateToken(claims jwt.Claims) (string, error)
	ParseToken(tokenStr string, claims jwt.Claims) error
	ParseTokenAllowExpired(tokenStr string, claims jwt.Claims) error
}

type PasswordHasher interface {
	HashRefreshToken(token []byte) ([]byte, error)
}

type UUIDGenerator interface {
	New() (uuid.UUID, error)
}

type RNDGenerator interface {
	New(n int) (string, error)
}

type TimeGenerator interface {
	Now() time.Time
}

type generators struct {
	idGenerator   UUIDGenerator
	rndGenerator  RNDGenerator
	timeGenerator TimeGenerator
}

type Config struct {
	AccessTokenTTLMinutes  int `mapstructure:"access_token_ttl_minutes" json:"access_token_ttl_minutes"`
	RefreshTokenTTLMinutes int `mapstructure:"refresh_token_ttl_minutes" json:"refresh_token_ttl_minutes"`
}

type core struct {
	repo       Repository
	codec      TokenCodec
	hasher     PasswordHasher
	generators generators
	cfg        Config
}

func NewCore(repo Repository, codec TokenCodec, hasher PasswordHasher,
	idGenerator UUIDGenerator, rndGenerator RNDGenerator, timeGenerator TimeGenerator, cfg Config) *core {
	if cfg.AccessTokenTTLMinutes <= 0 || cfg.RefreshTokenTTLMinutes <= 0 {
		panic("session.core: invalid config")
	}
	if repo == nil || codec == nil || hasher == nil || idGenerator == nil || rndGenerator == nil || timeGenerator == nil {
		panic("session.core: nil dependency")
	}

	return &core{
		repo:       repo,
		codec:      codec,
		hasher:     hasher,
		generators: generators{idGenerator, rndGenerator, timeGenerator},
		cfg:        cfg,
	}
}

// IssueSession creates a fresh token pair. A nil userID issues an anonymous
// session.
func (c *core) IssueSession(ctx context.Context, userID *uuid.UUID, role Role) (Token, error) {
	if err := role.Validate(); err != nil {
		return Token{}, fmt.Errorf("session.core.IssueSession: %w", err)
	}

	refreshTokenID, err := c.generators.idGenerator.New()
	if err != nil {
		return Token{}, fmt.Errorf("session.core.IssueSession: %w", err)
	}

	refreshToken, err := c.generators.rndGenerator.New(32) // 32 bytes = 256 bits of entropy
	if err != nil {
		return Token{}, fmt.Errorf("session.core.IssueSession: %w", err)
	}
	rtHash, err := c.hasher.HashRefreshToken([]byte(refreshToken))
	if err != nil {
		return Token{}, fmt.Errorf("session.core.IssueSession: %w", err)
	}

	now := c.generators.timeGenerator.Now()
	record := RefreshToken{
		ID:        refreshTokenID,
		UserID:    userID,
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(c.cfg.RefreshTokenTTLMinutes) * time.Minute),
	}
	if err = c.repo.CreateRefreshToken(ctx, record, string(rtHash)); err != nil {
		return Token{}, fmt.Errorf("session.core.IssueSession: %w", err)
	}

	accessToken, err := c.codec.GenerateToken(AccessTokenClaims{
		UserID:         userID,
		Roles:          []Role{role},
		RefreshTokenID: refreshTokenID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(c.cfg.AccessTokenTTLMinutes) * time.Minute)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	})
	if err != nil {
		return Token{}, fmt.Errorf("session.core.IssueSession: %w", err)
	}

	return Token{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshSession re-issues a token pair. The access token only needs a valid
// signature, not a valid expiry, but it must name the exact refresh token it
// was issued alongside. Refreshing does not consume the pair.
func (c *core) RefreshSession(ctx context.Context, accessToken, refreshToken string) (Token, error) {
	claims := AccessTokenClaims{}
	if err := c.codec.ParseTokenAllowExpired(accessToken, &claims); err != nil {
		return Token{}, fmt.Errorf("session.core.RefreshSession: %w", err)
	}

	refreshTokenID, err := uuid.Parse(claims.RefreshTokenID)
	if err != nil || refreshTokenID == uuid.Nil {
		return Token{}, fmt.Errorf("session.core.RefreshSession: %w",
			ErrRefreshMismatch())
	}

	record, rtHash, err := c.repo.GetRefreshToken(ctx, refreshTokenID)
	if err != nil {
		if apperr.ClassOf(err) == apperr.ClassNotFound {
			err = ErrRefreshMismatch()
		}
		return Token{}, fmt.Errorf("session.core.RefreshSession: %w", err)
	}

	now := c.generators.timeGenerator.Now()
	if !record.ExpiresAt.After(now) {
		return Token{}, fmt.Errorf("session.core.RefreshSession: %w", ErrRefreshMismatch())
	}

	if err = bcrypt.CompareHashAndPassword([]byte(rtHash), []byte(refreshToken)); err != nil {
		return Token{}, fmt.Errorf("session.core.RefreshSession: %w", ErrRefreshMismatch())
	}

	// The new pair carries the identity of the stored record, not of the
	// presented access token.
	token, err := c.IssueSession(ctx, record.UserID, record.Role)
	if err != nil {
		return Token{}, fmt.Errorf("session.core.RefreshSession: %w", err)
	}

	return token, nil
}

// GetClaims resolves the identity of a live access token.
func (c *core) GetClaims(_ context.Context, accessToken string) (Claims, error) {
	tokenClaims := AccessTokenClaims{}
	if err := c.codec.ParseToken(accessToken, &tokenClaims); err != nil {
		return Claims{}, fmt.Errorf("session.core.GetClaims: %w", err)
	}

	return Claims{
		UserID:         tokenClaims.UserID,
		Roles:          tokenClaims.Roles,
		RefreshTokenID: tokenClaims.RefreshTokenID,
	}, nil
}
