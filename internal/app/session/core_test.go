package session_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
)

type repositoryFake struct {
	records map[uuid.UUID]session.RefreshToken
	hashes  map[uuid.UUID]string
}

func newRepositoryFake() *repositoryFake {
	return &repositoryFake{
		records: map[uuid.UUID]session.RefreshToken{},
		hashes:  map[uuid.UUID]string{},
	}
}

func (fake *repositoryFake) CreateRefreshToken(_ context.Context, record session.RefreshToken, tokenHash string) error {
	fake.records[record.ID] = record
	fake.hashes[record.ID] = tokenHash

	return nil
}

func (fake *repositoryFake) GetRefreshToken(_ context.Context, id uuid.UUID) (session.RefreshToken, string, error) {
	record, ok := fake.records[id]
	if !ok {
		return session.RefreshToken{}, "", apperr.New("refresh token not found",
			session.CodeRefreshTokenNotFound, apperr.ClassNotFound, apperr.LogLevelWarn)
	}

	return record, fake.hashes[id], nil
}

// codecFake serializes claims as plain JSON so tests can issue and decode
// tokens without a signing key.
type codecFake struct {
	failParse bool
}

func (fake *codecFake) GenerateToken(claims jwt.Claims) (string, error) {
	raw, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func (fake *codecFake) ParseToken(tokenStr string, claims jwt.Claims) error {
	if fake.failParse {
		return apperr.ErrUnauthorized()
	}

	return json.Unmarshal([]byte(tokenStr), claims)
}

func (fake *codecFake) ParseTokenAllowExpired(tokenStr string, claims jwt.Claims) error {
	return json.Unmarshal([]byte(tokenStr), claims)
}

type hasherFake struct{}

func (hasherFake) HashRefreshToken(token []byte) ([]byte, error) {
	return bcrypt.GenerateFromPassword(token, bcrypt.MinCost)
}

type idGeneratorStub struct {
	id uuid.UUID
}

func (stub *idGeneratorStub) New() (uuid.UUID, error) {
	if stub.id != uuid.Nil {
		return stub.id, nil
	}

	return uuid.NewV7()
}

type rndGeneratorStub struct {
	calls int
}

func (stub *rndGeneratorStub) New(n int) (string, error) {
	stub.calls++

	raw := make([]byte, n)
	for i := range raw {
		raw[i] = byte('a' + (i+stub.calls)%26)
	}

	return string(raw), nil
}

type timeGeneratorStub struct {
	now time.Time
}

func (stub *timeGeneratorStub) Now() time.Time {
	return stub.now
}

type sessionCore interface {
	IssueSession(ctx context.Context, userID *uuid.UUID, role session.Role) (session.Token, error)
	RefreshSession(ctx context.Context, accessToken, refreshToken string) (session.Token, error)
	GetClaims(ctx context.Context, accessToken string) (session.Claims, error)
}

func newTestCore(t *testing.T) (*repositoryFake, *codecFake, *timeGeneratorStub, sessionCore) {
	t.Helper()

	repo := newRepositoryFake()
	codec := &codecFake{}
	clock := &timeGeneratorStub{now: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)}

	core := session.NewCore(repo, codec, hasherFake{}, &idGeneratorStub{}, &rndGeneratorStub{}, clock, session.Config{
		AccessTokenTTLMinutes:  15,
		RefreshTokenTTLMinutes: 60 * 24,
	})

	return repo, codec, clock, core
}

func TestIssueSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		repo, _, clock, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)
		require.NotEmpty(t, token.AccessToken)
		require.NotEmpty(t, token.RefreshToken)

		claims := session.AccessTokenClaims{}
		require.NoError(t, json.Unmarshal([]byte(token.AccessToken), &claims))
		require.NotNil(t, claims.UserID)
		assert.Equal(t, userID, *claims.UserID)
		assert.Equal(t, []session.Role{session.RoleUser}, claims.Roles)

		refreshTokenID := uuid.MustParse(claims.RefreshTokenID)
		record, hash, err := repo.GetRefreshToken(ctx, refreshTokenID)
		require.NoError(t, err)
		assert.Equal(t, session.RoleUser, record.Role)
		assert.Equal(t, clock.now.Add(24*time.Hour), record.ExpiresAt)
		require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(token.RefreshToken)))
	})

	t.Run("Anonymous", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)

		token, err := core.IssueSession(ctx, nil, session.RoleAnon)
		require.NoError(t, err)

		claims := session.AccessTokenClaims{}
		require.NoError(t, json.Unmarshal([]byte(token.AccessToken), &claims))
		assert.Nil(t, claims.UserID)
		assert.Equal(t, []session.Role{session.RoleAnon}, claims.Roles)
	})

	t.Run("InvalidRole", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)

		_, err := core.IssueSession(ctx, nil, session.Role("auth:nope"))
		require.Error(t, err)
		assert.Equal(t, apperr.ClassBadRequest, apperr.ClassOf(err))
	})
}

func TestRefreshSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleAdmin)
		require.NoError(t, err)

		refreshed, err := core.RefreshSession(ctx, token.AccessToken, token.RefreshToken)
		require.NoError(t, err)
		require.NotEmpty(t, refreshed.AccessToken)

		claims := session.AccessTokenClaims{}
		require.NoError(t, json.Unmarshal([]byte(refreshed.AccessToken), &claims))
		require.NotNil(t, claims.UserID)
		assert.Equal(t, userID, *claims.UserID)
		assert.Equal(t, []session.Role{session.RoleAdmin}, claims.Roles)
		// Refreshing does not consume the pair.
		_, err = core.RefreshSession(ctx, token.AccessToken, token.RefreshToken)
		require.NoError(t, err)
	})

	t.Run("WrongRefreshToken", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)

		_, err = core.RefreshSession(ctx, token.AccessToken, "not-the-refresh-token")
		require.Error(t, err)
		assert.Equal(t, session.CodeRefreshMismatch, apperr.CodeOf(err))
	})

	t.Run("CrossedPair", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)
		userID := uuid.New()

		first, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)
		second, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)

		_, err = core.RefreshSession(ctx, first.AccessToken, second.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, session.CodeRefreshMismatch, apperr.CodeOf(err))
	})

	t.Run("UnknownRefreshTokenID", func(t *testing.T) {
		t.Parallel()

		repo, _, _, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)

		// Wipe the stored record so the ID inside the access token is dangling.
		repo.records = map[uuid.UUID]session.RefreshToken{}

		_, err = core.RefreshSession(ctx, token.AccessToken, token.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, session.CodeRefreshMismatch, apperr.CodeOf(err))
	})

	t.Run("ExpiredRecord", func(t *testing.T) {
		t.Parallel()

		_, _, clock, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)

		clock.now = clock.now.Add(365 * 24 * time.Hour)

		_, err = core.RefreshSession(ctx, token.AccessToken, token.RefreshToken)
		require.Error(t, err)
		assert.Equal(t, session.CodeRefreshMismatch, apperr.CodeOf(err))
	})

	t.Run("MalformedAccessToken", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)

		_, err := core.RefreshSession(ctx, "not-json", "whatever")
		require.Error(t, err)
	})

	t.Run("RefreshedPairIsUsable", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleUser)
		require.NoError(t, err)

		refreshed, err := core.RefreshSession(ctx, token.AccessToken, token.RefreshToken)
		require.NoError(t, err)

		_, err = core.RefreshSession(ctx, refreshed.AccessToken, refreshed.RefreshToken)
		require.NoError(t, err)
	})
}

func TestGetClaims(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		t.Parallel()

		_, _, _, core := newTestCore(t)
		userID := uuid.New()

		token, err := core.IssueSession(ctx, &userID, session.RoleSuperAdmin)
		require.NoError(t, err)

		claims, err := core.GetClaims(ctx, token.AccessToken)
		require.NoError(t, err)
		require.NotNil(t, claims.UserID)
		assert.Equal(t, userID, *claims.UserID)
		assert.Equal(t, session.RoleSuperAdmin, claims.Role())
		assert.NotEmpty(t, claims.RefreshTokenID)
	})

	t.Run("InvalidToken", func(t *testing.T) {
		t.Parallel()

		_, codec, _, core := newTestCore(t)
		codec.failParse = true

		_, err := core.GetClaims(ctx, "whatever")
		require.Error(t, err)
	})
}
