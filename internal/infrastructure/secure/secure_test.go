package secure_test

import (
	"testing"
	"time"

	"github.com/a-novel/service-authentication/internal/app/session"
	"github.com/a-novel/service-authentication/internal/infrastructure/secure"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	hasher := secure.NewPasswordHasher()

	t.Run("RoundTrip", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.HashPassword([]byte("secret"), bcrypt.MinCost)
		require.NoError(t, err)

		require.NoError(t, hasher.CheckPasswordHash([]byte("secret"), string(hash)))
	})

	t.Run("Mismatch", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.HashPassword([]byte("secret"), bcrypt.MinCost)
		require.NoError(t, err)

		err = hasher.CheckPasswordHash([]byte("wrong"), string(hash))
		require.ErrorIs(t, err, secure.ErrMismatchedHashAndPassword)
	})

	t.Run("ZeroesInput", func(t *testing.T) {
		t.Parallel()

		password := []byte("secret")
		_, err := hasher.HashPassword(password, bcrypt.MinCost)
		require.NoError(t, err)

		assert.Equal(t, make([]byte, len("secret")), password)
	})

	t.Run("ShortCodeRoundTrip", func(t *testing.T) {
		t.Parallel()

		hash, err := hasher.HashShortCode([]byte("some-code"))
		require.NoError(t, err)

		require.NoError(t, hasher.CheckPasswordHash([]byte("some-code"), string(hash)))
	})
}

func TestTokenCodec(t *testing.T) {
	t.Parallel()

	codec := secure.NewTokenCodec([]byte("test-secret"))
	userID := uuid.New()

	newClaims := func(expiresAt time.Time) *session.AccessTokenClaims {
		return &session.AccessTokenClaims{
			UserID:         &userID,
			Roles:          []session.Role{session.RoleUser},
			RefreshTokenID: uuid.NewString(),
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(time.Now().UTC()),
				ExpiresAt: jwt.NewNumericDate(expiresAt),
			},
		}
	}

	t.Run("RoundTrip", func(t *testing.T) {
		t.Parallel()

		claims := newClaims(time.Now().Add(time.Hour))

		tokenStr, err := codec.GenerateToken(claims)
		require.NoError(t, err)

		var parsed session.AccessTokenClaims
		require.NoError(t, codec.ParseToken(tokenStr, &parsed))

		require.NotNil(t, parsed.UserID)
		assert.Equal(t, userID, *parsed.UserID)
		assert.Equal(t, claims.RefreshTokenID, parsed.RefreshTokenID)
		assert.Equal(t, []session.Role{session.RoleUser}, parsed.Roles)
	})

	t.Run("ExpiredRejected", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := codec.GenerateToken(newClaims(time.Now().Add(-time.Hour)))
		require.NoError(t, err)

		var parsed session.AccessTokenClaims
		require.Error(t, codec.ParseToken(tokenStr, &parsed))
	})

	t.Run("ExpiredAllowedForRefresh", func(t *testing.T) {
		t.Parallel()

		claims := newClaims(time.Now().Add(-time.Hour))

		tokenStr, err := codec.GenerateToken(claims)
		require.NoError(t, err)

		var parsed session.AccessTokenClaims
		require.NoError(t, codec.ParseTokenAllowExpired(tokenStr, &parsed))
		assert.Equal(t, claims.RefreshTokenID, parsed.RefreshTokenID)
	})

	t.Run("WrongSecretRejected", func(t *testing.T) {
		t.Parallel()

		tokenStr, err := codec.GenerateToken(newClaims(time.Now().Add(time.Hour)))
		require.NoError(t, err)

		other := secure.NewTokenCodec([]byte("other-secret"))

		var parsed session.AccessTokenClaims
		require.Error(t, other.ParseToken(tokenStr, &parsed))
		require.Error(t, other.ParseTokenAllowExpired(tokenStr, &parsed))
	})

	t.Run("GarbageRejected", func(t *testing.T) {
		t.Parallel()

		var parsed session.AccessTokenClaims
		require.Error(t, codec.ParseToken("not-a-token", &parsed))
	})
}
