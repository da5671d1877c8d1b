package auth

import (
	"testing"
	"time"

	"github.com/fabmate/backend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWTService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "fabmate-access-secret-32-chars-xx",
		RefreshSecret:          "fabmate-refresh-secret-32-chars-x",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "fabmate",
		MaxRefreshCount:        10,
	})
}

// sameSecretService signs access and refresh tokens with one secret, so a
// token of the wrong kind passes the signature check and only the token
// type claim can reject it.
func sameSecretService() *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                 "fabmate-access-secret-32-chars-xx",
		RefreshSecret:          "fabmate-access-secret-32-chars-xx",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "fabmate",
		MaxRefreshCount:        10,
	})
}

func newTestInput() GenerateTokenInput {
	return GenerateTokenInput{
		CompanyID: uuid.New(),
		UserID:    uuid.New(),
		Email:     "test@fabmate.io",
		Role:      "member",
	}
}

func TestNewJWTService(t *testing.T) {
	cfg := config.JWTConfig{
		Secret:                 "fabmate-access-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "fabmate",
		MaxRefreshCount:        5,
	}

	svc := NewJWTService(cfg)
	require.NotNil(t, svc)
	assert.Equal(t, []byte(cfg.Secret), svc.accessSecret)
	assert.Equal(t, cfg.AccessTokenExpiration, svc.accessExpiration)
	assert.Equal(t, cfg.RefreshTokenExpiration, svc.refreshExpiration)
	assert.Equal(t, cfg.Issuer, svc.issuer)
	assert.Equal(t, cfg.MaxRefreshCount, svc.maxRefreshCount)

	// Without a dedicated refresh secret the access secret is reused.
	assert.Equal(t, []byte(cfg.Secret), svc.refreshSecret)
}

func TestGenerateTokenPair(t *testing.T) {
	svc := newTestJWTService()

	pair, err := svc.GenerateTokenPair(newTestInput())
	require.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, "Bearer", pair.TokenType)
	assert.True(t, pair.AccessTokenExpiresAt.After(time.Now()))
	assert.True(t, pair.RefreshTokenExpiresAt.After(pair.AccessTokenExpiresAt))
}

func TestValidateAccessToken(t *testing.T) {
	t.Run("valid token yields its claims", func(t *testing.T) {
		svc := newTestJWTService()
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := svc.ValidateAccessToken(pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.CompanyID.String(), claims.CompanyID)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, input.Email, claims.Email)
		assert.Equal(t, input.Role, claims.Role)
		assert.Equal(t, TokenTypeAccess, claims.TokenType)
	})

	t.Run("expired token", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                 "fabmate-access-secret-32-chars-xx",
			AccessTokenExpiration:  -1 * time.Hour,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "fabmate",
		})
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := newTestJWTService().ValidateAccessToken("invalid-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token is rejected by type", func(t *testing.T) {
		svc := sameSecretService()
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateAccessToken(pair.RefreshToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		pair, err := newTestJWTService().GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		other := NewJWTService(config.JWTConfig{
			Secret:                 "different-secret-key-32-chars!",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "fabmate",
		})
		_, err = other.ValidateAccessToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestValidateRefreshToken(t *testing.T) {
	t.Run("valid token yields identifiers only", func(t *testing.T) {
		svc := newTestJWTService()
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, input.CompanyID.String(), claims.CompanyID)
		assert.Equal(t, input.UserID.String(), claims.UserID)
		assert.Equal(t, TokenTypeRefresh, claims.TokenType)
		assert.Equal(t, 0, claims.RefreshCount)

		// Email and role are re-read from the user record at refresh time,
		// so the refresh token does not carry them.
		assert.Empty(t, claims.Email)
		assert.Empty(t, claims.Role)
	})

	t.Run("access token is rejected by type", func(t *testing.T) {
		svc := sameSecretService()
		pair, err := svc.GenerateTokenPair(newTestInput())
		require.NoError(t, err)

		_, err = svc.ValidateRefreshToken(pair.AccessToken)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestRefreshTokenPair(t *testing.T) {
	t.Run("rotates both tokens and applies the current role", func(t *testing.T) {
		svc := newTestJWTService()
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		newPair, err := svc.RefreshTokenPair(pair.RefreshToken, input.Email, "admin")
		require.NoError(t, err)
		assert.NotEqual(t, pair.AccessToken, newPair.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, newPair.RefreshToken)

		claims, err := svc.ValidateAccessToken(newPair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, input.Email, claims.Email)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("increments the refresh count", func(t *testing.T) {
		svc := newTestJWTService()
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		for want := 1; want <= 2; want++ {
			pair, err = svc.RefreshTokenPair(pair.RefreshToken, input.Email, input.Role)
			require.NoError(t, err)

			claims, err := svc.ValidateRefreshToken(pair.RefreshToken)
			require.NoError(t, err)
			assert.Equal(t, want, claims.RefreshCount)
		}
	})

	t.Run("fails once the refresh count is exhausted", func(t *testing.T) {
		svc := NewJWTService(config.JWTConfig{
			Secret:                 "fabmate-access-secret-32-chars-xx",
			RefreshSecret:          "fabmate-refresh-secret-32-chars-x",
			AccessTokenExpiration:  15 * time.Minute,
			RefreshTokenExpiration: 7 * 24 * time.Hour,
			Issuer:                 "fabmate",
			MaxRefreshCount:        2,
		})
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		for range 2 {
			pair, err = svc.RefreshTokenPair(pair.RefreshToken, input.Email, input.Role)
			require.NoError(t, err)
		}

		_, err = svc.RefreshTokenPair(pair.RefreshToken, input.Email, input.Role)
		assert.ErrorIs(t, err, ErrMaxRefreshExceeded)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := newTestJWTService().RefreshTokenPair("invalid-token", "test@fabmate.io", "member")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("access token cannot drive a refresh", func(t *testing.T) {
		svc := sameSecretService()
		input := newTestInput()
		pair, err := svc.GenerateTokenPair(input)
		require.NoError(t, err)

		_, err = svc.RefreshTokenPair(pair.AccessToken, input.Email, input.Role)
		assert.ErrorIs(t, err, ErrInvalidTokenType)
	})
}

func TestClaims_Accessors(t *testing.T) {
	svc := newTestJWTService()
	input := newTestInput()
	pair, err := svc.GenerateTokenPair(input)
	require.NoError(t, err)

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)

	companyUUID, err := claims.GetCompanyUUID()
	require.NoError(t, err)
	assert.Equal(t, input.CompanyID, companyUUID)

	userUUID, err := claims.GetUserUUID()
	require.NoError(t, err)
	assert.Equal(t, input.UserID, userUUID)
}

func TestClaims_HasRole(t *testing.T) {
	claims := &Claims{Role: "member"}

	assert.True(t, claims.HasRole("member"))
	assert.True(t, claims.HasRole("admin", "member"))
	assert.False(t, claims.HasRole("admin"))
	assert.False(t, claims.HasRole())
}
