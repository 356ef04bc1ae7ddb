package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partsdesk/internal/domain"
)

const testSecret = "spare-parts-identity-secret-for-tests"

func sign(t *testing.T, claims IdentityClaims, secret string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return s
}

func TestParseIdentity(t *testing.T) {
	valid := IdentityClaims{
		Username: "sam",
		Roles:    []string{RoleSupervisor},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	t.Run("Verified", func(t *testing.T) {
		claims, err := ParseIdentity(sign(t, valid, testSecret), testSecret)
		require.NoError(t, err)
		v := claims.Viewer()
		assert.Equal(t, "sam", v.Username)
		assert.True(t, v.Supervisor)
		assert.False(t, v.CategoryManager)
	})

	t.Run("Wrong secret", func(t *testing.T) {
		_, err := ParseIdentity(sign(t, valid, testSecret), "another-secret")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := valid
		expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
		_, err := ParseIdentity(sign(t, expired, testSecret), testSecret)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("Unverified without secret", func(t *testing.T) {
		claims, err := ParseIdentity(sign(t, IdentityClaims{
			Roles:            []string{RoleCategoryManager},
			RegisteredClaims: jwt.RegisteredClaims{Subject: "melsheraiy"},
		}, testSecret), "")
		require.NoError(t, err)
		v := claims.Viewer()
		assert.Equal(t, "melsheraiy", v.Username)
		assert.True(t, v.CanManageCategories())
		assert.False(t, v.Supervisor)
	})

	t.Run("Garbage", func(t *testing.T) {
		_, err := ParseIdentity("not-a-token", "")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestResolveViewer(t *testing.T) {
	fallback := domain.Viewer{Username: "alice"}

	v, err := ResolveViewer("", "", fallback)
	require.NoError(t, err)
	assert.Equal(t, fallback, v)

	_, err = ResolveViewer(sign(t, IdentityClaims{}, testSecret), testSecret, fallback)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
