package jwt_test

import (
	"strings"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/inkwell/pkg/jwt"
)

func TestNewRequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := jwt.New("")
	require.ErrorIs(t, err, jwt.ErrEmptySecret)
}

func TestIssueAndParse(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("s3cret", jwt.WithIssuer("test"), jwt.WithTTL(time.Hour))
	require.NoError(t, err)

	token, err := svc.Issue("user-1", "Ada", "ada@example.com")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "Ada", claims.Name)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "test", claims.Issuer)
}

func TestParseRejects(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, err := jwt.New("s3cret", jwt.WithClock(func() time.Time { return now }), jwt.WithTTL(time.Hour))
	require.NoError(t, err)
	token, err := svc.Issue("user-1", "", "")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		later, err := jwt.New("s3cret", jwt.WithClock(func() time.Time { return now.Add(2 * time.Hour) }))
		require.NoError(t, err)
		_, err = later.Parse(token)
		require.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New("other", jwt.WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		_, err = other.Parse(token)
		require.ErrorIs(t, err, jwt.ErrInvalidSignature)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		t.Parallel()
		other, err := jwt.New("s3cret", jwt.WithIssuer("someone-else"), jwt.WithClock(func() time.Time { return now }))
		require.NoError(t, err)
		_, err = other.Parse(token)
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Parse("not.a.token")
		require.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("alg none", func(t *testing.T) {
		t.Parallel()
		unsigned, err := gojwt.NewWithClaims(gojwt.SigningMethodNone, gojwt.MapClaims{
			"sub": "user-1", "iss": "inkwell", "exp": now.Add(time.Hour).Unix(),
		}).SignedString(gojwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		claims, err := svc.Parse(unsigned)
		require.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)
		_, err := svc.Parse(parts[0] + "." + parts[1] + "x." + parts[2])
		require.Error(t, err)
	})
}

func TestIssueRequiresSubject(t *testing.T) {
	t.Parallel()

	svc, err := jwt.New("s3cret")
	require.NoError(t, err)
	_, err = svc.Issue("", "Ada", "")
	require.ErrorIs(t, err, jwt.ErrMissingSubject)
}
