package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shashiranjanraj/commandes/config"
	"github.com/shashiranjanraj/commandes/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestIssueAndParse(t *testing.T) {
	cfg, err := config.FromMap(map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)
	issuer := auth.NewTokenIssuer(cfg)

	token, err := issuer.Issue(7, "admin", "admin")
	require.NoError(t, err)

	claims, err := issuer.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Type)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, 5*time.Second)
}

func TestParseRejectsExpiredAndForeign(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	now := base
	issuer := auth.NewTokenIssuerWith("s3cret", time.Hour, func() time.Time { return now })

	token, err := issuer.Issue(1, "a", "staff")
	require.NoError(t, err)

	now = base.Add(2 * time.Hour)
	_, err = issuer.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	now = base
	other := auth.NewTokenIssuerWith("other", time.Hour, func() time.Time { return now })
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	issuer := auth.NewTokenIssuerWith("s3cret", time.Hour, nil)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{UserID: 1}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = issuer.Parse(unsigned)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestClaimsContext(t *testing.T) {
	_, ok := auth.ClaimsFromCtx(context.Background())
	assert.False(t, ok)

	ctx := auth.WithClaims(context.Background(), &auth.Claims{Username: "x"})
	c, ok := auth.ClaimsFromCtx(ctx)
	require.True(t, ok)
	assert.Equal(t, "x", c.Username)
}

func TestBcrypt(t *testing.T) {
	h := auth.NewBcrypt(bcrypt.MinCost)

	a, err := h.Hash("secret")
	require.NoError(t, err)
	b, err := h.Hash("secret")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Compare(a, "secret"))
	assert.False(t, h.Compare(a, "wrong"))
	assert.False(t, h.Compare("not-a-hash", "secret"))
}
