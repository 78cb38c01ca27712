package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "minetrack/pkg/domain-errors"
)

func TestIssueAndValidate(t *testing.T) {
	svc := NewJWTService("test-signing-key", time.Hour)

	token, err := svc.Issue("665f1c2e9b3d4a0012345678", "Budi", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "665f1c2e9b3d4a0012345678", claims.UserID)
	assert.Equal(t, "Budi", claims.Name)
	assert.Equal(t, "admin", claims.Role)
	assert.NotEmpty(t, claims.JTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	svc := NewJWTService("test-signing-key", -time.Minute)

	token, err := svc.Issue("665f1c2e9b3d4a0012345678", "Budi", "user")
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	assert.Contains(t, err.Error(), "expired")
}

func TestValidateRejectsWrongKey(t *testing.T) {
	token, err := NewJWTService("key-one", time.Hour).Issue("id", "Budi", "user")
	require.NoError(t, err)

	_, err = NewJWTService("key-two", time.Hour).ValidateToken(token)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := NewJWTService("test-signing-key", time.Hour)
	_, err := svc.ValidateToken("not.a.token")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func TestTokensCarryUniqueIDs(t *testing.T) {
	svc := NewJWTService("test-signing-key", time.Hour)

	a, err := svc.Issue("id", "Budi", "user")
	require.NoError(t, err)
	b, err := svc.Issue("id", "Budi", "user")
	require.NoError(t, err)

	claimsA, err := svc.ValidateToken(a)
	require.NoError(t, err)
	claimsB, err := svc.ValidateToken(b)
	require.NoError(t, err)
	assert.NotEqual(t, claimsA.JTI, claimsB.JTI)
}
