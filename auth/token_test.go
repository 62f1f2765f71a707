package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seamline/model"
)

const testSecret = "test-secret"

func TestIssueAndParseToken(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", "factory-1", []string{model.RoleManager}, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "factory-1", claims.FactoryID)
	assert.Equal(t, []string{model.RoleManager}, claims.Roles)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", "factory-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("other-secret", token)
	assert.Error(t, err)
}

func TestParseTokenExpired(t *testing.T) {
	token, err := IssueToken(testSecret, "user-1", "factory-1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, token)
	assert.Error(t, err)
}

func TestIssueTokenRequiresSecret(t *testing.T) {
	_, err := IssueToken("", "user-1", "factory-1", nil, time.Hour)
	assert.Error(t, err)
}

func TestHasAnyRole(t *testing.T) {
	operator := &Claims{Roles: []string{model.RoleOperator}}
	assert.True(t, operator.HasAnyRole(model.RoleOperator, model.RoleManager))
	assert.False(t, operator.HasAnyRole(model.RoleManager))

	// Admin passes every role check.
	admin := &Claims{Roles: []string{model.RoleAdmin}}
	assert.True(t, admin.HasAnyRole(model.RoleManager))
	assert.True(t, admin.HasAnyRole(model.RoleViewer))
}
