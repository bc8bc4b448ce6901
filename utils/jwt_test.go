package utils

import (
	"testing"

	"github.com/openkms/docchat-be/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserTokenRoundTrip(t *testing.T) {
	user := &types.User{
		ID:       "user-1",
		Username: "jsmith",
		FullName: "J. Smith",
		Role:     types.USER_ROLE_ADMIN,
		Division: "engineering",
	}

	token, err := GenerateUserToken(user)
	require.NoError(t, err)

	claims, err := ParseUserToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.ID)
	assert.Equal(t, user.Username, claims.Username)
	assert.Equal(t, user.Role, claims.Role)
	assert.Equal(t, user.Division, claims.Division)

	id, err := GetIdWithoutCheck(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestParseUserTokenInvalid(t *testing.T) {
	_, err := ParseUserToken("not-a-token")
	assert.Error(t, err)
}
