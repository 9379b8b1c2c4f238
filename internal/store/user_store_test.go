package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserLifecycle(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("alice", "hash", "admin")
	require.NoError(t, err)
	require.NotZero(t, user.ID)

	count, err := s.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	fetched, err := s.GetUserByUsername("alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)
	assert.Equal(t, "admin", fetched.Role)

	require.NoError(t, s.UpdateUser(user.ID, "alice", "user"))
	fetched, err = s.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "user", fetched.Role)

	require.NoError(t, s.DeleteUser(user.ID))
	count, err = s.CountUsers()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestSessions(t *testing.T) {
	s := newTestStore(t)

	user, err := s.CreateUser("bob", "hash", "user")
	require.NoError(t, err)

	token, err := s.CreateSession(user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	fetched, err := s.GetUserFromSession(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, fetched.ID)

	require.NoError(t, s.DeleteSession(token))
	_, err = s.GetUserFromSession(token)
	assert.Error(t, err)
}

func TestGetUserFromSessionInvalidToken(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetUserFromSession("no-such-token")
	assert.EqualError(t, err, "invalid session token")
}
