package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/turfbook/turfbook/pkg/domain"
)

func testUser() domain.User {
	return domain.User{
		ID:    "u1",
		Name:  "Test User",
		Email: "a@b.com",
		Role:  domain.RoleUser,
	}
}

func TestLoginSetsAuthenticated(t *testing.T) {
	s := New("")
	require.False(t, s.Snapshot().Authenticated)

	s.Login(testUser(), "access-1", "refresh-1")

	snap := s.Snapshot()
	require.True(t, snap.Authenticated)
	require.NotNil(t, snap.User)
	require.Equal(t, "a@b.com", snap.User.Email)
	require.Equal(t, "access-1", s.AccessToken())
	require.Equal(t, "refresh-1", s.RefreshToken())
}

func TestLogoutClearsEverything(t *testing.T) {
	s := New("")
	s.Login(testUser(), "access-1", "refresh-1")

	s.Logout()

	snap := s.Snapshot()
	require.False(t, snap.Authenticated)
	require.Nil(t, snap.User)
	require.Empty(t, s.AccessToken())
	require.Empty(t, s.RefreshToken())
}

func TestUpdateUserMergesPartial(t *testing.T) {
	s := New("")
	s.Login(testUser(), "a", "r")

	name := "New Name"
	s.UpdateUser(domain.UserPatch{Name: &name})

	snap := s.Snapshot()
	require.Equal(t, "New Name", snap.User.Name)
	require.Equal(t, "a@b.com", snap.User.Email)
	require.True(t, snap.Authenticated, "profile update must not touch auth state")
}

func TestUpdateUserWithoutUserIsNoop(t *testing.T) {
	s := New("")
	name := "Nobody"
	require.NotPanics(t, func() {
		s.UpdateUser(domain.UserPatch{Name: &name})
	})
	require.Nil(t, s.Snapshot().User)
}

func TestIsLoadingORsAllFlows(t *testing.T) {
	s := New("")
	require.False(t, s.IsLoading())

	s.SetFlowPending(FlowLogin, true)
	s.SetFlowPending(FlowSessionCheck, true)
	require.True(t, s.IsLoading())
	require.True(t, s.FlowPending(FlowLogin))
	require.False(t, s.FlowPending(FlowRegister))
	require.True(t, s.IsLoading(FlowLogin, FlowRegister))
	require.False(t, s.IsLoading(FlowRegister, FlowBooking))

	s.SetFlowPending(FlowLogin, false)
	require.True(t, s.IsLoading(), "other flow still in flight")

	s.SetFlowPending(FlowSessionCheck, false)
	require.False(t, s.IsLoading())
}

func TestSubscribersNotifiedSynchronously(t *testing.T) {
	s := New("")
	var calls int
	s.Subscribe(func() { calls++ })

	s.Login(testUser(), "a", "r")
	require.Equal(t, 1, calls)

	s.Logout()
	require.Equal(t, 2, calls)
}

func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s := New(dir)
	require.NoError(t, s.Load())
	s.Login(testUser(), "access-secret", "refresh-secret")

	// Fresh store from the same dir sees user + refresh token, but the
	// access token is memory-only.
	restored := New(dir)
	require.NoError(t, restored.Load())
	snap := restored.Snapshot()
	require.True(t, snap.Authenticated)
	require.Equal(t, "u1", snap.User.ID)
	require.Empty(t, restored.AccessToken())
	require.Equal(t, "refresh-secret", restored.RefreshToken())
}

func TestPersistedFileNeverContainsTokens(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.Login(testUser(), "access-secret", "refresh-secret")

	data, err := os.ReadFile(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	require.False(t, strings.Contains(string(data), "access-secret"))
	require.False(t, strings.Contains(string(data), "refresh-secret"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLogoutRemovesTokenFile(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	s.Login(testUser(), "a", "refresh-secret")
	s.Logout()

	_, err := os.Stat(filepath.Join(dir, "token"))
	require.True(t, os.IsNotExist(err))

	restored := New(dir)
	require.NoError(t, restored.Load())
	require.False(t, restored.Snapshot().Authenticated)
}

func TestLoadIgnoresInconsistentSessionFile(t *testing.T) {
	dir := t.TempDir()
	// Claims authenticated without a user — the invariant must win.
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "session.json"),
		[]byte(`{"isAuthenticated":true}`), 0600))

	s := New(dir)
	require.NoError(t, s.Load())
	require.False(t, s.Snapshot().Authenticated)
}
