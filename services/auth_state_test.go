package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutridiary/identity"
	"nutridiary/models"
)

type fakeRegistration struct {
	mu   sync.Mutex
	full map[string]bool
	err  error
}

func (f *fakeRegistration) IsFullyRegistered(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return f.full[userID], nil
}

func newAuthState(t *testing.T, remote *fakeIdentity, reg RegistrationChecker) (*AuthStateManager, *AuthCache) {
	t.Helper()
	cache, _ := newAuthCache(t, remote)
	log, _ := test.NewNullLogger()
	m := NewAuthStateManager(cache, remote, reg, log)
	t.Cleanup(m.Close)
	return m, cache
}

func boolPtr(v bool) *bool { return &v }

func next(t *testing.T, ch <-chan models.UserAuthState) models.UserAuthState {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(time.Second):
		t.Fatal("no state published")
		return models.UserAuthState{}
	}
}

func TestAuthState_InitialAndReplay(t *testing.T) {
	m, _ := newAuthState(t, &fakeIdentity{err: identity.ErrUnavailable}, &fakeRegistration{})

	assert.Equal(t, models.InitialAuthState(), m.State())

	ch, cancel := m.Subscribe()
	defer cancel()
	s := next(t, ch)
	assert.True(t, s.Loading)
	assert.Nil(t, s.LoggedIn)

	m.SetAuthState(true, false)
	s = next(t, ch)
	assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(true)}, s)

	late, cancelLate := m.Subscribe()
	defer cancelLate()
	assert.Equal(t, s, next(t, late), "late subscribers get the latest value")
}

func TestAuthState_CheckUserState(t *testing.T) {
	ctx := context.Background()

	t.Run("logged out", func(t *testing.T) {
		m, _ := newAuthState(t, &fakeIdentity{err: identity.ErrUnavailable}, &fakeRegistration{})
		require.NoError(t, m.CheckUserState(ctx))
		assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(false)}, m.State())
	})

	t.Run("offline with fresh cache and incomplete onboarding", func(t *testing.T) {
		m, cache := newAuthState(t, &fakeIdentity{err: identity.ErrUnavailable}, &fakeRegistration{})
		cache.Save(ctx, "u1", "a@b.c", true)
		require.NoError(t, m.CheckUserState(ctx))
		assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(true)}, m.State())
	})

	t.Run("remote session fully registered", func(t *testing.T) {
		remote := &fakeIdentity{session: identity.Session{Valid: true, UserID: "u2"}}
		m, _ := newAuthState(t, remote, &fakeRegistration{full: map[string]bool{"u2": true}})

		ch, cancel := m.Subscribe()
		defer cancel()
		next(t, ch)

		require.NoError(t, m.CheckUserState(ctx))
		assert.True(t, next(t, ch).Loading, "loading is published first")
		assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(true), FullyRegistered: true}, next(t, ch))
	})

	t.Run("registration read fails", func(t *testing.T) {
		remote := &fakeIdentity{session: identity.Session{Valid: true, UserID: "u3"}}
		reg := &fakeRegistration{full: map[string]bool{"u3": true}}
		m, _ := newAuthState(t, remote, reg)
		require.NoError(t, m.CheckUserState(ctx))

		reg.mu.Lock()
		reg.err = errors.New("profile read failed")
		reg.mu.Unlock()

		err := m.CheckUserState(ctx)
		require.Error(t, err)
		assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(true), FullyRegistered: true}, m.State(),
			"keeps the previous registration flag")
	})
}

func TestAuthState_CheckUserStateKeepsCacheInStep(t *testing.T) {
	ctx := context.Background()
	remote := &fakeIdentity{}
	cache, now := newAuthCache(t, remote)
	log, _ := test.NewNullLogger()
	m := NewAuthStateManager(cache, remote, &fakeRegistration{full: map[string]bool{"u1": true}}, log)
	t.Cleanup(m.Close)

	remote.push(identity.Session{Valid: true, UserID: "u1", Email: "a@b.c"})
	require.True(t, m.State().IsLoggedIn())

	t.Run("online checks restart the offline window", func(t *testing.T) {
		remote.set(identity.Session{Valid: true, UserID: "u1", Email: "a@b.c"}, nil)
		*now = now.Add(6 * 24 * time.Hour)
		require.NoError(t, m.CheckUserState(ctx))

		*now = now.Add(3 * 24 * time.Hour)
		remote.set(identity.Session{}, identity.ErrUnavailable)
		assert.True(t, cache.IsLoggedIn(ctx), "nine days after login but three after the last check")
	})

	t.Run("revoked session stays revoked offline", func(t *testing.T) {
		remote.set(identity.Session{}, nil)
		require.NoError(t, m.CheckUserState(ctx))
		assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(false)}, m.State())

		rec, ok := cache.Record(ctx)
		assert.False(t, ok && rec.LoggedIn, "cache no longer claims a login")

		remote.set(identity.Session{}, identity.ErrUnavailable)
		assert.False(t, cache.IsLoggedIn(ctx))
		require.NoError(t, m.CheckUserState(ctx))
		assert.False(t, m.State().IsLoggedIn())
	})
}

func TestAuthState_UpdateFullyRegistered(t *testing.T) {
	m, _ := newAuthState(t, &fakeIdentity{err: identity.ErrUnavailable}, &fakeRegistration{})
	m.SetAuthState(true, false)

	m.UpdateFullyRegistered(true)
	assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(true), FullyRegistered: true}, m.State())
}

func TestAuthState_HandleSessionChange(t *testing.T) {
	ctx := context.Background()
	remote := &fakeIdentity{err: identity.ErrUnavailable}
	m, cache := newAuthState(t, remote, &fakeRegistration{full: map[string]bool{"u1": true}})

	remote.push(identity.Session{Valid: true, UserID: "u1", Email: "a@b.c"})
	assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(true), FullyRegistered: true}, m.State())
	rec, ok := cache.Record(ctx)
	require.True(t, ok)
	assert.Equal(t, "u1", rec.UserID)
	assert.True(t, cache.IsLoggedIn(ctx), "cache agrees with live state")

	remote.push(identity.Session{})
	assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(false)}, m.State())
	_, ok = cache.Record(ctx)
	assert.False(t, ok)
	assert.False(t, cache.IsLoggedIn(ctx))
}

func TestAuthState_SlowSubscriberDoesNotBlock(t *testing.T) {
	m, _ := newAuthState(t, &fakeIdentity{err: identity.ErrUnavailable}, &fakeRegistration{})
	ch, cancel := m.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			m.SetAuthState(true, i%2 == 0)
		}
		m.SetAuthState(false, false)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publisher blocked on a slow subscriber")
	}

	var last models.UserAuthState
	for len(ch) > 0 {
		last = <-ch
	}
	assert.Equal(t, models.UserAuthState{LoggedIn: boolPtr(false)}, last, "newest value survives conflation")
}
