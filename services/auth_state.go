package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"nutridiary/identity"
	"nutridiary/metrics"
	"nutridiary/models"
)

const subscriberBuffer = 8

// RegistrationChecker answers whether a user has finished onboarding.
type RegistrationChecker interface {
	IsFullyRegistered(ctx context.Context, userID string) (bool, error)
}

// AuthStateManager owns the observable login state. Mutators are the only
// writers; subscribers receive every publish, conflated when they lag.
type AuthStateManager struct {
	cache *AuthCache
	reg   RegistrationChecker
	log   logrus.FieldLogger

	mu     sync.Mutex
	state  models.UserAuthState
	subs   map[int]chan models.UserAuthState
	nextID int

	unregister func()
}

// NewAuthStateManager starts in the loading state and follows session
// changes pushed by remote when it is non-nil.
func NewAuthStateManager(cache *AuthCache, remote identity.Provider, reg RegistrationChecker, log logrus.FieldLogger) *AuthStateManager {
	m := &AuthStateManager{
		cache: cache,
		reg:   reg,
		log:   log,
		state: models.InitialAuthState(),
		subs:  make(map[int]chan models.UserAuthState),
	}
	if remote != nil {
		m.unregister = remote.OnSessionChange(func(s identity.Session) {
			m.HandleSessionChange(context.Background(), s)
		})
	}
	return m
}

// Close stops following remote session changes and closes subscriber channels.
func (m *AuthStateManager) Close() {
	if m.unregister != nil {
		m.unregister()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
}

func copyState(s models.UserAuthState) models.UserAuthState {
	if s.LoggedIn != nil {
		v := *s.LoggedIn
		s.LoggedIn = &v
	}
	return s
}

func stateLabel(s models.UserAuthState) string {
	switch {
	case s.Loading:
		return "loading"
	case !s.IsLoggedIn():
		return "logged_out"
	case s.FullyRegistered:
		return "complete"
	default:
		return "incomplete"
	}
}

func (m *AuthStateManager) publishLocked(s models.UserAuthState) {
	m.state = copyState(s)
	for _, ch := range m.subs {
		deliver(ch, copyState(s))
	}
	metrics.RecordAuthState(stateLabel(s))
}

func (m *AuthStateManager) publish(s models.UserAuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishLocked(s)
}

// deliver never blocks: a full channel drops its oldest pending value.
func deliver(ch chan models.UserAuthState, s models.UserAuthState) {
	for {
		select {
		case ch <- s:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (m *AuthStateManager) State() models.UserAuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyState(m.state)
}

// Subscribe replays the current state and then every later publish.
// The returned func unsubscribes and closes the channel.
func (m *AuthStateManager) Subscribe() (<-chan models.UserAuthState, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan models.UserAuthState, subscriberBuffer)
	ch <- copyState(m.state)
	id := m.nextID
	m.nextID++
	m.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				close(c)
				delete(m.subs, id)
			}
		})
	}
}

func (m *AuthStateManager) SetAuthState(loggedIn, fullyRegistered bool) {
	m.publish(models.UserAuthState{LoggedIn: &loggedIn, FullyRegistered: fullyRegistered})
}

// UpdateFullyRegistered changes only the registration flag of the current state.
func (m *AuthStateManager) UpdateFullyRegistered(v bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := copyState(m.state)
	s.FullyRegistered = v
	m.publishLocked(s)
}

func (m *AuthStateManager) setLoading() models.UserAuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	prev := copyState(m.state)
	s := copyState(prev)
	s.Loading = true
	m.publishLocked(s)
	return prev
}

// CheckUserState re-derives the login state from the remote provider,
// writing its answer back to the cache, or from the cache when offline. When the registration check fails the user stays logged in with
// the previous registration flag and the error is returned.
func (m *AuthStateManager) CheckUserState(ctx context.Context) error {
	prev := m.setLoading()

	userID, ok := m.cache.Sync(ctx)
	if !ok {
		m.SetAuthState(false, false)
		return nil
	}

	full, err := m.reg.IsFullyRegistered(ctx, userID)
	if err != nil {
		m.SetAuthState(true, prev.FullyRegistered)
		m.log.WithError(err).WithField("user_id", userID).Warn("registration check failed")
		return fmt.Errorf("check registration for %s: %w", userID, err)
	}
	m.SetAuthState(true, full)
	return nil
}

// HandleSessionChange applies a session pushed by the identity provider to
// both the device cache and the live state.
func (m *AuthStateManager) HandleSessionChange(ctx context.Context, s identity.Session) {
	log := m.log.WithField("user_id", s.UserID)
	if !s.Valid || s.UserID == "" {
		m.cache.Clear(ctx)
		m.SetAuthState(false, false)
		log.Info("session ended")
		return
	}

	m.cache.Save(ctx, s.UserID, s.Email, true)
	full, err := m.reg.IsFullyRegistered(ctx, s.UserID)
	if err != nil {
		log.WithError(err).Warn("registration check failed after session change")
		full = m.State().FullyRegistered
	}
	m.SetAuthState(true, full)
	log.Info("session changed")
}
