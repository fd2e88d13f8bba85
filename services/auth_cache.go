package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"nutridiary/identity"
	"nutridiary/kvstore"
	"nutridiary/models"
)

const authCacheKey = "auth.cached_record"

// AuthCache keeps the last known login on the device so the app can start
// offline. The remote identity provider wins whenever it answers.
type AuthCache struct {
	kv     kvstore.Store
	remote identity.Provider
	log    logrus.FieldLogger
	now    func() time.Time
}

func NewAuthCache(kv kvstore.Store, remote identity.Provider, log logrus.FieldLogger) *AuthCache {
	return &AuthCache{kv: kv, remote: remote, log: log, now: time.Now}
}

// Save overwrites the cached record. Failures are logged, never returned.
func (c *AuthCache) Save(ctx context.Context, userID, email string, loggedIn bool) {
	rec := models.CachedAuthRecord{
		UserID:          userID,
		Email:           email,
		LoggedIn:        loggedIn,
		LastWriteTimeMs: c.now().UnixMilli(),
	}
	if err := c.kv.Set(ctx, authCacheKey, rec); err != nil {
		c.log.WithError(err).WithField("user_id", userID).Warn("failed to save auth cache")
	}
}

// Record returns the cached record, if one can be read.
func (c *AuthCache) Record(ctx context.Context) (models.CachedAuthRecord, bool) {
	var rec models.CachedAuthRecord
	ok, err := c.kv.Get(ctx, authCacheKey, &rec)
	if err != nil {
		c.log.WithError(err).Warn("failed to read auth cache")
		return models.CachedAuthRecord{}, false
	}
	return rec, ok
}

func (c *AuthCache) remoteSession(ctx context.Context) (identity.Session, bool, error) {
	if c.remote == nil {
		return identity.Session{}, false, identity.ErrUnavailable
	}
	s, err := c.remote.Session(ctx)
	if err != nil {
		return identity.Session{}, false, err
	}
	return s, s.Valid && s.UserID != "", nil
}

// SessionUser resolves the signed-in user with one remote round-trip. A
// reachable remote without a session is definitive and drops the cached
// login. Only an unreachable remote falls back to the cached record, which
// must be logged in, carry a user id and be fresh.
func (c *AuthCache) SessionUser(ctx context.Context) (string, bool) {
	return c.resolve(ctx, false)
}

// Sync is SessionUser that also rewrites the cached record from a valid
// remote session, restarting the offline window.
func (c *AuthCache) Sync(ctx context.Context) (string, bool) {
	return c.resolve(ctx, true)
}

func (c *AuthCache) resolve(ctx context.Context, persist bool) (string, bool) {
	s, valid, err := c.remoteSession(ctx)
	switch {
	case err == nil && valid:
		if persist {
			c.Save(ctx, s.UserID, s.Email, true)
		}
		return s.UserID, true
	case err == nil:
		c.forget(ctx)
		return "", false
	case !errors.Is(err, identity.ErrUnavailable):
		c.log.WithError(err).Warn("identity session check failed")
		return "", false
	}

	rec, ok := c.Record(ctx)
	if !ok || !rec.LoggedIn || rec.UserID == "" || !rec.FreshAt(c.now()) {
		return "", false
	}
	return rec.UserID, true
}

// forget clears a cached login the remote no longer backs.
func (c *AuthCache) forget(ctx context.Context) {
	if rec, ok := c.Record(ctx); ok && rec.LoggedIn {
		c.log.WithField("user_id", rec.UserID).Info("remote session gone, clearing auth cache")
		c.Clear(ctx)
	}
}

// IsLoggedIn reports whether SessionUser finds a user.
func (c *AuthCache) IsLoggedIn(ctx context.Context) bool {
	_, ok := c.SessionUser(ctx)
	return ok
}

// CurrentUserID returns the remote user id when there is a valid session,
// otherwise whatever id is cached. Freshness is not checked here.
func (c *AuthCache) CurrentUserID(ctx context.Context) (string, bool) {
	if s, valid, err := c.remoteSession(ctx); err == nil && valid {
		return s.UserID, true
	}
	rec, ok := c.Record(ctx)
	if !ok || rec.UserID == "" {
		return "", false
	}
	return rec.UserID, true
}

// Clear removes the cached record. Failures are logged, never returned.
func (c *AuthCache) Clear(ctx context.Context) {
	if err := c.kv.Delete(ctx, authCacheKey); err != nil {
		c.log.WithError(err).Warn("failed to clear auth cache")
	}
}
