package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"nutridiary/kvstore"
)

const tokenKey = "identity.token"

type storedToken struct {
	Token string `json:"token"`
}

// HTTPProvider is the remote identity adapter. The bearer token survives
// restarts through the device key/value store.
type HTTPProvider struct {
	baseURL string
	client  *http.Client
	tokens  kvstore.Store
	log     logrus.FieldLogger

	mu     sync.Mutex
	token  string
	loaded bool

	lmu       sync.Mutex
	listeners map[int]func(Session)
	nextID    int
}

var _ Provider = (*HTTPProvider)(nil)

func NewHTTPProvider(baseURL string, client *http.Client, tokens kvstore.Store, log logrus.FieldLogger) *HTTPProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPProvider{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    client,
		tokens:    tokens,
		log:       log,
		listeners: make(map[int]func(Session)),
	}
}

func (p *HTTPProvider) OnSessionChange(fn func(Session)) func() {
	p.lmu.Lock()
	id := p.nextID
	p.nextID++
	p.listeners[id] = fn
	p.lmu.Unlock()

	return func() {
		p.lmu.Lock()
		delete(p.listeners, id)
		p.lmu.Unlock()
	}
}

func (p *HTTPProvider) notify(s Session) {
	p.lmu.Lock()
	fns := make([]func(Session), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.lmu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

func (p *HTTPProvider) currentToken(ctx context.Context) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded {
		return p.token
	}
	var st storedToken
	ok, err := p.tokens.Get(ctx, tokenKey, &st)
	if err != nil {
		p.log.WithError(err).Warn("identity: failed to load stored token")
		return ""
	}
	p.loaded = true
	if ok {
		p.token = st.Token
	}
	return p.token
}

func (p *HTTPProvider) storeToken(ctx context.Context, token string) {
	p.mu.Lock()
	p.token = token
	p.loaded = true
	p.mu.Unlock()

	var err error
	if token == "" {
		err = p.tokens.Delete(ctx, tokenKey)
	} else {
		err = p.tokens.Set(ctx, tokenKey, storedToken{Token: token})
	}
	if err != nil {
		p.log.WithError(err).Warn("identity: failed to persist token")
	}
}

func (p *HTTPProvider) Session(ctx context.Context) (Session, error) {
	tok := p.currentToken(ctx)
	if tok == "" {
		return Session{}, nil
	}

	var body struct {
		UserID string `json:"user_id"`
		Email  string `json:"email"`
	}
	status, err := p.do(ctx, http.MethodGet, "/v1/session", tok, nil, &body)
	if err != nil {
		return Session{}, err
	}
	switch {
	case status == http.StatusOK && body.UserID != "":
		return Session{Valid: true, UserID: body.UserID, Email: body.Email}, nil
	case status == http.StatusOK, status == http.StatusUnauthorized, status == http.StatusForbidden:
		return Session{}, nil
	default:
		return Session{}, fmt.Errorf("identity: unexpected session status %d", status)
	}
}

// SignIn exchanges credentials for a token and announces the new session.
func (p *HTTPProvider) SignIn(ctx context.Context, email, password string) (Session, error) {
	var out struct {
		Token string `json:"token"`
	}
	status, err := p.do(ctx, http.MethodPost, "/v1/token", "", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return Session{}, err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return Session{}, ErrInvalidCredentials
	case status != http.StatusOK || out.Token == "":
		return Session{}, fmt.Errorf("identity: unexpected sign-in status %d", status)
	}

	claims, err := TokenClaims(out.Token)
	if err != nil {
		return Session{}, fmt.Errorf("identity: malformed token: %w", err)
	}
	s := claims.session()
	if s.Email == "" {
		s.Email = email
	}
	p.storeToken(ctx, out.Token)
	p.notify(s)
	return s, nil
}

// Refresh swaps the current token for a fresh one. A rejected token signs
// the device out.
func (p *HTTPProvider) Refresh(ctx context.Context) error {
	tok := p.currentToken(ctx)
	if tok == "" {
		return nil
	}
	var out struct {
		Token string `json:"token"`
	}
	status, err := p.do(ctx, http.MethodPost, "/v1/token/refresh", tok, nil, &out)
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		p.storeToken(ctx, "")
		p.notify(Session{})
		return nil
	case status != http.StatusOK || out.Token == "":
		return fmt.Errorf("identity: unexpected refresh status %d", status)
	}
	claims, err := TokenClaims(out.Token)
	if err != nil {
		return fmt.Errorf("identity: malformed token: %w", err)
	}
	p.storeToken(ctx, out.Token)
	p.notify(claims.session())
	return nil
}

// SignOut drops the local token even when the provider cannot be told.
func (p *HTTPProvider) SignOut(ctx context.Context) {
	if tok := p.currentToken(ctx); tok != "" {
		if _, err := p.do(ctx, http.MethodPost, "/v1/token/revoke", tok, nil, nil); err != nil {
			p.log.WithError(err).Warn("identity: revoke failed, signing out locally")
		}
	}
	p.storeToken(ctx, "")
	p.notify(Session{})
}

func (p *HTTPProvider) do(ctx context.Context, method, path, token string, in, out any) (int, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return 0, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, ctx.Err()
		}
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return resp.StatusCode, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("identity: decode %s: %w", path, err)
		}
	}
	return resp.StatusCode, nil
}
