// Package session holds the authentication credential and the
// identified user, persisted under the user's home directory so a
// login survives across runs.
package session

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tudu-app/tudu/internal/api"
)

const (
	credFileName = "credentials.json"
	userFileName = "user.json"

	// EnvToken overrides the stored credential when set.
	EnvToken = "TUDU_TOKEN"
)

// TokenInfo is the persisted credential record.
type TokenInfo struct {
	Token     string     `json:"token"`
	Source    string     `json:"source"`     // "env" | "file"
	CreatedAt time.Time  `json:"created_at"` // when we saved to file
	ExpiresAt *time.Time `json:"expires_at"` // optional (JWT or server-provided)
}

// Store owns the credential lifecycle: restore at startup, persist on
// login/signup, clear on logout. The user snapshot it keeps is
// optimistic display data until Identify confirms it.
type Store struct {
	dir    string
	client *api.Client
	log    *zap.Logger
	user   *api.User
}

// NewStore builds a Store rooted at ~/.tudu.
func NewStore(client *api.Client, log *zap.Logger) (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("home: %w", err)
	}
	return NewStoreAt(filepath.Join(home, ".tudu"), client, log), nil
}

// NewStoreAt roots the store at an explicit directory. Used by tests.
func NewStoreAt(dir string, client *api.Client, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, client: client, log: log}
}

// Current returns the identified user, nil when unauthenticated.
// Pure read, no network.
func (s *Store) Current() *api.User { return s.user }

// Authenticated reports whether a credential is armed on the client.
func (s *Store) Authenticated() bool { return s.client.Token() != "" }

// Restore loads a stored credential (env override first) and the user
// snapshot, arming the API client. No network traffic; call Identify
// afterwards to validate. A missing credential is not an error.
func (s *Store) Restore() error {
	ti, err := s.readToken()
	if err != nil {
		return err
	}
	if ti == nil {
		return nil
	}
	s.client.SetToken(ti.Token)

	// Snapshot is display-only until Identify confirms it.
	b, err := os.ReadFile(filepath.Join(s.dir, userFileName))
	if err == nil {
		var u api.User
		if jsonErr := json.Unmarshal(b, &u); jsonErr == nil {
			s.user = &u
		}
	}
	return nil
}

// Identify asks the service who the credential belongs to. A nil
// answer means the credential is stale: the session is cleared so the
// unauthenticated view takes over.
func (s *Store) Identify(ctx context.Context) (*api.User, error) {
	if !s.Authenticated() {
		return nil, nil
	}
	u, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	if u == nil {
		s.log.Info("stored credential no longer valid, clearing session")
		s.clearLocal()
		return nil, nil
	}
	s.user = u
	s.writeUserSnapshot(u)
	return u, nil
}

// Login exchanges credentials for a token, persists it and the user
// snapshot, and arms the API client. On failure nothing is written:
// a previously stored credential stays intact.
//
// Concurrent duplicate logins are not de-duplicated; the last
// completion wins. Known gap, kept as-is.
func (s *Store) Login(ctx context.Context, username, password string) (*api.User, error) {
	token, user, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.writeToken(token); err != nil {
		return nil, err
	}
	s.client.SetToken(token)
	s.user = user
	s.writeUserSnapshot(user)
	s.log.Info("logged in", zap.String("username", user.Username))
	return user, nil
}

// Signup registers the account, then logs in with the same
// credentials.
func (s *Store) Signup(ctx context.Context, username, password string) (*api.User, error) {
	if _, err := s.client.Signup(ctx, username, password); err != nil {
		return nil, err
	}
	return s.Login(ctx, username, password)
}

// Logout tells the service to drop the session, then clears the
// credential, the user snapshot, and the client token. The remote call
// is best effort; local state is cleared regardless.
func (s *Store) Logout(ctx context.Context) error {
	s.RevokeRemote(ctx, s.client.Token())
	return s.ClearLocal()
}

// RevokeRemote tells the service to drop the session behind token.
// Best effort: failures are logged, never surfaced. Callers that must
// not block on the network clear local state first and revoke the
// captured token from a goroutine.
func (s *Store) RevokeRemote(ctx context.Context, token string) {
	if token == "" {
		return
	}
	if err := s.client.LogoutToken(ctx, token); err != nil {
		s.log.Warn("remote logout failed", zap.Error(err))
	}
}

// ClearLocal drops the credential, the user snapshot, and the client
// token. No network traffic.
func (s *Store) ClearLocal() error {
	s.clearLocal()
	return s.deleteToken()
}

func (s *Store) clearLocal() {
	s.client.ClearToken()
	s.user = nil
	_ = os.Remove(filepath.Join(s.dir, userFileName))
}

func (s *Store) readToken() (*TokenInfo, error) {
	// 1) env override
	env := strings.TrimSpace(os.Getenv(EnvToken))
	if env != "" {
		return &TokenInfo{Token: stripBearer(env), Source: "env"}, nil
	}

	// 2) file
	b, err := os.ReadFile(filepath.Join(s.dir, credFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil // not logged in
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var ti TokenInfo
	if err := json.Unmarshal(b, &ti); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	ti.Token = stripBearer(ti.Token)
	return &ti, nil
}

func (s *Store) writeToken(token string) error {
	token = stripBearer(strings.TrimSpace(token))
	if token == "" {
		return fmt.Errorf("empty token")
	}
	// ensure ~/.tudu exists with 0700
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	ti := TokenInfo{
		Token:     token,
		Source:    "file",
		CreatedAt: time.Now(),
		ExpiresAt: tokenExpiry(token),
	}
	b, err := json.MarshalIndent(ti, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// write with 0600 (owner-only)
	if err := os.WriteFile(filepath.Join(s.dir, credFileName), b, 0o600); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

func (s *Store) deleteToken() error {
	if err := os.Remove(filepath.Join(s.dir, credFileName)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func (s *Store) writeUserSnapshot(u *api.User) {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return
	}
	b, err := json.MarshalIndent(u, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, userFileName), b, 0o600); err != nil {
		s.log.Warn("write user snapshot", zap.Error(err))
	}
}

// tokenExpiry pulls the exp claim out of a JWT credential, nil for
// opaque tokens or tokens without one. The payload is decoded
// unsigned; verification is the server's job.
func tokenExpiry(token string) *time.Time {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil
	}
	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil
	}
	var claims struct {
		Exp int64 `json:"exp"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil || claims.Exp == 0 {
		return nil
	}
	exp := time.Unix(claims.Exp, 0)
	return &exp
}

func stripBearer(s string) string {
	for _, prefix := range []string{"bearer ", "jwt "} {
		if strings.HasPrefix(strings.ToLower(s), prefix) {
			return strings.TrimSpace(s[len(prefix):])
		}
	}
	return s
}
