package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"logbook/termbook/internal/models"
	"logbook/termbook/internal/storage"
)

// Session is the client-side authentication state. Token absent means
// logged out; present means every component treats the user as
// authenticated. GoogleCredentials is the optional secondary
// credential for the calendar integration and has its own lifecycle,
// except that logout clears it too.
type Session struct {
	Token             string
	User              *models.User
	GoogleCredentials string
}

// Authenticated reports whether a token is present. This is the single
// definition of "logged in"; no other component caches its own flag.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Authenticator is the slice of the request gateway the store needs.
// Keeping it an interface breaks the session->api->storage->session
// cycle and lets tests drop in a fake.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*AuthResult, error)
	Register(ctx context.Context, email, password, userName string) (*AuthResult, error)
}

// AuthResult is what the gateway returns from login and signup calls.
type AuthResult struct {
	AccessToken string
	UserID      string
	UserName    string
}

// Store owns the session. All mutations go through its methods and are
// flushed to durable storage synchronously before they return, so the
// in-memory view and the file never diverge between renders.
type Store struct {
	mu      sync.RWMutex
	storage *storage.Storage
	gateway Authenticator
	session Session
}

func NewStore(st *storage.Storage, gateway Authenticator) *Store {
	return &Store{
		storage: st,
		gateway: gateway,
	}
}

// Initialize reconstructs the session from durable storage. Missing
// keys are valid absent states. Runs exactly once, before any consumer
// reads the session; storage is not read into memory again afterwards.
func (s *Store) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.MigrateLegacyToken(); err != nil {
		return fmt.Errorf("failed to migrate legacy token: %w", err)
	}

	token, _, err := s.storage.Get(storage.KeyAccessToken)
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	var user *models.User
	if raw, ok, err := s.storage.Get(storage.KeyUserData); err != nil {
		return fmt.Errorf("failed to read user data: %w", err)
	} else if ok && raw != "" {
		var u models.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			user = &u
		}
		// Unparseable user data is dropped; the token still decides
		// authentication.
	}

	creds, _, err := s.storage.Get(storage.KeyGoogleCredentials)
	if err != nil {
		return fmt.Errorf("failed to read google credentials: %w", err)
	}

	s.session = Session{
		Token:             token,
		User:              user,
		GoogleCredentials: creds,
	}
	return nil
}

// Current returns a copy of the session. The copy shares the User
// pointer; callers must not mutate it.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

func (s *Store) Authenticated() bool {
	return s.Current().Authenticated()
}

// Login authenticates against the server and persists the resulting
// token and profile. Gateway errors propagate unchanged.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	result, err := s.gateway.Authenticate(ctx, email, password)
	if err != nil {
		return s.Current(), err
	}
	return s.adopt(result)
}

// Signup registers and then applies login semantics with the same
// credentials, so a successful signup always leaves the user
// authenticated. When the signup response already carries a token it
// is adopted directly; otherwise an explicit login follows.
func (s *Store) Signup(ctx context.Context, email, password, userName string) (Session, error) {
	result, err := s.gateway.Register(ctx, email, password, userName)
	if err != nil {
		return s.Current(), err
	}
	if result.AccessToken == "" {
		login, err := s.gateway.Authenticate(ctx, email, password)
		if err != nil {
			return s.Current(), err
		}
		if login.UserName == "" {
			login.UserName = userName
		}
		return s.adopt(login)
	}
	if result.UserName == "" {
		result.UserName = userName
	}
	return s.adopt(result)
}

func (s *Store) adopt(result *AuthResult) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := &models.User{ID: result.UserID, Name: result.UserName}
	userData, err := json.Marshal(user)
	if err != nil {
		return s.session, fmt.Errorf("failed to marshal user data: %w", err)
	}

	if err := s.storage.Set(storage.KeyAccessToken, result.AccessToken); err != nil {
		return s.session, fmt.Errorf("failed to persist token: %w", err)
	}
	if err := s.storage.Set(storage.KeyUserData, string(userData)); err != nil {
		return s.session, fmt.Errorf("failed to persist user data: %w", err)
	}

	s.session.Token = result.AccessToken
	s.session.User = user
	return s.session, nil
}

// Logout clears token, user and google credentials from memory and
// storage in one atomic write. Idempotent; calling it on a logged-out
// session is a no-op.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Best effort on the storage side: the in-memory session clears
	// regardless, and the delete is retried on next logout.
	_ = s.storage.Delete(
		storage.KeyAccessToken,
		storage.KeyUserData,
		storage.KeyGoogleCredentials,
	)

	s.session = Session{}
}

// SetGoogleCredentials stores the opaque secondary credential used by
// the calendar integration.
func (s *Store) SetGoogleCredentials(blob string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Set(storage.KeyGoogleCredentials, blob); err != nil {
		return fmt.Errorf("failed to persist google credentials: %w", err)
	}
	s.session.GoogleCredentials = blob
	return nil
}

func (s *Store) ClearGoogleCredentials() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.storage.Delete(storage.KeyGoogleCredentials); err != nil {
		return fmt.Errorf("failed to clear google credentials: %w", err)
	}
	s.session.GoogleCredentials = ""
	return nil
}

// CalendarConnected reports whether the secondary credential is
// present.
func (s *Store) CalendarConnected() bool {
	return s.Current().GoogleCredentials != ""
}
