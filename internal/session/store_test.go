package session

import (
	"context"
	"errors"
	"testing"

	"logbook/termbook/internal/storage"
)

// fakeGateway scripts authentication outcomes for store tests.
type fakeGateway struct {
	authResult   *AuthResult
	authErr      error
	regResult    *AuthResult
	regErr       error
	authCalls    int
	registerCalls int
}

func (f *fakeGateway) Authenticate(ctx context.Context, email, password string) (*AuthResult, error) {
	f.authCalls++
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.authResult, nil
}

func (f *fakeGateway) Register(ctx context.Context, email, password, userName string) (*AuthResult, error) {
	f.registerCalls++
	if f.regErr != nil {
		return nil, f.regErr
	}
	return f.regResult, nil
}

func newTestStore(t *testing.T, gateway Authenticator) (*Store, *storage.Storage) {
	t.Helper()
	st, err := storage.NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	store := NewStore(st, gateway)
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return store, st
}

func TestLoginPersistsTokenAndUser(t *testing.T) {
	gateway := &fakeGateway{authResult: &AuthResult{AccessToken: "tok-1", UserID: "u1", UserName: "Rhys"}}
	store, st := newTestStore(t, gateway)

	session, err := store.Login(context.Background(), "a@b.com", "password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if session.Token != "tok-1" {
		t.Errorf("Expected token 'tok-1' in memory, got '%s'", session.Token)
	}
	if session.User == nil || session.User.ID != "u1" {
		t.Error("Expected user in session after login")
	}
	if !store.Authenticated() {
		t.Error("Expected store to report authenticated")
	}

	// Durable storage holds the same token the session does.
	if token := st.AccessToken(); token != "tok-1" {
		t.Errorf("Expected token persisted to storage, got '%s'", token)
	}
	if _, ok, _ := st.Get(storage.KeyUserData); !ok {
		t.Error("Expected user data persisted to storage")
	}
}

func TestLoginFailureLeavesSessionUntouched(t *testing.T) {
	gateway := &fakeGateway{authErr: errors.New("bad credentials")}
	store, st := newTestStore(t, gateway)

	if _, err := store.Login(context.Background(), "a@b.com", "wrong"); err == nil {
		t.Fatal("Expected login error")
	}

	if store.Authenticated() {
		t.Error("Expected store to stay unauthenticated after failed login")
	}
	if token := st.AccessToken(); token != "" {
		t.Errorf("Expected no token in storage, got '%s'", token)
	}
}

func TestSignupAdoptsTokenFromResponse(t *testing.T) {
	gateway := &fakeGateway{regResult: &AuthResult{AccessToken: "tok-signup", UserID: "u2"}}
	store, _ := newTestStore(t, gateway)

	session, err := store.Signup(context.Background(), "new@b.com", "password123", "Newcomer")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if session.Token != "tok-signup" {
		t.Errorf("Expected signup token adopted directly, got '%s'", session.Token)
	}
	if session.User == nil || session.User.Name != "Newcomer" {
		t.Error("Expected user name backfilled from the signup form")
	}
	if gateway.authCalls != 0 {
		t.Errorf("Expected no separate login call, got %d", gateway.authCalls)
	}
}

func TestSignupFallsBackToLogin(t *testing.T) {
	gateway := &fakeGateway{
		regResult:  &AuthResult{},
		authResult: &AuthResult{AccessToken: "tok-login", UserID: "u3"},
	}
	store, _ := newTestStore(t, gateway)

	session, err := store.Signup(context.Background(), "new@b.com", "password123", "Newcomer")
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}

	if session.Token != "tok-login" {
		t.Errorf("Expected token from the follow-up login, got '%s'", session.Token)
	}
	if gateway.authCalls != 1 {
		t.Errorf("Expected exactly one login call, got %d", gateway.authCalls)
	}
	if !store.Authenticated() {
		t.Error("Expected successful signup to leave the user authenticated")
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	gateway := &fakeGateway{authResult: &AuthResult{AccessToken: "tok-1", UserID: "u1"}}
	store, st := newTestStore(t, gateway)

	if _, err := store.Login(context.Background(), "a@b.com", "password"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if err := store.SetGoogleCredentials(`{"token":"g"}`); err != nil {
		t.Fatalf("SetGoogleCredentials failed: %v", err)
	}

	store.Logout()

	if store.Authenticated() {
		t.Error("Expected unauthenticated after logout")
	}
	session := store.Current()
	if session.Token != "" || session.User != nil || session.GoogleCredentials != "" {
		t.Error("Expected empty session after logout")
	}

	for _, key := range []string{storage.KeyAccessToken, storage.KeyUserData, storage.KeyGoogleCredentials} {
		if _, ok, _ := st.Get(key); ok {
			t.Errorf("Expected storage key '%s' cleared by logout", key)
		}
	}
}

func TestLogoutIdempotent(t *testing.T) {
	gateway := &fakeGateway{}
	store, _ := newTestStore(t, gateway)

	store.Logout()
	store.Logout()

	if store.Authenticated() {
		t.Error("Expected unauthenticated after repeated logout")
	}
}

func TestInitializeRestoresSession(t *testing.T) {
	dir := t.TempDir()
	st, err := storage.NewStorageAt(dir)
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	st.Set(storage.KeyAccessToken, "tok-restored")
	st.Set(storage.KeyUserData, `{"userId":"u9","userName":"Restored"}`)
	st.Set(storage.KeyGoogleCredentials, `{"token":"g"}`)

	store := NewStore(st, &fakeGateway{})
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	session := store.Current()
	if session.Token != "tok-restored" {
		t.Errorf("Expected restored token, got '%s'", session.Token)
	}
	if session.User == nil || session.User.ID != "u9" {
		t.Error("Expected restored user")
	}
	if !store.CalendarConnected() {
		t.Error("Expected restored google credentials")
	}
}

func TestInitializeMigratesLegacyToken(t *testing.T) {
	st, err := storage.NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	st.Set("token", "legacy-tok")

	store := NewStore(st, &fakeGateway{})
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	if session := store.Current(); session.Token != "legacy-tok" {
		t.Errorf("Expected legacy token migrated into the session, got '%s'", session.Token)
	}
	if token := st.AccessToken(); token != "legacy-tok" {
		t.Errorf("Expected legacy token under the canonical key, got '%s'", token)
	}
}

func TestInitializeDropsUnparseableUserData(t *testing.T) {
	st, err := storage.NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	st.Set(storage.KeyAccessToken, "tok-1")
	st.Set(storage.KeyUserData, "{{{not json")

	store := NewStore(st, &fakeGateway{})
	if err := store.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	session := store.Current()
	if session.User != nil {
		t.Error("Expected unparseable user data to be dropped")
	}
	if !session.Authenticated() {
		t.Error("Expected token alone to still authenticate")
	}
}

func TestGoogleCredentialLifecycle(t *testing.T) {
	store, st := newTestStore(t, &fakeGateway{})

	if store.CalendarConnected() {
		t.Error("Expected calendar disconnected initially")
	}

	if err := store.SetGoogleCredentials(`{"token":"g"}`); err != nil {
		t.Fatalf("SetGoogleCredentials failed: %v", err)
	}
	if !store.CalendarConnected() {
		t.Error("Expected calendar connected after set")
	}
	if _, ok, _ := st.Get(storage.KeyGoogleCredentials); !ok {
		t.Error("Expected google credentials persisted")
	}

	if err := store.ClearGoogleCredentials(); err != nil {
		t.Fatalf("ClearGoogleCredentials failed: %v", err)
	}
	if store.CalendarConnected() {
		t.Error("Expected calendar disconnected after clear")
	}
	if _, ok, _ := st.Get(storage.KeyGoogleCredentials); ok {
		t.Error("Expected google credentials removed from storage")
	}
}
