package views

import (
	"context"
	"testing"

	"logbook/termbook/internal/session"
	"logbook/termbook/internal/storage"
)

type stubGateway struct{}

func (stubGateway) Authenticate(ctx context.Context, email, password string) (*session.AuthResult, error) {
	return &session.AuthResult{AccessToken: "tok-1", UserID: "u1"}, nil
}

func (stubGateway) Register(ctx context.Context, email, password, userName string) (*session.AuthResult, error) {
	return &session.AuthResult{AccessToken: "tok-1", UserID: "u1"}, nil
}

func newTestGuard(t *testing.T) (Guard, *session.Store) {
	t.Helper()
	st, err := storage.NewStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	sessions := session.NewStore(st, stubGateway{})
	if err := sessions.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	return NewGuard(sessions), sessions
}

func TestGuardResolveCollapsesProtectedViews(t *testing.T) {
	guard, _ := newTestGuard(t)

	for _, target := range []ViewState{ViewRelations, ViewRelationDetail, ViewSearch, ViewDailySummary, ViewCalendar, ViewBackup} {
		if got := guard.Resolve(target); got != ViewLogin {
			t.Errorf("Expected protected view %d to resolve to login while logged out, got %d", target, got)
		}
	}
}

func TestGuardResolvePassesPublicViews(t *testing.T) {
	guard, _ := newTestGuard(t)

	if got := guard.Resolve(ViewLogin); got != ViewLogin {
		t.Errorf("Expected login to pass through, got %d", got)
	}
	if got := guard.Resolve(ViewSignup); got != ViewSignup {
		t.Errorf("Expected signup to pass through, got %d", got)
	}
}

func TestGuardResolveAfterLogin(t *testing.T) {
	guard, sessions := newTestGuard(t)

	if _, err := sessions.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if got := guard.Resolve(ViewRelations); got != ViewRelations {
		t.Errorf("Expected protected view to pass through while logged in, got %d", got)
	}
}

func TestGuardRenderNeverInvokesChildWhenLoggedOut(t *testing.T) {
	guard, _ := newTestGuard(t)

	invoked := false
	content, ok := guard.Render(func() string {
		invoked = true
		return "secret relations"
	})

	if ok {
		t.Error("Expected render to be refused while logged out")
	}
	if invoked {
		t.Error("Expected child render function to never run while logged out")
	}
	if content != "" {
		t.Errorf("Expected no content, got '%s'", content)
	}
}

func TestGuardRenderInvokesChildWhenLoggedIn(t *testing.T) {
	guard, sessions := newTestGuard(t)

	if _, err := sessions.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	content, ok := guard.Render(func() string { return "relations" })
	if !ok || content != "relations" {
		t.Errorf("Expected child content while logged in, got '%s' (ok=%v)", content, ok)
	}
}

func TestGuardReEvaluatesAfterLogout(t *testing.T) {
	guard, sessions := newTestGuard(t)

	if _, err := sessions.Login(context.Background(), "a@b.com", "pw"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if !guard.Allow() {
		t.Fatal("Expected guard to allow after login")
	}

	sessions.Logout()

	if guard.Allow() {
		t.Error("Expected guard to refuse immediately after logout")
	}
	if got := guard.Resolve(ViewRelations); got != ViewLogin {
		t.Errorf("Expected protected navigation to collapse after logout, got %d", got)
	}
}
