package googleauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"
)

type fakeAuthorizer struct {
	authURL     string
	credentials string
	gotCode     string
	gotState    string
}

func (f *fakeAuthorizer) CalendarAuthURL(ctx context.Context) (string, error) {
	return f.authURL, nil
}

func (f *fakeAuthorizer) CompleteCalendarAuth(ctx context.Context, code, state string) (string, error) {
	f.gotCode = code
	f.gotState = state
	return f.credentials, nil
}

func TestDelegatedFlowCompletes(t *testing.T) {
	gateway := &fakeAuthorizer{
		authURL:     "https://accounts.google.com/o/oauth2/auth?client_id=server-side",
		credentials: `{"token":"server-minted"}`,
	}
	flow := NewFlow(gateway, "", "", 38913)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	authURL, results, err := flow.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if authURL != gateway.authURL {
		t.Errorf("Expected the server's auth URL, got '%s'", authURL)
	}

	resp, err := http.Get("http://localhost:38913/callback?code=auth-code&state=srv-state")
	if err != nil {
		t.Fatalf("Callback request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from callback, got %d", resp.StatusCode)
	}

	select {
	case result := <-results:
		if result.Err != nil {
			t.Fatalf("Expected successful result, got %v", result.Err)
		}
		if result.Credentials != `{"token":"server-minted"}` {
			t.Errorf("Expected server credentials, got '%s'", result.Credentials)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for authorization result")
	}

	if gateway.gotCode != "auth-code" || gateway.gotState != "srv-state" {
		t.Errorf("Expected code and state forwarded to the gateway, got '%s'/'%s'", gateway.gotCode, gateway.gotState)
	}
}

func TestFlowCancellation(t *testing.T) {
	flow := NewFlow(&fakeAuthorizer{authURL: "https://example.com/auth"}, "", "", 38914)

	ctx, cancel := context.WithCancel(context.Background())
	_, results, err := flow.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	cancel()

	select {
	case result := <-results:
		if result.Err == nil {
			t.Error("Expected cancellation to deliver an error result")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for cancellation result")
	}
}

func TestCallbackDenied(t *testing.T) {
	flow := NewFlow(&fakeAuthorizer{authURL: "https://example.com/auth"}, "", "", 38915)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, results, err := flow.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	resp, err := http.Get("http://localhost:38915/callback?error=access_denied")
	if err != nil {
		t.Fatalf("Callback request failed: %v", err)
	}
	resp.Body.Close()

	select {
	case result := <-results:
		if result.Err == nil {
			t.Fatal("Expected denial to surface as an error")
		}
		if !strings.Contains(result.Err.Error(), "denied") {
			t.Errorf("Expected denial message, got %v", result.Err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for denial result")
	}
}

func TestDirectModeBuildsLocalAuthURL(t *testing.T) {
	flow := NewFlow(&fakeAuthorizer{}, "client-id", "client-secret", 38916)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	authURL, _, err := flow.Start(ctx)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for _, want := range []string{
		"client_id=client-id",
		fmt.Sprintf("localhost%%3A%d", 38916),
		"access_type=offline",
	} {
		if !strings.Contains(authURL, want) {
			t.Errorf("Expected auth URL to contain '%s', got '%s'", want, authURL)
		}
	}
}
