package googleauth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// Scopes requested for the calendar integration.
var Scopes = []string{
	"https://www.googleapis.com/auth/calendar.readonly",
	"https://www.googleapis.com/auth/calendar.events",
}

// Authorizer is the slice of the request gateway the server-delegated
// flow needs: fetch the authorization URL, then trade the code for the
// credential blob the server mints.
type Authorizer interface {
	CalendarAuthURL(ctx context.Context) (string, error)
	CompleteCalendarAuth(ctx context.Context, code, state string) (string, error)
}

// Result is the out-of-band completion of an authorization attempt,
// delivered exactly once per Start call.
type Result struct {
	Credentials string
	Err         error
}

// Flow runs the external Google authorization. The user opens the
// returned URL in a browser; the redirect lands on a loopback listener
// which finishes the exchange and delivers the credential through the
// result channel.
//
// Two modes exist. Server-delegated (default): the Logbook server
// builds the URL and performs the token exchange. Direct: when a local
// client id/secret pair is configured, the exchange runs in-process
// via oauth2 and the resulting token JSON becomes the credential blob.
type Flow struct {
	gateway      Authorizer
	clientID     string
	clientSecret string
	callbackPort int
}

func NewFlow(gateway Authorizer, clientID, clientSecret string, callbackPort int) *Flow {
	return &Flow{
		gateway:      gateway,
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackPort: callbackPort,
	}
}

func (f *Flow) direct() bool {
	return f.clientID != "" && f.clientSecret != ""
}

// Start begins an authorization attempt. It returns the URL to open
// and a channel carrying the single completion. Cancelling ctx tears
// down the loopback listener and delivers a failed Result.
func (f *Flow) Start(ctx context.Context) (string, <-chan Result, error) {
	state, err := randomState()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate state: %w", err)
	}

	var authURL string
	var oauthConfig *oauth2.Config

	if f.direct() {
		oauthConfig = &oauth2.Config{
			ClientID:     f.clientID,
			ClientSecret: f.clientSecret,
			RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", f.callbackPort),
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		}
		authURL = oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline)
	} else {
		authURL, err = f.gateway.CalendarAuthURL(ctx)
		if err != nil {
			return "", nil, err
		}
	}

	callback, err := f.listen(ctx, state)
	if err != nil {
		return "", nil, err
	}

	results := make(chan Result, 1)
	go func() {
		cb := <-callback
		if cb.err != nil {
			results <- Result{Err: cb.err}
			return
		}
		if f.direct() {
			token, err := oauthConfig.Exchange(ctx, cb.code)
			if err != nil {
				results <- Result{Err: fmt.Errorf("failed to exchange authorization code: %w", err)}
				return
			}
			blob, err := json.Marshal(token)
			if err != nil {
				results <- Result{Err: fmt.Errorf("failed to encode credentials: %w", err)}
				return
			}
			results <- Result{Credentials: string(blob)}
			return
		}
		credentials, err := f.gateway.CompleteCalendarAuth(ctx, cb.code, cb.state)
		if err != nil {
			results <- Result{Err: err}
			return
		}
		results <- Result{Credentials: credentials}
	}()

	return authURL, results, nil
}

type callbackHit struct {
	code  string
	state string
	err   error
}

// listen serves exactly one loopback redirect, then shuts down.
func (f *Flow) listen(ctx context.Context, expectedState string) (<-chan callbackHit, error) {
	listener, err := net.Listen("tcp", fmt.Sprintf("localhost:%d", f.callbackPort))
	if err != nil {
		return nil, fmt.Errorf("failed to open callback listener: %w", err)
	}

	hits := make(chan callbackHit, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		code := query.Get("code")
		state := query.Get("state")

		switch {
		case query.Get("error") != "":
			http.Error(w, "Authorization was denied. You can close this window.", http.StatusBadRequest)
			hits <- callbackHit{err: fmt.Errorf("authorization denied: %s", query.Get("error"))}
		case code == "":
			http.Error(w, "Missing authorization code.", http.StatusBadRequest)
			hits <- callbackHit{err: fmt.Errorf("callback missing authorization code")}
		case f.direct() && state != expectedState:
			http.Error(w, "State mismatch. You can close this window.", http.StatusBadRequest)
			hits <- callbackHit{err: fmt.Errorf("authorization state mismatch")}
		default:
			fmt.Fprintln(w, "Google Calendar connected. You can close this window and return to the terminal.")
			hits <- callbackHit{code: code, state: state}
		}
	})

	server := &http.Server{Handler: mux}
	go server.Serve(listener)

	out := make(chan callbackHit, 1)
	go func() {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		select {
		case hit := <-hits:
			out <- hit
		case <-ctx.Done():
			out <- callbackHit{err: ctx.Err()}
		}
	}()

	return out, nil
}

func randomState() (string, error) {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
