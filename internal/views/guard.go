package views

import "logbook/termbook/internal/session"

// Guard gates protected views on session state. It is a pure function
// of the current session: no network, no failure modes. It is
// re-evaluated on every navigation and render.
type Guard struct {
	sessions *session.Store
}

func NewGuard(sessions *session.Store) Guard {
	return Guard{sessions: sessions}
}

// Allow reports whether protected content may render right now.
func (g Guard) Allow() bool {
	return g.sessions.Authenticated()
}

// Resolve maps a requested view to the one that may actually be
// shown: protected targets collapse to the login view while the
// session is unauthenticated.
func (g Guard) Resolve(target ViewState) ViewState {
	if target.Protected() && !g.Allow() {
		return ViewLogin
	}
	return target
}

// Render produces the child's view only when the session is
// authenticated. The child function is never invoked otherwise, so
// protected content cannot leak into a logged-out frame.
func (g Guard) Render(child func() string) (string, bool) {
	if !g.Allow() {
		return "", false
	}
	return child(), true
}
