// =============================================================================
// FRSC Operations E-Dashboard - Session
// =============================================================================
//
// Access to the dashboard is gated by a single fixed credential pair. A
// successful sign-in creates a session token; the authenticated flag lives
// only in this process and disappears when the process exits, like a browser
// tab's session storage.
//
// LIFECYCLE:
//   SignIn(user, pass) -> token        (init)
//   Resume(token)      -> Session      (per request)
//   SignOut(token)                     (teardown)
//
// There is no lockout and no rate limiting.
//
// =============================================================================

package session

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidCredentials is returned by SignIn on a credential mismatch.
var ErrInvalidCredentials = errors.New("invalid credentials")

// MessageInvalidCredentials is the user-facing sign-in failure message.
const MessageInvalidCredentials = "Invalid username or password. Please try again."

// Session is the per-client authentication state.
type Session struct {
	Token         string
	Authenticated bool
	CreatedAt     time.Time
}

// Authenticator checks credentials against the configured pair.
type Authenticator struct {
	Username string
	Password string
}

// Check reports whether the pair matches. Both comparisons always run.
func (a Authenticator) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(a.Password))
	return userOK&passOK == 1
}

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Manager keeps the live sessions of this process.
type Manager struct {
	auth Authenticator
	now  func() time.Time

	mu       sync.RWMutex
	sessions map[string]Session
}

// NewManager creates a manager accepting auth's credential pair.
func NewManager(auth Authenticator) *Manager {
	return &Manager{auth: auth, now: time.Now, sessions: map[string]Session{}}
}

// SignIn validates the credentials and opens a session.
//
// RETURNS:
//   - The new session.
//   - ErrInvalidCredentials on mismatch. No session is created.
func (m *Manager) SignIn(username, password string) (Session, error) {
	if !m.auth.Check(username, password) {
		return Session{}, ErrInvalidCredentials
	}

	s := Session{Token: uuid.NewString(), Authenticated: true, CreatedAt: m.now()}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()
	return s, nil
}

// Resume returns the session for token. Unknown tokens yield an
// unauthenticated session.
func (m *Manager) Resume(token string) Session {
	if token == "" {
		return Session{}
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[token]; ok {
		return s
	}
	return Session{}
}

// SignOut ends the session for token. Unknown tokens are ignored.
func (m *Manager) SignOut(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}

// Active returns the number of open sessions.
func (m *Manager) Active() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// =============================================================================
// CONTEXT PROPAGATION
// =============================================================================

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session carried by ctx, or an unauthenticated
// session when there is none.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(contextKey{}).(Session)
	return s
}
