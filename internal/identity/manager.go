package identity

import (
	"context"
	"sync"
)

// Manager wraps a Provider and owns the current Session. Consumers observe
// transitions through Subscribe rather than polling; every successful
// sign-in, sign-up, and sign-out publishes the new session.
type Manager struct {
	provider Provider

	mu      sync.Mutex
	current Session
	subs    map[int]chan Session
	nextSub int
}

// NewManager creates a Manager with an anonymous initial session.
func NewManager(provider Provider) *Manager {
	return &Manager{
		provider: provider,
		subs:     make(map[int]chan Session),
	}
}

// Current returns the session as of the last transition.
func (m *Manager) Current() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe registers for session transitions. The returned channel
// immediately yields the current session and then every transition;
// slow consumers only ever see the latest state. The cancel function must
// be called when the consumer goes away.
func (m *Manager) Subscribe() (<-chan Session, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Session, 1)
	ch <- m.current
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

// set replaces the current session and notifies subscribers. Channels hold
// only the most recent session: a pending unread value is dropped first.
func (m *Manager) set(s Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}

// SignInWithCredentials authenticates with email and password. On success
// the session transitions to authenticated.
func (m *Manager) SignInWithCredentials(ctx context.Context, email, password string) error {
	account, err := m.provider.SignInWithCredentials(ctx, email, password)
	if err != nil {
		return err
	}
	m.set(Session{Account: account})
	return nil
}

// SignInWithProvider exchanges a federated provider token for a session.
func (m *Manager) SignInWithProvider(ctx context.Context, idToken string) error {
	account, err := m.provider.SignInWithProvider(ctx, idToken)
	if err != nil {
		return err
	}
	m.set(Session{Account: account})
	return nil
}

// SignUp registers a new account and, like the remote provider, signs the
// user in immediately on success.
func (m *Manager) SignUp(ctx context.Context, name, email, password string) error {
	account, err := m.provider.SignUp(ctx, name, email, password)
	if err != nil {
		return err
	}
	m.set(Session{Account: account})
	return nil
}

// SignOut clears the session. It always succeeds locally.
func (m *Manager) SignOut() {
	m.set(Session{})
}
