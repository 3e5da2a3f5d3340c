// Package identity tracks the authenticated-or-anonymous state of the
// current user and pushes session transitions to subscribers.
package identity

import "context"

// Account describes an authenticated user as reported by the provider.
type Account struct {
	OwnerID     string `json:"owner_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Session is the identity state at a point in time: authenticated with an
// account, or anonymous with a nil account.
type Session struct {
	Account *Account
}

// Authenticated reports whether the session carries an account.
func (s Session) Authenticated() bool {
	return s.Account != nil
}

// OwnerID returns the owning user identifier, or "" for anonymous sessions.
func (s Session) OwnerID() string {
	if s.Account == nil {
		return ""
	}
	return s.Account.OwnerID
}

// Provider is the external identity boundary. Implementations authenticate
// credentials, exchange federated provider tokens, and register accounts.
// Failures are surfaced immediately; no retries are attempted.
type Provider interface {
	SignInWithCredentials(ctx context.Context, email, password string) (*Account, error)
	SignInWithProvider(ctx context.Context, idToken string) (*Account, error)
	SignUp(ctx context.Context, name, email, password string) (*Account, error)
}
