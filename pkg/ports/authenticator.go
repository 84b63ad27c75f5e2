package ports

import "context"

// Authenticator is the remote login operation.
// Any returned error is treated the same way by the engine; there is no error taxonomy.
// Implementations must honour ctx cancellation, which is how a superseded or
// torn-down attempt is abandoned.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (userID string, err error)
}

// AuthenticatorFunc adapts a plain function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, email, password string) (string, error)

// Login calls f.
func (f AuthenticatorFunc) Login(ctx context.Context, email, password string) (string, error) {
	return f(ctx, email, password)
}
