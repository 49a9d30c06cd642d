package auth

import "context"

type credentialKey struct{}

// WithCredential attaches the verified session to ctx.
func WithCredential(ctx context.Context, cred *SessionCredential) context.Context {
	return context.WithValue(ctx, credentialKey{}, cred)
}

// FromContext returns the session attached by the gate, if any.
func FromContext(ctx context.Context) (*SessionCredential, bool) {
	cred, ok := ctx.Value(credentialKey{}).(*SessionCredential)
	return cred, ok && cred != nil
}

// ActorID is the operator id behind ctx, or nil for system work.
func ActorID(ctx context.Context) *uint {
	cred, ok := FromContext(ctx)
	if !ok {
		return nil
	}
	id := cred.UserID
	return &id
}
