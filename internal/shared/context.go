package shared

import "context"

// Identity describes the authenticated actor as supplied by the external
// identity provider. Handle is the provider-issued stable user handle.
type Identity struct {
	Handle string
	Email  string
	Name   string
}

type identityContextKey struct{}

// ContextWithIdentity stores the identity in context.
func ContextWithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// IdentityFromContext extracts the identity from context. Nil means the
// request is anonymous.
func IdentityFromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityContextKey{}).(*Identity)
	return id
}
