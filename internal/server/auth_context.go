package server

import "context"

type authContextKey struct{}

const (
	authTypeAnonymous = "anonymous"
	authTypeBearer    = "bearer"
	authTypeAdmin     = "admin"
)

type authPrincipal struct {
	AuthType string
}

func contextWithAuthPrincipal(ctx context.Context, principal authPrincipal) context.Context {
	return context.WithValue(ctx, authContextKey{}, principal)
}

func authPrincipalFromContext(ctx context.Context) (authPrincipal, bool) {
	if ctx == nil {
		return authPrincipal{}, false
	}
	principal, ok := ctx.Value(authContextKey{}).(authPrincipal)
	return principal, ok
}

// actorFromContext names the caller for the activity journal.
func actorFromContext(ctx context.Context) string {
	principal, ok := authPrincipalFromContext(ctx)
	if !ok {
		return ""
	}
	return principal.AuthType
}
