package enroll

import "context"

type clientIPContextKey struct{}
type clientScopeContextKey struct{}

// WithClientIP attaches the visitor's IP address to ctx. It is recorded on
// audit events and keys the optional OTP send throttle.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithClientScope attaches the visitor's browser-context identifier to
// ctx. The scope selects the pending-registration slot that survives the
// navigation between sign-up submission and OTP verification, so both
// requests must carry the same scope. Absent scopes share the default
// slot "0".
func WithClientScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, clientScopeContextKey{}, scope)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func clientScopeFromContext(ctx context.Context) string {
	if ctx == nil {
		return "0"
	}

	scope, _ := ctx.Value(clientScopeContextKey{}).(string)
	if scope == "" {
		return "0"
	}
	return scope
}
