package http

import (
	"context"

	"github.com/example/reading-nook/internal/application"
)

type contextKey string

const (
	principalContextKey contextKey = "principal"
	bookIDContextKey    contextKey = "book_id"
)

// ContextWithPrincipal returns a derived context containing the authenticated principal.
func ContextWithPrincipal(ctx context.Context, principal application.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}

// PrincipalFromContext extracts the authenticated principal from context if available.
func PrincipalFromContext(ctx context.Context) (application.Principal, bool) {
	principal, ok := ctx.Value(principalContextKey).(application.Principal)
	return principal, ok
}

// ContextWithBookID injects the book identifier resolved from the request path.
func ContextWithBookID(ctx context.Context, bookID string) context.Context {
	return context.WithValue(ctx, bookIDContextKey, bookID)
}

// BookIDFromContext extracts a book identifier previously associated with the context.
func BookIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(bookIDContextKey).(string)
	return id, ok
}
