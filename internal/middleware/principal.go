package middleware

import (
	"net/http"
	"strings"

	"duck-sheets/internal/domain"
)

// PrincipalHeader carries the authenticated user name set by the fronting proxy.
const PrincipalHeader = "X-Forwarded-User"

// Principal stores the calling user in the request context. The name comes
// from PrincipalHeader, or defaultUser when the header is absent.
func Principal(defaultUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get(PrincipalHeader))
			if name == "" {
				name = defaultUser
			}
			ctx := domain.WithPrincipal(r.Context(), domain.ContextPrincipal{Name: name})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
