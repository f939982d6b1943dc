package server

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// withAuth enforces the optional API and admin tokens. /health is always open.
func (s *Server) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		principal := authPrincipal{AuthType: authTypeAnonymous}
		if s.apiToken != "" {
			if !tokenMatches(bearerToken(r), s.apiToken) {
				s.writeErrorReq(w, r, http.StatusUnauthorized, makeAPIError(http.StatusUnauthorized, "unauthorized", ErrCodeUnauthorized, fmt.Errorf("missing or invalid bearer token")))
				return
			}
			principal.AuthType = authTypeBearer
		}

		if isAdminPath(r.URL.Path) && s.adminToken != "" {
			if !tokenMatches(r.Header.Get("X-Admin-Token"), s.adminToken) {
				s.writeErrorReq(w, r, http.StatusForbidden, makeAPIError(http.StatusForbidden, "forbidden", ErrCodeForbidden, fmt.Errorf("admin token required")))
				return
			}
			principal.AuthType = authTypeAdmin
		}

		next.ServeHTTP(w, r.WithContext(contextWithAuthPrincipal(r.Context(), principal)))
	})
}

func isAdminPath(path string) bool {
	return strings.HasPrefix(path, "/v1/admin/")
}

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}

func tokenMatches(got, want string) bool {
	got = strings.TrimSpace(got)
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
