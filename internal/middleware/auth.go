package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/2beens/fitquest/internal/telemetry/tracing"
	"github.com/2beens/fitquest/pkg"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const (
	HeaderAPIToken  = "X-FITQUEST-TOKEN"
	HeaderMCPSecret = "X-MCP-Secret"
)

// AuthMiddlewareHandler guards the api with a shared token and the /mcp
// endpoint with its own secret. An empty token or secret disables that check.
type AuthMiddlewareHandler struct {
	apiToken     string
	mcpSecret    string
	allowedPaths map[string]bool
}

func NewAuthMiddlewareHandler(apiToken, mcpSecret string) *AuthMiddlewareHandler {
	return &AuthMiddlewareHandler{
		apiToken:  apiToken,
		mcpSecret: mcpSecret,
		allowedPaths: map[string]bool{
			"/":        true,
			"/version": true,
			"/health":  true,
		},
	}
}

func (h *AuthMiddlewareHandler) AuthCheck() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, span := tracing.GlobalTracer.Start(r.Context(), "middleware.auth")
			defer span.End()

			if r.Method == http.MethodOptions {
				w.Header().Add("Allow", "GET, POST, PUT, DELETE, OPTIONS")
				w.WriteHeader(http.StatusOK)
				span.SetStatus(codes.Ok, "options-ok")
				return
			}

			if h.allowedPaths[r.URL.Path] {
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if strings.HasPrefix(r.URL.Path, "/mcp") {
				if !secretMatches(h.mcpSecret, r.Header.Get(HeaderMCPSecret)) {
					reqIP, _ := pkg.ReadUserIP(r)
					log.Warnf("[invalid mcp secret] [auth middleware] unauthorized => %s from %s", r.URL.Path, reqIP)
					http.Error(w, "no can do", http.StatusUnauthorized)
					span.SetStatus(codes.Error, "invalid-mcp-secret")
					return
				}
				span.SetStatus(codes.Ok, "ok")
				next.ServeHTTP(w, r)
				return
			}

			if !secretMatches(h.apiToken, requestToken(r)) {
				log.Tracef("[invalid token] [auth middleware] unauthorized => %s", r.URL.Path)
				http.Error(w, "no can do", http.StatusUnauthorized)
				span.SetStatus(codes.Error, "invalid-auth-token")
				return
			}

			span.SetStatus(codes.Ok, "ok")
			next.ServeHTTP(w, r)
		})
	}
}

// requestToken reads the custom token header, then a bearer Authorization header.
func requestToken(r *http.Request) string {
	if token := r.Header.Get(HeaderAPIToken); token != "" {
		return token
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func secretMatches(expected, got string) bool {
	if expected == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(expected), []byte(got)) == 1
}
