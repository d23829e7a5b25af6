package httpserver

import (
	"net/http"
	"slices"
	"strings"

	"github.com/fdg312/carb-coach/internal/config"
)

// Methods used by the profile, plan, log, report and chat routes.
var corsMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

const (
	corsAllowHeaders  = "Content-Type"
	corsExposeHeaders = "Content-Disposition,Retry-After" // report filename, rate limit backoff
	corsMaxAge        = "600"
)

// CORSMiddleware adds CORS headers for the configured web origins.
// Preflights never reach the router.
func CORSMiddleware(cfg *config.Config, next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(cfg.CORSAllowedOrigins))
	for _, o := range cfg.CORSAllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}
	methods := strings.Join(append(slices.Clone(corsMethods), http.MethodOptions), ",")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		ok := origin != "" && allowed[origin]

		if ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
			w.Header().Set("Access-Control-Expose-Headers", corsExposeHeaders)
			if cfg.CORSAllowCredentials {
				w.Header().Set("Access-Control-Allow-Credentials", "true")
			}
		}

		if r.Method != http.MethodOptions || origin == "" {
			next.ServeHTTP(w, r)
			return
		}

		// Preflight: unknown origins and methods get a bare 204 and the browser blocks.
		requested := r.Header.Get("Access-Control-Request-Method")
		if ok && (requested == "" || slices.Contains(corsMethods, requested)) {
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", corsAllowHeaders)
			w.Header().Set("Access-Control-Max-Age", corsMaxAge)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}
