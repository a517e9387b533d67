package httpapi

import (
	"net"
	"net/http"
	"strconv"

	"acestepd/internal/security"
)

// clientIP extracts the client address, tolerating both "ip:port" and
// plain "ip" forms of RemoteAddr (chi's RealIP rewrites to the latter).
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// securityHeaders applies the policy's response headers to everything.
func securityHeaders(sec *security.Manager) func(http.Handler) http.Handler {
	headers := sec.SecurityHeaders()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ipAccess rejects callers failing the block/allow/localhost policy.
func ipAccess(sec *security.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if ok, msg := sec.CheckIPAccess(clientIP(r)); !ok {
				CountRejection("ip_access")
				writeJSONError(w, http.StatusForbidden, msg)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimit applies the per-minute sliding window per client IP.
func rateLimit(sec *security.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			ok, remaining, msg := sec.CheckRateLimit(ip)
			if !ok {
				CountRejection("rate_limit")
				retry := int(sec.RateLimiter.ResetAfter(ip).Seconds()) + 1
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				writeJSONError(w, http.StatusTooManyRequests, msg)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			next.ServeHTTP(w, r)
		})
	}
}

// authenticate accepts either a valid API key (Authorization header) or,
// when basic auth credentials are presented, the configured user/pass.
// With auth disabled and no API key configured it is a pass-through.
func authenticate(sec *security.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cfg := sec.Config()
			if cfg.APIKey != "" {
				if sec.VerifyAPIKey(r.Header.Get("Authorization")) {
					next.ServeHTTP(w, r)
					return
				}
				CountRejection("api_key")
				writeJSONError(w, http.StatusUnauthorized, "invalid or missing API key")
				return
			}
			if cfg.AuthEnabled {
				user, pass, ok := r.BasicAuth()
				if !ok || !sec.VerifyCredentials(user, pass) {
					CountRejection("auth")
					w.Header().Set("WWW-Authenticate", `Basic realm="acestepd"`)
					writeJSONError(w, http.StatusUnauthorized, "authentication required")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
