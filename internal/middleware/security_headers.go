// AngelaMos | 2026
// security_headers.go

package middleware

import "net/http"

// SecurityHeaders sets the baseline hardening headers on every
// response. The API serves JSON only, so the CSP can be maximally
// restrictive. HSTS is reserved for production where TLS terminates in
// front of the service.
func SecurityHeaders(isProduction bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set(
				"Content-Security-Policy",
				"default-src 'none'; frame-ancestors 'none'",
			)
			h.Set("Cache-Control", "no-store")

			if isProduction {
				h.Set(
					"Strict-Transport-Security",
					"max-age=31536000; includeSubDomains",
				)
			}

			next.ServeHTTP(w, r)
		})
	}
}
