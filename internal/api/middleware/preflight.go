package middleware

import "net/http"

// Preflight answers OPTIONS requests that reach it with 204 and no body.
// CORS preflights are handled earlier by the cors middleware; this covers
// bare OPTIONS probes without an Origin.
func Preflight(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
