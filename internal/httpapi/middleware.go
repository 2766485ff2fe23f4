package httpapi

import "net/http"

const apiKeyHeader = "X-API-Key"

// apiKeyAuth enforces spec §6: "every non-health request requires header
// X-API-Key: <configured value>; missing/invalid returns 401 with scheme
// ApiKey." keys is the union of API_APIKEY and API_APIKEY_1..10; any match
// authorizes. 401 sits outside the closed AppError kind set, so it is
// written directly rather than through writeAppError.
func apiKeyAuth(keys []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		allowed[k] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(apiKeyHeader)
			if _, ok := allowed[key]; !ok {
				w.Header().Set("WWW-Authenticate", "ApiKey")
				writeEnvelope(w, http.StatusUnauthorized, envelope{
					Success:   false,
					Error:     &errorPayload{Code: "UNAUTHORIZED", Message: "missing or invalid X-API-Key"},
					RequestID: newRequestID(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
