package health

import (
	"context"
	"net/http"
	"time"
)

// HandlerFunc serves the result of checks as JSON. The liveness query parameter
// selects the cheap liveness variant of each check.
func HandlerFunc(checks func() []Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checkLiveness := r.URL.Query().Get("liveness") == "true"

		status, body, err := CheckAll(ctx, checkLiveness, checks())
		if err != nil {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}
