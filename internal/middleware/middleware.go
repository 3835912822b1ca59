package middleware

import (
	"net/http"

	"github.com/readproof-dev/readproof/internal/middleware/ratelimiter"
	"github.com/readproof-dev/readproof/internal/utils"
)

// RateLimit rejects requests once the identity's bucket runs dry. Identity
// extraction failures fail closed with the extractor's error.
func RateLimit(irl *ratelimiter.IdentityRateLimiter, getIdentity func(r *http.Request) (string, error)) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			identity, err := getIdentity(r)
			if err != nil {
				utils.WriteErrorAndStatusCode(w, err)
				return
			}
			if !irl.Allow(identity) {
				http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

func GetIP(r *http.Request) (string, error) {
	return utils.GetIP(r)
}
