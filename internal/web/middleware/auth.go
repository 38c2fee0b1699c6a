package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/JonMunkholm/perizinan/internal/config"
	"github.com/JonMunkholm/perizinan/internal/core"
	"github.com/JonMunkholm/perizinan/internal/logging"
)

var (
	msgMissingKey = core.UserMessage{
		Message: "missing API key",
		Action:  "Send the key in the X-API-Key header.",
		Code:    "AUTH001",
	}
	msgInvalidKey = core.UserMessage{
		Message: "invalid API key",
		Action:  "Check the key with the administrator of this import service.",
		Code:    "AUTH002",
	}
)

// APIKeyAuth checks the X-API-Key header (or an Authorization bearer token)
// against cfg.APIKeys. It passes everything through when RequireAPIKey is
// off and rejects everything when it is on with no keys configured.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			key := requestKey(r)
			msg, status := msgMissingKey, http.StatusUnauthorized
			if key != "" {
				if keyAllowed(key, cfg.APIKeys) {
					next.ServeHTTP(w, r)
					return
				}
				msg, status = msgInvalidKey, http.StatusForbidden
			}

			logging.FromContext(r.Context()).Warn("rejected request",
				"reason", msg.Message,
				"method", r.Method,
				"path", r.URL.Path,
				"ip", ClientIP(r),
			)
			writeRejection(w, status, msg)
		})
	}
}

func requestKey(r *http.Request) string {
	if key := r.Header.Get("X-API-Key"); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// keyAllowed compares against every configured key so timing does not
// reveal which one matched.
func keyAllowed(key string, keys []string) bool {
	match := 0
	for _, k := range keys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(k))
	}
	return match == 1
}

// writeRejection writes the same JSON error shape the API handlers use.
func writeRejection(w http.ResponseWriter, status int, msg core.UserMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
