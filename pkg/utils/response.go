package utils

import (
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/goccy/go-json"
)

var trustProxy atomic.Bool

func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// TrustProxyHeaders makes ClientIP honour X-Forwarded-For and X-Real-IP.
// Enable it only behind a proxy that sets those headers itself.
func TrustProxyHeaders(enabled bool) {
	trustProxy.Store(enabled)
}

// ClientIP returns the visitor's IP without port. Proxy headers are read only
// when TrustProxyHeaders(true) was called.
func ClientIP(r *http.Request) string {
	if trustProxy.Load() {
		// First hop is the original client
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
