package server

import (
	"crypto/subtle"
	"net/http"
)

// setupRoutes configures all HTTP routes and middleware
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.HandlerFunc {
		return s.rateLimitMiddleware()(s.authMiddleware(s.requestSizeLimitMiddleware(h)))
	}

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /stats", s.statsHandler)
	mux.HandleFunc("GET /roles", protected(s.rolesHandler))
	mux.HandleFunc("POST /screen", protected(s.screenHandler))
	mux.HandleFunc("POST /screen/export", protected(s.exportHandler))

	return mux
}

// authMiddleware provides API key authentication
func (s *Server) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.APIKeys) == 0 {
			next(w, r)
			return
		}

		apiKey := requestAPIKey(r)
		if apiKey == "" {
			s.Logger.Info("Authentication failed: missing API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r))
			writeErrorResponse(w, "Missing API key", "X-API-Key header or Authorization Bearer token required", http.StatusUnauthorized)
			return
		}

		if !s.validAPIKey(apiKey) {
			s.Logger.Info("Authentication failed: invalid API key",
				"endpoint", r.URL.Path,
				"client_ip", getClientIP(r),
				"api_key_prefix", maskAPIKey(apiKey))
			writeErrorResponse(w, "Invalid API key", "Unauthorized access", http.StatusUnauthorized)
			return
		}

		s.Logger.Debug("API authentication successful",
			"endpoint", r.URL.Path,
			"api_key_prefix", maskAPIKey(apiKey))

		next(w, r)
	}
}

// validAPIKey compares against every configured key in constant time
func (s *Server) validAPIKey(candidate string) bool {
	match := 0
	for key := range s.APIKeys {
		match |= subtle.ConstantTimeCompare([]byte(key), []byte(candidate))
	}
	return match == 1
}

// requestSizeLimitMiddleware limits the size of incoming requests
func (s *Server) requestSizeLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.MaxRequestSize > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.MaxRequestSize)
		}
		next(w, r)
	}
}

// maskAPIKey masks an API key for logging (shows only first 8 characters)
func maskAPIKey(apiKey string) string {
	if len(apiKey) <= 8 {
		return "****"
	}
	return apiKey[:8] + "****"
}
