package server

import "fmt"

// displayServerInfo shows server configuration information
func (s *Server) displayServerInfo(addr string, tlsEnabled bool) {
	scheme := "http"
	if tlsEnabled {
		scheme = "https"
	}
	fmt.Fprintf(s.out, "Starting server on %s://%s (TLS mode: %s)\n", scheme, addr, s.tlsModeLabel())

	s.displayEndpoints()
	s.displayAuthInfo()
	s.displayRequestLimitInfo()
	s.displayRateLimitInfo()
}

func (s *Server) tlsModeLabel() string {
	if s.TLSConfig.Mode == "" {
		return "disabled"
	}
	return s.TLSConfig.Mode
}

// displayEndpoints shows available API endpoints
func (s *Server) displayEndpoints() {
	fmt.Fprintln(s.out, "Available endpoints:")
	fmt.Fprintln(s.out, "  GET  /health         - Health check")
	fmt.Fprintln(s.out, "  GET  /stats          - Server statistics")
	fmt.Fprintln(s.out, "  GET  /roles          - List roles and keywords (requires API key)")
	fmt.Fprintln(s.out, "  POST /screen         - Screen resumes against a role (requires API key)")
	fmt.Fprintln(s.out, "  POST /screen/export  - Screen resumes and download CSV (requires API key)")
}

// displayAuthInfo shows authentication configuration
func (s *Server) displayAuthInfo() {
	if len(s.APIKeys) > 0 {
		fmt.Fprintf(s.out, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
		fmt.Fprintln(s.out, "Include 'X-API-Key: <your-key>' or 'Authorization: Bearer <your-key>' in requests")
	} else {
		fmt.Fprintln(s.out, "API authentication: DISABLED (no API keys configured)")
		fmt.Fprintln(s.out, "WARNING: API endpoints are publicly accessible!")
	}
}

// displayRequestLimitInfo shows request size limit configuration
func (s *Server) displayRequestLimitInfo() {
	if s.MaxRequestSize > 0 {
		fmt.Fprintf(s.out, "Request size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		fmt.Fprintln(s.out, "Request size limit: DISABLED")
		fmt.Fprintln(s.out, "WARNING: No request size limits configured!")
	}
}

// displayRateLimitInfo shows rate limiting configuration
func (s *Server) displayRateLimitInfo() {
	if s.RateLimit != nil && s.RateLimit.Enabled {
		fmt.Fprintf(s.out, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
			s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
		if s.RateLimit.ByAPIKey {
			fmt.Fprintln(s.out, "  - Per API key rate limiting enabled")
		}
		if s.RateLimit.ByIP {
			fmt.Fprintln(s.out, "  - Per IP address rate limiting enabled")
		}
	} else {
		fmt.Fprintln(s.out, "Rate limiting: DISABLED")
	}
}
