package server

import (
	"crypto/tls"
	"fmt"

	"resumescreen/internal/config"
)

// buildTLSConfig returns nil in disabled mode. Otherwise it loads the cert store and
// builds a config that reads certificates through it.
func (s *Server) buildTLSConfig() (*tls.Config, error) {
	switch s.TLSConfig.Mode {
	case config.TLSModeDisabled, "":
		return nil, nil
	case config.TLSModeServer, config.TLSModeMutual:
	default:
		return nil, fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", s.TLSConfig.Mode)
	}

	if s.Certs == nil {
		certs, err := NewCertStore(s.TLSConfig, s.Observability, s.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to set up TLS: %w", err)
		}
		s.Certs = certs
	}

	tlsConfig := &tls.Config{
		MinVersion:     minTLSVersion(s.TLSConfig.MinVersion),
		GetCertificate: s.Certs.GetCertificate,
	}

	for _, name := range s.TLSConfig.CipherSuites {
		id, ok := config.CipherSuiteID(name)
		if !ok {
			return nil, fmt.Errorf("unknown or insecure cipher suite: %s", name)
		}
		tlsConfig.CipherSuites = append(tlsConfig.CipherSuites, id)
	}

	if s.TLSConfig.Mode == config.TLSModeMutual {
		tlsConfig.ClientAuth = clientAuthType(s.TLSConfig.ClientAuthPolicy)
		// Read per handshake so a reloaded CA bundle applies to new connections.
		tlsConfig.GetConfigForClient = func(*tls.ClientHelloInfo) (*tls.Config, error) {
			c := tlsConfig.Clone()
			c.GetConfigForClient = nil
			c.ClientCAs = s.Certs.CAPool()
			return c, nil
		}
	}

	return tlsConfig, nil
}

func minTLSVersion(v string) uint16 {
	if v == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// clientAuthType maps the configured policy; the default is to require and verify
func clientAuthType(policy string) tls.ClientAuthType {
	switch policy {
	case "request":
		return tls.RequestClientCert
	case "verify":
		return tls.VerifyClientCertIfGiven
	default:
		return tls.RequireAndVerifyClientCert
	}
}
