package config

import (
	"crypto/tls"
	"fmt"
)

// TLS modes
const (
	TLSModeDisabled = "disabled"
	TLSModeServer   = "server"
	TLSModeMutual   = "mutual"
)

type tlsCheck func(TLSConfig) error

// tlsChecks lists the checks each mode must pass, in order
var tlsChecks = map[string][]tlsCheck{
	TLSModeDisabled: nil,
	TLSModeServer: {
		requireCertAndKey,
		rejectDuplicateCertSources,
		validateCipherSuites,
	},
	TLSModeMutual: {
		requireCertAndKey,
		requireCA,
		rejectDuplicateCertSources,
		rejectDuplicateCASource,
		validateClientAuthPolicy,
		validateCipherSuites,
	},
}

// ValidateTLSConfig validates the TLS configuration
func (c *Config) ValidateTLSConfig() error {
	tlsCfg := c.Server.TLS

	checks, ok := tlsChecks[tlsCfg.Mode]
	if !ok {
		return fmt.Errorf("invalid TLS mode: %s (must be 'disabled', 'server', or 'mutual')", tlsCfg.Mode)
	}
	for _, check := range checks {
		if err := check(tlsCfg); err != nil {
			return fmt.Errorf("%s mode: %w", tlsCfg.Mode, err)
		}
	}

	return validateTLSVersion(tlsCfg)
}

func requireCertAndKey(t TLSConfig) error {
	if (t.CertFile == "" && t.CertContent == "") || (t.KeyFile == "" && t.KeyContent == "") {
		return fmt.Errorf("TLS certificate and key are required (provide either files or content)")
	}
	return nil
}

func requireCA(t TLSConfig) error {
	if t.CAFile == "" && t.CAContent == "" {
		return fmt.Errorf("CA certificate is required (provide either caFile or caContent)")
	}
	return nil
}

func rejectDuplicateCertSources(t TLSConfig) error {
	if t.CertFile != "" && t.CertContent != "" {
		return fmt.Errorf("cannot specify both certFile and certContent - choose one")
	}
	if t.KeyFile != "" && t.KeyContent != "" {
		return fmt.Errorf("cannot specify both keyFile and keyContent - choose one")
	}
	return nil
}

func rejectDuplicateCASource(t TLSConfig) error {
	if t.CAFile != "" && t.CAContent != "" {
		return fmt.Errorf("cannot specify both caFile and caContent - choose one")
	}
	return nil
}

func validateClientAuthPolicy(t TLSConfig) error {
	switch t.ClientAuthPolicy {
	case "require", "request", "verify", "":
		return nil
	default:
		return fmt.Errorf("invalid clientAuthPolicy: %s (must be 'require', 'request', or 'verify')", t.ClientAuthPolicy)
	}
}

func validateCipherSuites(t TLSConfig) error {
	for _, name := range t.CipherSuites {
		if _, ok := CipherSuiteID(name); !ok {
			return fmt.Errorf("unknown or insecure cipher suite: %s", name)
		}
	}
	return nil
}

func validateTLSVersion(t TLSConfig) error {
	switch t.MinVersion {
	case "", "1.2", "1.3":
		return nil
	default:
		return fmt.Errorf("invalid TLS minVersion: %s (must be '1.2' or '1.3')", t.MinVersion)
	}
}

// CipherSuiteID resolves a cipher suite name among the suites crypto/tls considers secure
func CipherSuiteID(name string) (uint16, bool) {
	for _, suite := range tls.CipherSuites() {
		if suite.Name == name {
			return suite.ID, true
		}
	}
	return 0, false
}

// HasFileCertificates reports whether TLS material comes from disk and can be watched
func (t TLSConfig) HasFileCertificates() bool {
	return t.CertFile != "" && t.KeyFile != ""
}
