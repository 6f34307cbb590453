package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name        string
		tls         TLSConfig
		expectError bool
		errorMsg    string
	}{
		{
			name: "disabled mode",
			tls:  TLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode with files",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.2",
			},
		},
		{
			name: "mutual mode with content from vault",
			tls: TLSConfig{
				Mode:             "mutual",
				CertContent:      "cert-content",
				KeyContent:       "key-content",
				CAContent:        "ca-content",
				ClientAuthPolicy: "verify",
				MinVersion:       "1.3",
			},
		},
		{
			name:        "invalid mode",
			tls:         TLSConfig{Mode: "invalid"},
			expectError: true,
			errorMsg:    "invalid TLS mode: invalid",
		},
		{
			name:        "server mode missing key",
			tls:         TLSConfig{Mode: "server", CertFile: "/path/to/cert.pem"},
			expectError: true,
			errorMsg:    "TLS certificate and key are required",
		},
		{
			name: "mutual mode missing CA",
			tls: TLSConfig{
				Mode:     "mutual",
				CertFile: "/path/to/cert.pem",
				KeyFile:  "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "CA certificate is required",
		},
		{
			name: "cert file and content both set",
			tls: TLSConfig{
				Mode:        "server",
				CertFile:    "/path/to/cert.pem",
				CertContent: "cert-content",
				KeyFile:     "/path/to/key.pem",
			},
			expectError: true,
			errorMsg:    "cannot specify both certFile and certContent",
		},
		{
			name: "ca file and content both set",
			tls: TLSConfig{
				Mode:      "mutual",
				CertFile:  "/path/to/cert.pem",
				KeyFile:   "/path/to/key.pem",
				CAFile:    "/path/to/ca.pem",
				CAContent: "ca-content",
			},
			expectError: true,
			errorMsg:    "cannot specify both caFile and caContent",
		},
		{
			name: "invalid client auth policy",
			tls: TLSConfig{
				Mode:             "mutual",
				CertFile:         "/path/to/cert.pem",
				KeyFile:          "/path/to/key.pem",
				CAFile:           "/path/to/ca.pem",
				ClientAuthPolicy: "maybe",
			},
			expectError: true,
			errorMsg:    "invalid clientAuthPolicy: maybe",
		},
		{
			name: "known cipher suite",
			tls: TLSConfig{
				Mode:         "server",
				CertFile:     "/path/to/cert.pem",
				KeyFile:      "/path/to/key.pem",
				CipherSuites: []string{"TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256"},
			},
		},
		{
			name: "insecure cipher suite",
			tls: TLSConfig{
				Mode:         "server",
				CertFile:     "/path/to/cert.pem",
				KeyFile:      "/path/to/key.pem",
				CipherSuites: []string{"TLS_RSA_WITH_RC4_128_SHA"},
			},
			expectError: true,
			errorMsg:    "unknown or insecure cipher suite",
		},
		{
			name: "invalid version",
			tls: TLSConfig{
				Mode:       "server",
				CertFile:   "/path/to/cert.pem",
				KeyFile:    "/path/to/key.pem",
				MinVersion: "1.0",
			},
			expectError: true,
			errorMsg:    "invalid TLS minVersion: 1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()

			if tt.expectError {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCipherSuiteID(t *testing.T) {
	id, ok := CipherSuiteID("TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384")
	assert.True(t, ok)
	assert.NotZero(t, id)

	_, ok = CipherSuiteID("NOT_A_SUITE")
	assert.False(t, ok)
}

func TestHasFileCertificates(t *testing.T) {
	assert.True(t, TLSConfig{CertFile: "c.pem", KeyFile: "k.pem"}.HasFileCertificates())
	assert.False(t, TLSConfig{CertContent: "c", KeyContent: "k"}.HasFileCertificates())
}
