package server

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"sync"
	"time"

	"resumescreen/internal/config"
	"resumescreen/internal/errors"
	"resumescreen/internal/observability"
)

// certExpiryWarning is how close to NotAfter a certificate must be before /health degrades
const certExpiryWarning = 7 * 24 * time.Hour

// CertStore holds the live server certificate and client CA pool.
// Handshakes read it through GetCertificate, so a Reload takes effect on the next connection.
type CertStore struct {
	mu sync.RWMutex

	cert     *tls.Certificate
	caPool   *x509.CertPool
	notAfter time.Time

	lastReload      time.Time
	reloadCount     int64
	reloadFailures  int64
	lastReloadError string

	tlsConfig config.TLSConfig
	om        *observability.ObservabilityManager
	logger    *errors.Logger
	now       func() time.Time
}

// NewCertStore loads the configured certificate material once
func NewCertStore(tlsConfig config.TLSConfig, om *observability.ObservabilityManager, logger *errors.Logger) (*CertStore, error) {
	cs := &CertStore{
		tlsConfig: tlsConfig,
		om:        om,
		logger:    logger,
		now:       time.Now,
	}

	cert, pool, notAfter, err := cs.load()
	if err != nil {
		return nil, err
	}
	cs.cert, cs.caPool, cs.notAfter = cert, pool, notAfter
	cs.lastReload = cs.now()
	return cs, nil
}

// GetCertificate serves the current certificate to tls.Config
func (cs *CertStore) GetCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if cs.cert == nil {
		return nil, fmt.Errorf("no server certificate loaded")
	}
	return cs.cert, nil
}

// CAPool returns the client CA pool, nil outside mutual mode
func (cs *CertStore) CAPool() *x509.CertPool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.caPool
}

// Reload re-reads certificate material. On failure the previous certificate stays in use.
func (cs *CertStore) Reload(ctx context.Context) error {
	cert, pool, notAfter, err := cs.load()

	cs.mu.Lock()
	cs.reloadCount++
	if err != nil {
		cs.reloadFailures++
		cs.lastReloadError = err.Error()
	} else {
		cs.cert, cs.caPool, cs.notAfter = cert, pool, notAfter
		cs.lastReload = cs.now()
		cs.lastReloadError = ""
	}
	cs.mu.Unlock()

	cs.om.RecordCertReload(ctx, err == nil, notAfter)

	if err != nil {
		cs.logger.LogError(err, "Certificate reload failed, keeping previous certificate")
		return err
	}
	cs.logger.Info("Certificates reloaded", "expires_at", notAfter)
	return nil
}

// Expiry returns the NotAfter time of the current leaf certificate
func (cs *CertStore) Expiry() time.Time {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.notAfter
}

// Status summarizes the store for /health
func (cs *CertStore) Status() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	remaining := cs.notAfter.Sub(cs.now())
	status := map[string]any{
		"healthy":         remaining > certExpiryWarning,
		"mode":            cs.tlsConfig.Mode,
		"expires_at":      cs.notAfter.UTC().Format(time.RFC3339),
		"expires_in":      remaining.Round(time.Second).String(),
		"last_reload":     cs.lastReload.UTC().Format(time.RFC3339),
		"reload_count":    cs.reloadCount,
		"reload_failures": cs.reloadFailures,
		"auto_reload":     cs.tlsConfig.AutoReload.Enabled && cs.tlsConfig.HasFileCertificates(),
	}
	if cs.lastReloadError != "" {
		status["last_reload_error"] = cs.lastReloadError
	}
	return status
}

// load reads the key pair and, in mutual mode, the client CA from files or inline PEM
func (cs *CertStore) load() (*tls.Certificate, *x509.CertPool, time.Time, error) {
	certPEM, err := pemSource(cs.tlsConfig.CertFile, cs.tlsConfig.CertContent)
	if err != nil {
		return nil, nil, time.Time{}, err
	}
	keyPEM, err := pemSource(cs.tlsConfig.KeyFile, cs.tlsConfig.KeyContent)
	if err != nil {
		return nil, nil, time.Time{}, err
	}

	cert, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return nil, nil, time.Time{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"failed to load TLS key pair", err)
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return nil, nil, time.Time{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			"failed to parse server certificate", err)
	}
	cert.Leaf = leaf

	var pool *x509.CertPool
	if cs.tlsConfig.Mode == config.TLSModeMutual {
		caPEM, err := pemSource(cs.tlsConfig.CAFile, cs.tlsConfig.CAContent)
		if err != nil {
			return nil, nil, time.Time{}, err
		}
		pool = x509.NewCertPool()
		if !pool.AppendCertsFromPEM(caPEM) {
			return nil, nil, time.Time{}, errors.NewConfigError(errors.ErrCodeInvalidConfig,
				"CA bundle contains no usable certificates", nil)
		}
	}

	return &cert, pool, leaf.NotAfter, nil
}

// pemSource prefers the file path and falls back to inline content
func pemSource(path, content string) ([]byte, error) {
	if path == "" {
		if content == "" {
			return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig, "no PEM file or content configured", nil)
		}
		return []byte(content), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("failed to read %s", path), err)
	}
	return data, nil
}
