package session

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
)

var (
	ErrInvalidSecurityMode     = errors.New("session: invalid security mode")
	ErrTLSRequired             = errors.New("session: tls required")
	ErrMTLSRequired            = errors.New("session: mtls required")
	ErrTLSCertFileRequired     = errors.New("session: tls cert file required")
	ErrTLSKeyFileRequired      = errors.New("session: tls key file required")
	ErrTLSCAFileRequired       = errors.New("session: tls ca file required")
	ErrTLSInsecureSkipNotAllow = errors.New("session: insecure skip verify not allowed")
)

// NormalizeSecurityMode lowercases mode and maps blank to development.
func NormalizeSecurityMode(mode SecurityMode) SecurityMode {
	m := SecurityMode(strings.ToLower(strings.TrimSpace(string(mode))))
	if m == "" {
		return SecurityModeDevelopment
	}
	return m
}

// ValidateClientTransport checks the settings Dial needs.
func (c Config) ValidateClientTransport() error {
	return c.validateTransport(RoleClient)
}

// ValidateServerTransport checks the settings Listen needs.
func (c Config) ValidateServerTransport() error {
	return c.validateTransport(RoleServer)
}

type fileRequirement struct {
	path string
	err  error
}

func (c Config) validateTransport(role Role) error {
	mode := NormalizeSecurityMode(c.SecurityMode)
	if mode != SecurityModeDevelopment && mode != SecurityModeProduction {
		return fmt.Errorf("%w: %q", ErrInvalidSecurityMode, c.SecurityMode)
	}

	t := c.TLS
	if mode == SecurityModeProduction {
		switch {
		case !t.Enabled:
			return ErrTLSRequired
		case !t.Mutual:
			return ErrMTLSRequired
		case role == RoleClient && t.InsecureSkipVerify:
			return ErrTLSInsecureSkipNotAllow
		}
	}
	if t.Mutual && !t.Enabled {
		return ErrTLSRequired
	}
	if !t.Enabled {
		return nil
	}

	for _, req := range t.requiredFiles(role) {
		if strings.TrimSpace(req.path) == "" {
			return req.err
		}
	}
	return nil
}

// requiredFiles lists the files role must have, in the order they are checked.
// A client verifies the feed with the CA unless verification is skipped; a
// server presents its own pair and needs the CA only to verify subscribers.
func (t TLSConfig) requiredFiles(role Role) []fileRequirement {
	pair := []fileRequirement{
		{t.CertFile, ErrTLSCertFileRequired},
		{t.KeyFile, ErrTLSKeyFileRequired},
	}
	ca := fileRequirement{t.CAFile, ErrTLSCAFileRequired}

	var reqs []fileRequirement
	if role == RoleClient {
		if !t.InsecureSkipVerify {
			reqs = append(reqs, ca)
		}
		if t.Mutual {
			reqs = append(reqs, pair...)
		}
		return reqs
	}
	reqs = append(reqs, pair...)
	if t.Mutual {
		reqs = append(reqs, ca)
	}
	return reqs
}

// clientTLSConfig builds the dialer side TLS settings. The server name
// defaults to the host part of addr.
func (c Config) clientTLSConfig(addr string) (*tls.Config, error) {
	serverName := strings.TrimSpace(c.TLS.ServerName)
	if serverName == "" {
		host, _, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, err
		}
		serverName = host
	}
	cfg := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		ServerName:         serverName,
		InsecureSkipVerify: c.TLS.InsecureSkipVerify,
	}
	if ca := strings.TrimSpace(c.TLS.CAFile); ca != "" {
		pool, err := loadCertPool(ca)
		if err != nil {
			return nil, err
		}
		cfg.RootCAs = pool
	}
	if c.TLS.Mutual {
		cert, err := tls.LoadX509KeyPair(c.TLS.CertFile, c.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("session: load client key pair: %w", err)
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	return cfg, nil
}

// serverTLSConfig requires verified subscriber certificates when mutual TLS
// is on or the mode is production.
func (c Config) serverTLSConfig() (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(c.TLS.CertFile, c.TLS.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("session: load server key pair: %w", err)
	}
	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}
	if !c.TLS.Mutual && NormalizeSecurityMode(c.SecurityMode) != SecurityModeProduction {
		return cfg, nil
	}
	pool, err := loadCertPool(c.TLS.CAFile)
	if err != nil {
		return nil, err
	}
	cfg.ClientAuth = tls.RequireAndVerifyClientCert
	cfg.ClientCAs = pool
	return cfg, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read tls ca bundle: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("session: parse tls ca bundle: %s", path)
	}
	return pool, nil
}
