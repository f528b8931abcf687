// Package tls builds crypto/tls configs for the HTTPS listener and the inventory gRPC channel.
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
)

// Files names the PEM files of one side of a connection
type Files struct {
	CertFile string
	KeyFile  string
	CAFile   string
}

// ServerConfig creates a TLS config for servers.
// With requireClientCert the CA verifies client certificates (mTLS).
func ServerConfig(files Files, requireClientCert bool) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server certificate: %w", err)
	}

	config := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}

	if requireClientCert {
		pool, err := loadCA(files.CAFile)
		if err != nil {
			return nil, err
		}
		config.ClientCAs = pool
		config.ClientAuth = tls.RequireAndVerifyClientCert
	}

	return config, nil
}

// ClientConfig creates a TLS config for clients.
// The client certificate is optional; without it the channel is one-way TLS.
func ClientConfig(files Files) (*tls.Config, error) {
	pool, err := loadCA(files.CAFile)
	if err != nil {
		return nil, err
	}

	config := &tls.Config{
		RootCAs:    pool,
		MinVersion: tls.VersionTLS12,
	}

	if files.CertFile != "" && files.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(files.CertFile, files.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		config.Certificates = []tls.Certificate{cert}
	}

	return config, nil
}

func loadCA(caFile string) (*x509.CertPool, error) {
	if caFile == "" {
		return nil, fmt.Errorf("CA certificate file is required")
	}
	caCert, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA certificate: %w", err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA certificate %s", caFile)
	}
	return pool, nil
}
