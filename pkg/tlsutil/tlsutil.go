// Package tlsutil builds crypto/tls configurations from the declarative
// security config, for the metrics endpoint, the monitor API, and any
// client that dials them.
package tlsutil

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"github.com/dhaukoos/CodeNodeIO-sub010/errors"
	"github.com/dhaukoos/CodeNodeIO-sub010/pkg/security"
)

// minTLSVersion maps the config's version string to a crypto/tls
// constant. Anything unrecognized, including empty, falls back to 1.2.
func minTLSVersion(version string) uint16 {
	if version == "1.3" {
		return tls.VersionTLS13
	}
	return tls.VersionTLS12
}

// appendCAFiles loads each PEM bundle into the pool. op names the caller
// for error classification.
func appendCAFiles(pool *x509.CertPool, files []string, op string) error {
	for _, file := range files {
		pemBytes, err := os.ReadFile(file)
		if err != nil {
			return errors.WrapFatal(err, "tlsutil", op,
				fmt.Sprintf("read CA bundle %s", file))
		}
		if !pool.AppendCertsFromPEM(pemBytes) {
			return errors.WrapFatal(fmt.Errorf("no certificates in PEM data"),
				"tlsutil", op,
				fmt.Sprintf("parse CA bundle %s", file))
		}
	}
	return nil
}

// LoadServerTLSConfig builds a server-side tls.Config. A disabled config
// yields (nil, nil) so callers can hand the result straight to net/http.
func LoadServerTLSConfig(cfg security.ServerTLSConfig) (*tls.Config, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, errors.WrapFatal(err, "tlsutil", "LoadServerTLSConfig",
			"load server key pair")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   minTLSVersion(cfg.MinVersion),
	}, nil
}

// LoadServerTLSConfigWithMTLS builds a server-side tls.Config and, when
// the mTLS section is enabled, layers client-certificate validation on
// top of it. Enabling mTLS without server TLS is a config error.
func LoadServerTLSConfigWithMTLS(cfg security.ServerTLSConfig, mtlsCfg security.ServerMTLSConfig) (*tls.Config, error) {
	tlsConfig, err := LoadServerTLSConfig(cfg)
	if err != nil || !mtlsCfg.Enabled {
		return tlsConfig, err
	}
	if tlsConfig == nil {
		return nil, errors.WrapInvalid(
			fmt.Errorf("mTLS enabled without server TLS"),
			"tlsutil", "LoadServerTLSConfigWithMTLS", "validate config")
	}
	if err := configureClientAuth(tlsConfig, mtlsCfg); err != nil {
		return nil, err
	}
	return tlsConfig, nil
}

// configureClientAuth wires client-certificate checking into tlsConfig.
func configureClientAuth(tlsConfig *tls.Config, mtlsCfg security.ServerMTLSConfig) error {
	clientCAs := x509.NewCertPool()
	if err := appendCAFiles(clientCAs, mtlsCfg.ClientCAFiles, "configureClientAuth"); err != nil {
		return err
	}
	tlsConfig.ClientCAs = clientCAs

	tlsConfig.ClientAuth = tls.VerifyClientCertIfGiven
	if mtlsCfg.RequireClientCert {
		tlsConfig.ClientAuth = tls.RequireAndVerifyClientCert
	}

	if len(mtlsCfg.AllowedClientCNs) > 0 {
		tlsConfig.VerifyPeerCertificate = func(_ [][]byte, verifiedChains [][]*x509.Certificate) error {
			return verifyClientCN(verifiedChains, mtlsCfg.AllowedClientCNs)
		}
	}
	return nil
}

// verifyClientCN accepts the connection only if the leaf certificate's
// common name appears in allowedCNs. It runs after chain verification,
// so chains is non-empty for any certificate the CAs vouched for.
func verifyClientCN(chains [][]*x509.Certificate, allowedCNs []string) error {
	if len(chains) == 0 {
		return fmt.Errorf("no verified certificate chains")
	}
	cn := chains[0][0].Subject.CommonName
	for _, allowed := range allowedCNs {
		if cn == allowed {
			return nil
		}
	}
	return fmt.Errorf("client certificate CN '%s' not in allowed list", cn)
}

// LoadClientTLSConfig builds a client-side tls.Config. The system CA
// pool is the base trust store; cfg.CAFiles extend it. If the system
// pool is unavailable the extra CAs stand alone.
func LoadClientTLSConfig(cfg security.ClientTLSConfig) (*tls.Config, error) {
	rootCAs, err := x509.SystemCertPool()
	if err != nil {
		rootCAs = x509.NewCertPool()
	}
	if err := appendCAFiles(rootCAs, cfg.CAFiles, "LoadClientTLSConfig"); err != nil {
		return nil, err
	}

	return &tls.Config{
		MinVersion: minTLSVersion(cfg.MinVersion),
		RootCAs:    rootCAs,
		// Operators opt into skipping verification explicitly, for
		// dev and test endpoints with self-signed certificates.
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}, nil
}

// LoadClientTLSConfigWithMTLS builds a client-side tls.Config and, when
// the mTLS section is enabled, attaches the certificate the client
// presents to the server.
func LoadClientTLSConfigWithMTLS(cfg security.ClientTLSConfig, mtlsCfg security.ClientMTLSConfig) (*tls.Config, error) {
	tlsConfig, err := LoadClientTLSConfig(cfg)
	if err != nil || !mtlsCfg.Enabled {
		return tlsConfig, err
	}

	clientCert, err := tls.LoadX509KeyPair(mtlsCfg.CertFile, mtlsCfg.KeyFile)
	if err != nil {
		return nil, errors.WrapFatal(err, "tlsutil", "LoadClientTLSConfigWithMTLS",
			"load client key pair")
	}
	tlsConfig.Certificates = []tls.Certificate{clientCert}
	return tlsConfig, nil
}
