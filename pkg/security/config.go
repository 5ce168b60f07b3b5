// Package security defines the TLS configuration types shared by every
// HTTP surface in the runtime (the metrics endpoint and the monitor API).
package security

// Config is the security section of the runtime configuration.
type Config struct {
	TLS TLSConfig `json:"tls,omitempty"`
}

// TLSConfig carries the server-side and client-side TLS settings.
type TLSConfig struct {
	Server ServerTLSConfig `json:"server,omitempty"`
	Client ClientTLSConfig `json:"client,omitempty"`
}

// ServerTLSConfig configures TLS termination for an HTTP server.
type ServerTLSConfig struct {
	Enabled    bool   `json:"enabled"`
	CertFile   string `json:"cert_file,omitempty"`
	KeyFile    string `json:"key_file,omitempty"`
	MinVersion string `json:"min_version,omitempty"` // "1.2" or "1.3"

	MTLS ServerMTLSConfig `json:"mtls,omitempty"`
}

// ServerMTLSConfig configures client-certificate validation on a server.
type ServerMTLSConfig struct {
	Enabled bool `json:"enabled"`

	// ClientCAFiles are the CA bundles trusted for client certificates.
	ClientCAFiles []string `json:"client_ca_files,omitempty"`

	// RequireClientCert rejects connections without a certificate when
	// true; when false a presented certificate is verified but absence
	// is tolerated.
	RequireClientCert bool `json:"require_client_cert,omitempty"`

	// AllowedClientCNs restricts accepted certificates to these common
	// names. Empty means any CN the CAs vouch for.
	AllowedClientCNs []string `json:"allowed_client_cns,omitempty"`
}

// ClientTLSConfig configures outbound TLS connections. The system CA
// bundle is always trusted; CAFiles add to it rather than replace it.
type ClientTLSConfig struct {
	CAFiles            []string `json:"ca_files,omitempty"`
	InsecureSkipVerify bool     `json:"insecure_skip_verify,omitempty"` // dev/test only
	MinVersion         string   `json:"min_version,omitempty"`

	MTLS ClientMTLSConfig `json:"mtls,omitempty"`
}

// ClientMTLSConfig configures the certificate a client presents when the
// server demands mutual TLS.
type ClientMTLSConfig struct {
	Enabled  bool   `json:"enabled"`
	CertFile string `json:"cert_file,omitempty"`
	KeyFile  string `json:"key_file,omitempty"`
}
