package tlsutil

import (
	"crypto/tls"
	"testing"
	"time"
)

// aeadSuites lists the only cipher suites the hardened configs may offer.
var aeadSuites = map[uint16]bool{
	tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384: true,
	tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384:   true,
	tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256: true,
	tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:   true,
	tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305:  true,
	tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305:    true,
}

func TestDefaultTLSConfig(t *testing.T) {
	cfg := DefaultTLSConfig()
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want %d", cfg.MinVersion, tls.VersionTLS12)
	}
	if len(cfg.CipherSuites) == 0 {
		t.Error("CipherSuites should not be empty")
	}
	for _, cs := range cfg.CipherSuites {
		if !aeadSuites[cs] {
			t.Errorf("non-AEAD cipher suite offered: %d", cs)
		}
	}
}

func TestServerTLSConfig(t *testing.T) {
	cfg := ServerTLSConfig()
	if cfg.MinVersion != tls.VersionTLS12 {
		t.Errorf("MinVersion = %d, want %d", cfg.MinVersion, tls.VersionTLS12)
	}
	if len(cfg.NextProtos) != 2 || cfg.NextProtos[0] != "h2" || cfg.NextProtos[1] != "http/1.1" {
		t.Errorf("NextProtos = %v, want [h2 http/1.1]", cfg.NextProtos)
	}
	for _, cs := range cfg.CipherSuites {
		if !aeadSuites[cs] {
			t.Errorf("non-AEAD cipher suite offered: %d", cs)
		}
	}
}

func TestServerTLSConfigIndependent(t *testing.T) {
	// Mutating the server config must not leak into fresh client configs.
	srv := ServerTLSConfig()
	srv.MinVersion = tls.VersionTLS10

	if DefaultTLSConfig().MinVersion != tls.VersionTLS12 {
		t.Error("DefaultTLSConfig shares state with ServerTLSConfig")
	}
}

func TestSecureHTTPClient(t *testing.T) {
	timeout := 15 * time.Second
	client := SecureHTTPClient(timeout)
	if client.Timeout != timeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, timeout)
	}

	tr := SecureTransport()
	if tr.TLSClientConfig == nil || tr.TLSClientConfig.MinVersion != tls.VersionTLS12 {
		t.Error("transport is missing the hardened TLS config")
	}
	if !tr.ForceAttemptHTTP2 {
		t.Error("ForceAttemptHTTP2 should be true")
	}
}
