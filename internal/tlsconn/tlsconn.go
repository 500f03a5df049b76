// Package tlsconn holds the single TLS dial policy shared by the camera,
// ftp and mqtt clients: these printers present a self-signed certificate
// bound to their bare IP address, so every connection disables peer
// verification and addresses the server by IP, not DNS name.
package tlsconn

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
)

// Config builds the *tls.Config every protocol client dials with. Peer
// verification is disabled: InsecureSkipVerify turns off the standard chain
// check, and an explicit VerifyPeerCertificate override that accepts every
// chain spells the trust decision out in the config itself.
func Config(host string) *tls.Config {
	return &tls.Config{
		InsecureSkipVerify: true,
		ServerName:         host,
		VerifyPeerCertificate: func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
			return nil
		},
	}
}

// Dial opens a TCP connection to host:port and performs a TLS handshake
// using Config(host). Callers own the returned connection and must Close it.
func Dial(ctx context.Context, host string, port uint16) (*tls.Conn, error) {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))

	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tlsconn: dial %s: %w", addr, err)
	}

	conn := tls.Client(raw, Config(host))
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, fmt.Errorf("tlsconn: handshake %s: %w", addr, err)
	}

	return conn, nil
}
