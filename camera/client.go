package camera

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/mpapierski/bambu-go/internal/tlsconn"
)

// DefaultPort is the camera channel's listening port.
const DefaultPort uint16 = 6000

const readChunk = 4096

// Client dials a printer's camera channel and authenticates the stream.
// A Client is single-use: call ConnectAndStream once to obtain a Stream.
type Client struct {
	host       string
	accessCode string
	port       uint16
}

// NewClient builds a Client for the printer at host, authenticating with
// accessCode. port is the camera channel port; pass DefaultPort unless the
// printer has been configured otherwise.
func NewClient(host, accessCode string, port uint16) *Client {
	return &Client{host: host, accessCode: accessCode, port: port}
}

// Stream is a live, authenticated camera connection yielding one decoded
// JPEG frame per Next call.
type Stream struct {
	conn    *tls.Conn
	decoder Decoder
}

// ConnectAndStream dials the camera channel, completes the TLS handshake,
// and sends the Auth packet. The returned Stream is ready to have Next
// called on it.
func (c *Client) ConnectAndStream(ctx context.Context) (*Stream, error) {
	conn, err := tlsconn.Dial(ctx, c.host, c.port)
	if err != nil {
		return nil, fmt.Errorf("camera: connect: %w", err)
	}

	auth := EncodeAuth(Auth{Username: DefaultUsername, AccessCode: c.accessCode})
	if _, err := conn.Write(auth); err != nil {
		conn.Close()
		return nil, fmt.Errorf("camera: send auth packet: %w", err)
	}

	slog.Debug("camera stream authenticated", "host", c.host)
	return &Stream{conn: conn}, nil
}

// Next blocks until one complete JPEG frame has been read or the connection
// fails. ctx is checked before each read of the connection; a read already
// in progress is not interrupted by canceling ctx. Stray Auth-shaped bytes surfacing
// mid-stream (the printer occasionally echoes the handshake) are silently
// skipped; only Frame packets are returned to the caller.
func (s *Stream) Next(ctx context.Context) ([]byte, error) {
	for {
		if pkt, ok := s.decoder.Next(); ok {
			if frame, ok := pkt.(Frame); ok {
				return []byte(frame), nil
			}
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}

		buf := make([]byte, readChunk)
		n, err := s.conn.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("camera: read: %w", err)
		}
		s.decoder.Feed(buf[:n])
	}
}

// Close terminates the underlying connection.
func (s *Stream) Close() error {
	return s.conn.Close()
}
