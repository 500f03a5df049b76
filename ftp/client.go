package ftp

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/mpapierski/bambu-go/internal/tlsconn"
)

// ControlPort is the implicit-TLS FTP control port these printers listen
// on.
const ControlPort uint16 = 990

// Client drives the control-channel state machine: connect, authenticate,
// list a directory, quit. Every state transition blocks on exactly one
// control-channel round trip; there is no pipelining.
type Client struct {
	host string
	conn *tls.Conn
	r    *bufio.Reader
}

// Connect dials the FTPS control channel and reads the greeting banner.
func Connect(ctx context.Context, host string) (*Client, error) {
	conn, err := tlsconn.Dial(ctx, host, ControlPort)
	if err != nil {
		return nil, fmt.Errorf("ftp: connect: %w", err)
	}

	c := &Client{host: host, conn: conn, r: bufio.NewReader(conn)}

	resp, err := c.readResponse()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("ftp: reading greeting: %w", err)
	}
	if resp.Kind != KindServiceReady {
		conn.Close()
		return nil, fmt.Errorf("ftp: %w: expected 220 greeting, got %d %s", ErrUnexpectedCode, resp.Code, resp.Message)
	}

	return c, nil
}

// ErrUnexpectedCode is wrapped into every error raised when a reply's code
// did not match what the current state expected.
var ErrUnexpectedCode = fmt.Errorf("unexpected reply code")

func (c *Client) send(r Request) error {
	_, err := c.conn.Write(Encode(r))
	return err
}

func (c *Client) readResponse() (Response, error) {
	line, err := c.r.ReadString('\n')
	if err != nil {
		return Response{}, err
	}
	line = strings.TrimRight(line, "\r\n")
	return ParseResponse(line)
}

func (c *Client) roundTrip(r Request, want Kind) (Response, error) {
	if err := c.send(r); err != nil {
		return Response{}, fmt.Errorf("ftp: sending command: %w", err)
	}
	resp, err := c.readResponse()
	if err != nil {
		return Response{}, fmt.Errorf("ftp: reading reply: %w", err)
	}
	if resp.Kind != want {
		return Response{}, fmt.Errorf("ftp: %w: expected reply kind %d, got %d %s", ErrUnexpectedCode, want, resp.Code, resp.Message)
	}
	return resp, nil
}

// Authenticate drives User -> Pass -> Pbsz -> Prot, the fixed login
// sequence every FTPS session needs before listing is possible.
func (c *Client) Authenticate(ctx context.Context, user, pass string) error {
	if _, err := c.roundTrip(UserCmd{Name: user}, KindUserNameOkayNeedPassword); err != nil {
		return err
	}
	if _, err := c.roundTrip(PassCmd{Password: pass}, KindUserLoggedIn); err != nil {
		return err
	}
	if _, err := c.roundTrip(ProtectionBufferSizeCmd{Size: 0}, KindCommandOkay); err != nil {
		return err
	}
	if _, err := c.roundTrip(ProtectionLevelCmd{Level: "P"}, KindCommandOkay); err != nil {
		return err
	}
	return nil
}

// Pwd sends PWD and returns the message text of the server's 257 reply,
// which carries the current directory (for example `"/" is current
// directory.`); the path is not extracted from it.
func (c *Client) Pwd(ctx context.Context) (string, error) {
	resp, err := c.roundTrip(PwdCmd{}, KindPathCreated)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// List opens a passive-mode data connection and returns every parsed entry
// for dir.
func (c *Client) List(ctx context.Context, dir string) ([]FileMetadata, error) {
	if _, err := c.Pwd(ctx); err != nil {
		return nil, err
	}

	pasv, err := c.roundTrip(PasvCmd{}, KindEnteringPassiveMode)
	if err != nil {
		return nil, err
	}
	dataAddr := c.fixupPasvAddr(pasv.PasvAddr)

	if err := c.send(ListCmd{Dir: dir}); err != nil {
		return nil, fmt.Errorf("ftp: sending LIST: %w", err)
	}
	listResp, err := c.readResponse()
	if err != nil {
		return nil, fmt.Errorf("ftp: reading LIST reply: %w", err)
	}
	if listResp.Kind != KindFileStatusOkay {
		return nil, fmt.Errorf("ftp: %w: expected 150 before data transfer, got %d %s", ErrUnexpectedCode, listResp.Code, listResp.Message)
	}

	var d net.Dialer
	rawConn, err := d.DialContext(ctx, "tcp", dataAddr.String())
	if err != nil {
		return nil, fmt.Errorf("ftp: dialing data connection: %w", err)
	}

	// PROT P, negotiated in Authenticate, covers the data channel as well
	// as the control channel: wrap it in the same TLS policy.
	dataConn := tls.Client(rawConn, tlsconn.Config(c.host))
	if err := dataConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, fmt.Errorf("ftp: TLS handshake on data connection: %w", err)
	}
	defer dataConn.Close()

	now := time.Now()
	var entries []FileMetadata
	scanner := bufio.NewScanner(dataConn)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		meta, err := ParseFileMetadata(line, now)
		if err != nil {
			return nil, err
		}
		entries = append(entries, meta)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ftp: reading data connection: %w", err)
	}

	return entries, nil
}

// fixupPasvAddr substitutes the control connection's server IP when the
// advertised PASV address is unspecified (0.0.0.0), which happens when the
// printer sits behind NAT and cannot report its own externally reachable
// IP.
func (c *Client) fixupPasvAddr(addr *net.TCPAddr) *net.TCPAddr {
	if addr.IP.IsUnspecified() {
		if tcpAddr, ok := c.conn.RemoteAddr().(*net.TCPAddr); ok {
			return &net.TCPAddr{IP: tcpAddr.IP, Port: addr.Port}
		}
	}
	return addr
}

// Quit sends QUIT and closes the control connection.
func (c *Client) Quit(ctx context.Context) error {
	defer c.conn.Close()

	if err := c.send(QuitCmd{}); err != nil {
		return fmt.Errorf("ftp: sending QUIT: %w", err)
	}
	resp, err := c.readResponse()
	if err != nil {
		return fmt.Errorf("ftp: reading QUIT reply: %w", err)
	}
	// 226 ("closing data connection") is also an acceptable close reply
	// from some servers, in addition to the usual 221.
	if resp.Kind != KindClosingControlConnection && resp.Kind != KindClosingDataConnection {
		return fmt.Errorf("ftp: %w: expected 221 or 226 on QUIT, got %d %s", ErrUnexpectedCode, resp.Code, resp.Message)
	}
	return nil
}
