package ftp

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Request is one control-channel command. Each variant renders to exactly
// one CRLF-terminated line.
type Request interface {
	commandLine() string
}

// UserCmd sends the USER command.
type UserCmd struct{ Name string }

func (c UserCmd) commandLine() string { return "USER " + c.Name }

// PassCmd sends the PASS command.
type PassCmd struct{ Password string }

func (c PassCmd) commandLine() string { return "PASS " + c.Password }

// PwdCmd sends PWD.
type PwdCmd struct{}

func (PwdCmd) commandLine() string { return "PWD" }

// PasvCmd sends PASV, requesting a passive-mode data address.
type PasvCmd struct{}

func (PasvCmd) commandLine() string { return "PASV" }

// ListCmd sends LIST, optionally scoped to a directory.
type ListCmd struct{ Dir string }

func (c ListCmd) commandLine() string {
	if c.Dir == "" {
		return "LIST"
	}
	return "LIST " + c.Dir
}

// ProtectionBufferSizeCmd sends PBSZ, required before PROT on an FTPS
// control channel.
type ProtectionBufferSizeCmd struct{ Size uint32 }

func (c ProtectionBufferSizeCmd) commandLine() string {
	return fmt.Sprintf("PBSZ %d", c.Size)
}

// ProtectionLevelCmd sends PROT, selecting the data-channel protection
// level ("P" for private/TLS).
type ProtectionLevelCmd struct{ Level string }

func (c ProtectionLevelCmd) commandLine() string { return "PROT " + c.Level }

// QuitCmd sends QUIT.
type QuitCmd struct{}

func (QuitCmd) commandLine() string { return "QUIT" }

// Encode renders a Request to its wire form, CRLF included.
func Encode(r Request) []byte {
	return []byte(r.commandLine() + "\r\n")
}

// Kind classifies a parsed Response by its 3-digit reply code.
type Kind int

const (
	KindOther Kind = iota
	KindFileStatusOkay               // 150
	KindCommandOkay                  // 200
	KindServiceReady                 // 220
	KindClosingControlConnection     // 221
	KindClosingDataConnection        // 226
	KindEnteringPassiveMode          // 227
	KindUserLoggedIn                 // 230
	KindDirectoryActionOkay          // 250
	KindPathCreated                  // 257
	KindUserNameOkayNeedPassword     // 331
	KindCommandNotImplemented        // 502
	KindBadSequenceOfCommands        // 503
	KindRequestedActionNotTaken      // 550
)

func kindForCode(code int) Kind {
	switch code {
	case 150:
		return KindFileStatusOkay
	case 200:
		return KindCommandOkay
	case 220:
		return KindServiceReady
	case 221:
		return KindClosingControlConnection
	case 226:
		return KindClosingDataConnection
	case 227:
		return KindEnteringPassiveMode
	case 230:
		return KindUserLoggedIn
	case 250:
		return KindDirectoryActionOkay
	case 257:
		return KindPathCreated
	case 331:
		return KindUserNameOkayNeedPassword
	case 502:
		return KindCommandNotImplemented
	case 503:
		return KindBadSequenceOfCommands
	case 550:
		return KindRequestedActionNotTaken
	default:
		return KindOther
	}
}

// Response is one parsed control-channel reply line.
type Response struct {
	Code     int
	Message  string
	Kind     Kind
	PasvAddr *net.TCPAddr // only set when Kind == KindEnteringPassiveMode
}

// ParseResponse parses one reply line (without its trailing CRLF) into a
// Response. A 227 reply additionally requires exactly one balanced
// parenthesized group containing exactly six comma-separated decimal
// fields: four IPv4 octets followed by a port split into high/low bytes.
func ParseResponse(line string) (Response, error) {
	sp := strings.IndexByte(line, ' ')
	var codeStr, message string
	if sp == -1 {
		codeStr, message = line, ""
	} else {
		codeStr, message = line[:sp], line[sp+1:]
	}

	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return Response{}, fmt.Errorf("ftp: invalid reply code %q: %w", codeStr, err)
	}

	resp := Response{Code: code, Message: message, Kind: kindForCode(code)}

	if resp.Kind == KindEnteringPassiveMode {
		addr, err := parsePasv(message)
		if err != nil {
			return Response{}, err
		}
		resp.PasvAddr = addr
	}

	return resp, nil
}

// parsePasv extracts the data-connection address out of a 227 reply
// message such as "Entering Passive Mode (127,0,0,1,200,13).". Exactly one
// balanced parenthesized group must be present, containing exactly six
// comma-separated decimal fields.
func parsePasv(message string) (*net.TCPAddr, error) {
	open := strings.IndexByte(message, '(')
	if open == -1 {
		return nil, fmt.Errorf("ftp: 227 reply missing '(': %q", message)
	}
	if strings.ContainsRune(message[:open], ')') {
		return nil, fmt.Errorf("ftp: 227 reply has ')' before '(': %q", message)
	}
	shut := strings.IndexByte(message[open+1:], ')')
	if shut == -1 {
		return nil, fmt.Errorf("ftp: 227 reply missing ')': %q", message)
	}
	shut += open + 1

	inner := message[open+1 : shut]

	// Reject a second balanced group; the format allows exactly one.
	if strings.ContainsAny(message[shut+1:], "()") || strings.ContainsRune(inner, '(') {
		return nil, fmt.Errorf("ftp: 227 reply has more than one parenthesized group: %q", message)
	}

	fields := strings.Split(inner, ",")
	if len(fields) != 6 {
		return nil, fmt.Errorf("ftp: 227 reply expected 6 fields, got %d: %q", len(fields), inner)
	}

	octets := make([]byte, 4)
	for i := 0; i < 4; i++ {
		v, err := strconv.ParseUint(strings.TrimSpace(fields[i]), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("ftp: 227 reply invalid octet %q: %w", fields[i], err)
		}
		octets[i] = byte(v)
	}

	portHi, err := strconv.ParseUint(strings.TrimSpace(fields[4]), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("ftp: 227 reply invalid port-hi %q: %w", fields[4], err)
	}
	portLo, err := strconv.ParseUint(strings.TrimSpace(fields[5]), 10, 16)
	if err != nil {
		return nil, fmt.Errorf("ftp: 227 reply invalid port-lo %q: %w", fields[5], err)
	}

	port := int(portHi)*256 + int(portLo)
	ip := net.IPv4(octets[0], octets[1], octets[2], octets[3])
	return &net.TCPAddr{IP: ip, Port: port}, nil
}
