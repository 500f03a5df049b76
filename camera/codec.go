package camera

import (
	"bytes"
	"encoding/binary"
)

// DefaultUsername is the fixed account name the camera channel authenticates
// as; every printer accepts "bblp" regardless of the MQTT username.
const DefaultUsername = "bblp"

const (
	authMagic1 uint32 = 0x40
	authMagic2 uint32 = 0x3000
	authLen           = 80
	authUserLen       = 32
	authCodeLen       = 32
)

var (
	jpegStartMarker = []byte{0xff, 0xd8, 0xff, 0xe0}
	jpegEndMarker   = []byte{0xff, 0xd9}
)

// Packet is either an Auth handshake packet or a complete JPEG Frame.
type Packet interface {
	isPacket()
}

// Auth is the fixed-size handshake packet sent immediately after the TLS
// connection is established, carrying the camera username and access code.
type Auth struct {
	Username   string
	AccessCode string
}

func (Auth) isPacket() {}

// Frame is one complete JPEG image, markers included.
type Frame []byte

func (Frame) isPacket() {}

// EncodeAuth renders a into the fixed 80-byte wire layout: two little-endian
// u32 magic fields (0x40, 0x3000), 8 zero bytes, then the username and
// access code each zero-padded to 32 bytes.
func EncodeAuth(a Auth) []byte {
	buf := make([]byte, authLen)
	binary.LittleEndian.PutUint32(buf[0:4], authMagic1)
	binary.LittleEndian.PutUint32(buf[4:8], authMagic2)
	// buf[8:16] stays zero.
	copy(buf[16:16+authUserLen], a.Username)
	copy(buf[16+authUserLen:16+authUserLen+authCodeLen], a.AccessCode)
	return buf
}

// looksLikeAuth reports whether buf begins with the two magic u32 fields and
// the following 8 zero bytes that mark an Auth packet.
func looksLikeAuth(buf []byte) bool {
	if len(buf) < 16 {
		return false
	}
	if binary.LittleEndian.Uint32(buf[0:4]) != authMagic1 {
		return false
	}
	if binary.LittleEndian.Uint32(buf[4:8]) != authMagic2 {
		return false
	}
	for _, b := range buf[8:16] {
		if b != 0 {
			return false
		}
	}
	return true
}

// decodeAuth extracts the Auth packet from the head of buf once looksLikeAuth
// has confirmed the magic prefix, trimming the zero padding off the username
// and access code fields.
func decodeAuth(buf []byte) Auth {
	user := bytes.TrimRight(buf[16:16+authUserLen], "\x00")
	code := bytes.TrimRight(buf[16+authUserLen:16+authUserLen+authCodeLen], "\x00")
	return Auth{Username: string(user), AccessCode: string(code)}
}

// Decoder accumulates bytes read off the wire and pulls out complete Packets.
// It never errors: incomplete data simply leaves Next reporting nothing
// decoded yet, matching the frame-or-keep-buffering contract a stream reader
// expects.
type Decoder struct {
	buf []byte
}

// Feed appends newly read bytes to the decode buffer.
func (d *Decoder) Feed(p []byte) {
	d.buf = append(d.buf, p...)
}

// Next attempts to decode one Packet out of the buffered bytes. It returns
// (nil, false) when more data is required. An Auth packet, if the buffered
// prefix matches its fixed layout, is always recognized before any JPEG
// framing is attempted.
func (d *Decoder) Next() (Packet, bool) {
	if looksLikeAuth(d.buf) {
		if len(d.buf) < authLen {
			return nil, false
		}
		pkt := decodeAuth(d.buf[:authLen])
		d.buf = d.buf[authLen:]
		return pkt, true
	}

	startIdx := bytes.Index(d.buf, jpegStartMarker)
	if startIdx == -1 {
		return nil, false
	}

	searchFrom := startIdx + len(jpegStartMarker)
	endRel := bytes.Index(d.buf[searchFrom:], jpegEndMarker)
	if endRel == -1 {
		return nil, false
	}
	endIdx := searchFrom + endRel + len(jpegEndMarker)

	frame := make([]byte, endIdx-startIdx)
	copy(frame, d.buf[startIdx:endIdx])
	d.buf = d.buf[endIdx:]
	return Frame(frame), true
}
