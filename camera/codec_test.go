package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeAuthRoundTrip(t *testing.T) {
	a := Auth{Username: "bblp", AccessCode: "12345678"}
	wire := EncodeAuth(a)
	require.Len(t, wire, authLen)

	var d Decoder
	d.Feed(wire)

	pkt, ok := d.Next()
	require.True(t, ok)
	got, ok := pkt.(Auth)
	require.True(t, ok)
	assert.Equal(t, a, got)
}

func TestDecodeCompleteFrame(t *testing.T) {
	var d Decoder
	d.Feed([]byte("\xff\xd8\xff\xe0hello world\xff\xd9"))

	pkt, ok := d.Next()
	require.True(t, ok)
	frame, ok := pkt.(Frame)
	require.True(t, ok)
	assert.Equal(t, []byte("\xff\xd8\xff\xe0hello world\xff\xd9"), []byte(frame))

	_, ok = d.Next()
	assert.False(t, ok)
}

func TestDecodePartialFrameWaits(t *testing.T) {
	var d Decoder
	d.Feed([]byte("\xff\xd8\xff\xe0hello"))

	_, ok := d.Next()
	assert.False(t, ok)
}

func TestDecodeMultipleFrames(t *testing.T) {
	var d Decoder
	d.Feed([]byte("\xff\xd8\xff\xe0frame1\xff\xd9\xff\xd8\xff\xe0frame2\xff\xd9"))

	pkt1, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, []byte("\xff\xd8\xff\xe0frame1\xff\xd9"), []byte(pkt1.(Frame)))

	pkt2, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, []byte("\xff\xd8\xff\xe0frame2\xff\xd9"), []byte(pkt2.(Frame)))

	_, ok = d.Next()
	assert.False(t, ok)
}

func TestDecodeNoStartMarker(t *testing.T) {
	var d Decoder
	d.Feed([]byte("hello world\xff\xd9"))

	_, ok := d.Next()
	assert.False(t, ok)
}

func TestDecodeNoEndMarker(t *testing.T) {
	var d Decoder
	d.Feed([]byte("\xff\xd8\xff\xe0hello world"))

	_, ok := d.Next()
	assert.False(t, ok)
}

// A start marker followed by bytes that are not the end marker must not be
// mistaken for one; this mirrors a regression the original codec hit on a
// stream containing an AVI-like chunk header right after the JPEG start.
func TestDecodeNoFalsePositiveOnSimilarBytes(t *testing.T) {
	var d Decoder
	d.Feed([]byte("\xff\xd8\xff\xe0\x00!AVI1\x00\x01\x01\x01\x00x\x00x\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\x00\xff\xdb"))

	_, ok := d.Next()
	assert.False(t, ok)
}

func TestFirstEndMarkerIsAuthoritative(t *testing.T) {
	// Two candidate end markers after one start: the decoder must stop at
	// the first, even though it leaves a dangling FF D9 in the remainder.
	var d Decoder
	d.Feed([]byte("\xff\xd8\xff\xe0payload\xff\xd9trailing\xff\xd9"))

	pkt, ok := d.Next()
	require.True(t, ok)
	assert.Equal(t, []byte("\xff\xd8\xff\xe0payload\xff\xd9"), []byte(pkt.(Frame)))
}

func TestAuthTakesPrecedenceOverJPEGScan(t *testing.T) {
	a := Auth{Username: "bblp", AccessCode: "code"}
	wire := EncodeAuth(a)
	// Smuggle JPEG-looking bytes inside the zero padding; Auth detection
	// must still win since it only inspects the fixed 16-byte magic prefix.
	copy(wire[40:], []byte{0xff, 0xd8, 0xff, 0xe0})

	var d Decoder
	d.Feed(wire)

	pkt, ok := d.Next()
	require.True(t, ok)
	_, isAuth := pkt.(Auth)
	assert.True(t, isAuth)
}
