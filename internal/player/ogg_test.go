package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSerial = 0x1234

// oggPageBytes builds a page. Lacing values are explicit so tests can
// split packets across pages.
func oggPageBytes(serial uint32, granule int64, segments, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString("OggS")
	b.WriteByte(0) // version
	b.WriteByte(0) // flags
	_ = binary.Write(&b, binary.LittleEndian, granule)
	_ = binary.Write(&b, binary.LittleEndian, serial)
	_ = binary.Write(&b, binary.LittleEndian, uint32(0)) // sequence
	_ = binary.Write(&b, binary.LittleEndian, uint32(0)) // checksum
	b.WriteByte(byte(len(segments)))
	b.Write(segments)
	b.Write(body)
	return b.Bytes()
}

// lacing returns the segment table and body for whole packets.
func lacing(packets ...[]byte) (segments, body []byte) {
	for _, p := range packets {
		n := len(p)
		for n >= 255 {
			segments = append(segments, 255)
			n -= 255
		}
		segments = append(segments, byte(n))
		body = append(body, p...)
	}
	return segments, body
}

func filled(n int, v byte) []byte {
	return bytes.Repeat([]byte{v}, n)
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

func TestOggPackets_JoinsAcrossPages(t *testing.T) {
	a, b, c := filled(10, 'a'), filled(275, 'b'), filled(300, 'c')

	var data []byte
	// Page 1: a, then the first 255 bytes of b.
	data = append(data, oggPageBytes(testSerial, -1, []byte{10, 255}, append(append([]byte{}, a...), b[:255]...))...)
	// A page of another logical stream in between.
	segs, body := lacing(filled(5, 'x'))
	data = append(data, oggPageBytes(99, 0, segs, body)...)
	// Page 2: the rest of b, then c.
	data = append(data, oggPageBytes(testSerial, 100, []byte{20, 255, 45}, append(append([]byte{}, b[255:]...), c...))...)

	p := &oggPackets{r: bytes.NewReader(data)}
	var got [][]byte
	for {
		pkt, err := p.next()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, pkt)
	}

	require.Len(t, got, 3)
	assert.Equal(t, a, got[0])
	assert.Equal(t, b, got[1])
	assert.Equal(t, c, got[2])
	assert.Equal(t, uint32(testSerial), p.serial)
}

func TestReadOggPage_Invalid(t *testing.T) {
	_, err := readOggPage(bytes.NewReader(append([]byte("RIFF"), make([]byte, 30)...)))
	assert.ErrorIs(t, err, errOggCapture)

	page := oggPageBytes(testSerial, 0, []byte{1}, []byte{0})
	page[4] = 1
	_, err = readOggPage(bytes.NewReader(page))
	assert.ErrorIs(t, err, errOggVersion)
}

func TestOggLastGranule(t *testing.T) {
	var data []byte
	for _, g := range []int64{0, 1000, 2000} {
		segs, body := lacing(filled(50, 'p'))
		data = append(data, oggPageBytes(testSerial, g, segs, body)...)
	}
	segs, body := lacing(filled(8, 'q'))
	data = append(data, oggPageBytes(7, 9999, segs, body)...)

	g, err := oggLastGranule(bytes.NewReader(data), testSerial)

	require.NoError(t, err)
	assert.Equal(t, int64(2000), g)
}

func TestOggLastGranule_NoPages(t *testing.T) {
	_, err := oggLastGranule(bytes.NewReader([]byte("not an ogg file at all")), testSerial)
	assert.Error(t, err)
}

func opusHead(channels byte, preSkip uint16, family byte) []byte {
	h := []byte("OpusHead")
	h = append(h, 1, channels)
	h = binary.LittleEndian.AppendUint16(h, preSkip)
	h = binary.LittleEndian.AppendUint32(h, 44100)
	h = append(h, 0, 0, family)
	return h
}

func TestParseOpusHead(t *testing.T) {
	ch, skip, err := parseOpusHead(opusHead(2, 312, 0))
	require.NoError(t, err)
	assert.Equal(t, 2, ch)
	assert.Equal(t, 312, skip)

	_, _, err = parseOpusHead(opusHead(6, 312, 1))
	assert.Error(t, err, "surround layouts are rejected")

	_, _, err = parseOpusHead([]byte("OpusHead\x01\x02"))
	assert.ErrorIs(t, err, errOpusHead)
}

func TestNewOggCodec_Rejects(t *testing.T) {
	_, err := newOggCodec([]byte("\x80theora"))
	assert.ErrorIs(t, err, errOggCodec)

	_, err = newOggCodec([]byte("\x01vorbis\x00"))
	assert.ErrorIs(t, err, errVorbisHead)
}

func TestDecodeOgg_UnknownCodec(t *testing.T) {
	segs, body := lacing([]byte("\x80theora-header"))
	data := oggPageBytes(testSerial, 0, segs, body)

	_, _, err := decodeOgg(nopSeekCloser{bytes.NewReader(data)})

	assert.ErrorIs(t, err, errOggCodec)
}

// rampCodec decodes each packet byte into one stereo frame of value b.
type rampCodec struct {
	skip   int
	resets int
}

func (c *rampCodec) sampleRate() int     { return 48000 }
func (c *rampCodec) channels() int       { return 2 }
func (c *rampCodec) preSkip() int        { return c.skip }
func (c *rampCodec) needsHeader() bool   { return false }
func (c *rampCodec) header([]byte) error { return nil }
func (c *rampCodec) reset()              { c.resets++ }

func (c *rampCodec) decode(packet []byte) ([]float32, error) {
	if len(packet) == 0 {
		return nil, errors.New("empty packet")
	}
	out := make([]float32, 0, 2*len(packet))
	for _, b := range packet {
		out = append(out, float32(b), -float32(b))
	}
	return out, nil
}

func newRampStream(t *testing.T, skip int) (*oggStream, *rampCodec) {
	t.Helper()
	segs, body := lacing([]byte{1, 2, 3}, []byte{}, []byte{4, 5})
	rs := nopSeekCloser{bytes.NewReader(oggPageBytes(testSerial, 5, segs, body))}
	codec := &rampCodec{skip: skip}
	return &oggStream{
		rs:      rs,
		packets: &oggPackets{r: rs},
		codec:   codec,
		skip:    skip,
		total:   5 - skip,
	}, codec
}

func drain(s *oggStream) []float64 {
	var left []float64
	buf := make([][2]float64, 2)
	for {
		n, ok := s.Stream(buf)
		for _, f := range buf[:n] {
			left = append(left, f[0])
		}
		if !ok {
			return left
		}
	}
}

func TestOggStream_SkipsLeadingFrames(t *testing.T) {
	s, _ := newRampStream(t, 2)

	assert.Equal(t, []float64{3, 4, 5}, drain(s))
	assert.Equal(t, 3, s.Position())
	assert.Equal(t, 3, s.Len())
	assert.NoError(t, s.Err())
}

func TestOggStream_StereoChannels(t *testing.T) {
	s, _ := newRampStream(t, 0)
	buf := make([][2]float64, 1)

	n, ok := s.Stream(buf)

	require.True(t, ok)
	require.Equal(t, 1, n)
	assert.Equal(t, [2]float64{1, -1}, buf[0])
}

func TestOggStream_Seek(t *testing.T) {
	s, codec := newRampStream(t, 0)
	_ = drain(s)

	require.NoError(t, s.Seek(3))

	assert.Equal(t, 3, s.Position())
	assert.Equal(t, 1, codec.resets)
	assert.Equal(t, []float64{4, 5}, drain(s))

	require.NoError(t, s.Seek(99))
	assert.Equal(t, 5, s.Position(), "seek is clamped to the length")
}
