package player

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

const (
	opusSampleRate = 48000
	// opusMaxFrame is 120 ms at 48 kHz, the longest Opus packet.
	opusMaxFrame = 5760
)

var (
	errOggCodec   = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errOpusHead   = errors.New("opus: invalid identification header")
	errVorbisHead = errors.New("vorbis: invalid identification header")
)

// oggCodec decodes the packets of one Ogg logical stream.
type oggCodec interface {
	sampleRate() int
	channels() int
	// preSkip is the number of leading frames that are encoder delay.
	preSkip() int
	needsHeader() bool
	header(packet []byte) error
	// decode returns interleaved samples. The slice is only valid until
	// the next call.
	decode(packet []byte) ([]float32, error)
	reset()
}

// newOggCodec picks a codec from the identification packet.
func newOggCodec(first []byte) (oggCodec, error) {
	switch {
	case len(first) >= 8 && string(first[:8]) == "OpusHead":
		return newOpusCodec(first)
	case vorbis.IsHeader(first) && first[0] == 1:
		return newVorbisCodec(first)
	}
	return nil, errOggCodec
}

type opusCodec struct {
	dec    *opus.Decoder
	ch     int
	skip   int
	tagged bool // OpusTags seen
	buf    []float32
}

// parseOpusHead returns the channel count and pre-skip of an OpusHead
// packet. Only mono and stereo streams are supported.
func parseOpusHead(packet []byte) (channels, preSkip int, err error) {
	if len(packet) < 19 {
		return 0, 0, errOpusHead
	}
	if packet[8]>>4 != 0 {
		return 0, 0, fmt.Errorf("opus: unsupported version %d", packet[8])
	}
	channels = int(packet[9])
	if channels < 1 || channels > 2 || packet[18] != 0 {
		return 0, 0, fmt.Errorf("opus: unsupported channel layout (%d channels, family %d)", channels, packet[18])
	}
	return channels, int(binary.LittleEndian.Uint16(packet[10:12])), nil
}

func newOpusCodec(head []byte) (*opusCodec, error) {
	ch, skip, err := parseOpusHead(head)
	if err != nil {
		return nil, err
	}
	dec, err := opus.NewDecoder(opusSampleRate, ch)
	if err != nil {
		return nil, fmt.Errorf("opus: %w", err)
	}
	return &opusCodec{dec: dec, ch: ch, skip: skip, buf: make([]float32, opusMaxFrame*ch)}, nil
}

func (c *opusCodec) sampleRate() int   { return opusSampleRate }
func (c *opusCodec) channels() int     { return c.ch }
func (c *opusCodec) preSkip() int      { return c.skip }
func (c *opusCodec) needsHeader() bool { return !c.tagged }

func (c *opusCodec) header(packet []byte) error {
	if len(packet) < 8 || string(packet[:8]) != "OpusTags" {
		return errors.New("opus: missing comment header")
	}
	c.tagged = true
	return nil
}

func (c *opusCodec) decode(packet []byte) ([]float32, error) {
	n, err := c.dec.DecodeFloat32(packet, c.buf)
	if err != nil {
		return nil, err
	}
	return c.buf[:n*c.ch], nil
}

// reset is a no-op; the decoder conceals the discontinuity itself.
func (c *opusCodec) reset() {}

type vorbisCodec struct {
	dec *vorbis.Decoder
}

func newVorbisCodec(ident []byte) (*vorbisCodec, error) {
	dec := &vorbis.Decoder{}
	if err := dec.ReadHeader(ident); err != nil {
		return nil, fmt.Errorf("%w: %w", errVorbisHead, err)
	}
	if dec.Channels() < 1 {
		return nil, errVorbisHead
	}
	return &vorbisCodec{dec: dec}, nil
}

func (c *vorbisCodec) sampleRate() int   { return c.dec.SampleRate() }
func (c *vorbisCodec) channels() int     { return c.dec.Channels() }
func (c *vorbisCodec) preSkip() int      { return 0 }
func (c *vorbisCodec) needsHeader() bool { return !c.dec.HeadersRead() }

// header takes the comment and setup packets.
func (c *vorbisCodec) header(packet []byte) error {
	return c.dec.ReadHeader(packet)
}

func (c *vorbisCodec) decode(packet []byte) ([]float32, error) {
	return c.dec.Decode(packet)
}

func (c *vorbisCodec) reset() { c.dec.Clear() }
