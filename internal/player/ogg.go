package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
)

const (
	oggHeaderSize = 27
	// oggMaxPage is the largest possible page: header, 255 lacing values
	// and 255 full segments.
	oggMaxPage = oggHeaderSize + 255 + 255*255
)

var (
	errOggCapture = errors.New("ogg: invalid capture pattern")
	errOggVersion = errors.New("ogg: unsupported version")
)

// oggPage is one parsed Ogg page.
type oggPage struct {
	granule  int64
	serial   uint32
	segments []byte
	body     []byte
}

// readOggPage reads the next page from r.
func readOggPage(r io.Reader) (oggPage, error) {
	var hdr [oggHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return oggPage{}, err
	}
	if string(hdr[0:4]) != "OggS" {
		return oggPage{}, errOggCapture
	}
	if hdr[4] != 0 {
		return oggPage{}, errOggVersion
	}

	p := oggPage{
		granule:  int64(binary.LittleEndian.Uint64(hdr[6:14])), //nolint:gosec // granule is a signed field
		serial:   binary.LittleEndian.Uint32(hdr[14:18]),
		segments: make([]byte, hdr[26]),
	}
	if _, err := io.ReadFull(r, p.segments); err != nil {
		return oggPage{}, err
	}
	size := 0
	for _, s := range p.segments {
		size += int(s)
	}
	p.body = make([]byte, size)
	if _, err := io.ReadFull(r, p.body); err != nil {
		return oggPage{}, err
	}
	return p, nil
}

// oggPackets reassembles packets of the first logical stream in r. Pages
// of other streams are skipped.
type oggPackets struct {
	r       io.Reader
	serial  uint32
	locked  bool
	queue   [][]byte
	partial []byte
}

func (p *oggPackets) next() ([]byte, error) {
	for len(p.queue) == 0 {
		page, err := readOggPage(p.r)
		if err != nil {
			return nil, err
		}
		if !p.locked {
			p.serial, p.locked = page.serial, true
		}
		if page.serial != p.serial {
			continue
		}
		p.split(page)
	}
	pkt := p.queue[0]
	p.queue = p.queue[1:]
	return pkt, nil
}

// split appends the packets completed by page. A final lacing value of 255
// means the last packet continues on the next page.
func (p *oggPackets) split(page oggPage) {
	off := 0
	for _, seg := range page.segments {
		n := int(seg)
		p.partial = append(p.partial, page.body[off:off+n]...)
		off += n
		if seg < 255 {
			p.queue = append(p.queue, p.partial)
			p.partial = nil
		}
	}
}

func (p *oggPackets) reset() {
	p.queue = nil
	p.partial = nil
}

// oggLastGranule returns the granule position of the last page of stream
// serial, looking only at the tail of rs.
func oggLastGranule(rs io.ReadSeeker, serial uint32) (int64, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	start := max(size-oggMaxPage, 0)
	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return 0, err
	}
	tail := make([]byte, size-start)
	if _, err := io.ReadFull(rs, tail); err != nil {
		return 0, err
	}

	for end := len(tail); end > 0; {
		i := bytes.LastIndex(tail[:end], []byte("OggS"))
		if i < 0 {
			break
		}
		end = i
		if len(tail)-i < oggHeaderSize || tail[i+4] != 0 {
			continue
		}
		granule := int64(binary.LittleEndian.Uint64(tail[i+6 : i+14])) //nolint:gosec // granule is a signed field
		if binary.LittleEndian.Uint32(tail[i+14:i+18]) == serial && granule >= 0 {
			return granule, nil
		}
	}
	return 0, errors.New("ogg: no final page")
}

// decodeOgg opens an Ogg Opus or Ogg Vorbis stream.
func decodeOgg(rs io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	packets := &oggPackets{r: rs}
	first, err := packets.next()
	if err != nil {
		return nil, beep.Format{}, err
	}
	codec, err := newOggCodec(first)
	if err != nil {
		return nil, beep.Format{}, err
	}
	for codec.needsHeader() {
		pkt, err := packets.next()
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ogg headers: %w", err)
		}
		if err := codec.header(pkt); err != nil {
			return nil, beep.Format{}, err
		}
	}

	dataStart, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, beep.Format{}, err
	}

	s := &oggStream{
		rs:        rs,
		packets:   packets,
		codec:     codec,
		dataStart: dataStart,
		skip:      codec.preSkip(),
	}
	// Length is best effort; a stream without a readable tail still plays.
	if granule, err := oggLastGranule(rs, packets.serial); err == nil {
		s.total = max(int(granule)-codec.preSkip(), 0)
	}
	if _, err := rs.Seek(dataStart, io.SeekStart); err != nil {
		return nil, beep.Format{}, err
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.sampleRate()),
		NumChannels: min(codec.channels(), 2),
		Precision:   2,
	}
	return s, format, nil
}

// oggStream implements beep.StreamSeekCloser over an oggCodec. Streams with
// more than two channels are reduced to the first two.
type oggStream struct {
	rs        io.ReadSeekCloser
	packets   *oggPackets
	codec     oggCodec
	dataStart int64

	pcm    []float32 // interleaved frames of the last packet
	pcmPos int       // next frame in pcm
	skip   int       // frames still to drop before output
	pos    int
	total  int
	err    error
}

func (s *oggStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}
	ch := s.codec.channels()

	for n < len(samples) {
		if s.pcmPos >= len(s.pcm)/ch {
			pkt, err := s.packets.next()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
					s.err = err
				}
				return n, n > 0
			}
			pcm, err := s.codec.decode(pkt)
			if err != nil {
				continue
			}
			s.pcm, s.pcmPos = pcm, 0
			if s.skip > 0 {
				drop := min(s.skip, len(pcm)/ch)
				s.pcmPos = drop
				s.skip -= drop
			}
			continue
		}

		i := s.pcmPos * ch
		samples[n][0] = float64(s.pcm[i])
		samples[n][1] = samples[n][0]
		if ch > 1 {
			samples[n][1] = float64(s.pcm[i+1])
		}
		s.pcmPos++
		s.pos++
		n++
	}
	return n, true
}

func (s *oggStream) Err() error { return s.err }

func (s *oggStream) Len() int { return s.total }

func (s *oggStream) Position() int { return s.pos }

// Seek restarts decoding from the first audio page and drops frames up to
// p.
func (s *oggStream) Seek(p int) error {
	p = max(p, 0)
	if s.total > 0 {
		p = min(p, s.total)
	}
	if _, err := s.rs.Seek(s.dataStart, io.SeekStart); err != nil {
		return err
	}
	s.packets.reset()
	s.codec.reset()
	s.pcm, s.pcmPos = nil, 0
	s.skip = s.codec.preSkip() + p
	s.pos = p
	s.err = nil
	return nil
}

func (s *oggStream) Close() error {
	return s.rs.Close()
}
