package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// alacFrameSize is the ALAC default frames per packet.
const alacFrameSize = 4096

// m4aStream decodes the audio track of an MP4/M4A container, the format
// video sites serve for audio-only requests.
type m4aStream struct {
	container *m4a.Reader
	closer    io.Closer
	codec     m4a.CodecType
	channels  int
	bits      int
	total     int
	next      int
	err       error

	aac   *faad2.Decoder
	alac  *alac.Alac
	frame [][2]float64
	pos   int
}

// decodeM4A opens an AAC or ALAC track. The container index lives anywhere
// in the file, so rs must be seekable.
func decodeM4A(rs io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, error) {
	container, err := m4a.Open(rs)
	if err != nil {
		return nil, beep.Format{}, err
	}

	rate := container.SampleRate()
	s := &m4aStream{
		container: container,
		closer:    rs,
		codec:     container.Codec(),
		channels:  int(container.Channels()),
		bits:      int(container.SampleSize()),
		total:     int(container.Duration().Seconds() * float64(rate)),
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   2,
	}

	switch s.codec {
	case m4a.CodecAAC:
		ctx := context.Background()
		dec, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, err
		}
		if err := dec.Init(ctx, container.CodecConfig()); err != nil {
			dec.Close(ctx)
			return nil, beep.Format{}, err
		}
		s.aac = dec
	case m4a.CodecALAC:
		if s.bits == 24 {
			format.Precision = 3
		}
		dec, err := alac.NewWithConfig(alac.Config{
			SampleRate:  int(rate),
			SampleSize:  s.bits,
			NumChannels: s.channels,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, err
		}
		s.alac = dec
	default:
		return nil, beep.Format{}, errors.New("m4a: unsupported codec")
	}

	return s, format, nil
}

// Stream fills samples, decoding one container sample at a time.
func (s *m4aStream) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if s.pos < len(s.frame) {
			c := copy(samples[n:], s.frame[s.pos:])
			s.pos += c
			n += c
			continue
		}
		if s.next >= s.container.SampleCount() {
			break
		}
		if err := s.decodeNext(); err != nil {
			s.err = err
			break
		}
	}
	return n, n > 0
}

func (s *m4aStream) decodeNext() error {
	data, err := s.container.ReadSample(s.next)
	if err != nil {
		return err
	}
	s.next++
	s.pos = 0

	switch {
	case s.aac != nil:
		pcm, err := s.aac.Decode(context.Background(), data)
		if err != nil {
			return fmt.Errorf("aac: %w", err)
		}
		s.frame = int16Frames(pcm, s.channels)
	case s.alac != nil:
		raw := s.alac.Decode(data)
		if s.bits == 24 {
			s.frame = pcm24Frames(raw, s.channels)
		} else {
			s.frame = pcm16Frames(raw, s.channels)
		}
	}
	return nil
}

func (s *m4aStream) Err() error { return s.err }

func (s *m4aStream) Len() int { return s.total }

func (s *m4aStream) Position() int {
	at := s.container.SampleTime(s.next)
	return int(at.Seconds() * float64(s.container.SampleRate()))
}

func (s *m4aStream) Seek(p int) error {
	p = min(max(p, 0), s.total)
	at := time.Duration(float64(p) / float64(s.container.SampleRate()) * float64(time.Second))
	s.next = s.container.SeekToTime(at)
	s.frame = nil
	s.pos = 0
	s.err = nil
	return nil
}

func (s *m4aStream) Close() error {
	if s.aac != nil {
		s.aac.Close(context.Background())
	}
	return s.closer.Close()
}

// int16Frames converts interleaved samples to stereo frames, duplicating
// mono.
func int16Frames(pcm []int16, channels int) [][2]float64 {
	channels = max(channels, 1)
	frames := make([][2]float64, len(pcm)/channels)
	for i := range frames {
		l := float64(pcm[i*channels]) / 32768.0
		r := l
		if channels > 1 {
			r = float64(pcm[i*channels+1]) / 32768.0
		}
		frames[i] = [2]float64{l, r}
	}
	return frames
}

// pcm16Frames converts little-endian 16-bit PCM bytes to stereo frames.
func pcm16Frames(data []byte, channels int) [][2]float64 {
	channels = max(channels, 1)
	stride := 2 * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		l := int16(data[off]) | int16(data[off+1])<<8
		r := l
		if channels > 1 {
			r = int16(data[off+2]) | int16(data[off+3])<<8
		}
		frames[i] = [2]float64{float64(l) / 32768.0, float64(r) / 32768.0}
	}
	return frames
}

// pcm24Frames converts little-endian 24-bit PCM bytes to stereo frames.
func pcm24Frames(data []byte, channels int) [][2]float64 {
	channels = max(channels, 1)
	stride := 3 * channels
	frames := make([][2]float64, len(data)/stride)
	for i := range frames {
		off := i * stride
		l := int24(data[off:])
		r := l
		if channels > 1 {
			r = int24(data[off+3:])
		}
		frames[i] = [2]float64{float64(l) / 8388608.0, float64(r) / 8388608.0}
	}
	return frames
}

func int24(b []byte) int32 {
	v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
	if v&0x800000 != 0 {
		v |= ^0xFFFFFF
	}
	return v
}
