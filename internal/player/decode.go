package player

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
	"github.com/hashicorp/go-retryablehttp"
)

const (
	formatMP3  = "mp3"
	formatFLAC = "flac"
	formatWAV  = "wav"
	formatM4A  = "m4a"
	formatOgg  = "ogg"
)

// sniffSize is how much of a stream is inspected to guess its format.
const sniffSize = 12

// ErrUnsupportedFormat is returned for streams the audio engine cannot decode.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

var contentTypes = map[string]string{
	"audio/mpeg":      formatMP3,
	"audio/mp3":       formatMP3,
	"audio/flac":      formatFLAC,
	"audio/x-flac":    formatFLAC,
	"audio/wav":       formatWAV,
	"audio/wave":      formatWAV,
	"audio/x-wav":     formatWAV,
	"audio/mp4":       formatM4A,
	"audio/m4a":       formatM4A,
	"audio/x-m4a":     formatM4A,
	"video/mp4":       formatM4A,
	"audio/ogg":       formatOgg,
	"audio/opus":      formatOgg,
	"audio/vorbis":    formatOgg,
	"application/ogg": formatOgg,
}

var extensions = map[string]string{
	".mp3":  formatMP3,
	".flac": formatFLAC,
	".wav":  formatWAV,
	".m4a":  formatM4A,
	".m4b":  formatM4A,
	".mp4":  formatM4A,
	".ogg":  formatOgg,
	".oga":  formatOgg,
	".opus": formatOgg,
}

// decodedStream is an open, decoding audio stream.
type decodedStream struct {
	beep.StreamSeekCloser
	format beep.Format
	kind   string
	body   io.Closer
}

// Close closes the decoder and the underlying body. Decoders usually close
// the body themselves, so a second close error is ignored.
func (d *decodedStream) Close() error {
	err := d.StreamSeekCloser.Close()
	_ = d.body.Close()
	return err
}

// openStream fetches uri and opens a decoder for it. http(s) and file URIs
// are supported.
func openStream(ctx context.Context, client *retryablehttp.Client, uri string) (*decodedStream, error) {
	body, contentType, err := fetch(ctx, client, uri)
	if err != nil {
		return nil, err
	}

	br := bufio.NewReader(body)
	head, _ := br.Peek(sniffSize)
	kind := detectFormat(head, contentType, uri)
	if kind == "" {
		body.Close()
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, describe(contentType, uri))
	}

	rc := readCloser{Reader: br, Closer: body}
	var (
		s      beep.StreamSeekCloser
		format beep.Format
	)
	switch kind {
	case formatMP3:
		s, format, err = decodeGoMP3(rc)
	case formatFLAC:
		if err = skipID3v2(br); err == nil {
			s, format, err = flac.Decode(rc)
		}
	case formatWAV:
		s, format, err = wav.Decode(rc)
	case formatM4A:
		var rs io.ReadSeekCloser
		if rs, err = seekable(br, body); err == nil {
			body = rs
			s, format, err = decodeM4A(rs)
		}
	case formatOgg:
		var rs io.ReadSeekCloser
		if rs, err = seekable(br, body); err == nil {
			body = rs
			s, format, err = decodeOgg(rs)
		}
	}
	if err != nil {
		body.Close()
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}

	return &decodedStream{StreamSeekCloser: s, format: format, kind: kind, body: body}, nil
}

// seekable returns a seekable view of a stream whose first bytes were
// already buffered in br. Local files are rewound; network bodies are
// spooled to a temporary file that is removed on Close.
func seekable(br *bufio.Reader, body io.ReadCloser) (io.ReadSeekCloser, error) {
	if f, ok := body.(*os.File); ok {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		return f, nil
	}

	f, err := os.CreateTemp("", "tubeplay-*.spool")
	if err != nil {
		return nil, err
	}
	sp := &spoolFile{File: f}
	_, err = io.Copy(f, br)
	body.Close()
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		sp.Close()
		return nil, fmt.Errorf("spool stream: %w", err)
	}
	return sp, nil
}

// spoolFile is a temporary file deleted when closed.
type spoolFile struct {
	*os.File
	once sync.Once
}

func (s *spoolFile) Close() error {
	var err error
	s.once.Do(func() {
		err = s.File.Close()
		if rerr := os.Remove(s.Name()); err == nil {
			err = rerr
		}
	})
	return err
}

// fetch opens the body behind uri.
func fetch(ctx context.Context, client *retryablehttp.Client, uri string) (io.ReadCloser, string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, "", fmt.Errorf("parse stream uri: %w", err)
	}

	switch u.Scheme {
	case "file":
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, "", err
		}
		return f, "", nil
	case "http", "https":
	default:
		return nil, "", fmt.Errorf("unsupported stream scheme %q", u.Scheme)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch stream: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, "", fmt.Errorf("fetch stream: %s", resp.Status)
	}
	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// detectFormat guesses the container from magic bytes, then the content
// type, then the URI path extension. It returns "" when nothing matches.
func detectFormat(head []byte, contentType, uri string) string {
	switch {
	case bytes.HasPrefix(head, []byte("fLaC")):
		return formatFLAC
	case bytes.HasPrefix(head, []byte("OggS")):
		return formatOgg
	case len(head) >= 12 && bytes.Equal(head[0:4], []byte("RIFF")) && bytes.Equal(head[8:12], []byte("WAVE")):
		return formatWAV
	case len(head) >= 8 && bytes.Equal(head[4:8], []byte("ftyp")):
		return formatM4A
	case len(head) >= 2 && head[0] == 0xFF && head[1]&0xE0 == 0xE0:
		return formatMP3
	}

	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		if kind, ok := contentTypes[mt]; ok {
			return kind
		}
	}

	if u, err := url.Parse(uri); err == nil {
		if kind, ok := extensions[strings.ToLower(path.Ext(u.Path))]; ok {
			return kind
		}
	}

	// An ID3 tag can front both MP3 and FLAC; only the hints above tell them
	// apart, so fall back to the common case.
	if bytes.HasPrefix(head, []byte("ID3")) {
		return formatMP3
	}
	return ""
}

func describe(contentType, uri string) string {
	if contentType != "" {
		return contentType
	}
	return uri
}

// skipID3v2 discards an ID3v2 tag at the start of r, if present.
// Some FLAC files have ID3v2 tags prepended, which the FLAC decoder doesn't handle.
func skipID3v2(r *bufio.Reader) error {
	header, err := r.Peek(10)
	if err != nil || string(header[0:3]) != "ID3" {
		// Too short or untagged: leave the stream as is.
		return nil
	}

	// ID3v2 size is stored as a syncsafe integer in bytes 6-9
	size := int(header[6])<<21 | int(header[7])<<14 | int(header[8])<<7 | int(header[9])
	_, err = r.Discard(10 + size)
	return err
}

type readCloser struct {
	io.Reader
	io.Closer
}
