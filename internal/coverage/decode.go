package coverage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

// ErrReportTooLarge is returned when a report exceeds the configured size bound.
var ErrReportTooLarge = errors.New("report too large")

// ErrUnknownEncoding is returned for a fallback charset name that is not recognised.
var ErrUnknownEncoding = errors.New("unknown report encoding")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// LookupEncoding resolves a charset name ("windows-1252", "latin1", ...) using the
// WHATWG encoding index. An empty name returns a nil encoding.
func LookupEncoding(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// DecodeReport turns raw report bytes into text.
//
// UTF-16 reports are recognised by their byte order mark. Valid UTF-8 is returned
// unchanged (minus a BOM). Anything else is decoded with the fallback charset when
// one is given; without a fallback, undecodable bytes are dropped.
// The only error is an unknown fallback name.
func DecodeReport(raw []byte, fallback string) (string, error) {
	enc, err := LookupEncoding(fallback)
	if err != nil {
		return "", err
	}

	if bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE) {
		decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(raw)
		if err == nil {
			return strings.ToValidUTF8(string(decoded), ""), nil
		}
	}

	raw = bytes.TrimPrefix(raw, bomUTF8)
	if utf8.Valid(raw) {
		return string(raw), nil
	}

	if enc != nil {
		if decoded, err := enc.NewDecoder().Bytes(raw); err == nil {
			return string(decoded), nil
		}
	}

	return strings.ToValidUTF8(string(raw), ""), nil
}

// ReadReport reads and decodes a report file.
// maxBytes <= 0 disables the size bound.
func ReadReport(path, fallback string, maxBytes int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read report: %w", err)
	}
	if maxBytes > 0 && int64(len(raw)) > maxBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrReportTooLarge, path, maxBytes)
	}

	return DecodeReport(raw, fallback)
}
