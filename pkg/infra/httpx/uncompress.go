package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

var ErrDecodedTooLarge = errors.New("decoded body exceeds limit")

// DecodeChain decodes a body according to its Content-Encoding header value.
// Chained encodings ("gzip, br") are undone last to first. Decoding stops
// with ErrDecodedTooLarge once the output would exceed maxBytes; a
// non-positive maxBytes disables the cap.
func DecodeChain(contentEncoding string, body []byte, maxBytes int64) ([]byte, bool, error) {
	if strings.TrimSpace(contentEncoding) == "" {
		return body, false, nil
	}
	encodings := strings.Split(contentEncoding, ",")
	changed := false
	for i := len(encodings) - 1; i >= 0; i-- {
		var (
			out []byte
			err error
		)
		switch enc := strings.TrimSpace(strings.ToLower(encodings[i])); enc {
		case "br":
			out, err = readCapped(brotli.NewReader(bytes.NewReader(body)), maxBytes)
		case "gzip", "x-gzip":
			gr, gerr := gzip.NewReader(bytes.NewReader(body))
			if gerr != nil {
				return nil, false, gerr
			}
			out, err = readCapped(gr, maxBytes)
			_ = gr.Close()
		case "zstd":
			dec, zerr := zstd.NewReader(bytes.NewReader(body))
			if zerr != nil {
				return nil, false, zerr
			}
			out, err = readCapped(dec, maxBytes)
			dec.Close()
		case "deflate":
			out, err = inflate(body, maxBytes)
		case "identity", "":
			continue
		default:
			return nil, false, fmt.Errorf("unsupported content-encoding: %q", enc)
		}
		if err != nil {
			return nil, false, err
		}
		body = out
		changed = true
	}
	return body, changed, nil
}

// inflate accepts both zlib wrapped and raw deflate streams.
func inflate(body []byte, maxBytes int64) ([]byte, error) {
	if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
		defer zr.Close()
		return readCapped(zr, maxBytes)
	}
	fr := flate.NewReader(bytes.NewReader(body))
	defer fr.Close()
	return readCapped(fr, maxBytes)
}

func readCapped(r io.Reader, maxBytes int64) ([]byte, error) {
	if maxBytes <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > maxBytes {
		return nil, ErrDecodedTooLarge
	}
	return out, nil
}
