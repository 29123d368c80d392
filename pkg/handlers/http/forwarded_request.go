package http

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

// Request headers that are never copied to the upstream request. The body
// headers are rewritten for the re-encoded body.
var skippedRequestHeaders = map[string]struct{}{
	"host":                {},
	"connection":          {},
	"keep-alive":          {},
	"proxy-connection":    {},
	"te":                  {},
	"trailer":             {},
	"transfer-encoding":   {},
	"upgrade":             {},
	"content-length":      {},
	"content-encoding":    {},
	"content-type":        {},
	"proxy-authorization": {},
}

// Response headers that are never relayed to the client.
var skippedResponseHeaders = map[string]struct{}{
	"x-powered-by":      {},
	"server":            {},
	"connection":        {},
	"keep-alive":        {},
	"transfer-encoding": {},
	"content-length":    {},
}

// RenderPath fills the route template with the normalized params. Templates
// holding wildcards, and requests that matched no template, keep the path as
// received.
func RenderPath(template, original string, params envelope.Value) string {
	if template == "" || strings.ContainsAny(template, "*+") {
		return original
	}

	var b strings.Builder
	b.Grow(len(template) + 16)
	for i := 0; i < len(template); {
		if template[i] != ':' {
			b.WriteByte(template[i])
			i++
			continue
		}
		j := i + 1
		for j < len(template) && isParamChar(template[j]) {
			j++
		}
		name := template[i+1 : j]
		if j < len(template) && template[j] == '?' {
			j++
		}
		if v, ok := params.Get(name); ok {
			b.WriteString(url.PathEscape(v.Text()))
		}
		i = j
	}
	return b.String()
}

func isParamChar(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// EncodeQuery renders the query section in its original key order.
func EncodeQuery(query envelope.Value) string {
	pairs := envelope.Pairs(query)
	if len(pairs) == 0 {
		return ""
	}
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	for _, p := range pairs {
		args.Add(p.Key, p.Value)
	}
	return args.String()
}

// EncodeBody re-encodes the sanitized body in the format it arrived in and
// returns it with the matching content type. BodyNone yields no body.
func EncodeBody(format types.BodyFormat, contentType string, body envelope.Value, files []types.UploadedFile) ([]byte, string, error) {
	switch format {
	case types.BodyJSON:
		if contentType == "" {
			contentType = fiber.MIMEApplicationJSON
		}
		return body.AppendJSON(nil), contentType, nil
	case types.BodyForm:
		return []byte(EncodeQuery(body)), fiber.MIMEApplicationForm, nil
	case types.BodyMultipart:
		return encodeMultipart(body, files)
	default:
		return nil, "", nil
	}
}

func encodeMultipart(body envelope.Value, files []types.UploadedFile) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range envelope.Pairs(body) {
		if err := w.WriteField(p.Key, p.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %q: %w", p.Key, err)
		}
	}
	for _, f := range files {
		if err := copyFilePart(w, f); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

func copyFilePart(w *multipart.Writer, f types.UploadedFile) error {
	if f.Header == nil {
		return fmt.Errorf("file %q has no content", f.Filename)
	}
	header := make(textproto.MIMEHeader, len(f.Header.Header))
	for k, v := range f.Header.Header {
		header[k] = append([]string(nil), v...)
	}
	part, err := w.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create part for %q: %w", f.Filename, err)
	}
	src, err := f.Header.Open()
	if err != nil {
		return fmt.Errorf("failed to open %q: %w", f.Filename, err)
	}
	defer src.Close()
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("failed to copy %q: %w", f.Filename, err)
	}
	return nil
}

func copyRequestHeaders(dst *fasthttp.Request, src *fasthttp.Request) {
	src.Header.VisitAll(func(key, value []byte) {
		if _, skip := skippedRequestHeaders[strings.ToLower(string(key))]; skip {
			return
		}
		dst.Header.AddBytesKV(key, value)
	})
}
