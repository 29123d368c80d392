package middleware

import (
	"errors"
	"fmt"
	"mime"
	"mime/multipart"
	"net/url"
	"sort"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/httpx"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/valyala/fasthttp"
)

var (
	ErrMalformedBody = errors.New("malformed request body")
	ErrBodyTooLarge  = errors.New("request body too large")
)

// ExtractEnvelope converts the fiber request into an envelope and fills the
// body format and file descriptors of req. Bodies whose declared length is
// over maxBodyBytes are not parsed; the limit stage rejects them.
func ExtractEnvelope(c *fiber.Ctx, req *types.RequestContext, maxBodyBytes int64) (envelope.Envelope, error) {
	query := envelope.FromPairs(queryPairs(c))
	params := envelope.FromPairs(routeParams(c))

	req.BodyFormat = types.BodyNone
	raw := c.Request().Body()
	if req.ContentLength > maxBodyBytes || len(raw) == 0 {
		return envelope.New(envelope.Null(), query, params), nil
	}

	decoded, changed, err := httpx.DecodeChain(c.Get(fiber.HeaderContentEncoding), raw, maxBodyBytes)
	if err != nil {
		if errors.Is(err, httpx.ErrDecodedTooLarge) {
			return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrBodyTooLarge, err)
		}
		return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if changed {
		c.Request().SetBodyRaw(decoded)
		c.Request().Header.Del(fiber.HeaderContentEncoding)
	}

	mediaType, _, _ := mime.ParseMediaType(req.ContentType)
	var body envelope.Value
	switch {
	case isJSON(mediaType):
		body, err = envelope.ParseJSON(decoded)
		if err != nil {
			return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		req.BodyFormat = types.BodyJSON
	case mediaType == fiber.MIMEApplicationForm:
		var args fasthttp.Args
		args.ParseBytes(decoded)
		pairs := make([]envelope.Pair, 0, args.Len())
		args.VisitAll(func(k, v []byte) {
			pairs = append(pairs, envelope.Pair{Key: string(k), Value: string(v)})
		})
		body = envelope.FromPairs(pairs)
		req.BodyFormat = types.BodyForm
	case mediaType == fiber.MIMEMultipartForm:
		form, err := c.MultipartForm()
		if err != nil {
			return envelope.Envelope{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		body = envelope.FromPairs(sortedPairs(form.Value))
		req.Files = uploadedFiles(form.File)
		req.BodyFormat = types.BodyMultipart
	default:
		// Other content types never reach the upstream.
		body = envelope.Null()
	}

	return envelope.New(body, query, params), nil
}

func isJSON(mediaType string) bool {
	return mediaType == fiber.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}

func queryPairs(c *fiber.Ctx) []envelope.Pair {
	args := c.Request().URI().QueryArgs()
	pairs := make([]envelope.Pair, 0, args.Len())
	args.VisitAll(func(k, v []byte) {
		pairs = append(pairs, envelope.Pair{Key: string(k), Value: string(v)})
	})
	return pairs
}

// routeParams returns the named parameters of the matched route template in
// declaration order. Wildcards are not parameters.
func routeParams(c *fiber.Ctx) []envelope.Pair {
	names := c.Route().Params
	pairs := make([]envelope.Pair, 0, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, "*") || strings.HasPrefix(name, "+") {
			continue
		}
		value := fiberutils.CopyString(c.Params(name))
		if unescaped, err := url.PathUnescape(value); err == nil {
			value = unescaped
		}
		pairs = append(pairs, envelope.Pair{Key: name, Value: value})
	}
	return pairs
}

func sortedPairs(values map[string][]string) []envelope.Pair {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var pairs []envelope.Pair
	for _, k := range keys {
		for _, v := range values[k] {
			pairs = append(pairs, envelope.Pair{Key: k, Value: v})
		}
	}
	return pairs
}

func uploadedFiles(files map[string][]*multipart.FileHeader) []types.UploadedFile {
	fields := make([]string, 0, len(files))
	for k := range files {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var out []types.UploadedFile
	for _, field := range fields {
		for _, fh := range files[field] {
			out = append(out, types.UploadedFile{
				FieldName: field,
				Filename:  fh.Filename,
				Size:      fh.Size,
				MIMEType:  fh.Header.Get(fiber.HeaderContentType),
				Header:    fh,
			})
		}
	}
	return out
}
