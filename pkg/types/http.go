package types

import (
	"context"
	"mime/multipart"
	"time"
)

// BodyFormat is how an inbound body was parsed, and so how it is re-encoded
// when forwarded.
type BodyFormat string

const (
	BodyNone      BodyFormat = "none"
	BodyJSON      BodyFormat = "json"
	BodyForm      BodyFormat = "form"
	BodyMultipart BodyFormat = "multipart"
)

// RequestContext holds the transport facts of one inbound request that the
// pipeline stages need besides the envelope itself.
type RequestContext struct {
	Context       context.Context
	TraceID       string
	Method        string
	Path          string
	Route         string
	IP            string
	ContentType   string
	BodyFormat    BodyFormat
	ContentLength int64
	QueryCount    int
	Headers       map[string][]string
	Files         []UploadedFile
	Metadata      map[string]interface{}
	ProcessAt     *time.Time
}

// UploadedFile describes one multipart file part as declared by the client.
type UploadedFile struct {
	FieldName string
	Filename  string
	Size      int64
	MIMEType  string
	Header    *multipart.FileHeader
}
