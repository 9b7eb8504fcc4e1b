// Package wire implements a dependency-free multipart/form-data parser for
// buffered request bodies. Bodies are split on the raw boundary bytes and
// attachment payloads are always sliced from the original buffer by offset,
// so arbitrary binary content survives the parse untouched. Header text is
// the only region ever treated as text.
package wire

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrMissingBoundary is returned when the caller supplies no boundary token.
// The caller is responsible for extracting the token from the request's
// Content-Type header (see Boundary).
var ErrMissingBoundary = errors.New("wire: missing multipart boundary")

// DefaultMediaType is assumed for attachments whose part carries no
// Content-Type line.
const DefaultMediaType = "application/octet-stream"

// Attachment is one parsed binary part.
type Attachment struct {
	FieldName   string
	Filename    string
	MediaType   string
	Data        []byte
	StorageName string
}

// Form is the aggregate result of parsing one request body. Fields holds
// text parts (last part wins on duplicate names); Attachments holds file
// parts in wire order.
type Form struct {
	Fields      map[string]string
	Attachments []Attachment
}

var (
	headerBodySep  = []byte("\r\n\r\n")
	trailingCRLF   = []byte("\r\n")
	closingMarker  = []byte("--")
	delimiterLead  = "--"
	contentTypeKey = "content-type:"
)

// extByMediaType maps declared media types to storage extensions for
// attachments whose original filename has none.
var extByMediaType = map[string]string{
	"image/png":       ".png",
	"image/jpeg":      ".jpg",
	"image/gif":       ".gif",
	"image/webp":      ".webp",
	"image/heic":      ".heic",
	"video/mp4":       ".mp4",
	"audio/mpeg":      ".mp3",
	"application/pdf": ".pdf",
	"text/plain":      ".txt",
}

// Parse splits raw on the boundary token and returns the named fields and
// attachments it contains. Malformed parts (no header/body separator, no
// name attribute) are dropped, not fatal: resilience is the contract here,
// a bad part must not reject an otherwise usable submission.
func Parse(raw []byte, boundary string) (*Form, error) {
	if boundary == "" {
		return nil, ErrMissingBoundary
	}

	form := &Form{Fields: make(map[string]string)}

	delimiter := []byte(delimiterLead + boundary)
	for _, segment := range bytes.Split(raw, delimiter) {
		if isDelimiterNoise(segment) {
			continue
		}

		sep := bytes.Index(segment, headerBodySep)
		if sep < 0 {
			continue
		}

		// Header text is ASCII by format; converting the byte range to a
		// string is byte-preserving. The body is never reconstructed from
		// text: it is sliced from the segment at the separator offset.
		header := string(segment[:sep])
		body := trimOneCRLF(segment[sep+len(headerBodySep):])

		name := dispositionParam(header, "name")
		if name == "" {
			continue
		}

		filename := dispositionParam(header, "filename")
		if filename != "" {
			mediaType := declaredMediaType(header)
			form.Attachments = append(form.Attachments, Attachment{
				FieldName:   name,
				Filename:    filename,
				MediaType:   mediaType,
				Data:        body,
				StorageName: storageName(filename, mediaType),
			})
			continue
		}

		form.Fields[name] = string(body)
	}

	return form, nil
}

// Boundary extracts the boundary token from a Content-Type header value,
// tolerating optional quoting. Returns "" when the header carries none.
func Boundary(contentType string) string {
	for _, param := range strings.Split(contentType, ";") {
		param = strings.TrimSpace(param)
		if rest, ok := strings.CutPrefix(param, "boundary="); ok {
			return strings.Trim(rest, `"`)
		}
	}
	return ""
}

// isDelimiterNoise reports whether a split segment is the empty preamble or
// the two-dash closing marker rather than a real part.
func isDelimiterNoise(segment []byte) bool {
	trimmed := bytes.TrimSpace(segment)
	return len(trimmed) == 0 || bytes.Equal(trimmed, closingMarker)
}

// trimOneCRLF strips exactly one trailing CR LF pair. The wire format
// terminates every part body with one before the next boundary; anything
// beyond that is payload.
func trimOneCRLF(body []byte) []byte {
	if bytes.HasSuffix(body, trailingCRLF) {
		return body[:len(body)-len(trailingCRLF)]
	}
	return body
}

// dispositionParam pulls a quoted attribute value out of a part's header
// block. Matching is positional, not regex: a bare substring search for
// `name="` would also hit `filename="`, so a match must be preceded by a
// separator character.
func dispositionParam(header, key string) string {
	marker := key + `="`
	for i := 0; i < len(header); {
		j := strings.Index(header[i:], marker)
		if j < 0 {
			return ""
		}
		j += i
		if j > 0 {
			switch header[j-1] {
			case ' ', ';', '\t':
			default:
				i = j + len(marker)
				continue
			}
		}
		start := j + len(marker)
		end := strings.IndexByte(header[start:], '"')
		if end < 0 {
			return ""
		}
		return header[start : start+end]
	}
	return ""
}

// declaredMediaType scans the header block for a Content-Type line. Absent
// lines fall back to DefaultMediaType; the parse never fails on this.
func declaredMediaType(header string) string {
	for _, line := range strings.Split(header, "\r\n") {
		line = strings.TrimSpace(line)
		if len(line) < len(contentTypeKey) {
			continue
		}
		if !strings.EqualFold(line[:len(contentTypeKey)], contentTypeKey) {
			continue
		}
		value := strings.TrimSpace(line[len(contentTypeKey):])
		if idx := strings.IndexByte(value, ';'); idx >= 0 {
			value = strings.TrimSpace(value[:idx])
		}
		if value != "" {
			return value
		}
	}
	return DefaultMediaType
}

// storageName builds a collision-resistant on-disk name for an attachment:
// a random UUID plus an extension taken from the original filename, falling
// back to the media-type table, falling back to no extension at all.
func storageName(filename, mediaType string) string {
	ext := filepath.Ext(filename)
	if ext == "" {
		ext = extByMediaType[mediaType]
	}
	return uuid.NewString() + ext
}
