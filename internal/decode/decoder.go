package decode

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"strings"

	"github.com/fiscalhub/invoice-ingest/internal/common"
)

// FilePart is one uploaded file from a request body. Immutable once decoded;
// the slice order preserves request order but carries no meaning downstream.
type FilePart struct {
	OriginalFilename string
	Content          []byte
}

// Decoder turns a raw request body plus its content-type header into discrete
// file parts. Implementations are interchangeable strategies; the orchestrator
// never looks past this interface.
type Decoder interface {
	Decode(body []byte, contentType string) ([]FilePart, error)
}

// MultipartDecoder decodes multipart/form-data bodies. Segments without a
// filename in their disposition (plain form fields) are discarded. Splitting
// is delegated to mime/multipart, which only honors exact delimiter positions,
// so binary payloads containing boundary-like byte runs survive intact.
type MultipartDecoder struct{}

func NewMultipartDecoder() *MultipartDecoder {
	return &MultipartDecoder{}
}

// Decode parses body into file parts. A missing or unusable boundary is a
// request-level error; a body with zero file segments is an empty slice, not
// an error — the orchestrator decides what that means.
func (d *MultipartDecoder) Decode(body []byte, contentType string) ([]FilePart, error) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, fmt.Errorf("%w: parse content-type: %v", common.ErrMalformedRequest, err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		return nil, fmt.Errorf("%w: content-type %q is not multipart", common.ErrMalformedRequest, mediaType)
	}
	boundary := params["boundary"]
	if boundary == "" {
		return nil, fmt.Errorf("%w: missing multipart boundary", common.ErrMalformedRequest)
	}

	mr := multipart.NewReader(bytes.NewReader(body), boundary)
	var parts []FilePart
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// No parts decoded at all means the boundary never matched the body.
			if len(parts) == 0 {
				return nil, fmt.Errorf("%w: read part: %v", common.ErrMalformedRequest, err)
			}
			return nil, fmt.Errorf("%w: read part after %d file(s): %v", common.ErrMalformedRequest, len(parts), err)
		}

		filename := p.FileName()
		if filename == "" {
			// Plain form field; not a file.
			continue
		}
		content, err := io.ReadAll(p)
		if err != nil {
			return nil, fmt.Errorf("%w: read part body for %q: %v", common.ErrMalformedRequest, filename, err)
		}
		parts = append(parts, FilePart{OriginalFilename: filename, Content: content})
	}
	return parts, nil
}
