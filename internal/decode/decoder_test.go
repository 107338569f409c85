package decode

import (
	"bytes"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/invoice-ingest/internal/common"
)

type bodyPart struct {
	field    string
	filename string // empty means plain form field
	content  []byte
}

func buildBody(t *testing.T, boundary string, parts []bodyPart) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if boundary != "" {
		require.NoError(t, w.SetBoundary(boundary))
	}
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, w.WriteField(p.field, string(p.content)))
			continue
		}
		fw, err := w.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes(), w.FormDataContentType()
}

func TestMultipartDecoder_Decode(t *testing.T) {
	d := NewMultipartDecoder()

	t.Run("round-trips file bytes exactly", func(t *testing.T) {
		pdf := []byte("%PDF-1.4\x00\x01\x02\xff binary \r\n stuff")
		body, ct := buildBody(t, "", []bodyPart{
			{field: "files", filename: "nota.pdf", content: pdf},
		})

		parts, err := d.Decode(body, ct)
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, "nota.pdf", parts[0].OriginalFilename)
		assert.Equal(t, pdf, parts[0].Content)
	})

	t.Run("keeps file parts and discards form fields", func(t *testing.T) {
		body, ct := buildBody(t, "", []bodyPart{
			{field: "note", content: []byte("just a field")},
			{field: "files", filename: "a.jpg", content: []byte("jpeg-a")},
			{field: "tag", content: []byte("another field")},
			{field: "files", filename: "b.png", content: []byte("png-b")},
		})

		parts, err := d.Decode(body, ct)
		require.NoError(t, err)
		require.Len(t, parts, 2)
		assert.Equal(t, "a.jpg", parts[0].OriginalFilename)
		assert.Equal(t, "b.png", parts[1].OriginalFilename)
	})

	t.Run("survives boundary-like bytes inside content", func(t *testing.T) {
		boundary := "testboundary1234567890"
		tricky := []byte("prefix\r\n--testboundary12 not the delimiter\r\n--testboundary1234567890X\nsuffix")
		body, ct := buildBody(t, boundary, []bodyPart{
			{field: "files", filename: "tricky.bin", content: tricky},
		})

		parts, err := d.Decode(body, ct)
		require.NoError(t, err)
		require.Len(t, parts, 1)
		assert.Equal(t, tricky, parts[0].Content)
	})

	t.Run("zero file parts is empty, not an error", func(t *testing.T) {
		body, ct := buildBody(t, "", []bodyPart{
			{field: "only", content: []byte("fields here")},
		})

		parts, err := d.Decode(body, ct)
		require.NoError(t, err)
		assert.Empty(t, parts)
	})

	t.Run("missing boundary is a malformed request", func(t *testing.T) {
		_, err := d.Decode([]byte("whatever"), "multipart/form-data")
		assert.ErrorIs(t, err, common.ErrMalformedRequest)
	})

	t.Run("non-multipart content type is a malformed request", func(t *testing.T) {
		_, err := d.Decode([]byte(`{"a":1}`), "application/json")
		assert.ErrorIs(t, err, common.ErrMalformedRequest)
	})

	t.Run("boundary that never matches the body is a malformed request", func(t *testing.T) {
		_, err := d.Decode([]byte("no delimiters in here"), `multipart/form-data; boundary="abc123"`)
		assert.ErrorIs(t, err, common.ErrMalformedRequest)
	})

	t.Run("empty content type is a malformed request", func(t *testing.T) {
		_, err := d.Decode(nil, "")
		assert.ErrorIs(t, err, common.ErrMalformedRequest)
	})
}
