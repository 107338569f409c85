package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiscalhub/invoice-ingest/internal/common"
	"github.com/fiscalhub/invoice-ingest/internal/storage"
)

func TestExtractedText_Flatten(t *testing.T) {
	t.Run("labeled fields render one line each", func(t *testing.T) {
		et := ExtractedText{Fields: []LabeledValue{
			{Label: "TOTAL", Value: "123.45"},
			{Label: "VENDOR_NAME", Value: "Mercado Central"},
		}}
		assert.Equal(t, "TOTAL: 123.45\nVENDOR_NAME: Mercado Central", et.Flatten())
	})

	t.Run("raw text comes before fields", func(t *testing.T) {
		et := ExtractedText{
			Text:   "NOTA FISCAL",
			Fields: []LabeledValue{{Label: "TOTAL", Value: "9.90"}},
		}
		assert.Equal(t, "NOTA FISCAL\nTOTAL: 9.90", et.Flatten())
	})

	t.Run("emptiness", func(t *testing.T) {
		assert.True(t, ExtractedText{}.Empty())
		assert.True(t, ExtractedText{Text: "   "}.Empty())
		assert.False(t, ExtractedText{Text: "x"}.Empty())
		assert.False(t, ExtractedText{Fields: []LabeledValue{{Label: "A", Value: "b"}}}.Empty())
	})
}

func TestHTTPExtractor_Extract(t *testing.T) {
	obj := storage.StoredObject{Bucket: "receipts", Key: "received/abc-nota.pdf"}

	t.Run("decodes text and fields", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var req ocrRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "receipts", req.Bucket)
			assert.Equal(t, "received/abc-nota.pdf", req.Key)
			_ = json.NewEncoder(w).Encode(ocrResponse{
				Fields: []LabeledValue{{Label: "TOTAL", Value: "10.00"}},
			})
		}))
		defer srv.Close()

		x := NewHTTPExtractor(srv.URL, time.Second, nil)
		text, err := x.Extract(context.Background(), obj)
		require.NoError(t, err)
		assert.Equal(t, "TOTAL: 10.00", text.Flatten())
	})

	t.Run("empty answer is not an error here", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(ocrResponse{})
		}))
		defer srv.Close()

		x := NewHTTPExtractor(srv.URL, time.Second, nil)
		text, err := x.Extract(context.Background(), obj)
		require.NoError(t, err)
		assert.True(t, text.Empty())
	})

	t.Run("non-2xx is an external service error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()

		x := NewHTTPExtractor(srv.URL, time.Second, nil)
		_, err := x.Extract(context.Background(), obj)
		assert.ErrorIs(t, err, common.ErrExternalService)
	})

	t.Run("unreachable endpoint is an external service error", func(t *testing.T) {
		x := NewHTTPExtractor("http://127.0.0.1:1", 200*time.Millisecond, nil)
		_, err := x.Extract(context.Background(), obj)
		assert.ErrorIs(t, err, common.ErrExternalService)
	})
}
