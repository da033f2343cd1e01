package util

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func TestSniffMime(t *testing.T) {
	assert.Equal(t, "image/jpeg", SniffMimeHTTP([]byte{0xFF, 0xD8, 0xFF}))
	assert.Equal(t, "image/png", SniffMimeHTTP(pngHeader))
	assert.Equal(t, "image/webp", SniffMimeHTTP([]byte("RIFF\x00\x00\x00\x00WEBPVP8 ")))
	assert.Equal(t, "application/octet-stream", SniffMimeHTTP([]byte("hello")))

	assert.Equal(t, "PNG", SniffMimeForOCR(pngHeader))
	assert.Equal(t, "", SniffMimeForOCR([]byte("hello")))
}

func TestPickMIME(t *testing.T) {
	assert.Equal(t, "image/webp", PickMIME("image/webp", "image/png", pngHeader))
	assert.Equal(t, "image/png", PickMIME("application/octet-stream", "", pngHeader))
	assert.Equal(t, "image/jpeg", PickMIME("", "", nil))
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	payload := base64.StdEncoding.EncodeToString([]byte("poster"))

	b, mime, err := DecodeBase64MaybeDataURL(MakeDataURL("image/png", payload))
	require.NoError(t, err)
	assert.Equal(t, "poster", string(b))
	assert.Equal(t, "image/png", mime)

	b, mime, err = DecodeBase64MaybeDataURL(payload)
	require.NoError(t, err)
	assert.Equal(t, "poster", string(b))
	assert.Empty(t, mime)

	_, _, err = DecodeBase64MaybeDataURL("%%%")
	assert.Error(t, err)
}

func TestImageHashIsStable(t *testing.T) {
	assert.Equal(t, ImageHash([]byte("a")), ImageHash([]byte("a")))
	assert.NotEqual(t, ImageHash([]byte("a")), ImageHash([]byte("b")))
	assert.Len(t, ImageHash(nil), 64)
}

func TestHTTPClientForwardsRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	ctx := WithRequestID(context.Background(), "req-1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := NewHTTPClient(5 * time.Second).Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "req-1", got)
	assert.NotEmpty(t, RequestID(WithRequestID(context.Background(), "")))
}
