package yandex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, ocrHandler http.HandlerFunc) (*Engine, *int32) {
	t.Helper()
	var iamCalls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/iam", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&iamCalls, 1)
		_ = json.NewEncoder(w).Encode(map[string]string{"iamToken": "t" + string(rune('0'+n))})
	})
	mux.HandleFunc("/ocr", ocrHandler)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	e := New("oauth", "folder-1")
	e.Endpoint = srv.URL + "/ocr"
	e.iamc.Endpoint = srv.URL + "/iam"
	return e, &iamCalls
}

func TestRecognizeFullText(t *testing.T) {
	var got request
	e, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer t1", r.Header.Get("Authorization"))
		assert.Equal(t, "folder-1", r.Header.Get("x-folder-id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"result":{"textAnnotation":{"fullText":"강남  살사\n수업"}}}`))
	})

	txt, err := e.Recognize(context.Background(), []byte{0xFF, 0xD8, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "강남 살사\n수업", txt)
	assert.Equal(t, []string{"ko", "en"}, got.LanguageCodes)
	assert.Equal(t, "JPEG", got.MimeType)
}

func TestRecognizeFallsBackToLines(t *testing.T) {
	e, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":{"textAnnotation":{"blocks":[{"lines":[{"text":"홍대"},{"text":" "},{"text":"바차타"}]}]}}}`))
	})

	txt, err := e.Recognize(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "홍대\n바차타", txt)
}

func TestRecognizeRefreshesTokenOnUnauthorized(t *testing.T) {
	var ocrCalls int32
	e, iamCalls := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&ocrCalls, 1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		assert.Equal(t, "Bearer t2", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"result":{"textAnnotation":{"fullText":"ok"}}}`))
	})

	txt, err := e.Recognize(context.Background(), []byte{1})
	require.NoError(t, err)
	assert.Equal(t, "ok", txt)
	assert.EqualValues(t, 2, atomic.LoadInt32(iamCalls))
}

func TestRecognizeReportsFailure(t *testing.T) {
	e, _ := newTestEngine(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("bad image"))
	})

	_, err := e.Recognize(context.Background(), []byte{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}
