package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

// Тест: без заголовка Accept-Encoding: gzip — ответа без сжатия
func TestWithGzip_NoAcceptEncoding(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	})
	h := WithGzip(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status want 200, got %d", rr.Code)
	}
	if ce := rr.Header().Get("Content-Encoding"); ce != "" {
		t.Fatalf("unexpected Content-Encoding: %q", ce)
	}
	if string(rr.Body.Bytes()) != "hello" {
		t.Fatalf("unexpected body: %q", rr.Body.String())
	}
}

// Тест: с Accept-Encoding: gzip — ответ сжат и корректно распаковывается
func TestWithGzip_WithAcceptEncoding(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// намеренно ставим Content-Length, чтобы убедиться, что мидлварь его убирает
		w.Header().Set("Content-Length", "5")
		_, _ = w.Write([]byte("hello"))
	})
	h := WithGzip(next)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip Content-Encoding, got %q", rr.Header().Get("Content-Encoding"))
	}

	// распаковываем
	gr, err := gzip.NewReader(bytes.NewReader(rr.Body.Bytes()))
	if err != nil {
		t.Fatalf("failed to create gzip reader: %v", err)
	}
	defer gr.Close()
	data, err := io.ReadAll(gr)
	if err != nil {
		t.Fatalf("failed to read gzipped body: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("unexpected ungzipped body: %q", string(data))
	}
}

// Тест: gzip-тело запроса распаковывается до хендлера
func TestWithGzip_DecompressesRequestBody(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, _ = zw.Write([]byte(`{"name":"Book"}`))
	_ = zw.Close()

	var got string
	h := WithGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if got != `{"name":"Book"}` {
		t.Fatalf("unexpected decompressed body: %q", got)
	}
}

// Тест: битое gzip-тело — 400
func TestWithGzip_InvalidRequestBody(t *testing.T) {
	h := WithGzip(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not be called")
	}))
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewBufferString("not gzip"))
	req.Header.Set("Content-Encoding", "gzip")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}
