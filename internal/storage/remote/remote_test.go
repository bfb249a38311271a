package remote

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saikat7890/Lost-and-Found-System/pkg/httpclient"
)

func newClient() *httpclient.CircuitBreakerClient {
	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	cfg.Timeout = 2 * time.Second
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpclient.NewCircuitBreakerClient(httpclient.New(cfg),
		httpclient.DefaultCircuitBreakerConfig("object-store-test"), logger)
}

func newStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s := New(newClient(), Config{BaseURL: srv.URL + "/", APIKey: "secret", Folder: "trackitdown"})
	s.now = func() time.Time { return time.UnixMilli(1704844800000) }
	return s
}

func TestStore_Upload(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/objects", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		publicID := r.FormValue("public_id")
		assert.True(t, strings.HasPrefix(publicID, "trackitdown/1704844800000-"))
		assert.True(t, strings.HasSuffix(publicID, "-wallet.jpg"))

		f, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, _ := io.ReadAll(f)
		assert.Equal(t, "jpeg-bytes", string(data))
		assert.Equal(t, "wallet.jpg", header.Filename)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"url":       "https://cdn.test/" + publicID,
			"public_id": publicID,
		})
	})

	obj, err := s.Store(context.Background(), []byte("jpeg-bytes"), "wallet.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.test/"+obj.Handle, obj.URL)
}

func TestStore_UploadRejected(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"file too large"}`))
	})

	_, err := s.Store(context.Background(), []byte("x"), "a.png")
	var statusErr *httpclient.StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
	assert.Equal(t, "file too large", statusErr.Message)
}

func TestStore_UploadServerError(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := s.Store(context.Background(), []byte("x"), "a.png")
	assert.Error(t, err)
}

func TestStore_UploadMissingURL(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := s.Store(context.Background(), []byte("x"), "a.png")
	assert.ErrorContains(t, err, "no url")
}

func TestStore_Remove(t *testing.T) {
	var calls atomic.Int32
	s := newStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/objects/trackitdown%2F1-a.jpg", r.URL.EscapedPath())
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, s.Remove(context.Background(), "trackitdown/1-a.jpg"))
	assert.EqualValues(t, 1, calls.Load())
}

func TestStore_RemoveMissingIsSuccess(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	assert.NoError(t, s.Remove(context.Background(), "gone"))
}

func TestStore_RemoveForbidden(t *testing.T) {
	s := newStore(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	assert.Error(t, s.Remove(context.Background(), "h"))
}
