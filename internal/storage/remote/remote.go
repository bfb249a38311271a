// Package remote stores blobs in an HTTP object store service:
//
//	POST   {base}/objects           multipart "file" + "public_id" -> {"url","public_id"}
//	DELETE {base}/objects/{handle}
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/saikat7890/Lost-and-Found-System/internal/storage"
	"github.com/saikat7890/Lost-and-Found-System/pkg/httpclient"
)

const serviceName = "object-store"

// HTTPDoer executes HTTP requests. Both httpclient.Client and
// httpclient.CircuitBreakerClient satisfy it.
type HTTPDoer interface {
	Do(ctx context.Context, req *http.Request) (*http.Response, error)
}

// Config holds the object store endpoint settings.
type Config struct {
	BaseURL string
	APIKey  string
	Folder  string
}

// Store implements storage.Store against the object store API.
type Store struct {
	client HTTPDoer
	cfg    Config
	now    func() time.Time
}

var _ storage.Store = (*Store)(nil)

// New creates a remote store that sends requests through client.
func New(client HTTPDoer, cfg Config) *Store {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Store{client: client, cfg: cfg, now: time.Now}
}

type uploadResponse struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Store uploads data as a multipart form.
func (s *Store) Store(ctx context.Context, data []byte, nameHint string) (storage.Object, error) {
	key := storage.ObjectKey(s.cfg.Folder, nameHint, s.now())

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("public_id", key); err != nil {
		return storage.Object{}, fmt.Errorf("write public_id field: %w", err)
	}
	part, err := w.CreateFormFile("file", storage.SanitizeName(nameHint))
	if err != nil {
		return storage.Object{}, fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return storage.Object{}, fmt.Errorf("write file part: %w", err)
	}
	if err := w.Close(); err != nil {
		return storage.Object{}, fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/objects", bytes.NewReader(body.Bytes()))
	if err != nil {
		return storage.Object{}, fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	s.authorize(req)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return storage.Object{}, fmt.Errorf("upload %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return storage.Object{}, httpclient.ParseResponseError(resp, serviceName)
	}

	var out uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return storage.Object{}, fmt.Errorf("decode upload response: %w", err)
	}
	if out.URL == "" {
		return storage.Object{}, fmt.Errorf("upload %s: response has no url", key)
	}
	if out.PublicID == "" {
		out.PublicID = key
	}

	return storage.Object{URL: out.URL, Handle: out.PublicID}, nil
}

// Remove deletes the blob. A blob that is already gone counts as removed.
func (s *Store) Remove(ctx context.Context, handle string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.cfg.BaseURL+"/objects/"+url.PathEscape(handle), nil)
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(ctx, req)
	if err != nil {
		return fmt.Errorf("remove %s: %w", handle, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return httpclient.ParseResponseError(resp, serviceName)
	}
}

func (s *Store) authorize(req *http.Request) {
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}
}
