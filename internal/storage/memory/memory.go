package memory

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/saikat7890/Lost-and-Found-System/internal/storage"
)

// PathPrefix is where Handler serves stored blobs.
const PathPrefix = "/media/"

// Store implements storage.Store using an in-memory map. It backs local
// development and tests.
type Store struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
	folder  string
}

var _ storage.Store = (*Store)(nil)

// New creates a new in-memory store whose URLs start with baseURL.
func New(baseURL, folder string) *Store {
	return &Store{
		blobs:   make(map[string][]byte),
		baseURL: strings.TrimRight(baseURL, "/"),
		folder:  folder,
	}
}

// Store keeps a copy of data under a fresh key.
func (s *Store) Store(_ context.Context, data []byte, nameHint string) (storage.Object, error) {
	key := storage.ObjectKey(s.folder, nameHint, time.Now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = append([]byte(nil), data...)

	return storage.Object{
		URL:    s.baseURL + PathPrefix + key,
		Handle: key,
	}, nil
}

// Remove deletes the blob stored under handle.
func (s *Store) Remove(_ context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[handle]; !exists {
		return fmt.Errorf("object not found: %s", handle)
	}

	delete(s.blobs, handle)
	return nil
}

// Len returns the number of stored blobs.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

// Handler serves stored blobs under PathPrefix.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(r.URL.Path, PathPrefix)

		s.mu.RLock()
		data, ok := s.blobs[key]
		s.mu.RUnlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", http.DetectContentType(data))
		_, _ = w.Write(data)
	})
}
