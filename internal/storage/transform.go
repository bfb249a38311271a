package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
)

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Transformer rewrites image bytes before upload.
type Transformer interface {
	Transform(data []byte) ([]byte, string, error)
}

// Transformed applies a Transformer to every upload before delegating to the
// wrapped Store.
type Transformed struct {
	next      Store
	transform Transformer
}

var _ Store = (*Transformed)(nil)

// NewTransformed wraps next so uploads pass through t first.
func NewTransformed(next Store, t Transformer) *Transformed {
	return &Transformed{next: next, transform: t}
}

// Store transforms data and uploads the result under a name whose extension
// matches the transformed content type.
func (s *Transformed) Store(ctx context.Context, data []byte, nameHint string) (Object, error) {
	out, mime, err := s.transform.Transform(data)
	if err != nil {
		return Object{}, fmt.Errorf("transform %q: %w", nameHint, err)
	}
	return s.next.Store(ctx, out, WithExtension(nameHint, mime))
}

// WithExtension replaces the extension of name with the one registered for
// mime. Unknown types leave name unchanged.
func WithExtension(name, mime string) string {
	ext, ok := mimeExtensions[mime]
	if !ok {
		return name
	}
	if strings.EqualFold(path.Ext(name), ext) {
		return name
	}
	return strings.TrimSuffix(name, path.Ext(name)) + ext
}

// Remove delegates to the wrapped Store.
func (s *Transformed) Remove(ctx context.Context, handle string) error {
	return s.next.Remove(ctx, handle)
}
