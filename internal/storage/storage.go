package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Object is a stored blob: the permanent public URL and the opaque handle
// used to remove it later.
type Object struct {
	URL    string
	Handle string
}

// Store defines the contract over an external object store.
type Store interface {
	// Store uploads data and returns its URL and deletion handle. nameHint
	// is the client's original file name.
	Store(ctx context.Context, data []byte, nameHint string) (Object, error)

	// Remove deletes the blob identified by handle.
	Remove(ctx context.Context, handle string) error
}

// ObjectKey builds "<folder>/<unix-millis>-<random>-<name>" for a new blob.
// The random part keeps concurrent uploads of the same file name apart.
func ObjectKey(folder, nameHint string, now time.Time) string {
	key := fmt.Sprintf("%d-%s-%s", now.UnixMilli(), uuid.NewString()[:8], SanitizeName(nameHint))
	if folder = strings.Trim(folder, "/"); folder != "" {
		return folder + "/" + key
	}
	return key
}

// SanitizeName reduces a client file name to its base name with only
// letters, digits, dots, hyphens and underscores. An empty result becomes
// "image".
func SanitizeName(name string) string {
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}

	out := strings.Trim(b.String(), ".-")
	if out == "" {
		return "image"
	}
	return out
}
