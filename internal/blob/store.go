package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

// ErrObjectTooLarge is returned by Put when the payload exceeds the store's
// size cap. The client checks sizes before uploading, but the store is the
// authoritative backstop.
var ErrObjectTooLarge = errors.New("object exceeds maximum allowed size")

// Ref identifies one stored blob.
type Ref struct {
	Key  string
	Size int64
}

// Store is the blob store capability consumed by the submission and
// notification components. Implementations must treat blobs as immutable:
// Put never overwrites semantics the pipeline depends on because every key
// carries a fresh unique suffix.
type Store interface {
	// Put writes size bytes from r under key.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
	// List returns every blob whose key starts with prefix, in key order.
	List(ctx context.Context, prefix string) ([]Ref, error)
	// SignReadURL mints a read-only URL for key that the store will honor
	// until ttl from now and reject afterwards.
	SignReadURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Key builds the composite attachment key. The suffix guarantees uniqueness
// even when two attachments in one submission share the same original name.
func Key(ownerID, feedbackID, suffix, name string) string {
	return fmt.Sprintf("%s/feedback/%s/%s_%s", ownerID, feedbackID, suffix, name)
}

// Prefix is the enumeration prefix for all attachments of one feedback
// record. Listing this prefix is the only association between a record and
// its blobs, which is why the record must never be written before the blobs.
func Prefix(ownerID, feedbackID string) string {
	return fmt.Sprintf("%s/feedback/%s/", ownerID, feedbackID)
}

// DisplayName recovers the original file name from an attachment key by
// stripping the unique suffix. A suffix never contains "_", so splitting on
// the first one is safe; original names that themselves contain "_" come
// back intact.
func DisplayName(key string) string {
	base := path.Base(key)
	if _, name, ok := strings.Cut(base, "_"); ok {
		return name
	}
	return base
}
