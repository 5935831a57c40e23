package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MemoryStore implements Store in process memory. It backs tests and local
// development; signed URLs are synthetic but carry a real expiry so the
// time-window behavior can be exercised.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	maxSize int64

	// Now is the clock used when signing. Overridable in tests.
	Now func() time.Time
}

func NewMemoryStore(maxSize int64) *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		maxSize: maxSize,
		Now:     time.Now,
	}
}

func (m *MemoryStore) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	if m.maxSize > 0 && size > m.maxSize {
		return ErrObjectTooLarge
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if m.maxSize > 0 && int64(len(data)) > m.maxSize {
		return ErrObjectTooLarge
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemoryStore) List(ctx context.Context, prefix string) ([]Ref, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var refs []Ref
	for key, data := range m.objects {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			refs = append(refs, Ref{Key: key, Size: int64(len(data))})
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs, nil
}

func (m *MemoryStore) SignReadURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("no such object: %s", key)
	}

	expires := m.Now().Add(ttl).Unix()
	return fmt.Sprintf("memory:///%s?expires=%d", url.PathEscape(key), expires), nil
}

// Fetch resolves a signed URL as the store would at the given instant,
// rejecting it once the expiry has passed.
func (m *MemoryStore) Fetch(rawURL string, at time.Time) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	key, err := url.PathUnescape(u.Path[1:])
	if err != nil {
		return nil, err
	}
	expires, err := strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed signed url %q", rawURL)
	}
	if at.After(time.Unix(expires, 0)) {
		return nil, fmt.Errorf("signed url for %s has expired", key)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("no such object: %s", key)
	}
	return data, nil
}
