package blob

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestKeyRoundTrip(t *testing.T) {
	key := Key("owner-1", "fb-1", "suffix", "report.pdf")
	require.Equal(t, "owner-1/feedback/fb-1/suffix_report.pdf", key)
	require.Equal(t, "report.pdf", DisplayName(key))
	require.True(t, len(key) > len(Prefix("owner-1", "fb-1")))
	require.Equal(t, "owner-1/feedback/fb-1/", Prefix("owner-1", "fb-1"))
}

func TestDisplayName_UnderscoreInOriginalName(t *testing.T) {
	// Original names containing the delimiter survive because only the
	// first "_" separates the suffix.
	key := Key("owner-1", "fb-1", "abc123", "my_log_file.txt")
	require.Equal(t, "my_log_file.txt", DisplayName(key))
}

func TestMemoryStore_PutEnforcesSizeCap(t *testing.T) {
	store := NewMemoryStore(8)
	ctx := context.Background()

	err := store.Put(ctx, "k1", bytes.NewReader([]byte("12345678")), 8)
	require.NoError(t, err)

	err = store.Put(ctx, "k2", bytes.NewReader([]byte("123456789")), 9)
	require.ErrorIs(t, err, ErrObjectTooLarge)

	// Declared size lies small: the store still rejects on actual bytes.
	err = store.Put(ctx, "k3", bytes.NewReader([]byte("123456789")), 4)
	require.ErrorIs(t, err, ErrObjectTooLarge)
}

func TestMemoryStore_ListIsPrefixScopedAndSorted(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	for _, key := range []string{
		"owner-1/feedback/fb-1/b_two.txt",
		"owner-1/feedback/fb-1/a_one.txt",
		"owner-1/feedback/fb-2/c_other.txt",
		"owner-2/feedback/fb-1/d_foreign.txt",
	} {
		require.NoError(t, store.Put(ctx, key, bytes.NewReader([]byte("x")), 1))
	}

	refs, err := store.List(ctx, Prefix("owner-1", "fb-1"))
	require.NoError(t, err)
	require.Len(t, refs, 2)
	require.Equal(t, "owner-1/feedback/fb-1/a_one.txt", refs[0].Key)
	require.Equal(t, "owner-1/feedback/fb-1/b_two.txt", refs[1].Key)
}

func TestMemoryStore_SignedURLValidityWindow(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	signedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return signedAt }

	key := Key("owner-1", "fb-1", "s1", "shot.png")
	require.NoError(t, store.Put(ctx, key, bytes.NewReader([]byte("img")), 3))

	ttl := 5 * 24 * time.Hour
	url, err := store.SignReadURL(ctx, key, ttl)
	require.NoError(t, err)

	// Valid up to and including T + 5 days.
	data, err := store.Fetch(url, signedAt.Add(ttl))
	require.NoError(t, err)
	require.Equal(t, []byte("img"), data)

	// Rejected afterwards.
	_, err = store.Fetch(url, signedAt.Add(ttl+time.Second))
	require.Error(t, err)
	require.Contains(t, err.Error(), "expired")
}

func TestMemoryStore_SignUnknownKeyFails(t *testing.T) {
	store := NewMemoryStore(0)
	_, err := store.SignReadURL(context.Background(), "missing", time.Hour)
	require.Error(t, err)
}
