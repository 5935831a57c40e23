package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"feedback-backend/internal/blob"
	"feedback-backend/internal/identity"
	"feedback-backend/internal/mail"

	"github.com/stretchr/testify/require"
)

const testLinkTTL = 5 * 24 * time.Hour

type fakeIdentity struct {
	emails map[string]string
}

func (f *fakeIdentity) SignIn(ctx context.Context, email, password string) (*identity.Session, error) {
	return nil, errors.New("not supported")
}

func (f *fakeIdentity) CurrentUser(ctx context.Context, token string) (*identity.Session, error) {
	return nil, errors.New("not supported")
}

func (f *fakeIdentity) ResolveDisplayIdentity(ctx context.Context, ownerID string) (string, error) {
	email, ok := f.emails[ownerID]
	if !ok {
		return "", fmt.Errorf("%w: %s", identity.ErrUnknownOwner, ownerID)
	}
	return email, nil
}

type failingTransport struct{}

func (failingTransport) Send(ctx context.Context, msg mail.Message) error {
	return errors.New("smtp down")
}

func putAttachment(t *testing.T, store *blob.MemoryStore, ownerID, feedbackID, suffix, name, content string) string {
	t.Helper()
	key := blob.Key(ownerID, feedbackID, suffix, name)
	err := store.Put(context.Background(), key, bytes.NewReader([]byte(content)), int64(len(content)))
	require.NoError(t, err)
	return key
}

func newTestPipeline(store blob.Store, transport mail.Transport) *Pipeline {
	idp := &fakeIdentity{emails: map[string]string{"owner-1": "user@example.com"}}
	return NewPipeline(store, idp, transport, "ops@example.com", "noreply@example.com", testLinkTTL)
}

func TestNotify_NoAttachments(t *testing.T) {
	store := blob.NewMemoryStore(0)
	transport := mail.NewMockTransport()
	p := newTestPipeline(store, transport)

	event := Event{OwnerID: "owner-1", FeedbackID: "fb-1", Text: "Button broken", Type: "issue"}
	require.NoError(t, p.Notify(context.Background(), event))

	sent := transport.Sent()
	require.Len(t, sent, 1)
	msg := sent[0]
	require.Equal(t, "ops@example.com", msg.To)
	require.Equal(t, "noreply@example.com", msg.From)
	require.Equal(t, "Feedback From user@example.com [issue]", msg.Subject)
	require.Contains(t, msg.HTML, "Button broken")
	require.Contains(t, msg.HTML, "Feedback ID: fb-1")
	require.Contains(t, msg.HTML, "None")
	require.NotContains(t, msg.HTML, "<a ")
}

func TestNotify_LinksEveryAttachmentInOrder(t *testing.T) {
	store := blob.NewMemoryStore(0)
	transport := mail.NewMockTransport()
	p := newTestPipeline(store, transport)

	putAttachment(t, store, "owner-1", "fb-2", "s1", "first.png", "a")
	putAttachment(t, store, "owner-1", "fb-2", "s2", "second.png", "b")
	putAttachment(t, store, "owner-1", "fb-2", "s3", "third.png", "c")
	// Same names under a different record must not leak in.
	putAttachment(t, store, "owner-1", "fb-other", "s4", "first.png", "d")

	event := Event{OwnerID: "owner-1", FeedbackID: "fb-2", Text: "screenshots attached", Type: "idea"}
	require.NoError(t, p.Notify(context.Background(), event))

	sent := transport.Sent()
	require.Len(t, sent, 1)
	body := sent[0].HTML
	require.Equal(t, 3, strings.Count(body, "<a "))
	require.NotContains(t, body, "None")

	// Enumeration order is key order; the suffixes fix it here.
	first := strings.Index(body, ">first.png<")
	second := strings.Index(body, ">second.png<")
	third := strings.Index(body, ">third.png<")
	require.True(t, first >= 0 && second > first && third > second,
		"links out of order: %s", body)
}

func TestNotify_DuplicateOriginalNames(t *testing.T) {
	store := blob.NewMemoryStore(0)
	transport := mail.NewMockTransport()
	p := newTestPipeline(store, transport)

	k1 := putAttachment(t, store, "owner-1", "fb-3", "s1", "log.txt", "first")
	k2 := putAttachment(t, store, "owner-1", "fb-3", "s2", "log.txt", "second")
	require.NotEqual(t, k1, k2)

	event := Event{OwnerID: "owner-1", FeedbackID: "fb-3", Text: "two logs", Type: "issue"}
	require.NoError(t, p.Notify(context.Background(), event))

	body := transport.Sent()[0].HTML
	require.Equal(t, 2, strings.Count(body, ">log.txt</a>"))
	require.Equal(t, 2, strings.Count(body, "<a "))
}

func TestNotify_UnknownOwnerAbortsWithoutMail(t *testing.T) {
	store := blob.NewMemoryStore(0)
	transport := mail.NewMockTransport()
	p := newTestPipeline(store, transport)

	event := Event{OwnerID: "owner-unknown", FeedbackID: "fb-4", Text: "hi", Type: "other"}
	err := p.Notify(context.Background(), event)
	require.ErrorIs(t, err, identity.ErrUnknownOwner)
	require.Empty(t, transport.Sent())
}

func TestNotify_DispatchFailurePropagates(t *testing.T) {
	store := blob.NewMemoryStore(0)
	p := newTestPipeline(store, failingTransport{})

	event := Event{OwnerID: "owner-1", FeedbackID: "fb-5", Text: "hi", Type: "issue"}
	err := p.Notify(context.Background(), event)
	require.Error(t, err)
	require.Contains(t, err.Error(), "smtp down")
}

func TestNotify_EscapesUserText(t *testing.T) {
	store := blob.NewMemoryStore(0)
	transport := mail.NewMockTransport()
	p := newTestPipeline(store, transport)

	event := Event{OwnerID: "owner-1", FeedbackID: "fb-6", Text: `<script>alert("hi")</script>`, Type: "issue"}
	require.NoError(t, p.Notify(context.Background(), event))

	body := transport.Sent()[0].HTML
	require.NotContains(t, body, "<script>")
	require.Contains(t, body, "&lt;script&gt;")
}
