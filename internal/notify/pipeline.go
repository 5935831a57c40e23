package notify

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"feedback-backend/internal/blob"
	"feedback-backend/internal/identity"
	"feedback-backend/internal/mail"
	"feedback-backend/internal/models"

	"golang.org/x/sync/errgroup"
)

// Event is one feedback-record creation, as delivered by the record store's
// change feed.
type Event struct {
	OwnerID    string
	FeedbackID string
	Text       string
	Type       models.FeedbackType
}

func EventFromRecord(feedback models.Feedback) Event {
	return Event{
		OwnerID:    feedback.OwnerID,
		FeedbackID: feedback.FeedbackID,
		Text:       feedback.Text,
		Type:       feedback.Type,
	}
}

// SignedLink pairs an attachment's display name with its time-limited URL.
// Links are minted fresh for every notification, never cached.
type SignedLink struct {
	Name string
	URL  string
}

// Pipeline turns a record-creation event into one operator email: enumerate
// the record's attachment blobs by key prefix, sign a read link for each,
// resolve the submitter's email, compose and dispatch.
type Pipeline struct {
	blobs    blob.Store
	identity identity.Provider
	mailer   mail.Transport

	operatorEmail string
	senderEmail   string
	linkTTL       time.Duration
}

func NewPipeline(blobs blob.Store, idp identity.Provider, mailer mail.Transport, operatorEmail, senderEmail string, linkTTL time.Duration) *Pipeline {
	return &Pipeline{
		blobs:         blobs,
		identity:      idp,
		mailer:        mailer,
		operatorEmail: operatorEmail,
		senderEmail:   senderEmail,
		linkTTL:       linkTTL,
	}
}

// Notify handles one event. The blob enumeration is complete because the
// record is only ever written after all of its blobs; any link-signing,
// identity, or dispatch failure aborts the whole notification — there is no
// partial email.
func (p *Pipeline) Notify(ctx context.Context, event Event) error {
	prefix := blob.Prefix(event.OwnerID, event.FeedbackID)
	refs, err := p.blobs.List(ctx, prefix)
	if err != nil {
		return fmt.Errorf("listing attachments for %s: %w", event.FeedbackID, err)
	}

	// Each signing call is an independent read, so mint the links in
	// parallel. The slice keeps enumeration order regardless.
	links := make([]SignedLink, len(refs))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range refs {
		g.Go(func() error {
			url, err := p.blobs.SignReadURL(gctx, ref.Key, p.linkTTL)
			if err != nil {
				return fmt.Errorf("signing link for %s: %w", ref.Key, err)
			}
			links[i] = SignedLink{Name: blob.DisplayName(ref.Key), URL: url}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	submitterEmail, err := p.identity.ResolveDisplayIdentity(ctx, event.OwnerID)
	if err != nil {
		return fmt.Errorf("resolving owner %s: %w", event.OwnerID, err)
	}

	msg := mail.Message{
		From:    p.senderEmail,
		To:      p.operatorEmail,
		Subject: fmt.Sprintf("Feedback From %s [%s]", submitterEmail, event.Type),
		HTML:    composeBody(event, links),
	}
	if err := p.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("dispatching notification for %s: %w", event.FeedbackID, err)
	}
	return nil
}

func composeBody(event Event, links []SignedLink) string {
	var b strings.Builder
	b.WriteString("<div>\n")
	fmt.Fprintf(&b, "  <div>%s</div>\n", html.EscapeString(event.Text))
	fmt.Fprintf(&b, "  <div style=\"margin-top: 1rem\">Feedback ID: %s</div>\n", html.EscapeString(event.FeedbackID))
	b.WriteString("  <div>Attachments</div>\n")
	if len(links) == 0 {
		b.WriteString("  None\n")
	}
	for _, link := range links {
		fmt.Fprintf(&b, "  <a style=\"display: block\" href=\"%s\">%s</a>\n", link.URL, html.EscapeString(link.Name))
	}
	b.WriteString("</div>")
	return b.String()
}
