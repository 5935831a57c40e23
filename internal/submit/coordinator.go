package submit

import (
	"context"

	"feedback-backend/internal/blob"
	"feedback-backend/internal/models"

	"github.com/google/uuid"
)

// RecordCreator is the slice of the record store the coordinator needs.
type RecordCreator interface {
	Create(ctx context.Context, feedback *models.Feedback) error
}

// Coordinator implements the submission half of the pipeline: validate the
// draft, upload every attachment, then — and only then — write the feedback
// record. The record write is the notification trigger, so the upload phase
// must fully settle first; that ordering is the consistency contract the
// notification side relies on when it enumerates blobs by prefix.
type Coordinator struct {
	blobs             blob.Store
	records           RecordCreator
	maxAttachments    int
	maxAttachmentSize int64
}

func NewCoordinator(blobs blob.Store, records RecordCreator, maxAttachments int, maxAttachmentSize int64) *Coordinator {
	return &Coordinator{
		blobs:             blobs,
		records:           records,
		maxAttachments:    maxAttachments,
		maxAttachmentSize: maxAttachmentSize,
	}
}

// Submit runs one submission end to end and returns the generated feedback
// id. Validation failures happen before any write. An upload or record-write
// failure aborts the submission; blobs already written for this feedback id
// are left orphaned and the caller retries with a fresh draft.
func (c *Coordinator) Submit(ctx context.Context, ownerID string, draft models.FeedbackDraft) (string, error) {
	if !draft.Type.Valid() || draft.Text == "" {
		return "", ErrDraftNotSubmittable
	}
	if len(draft.Attachments) > c.maxAttachments {
		return "", &TooManyAttachmentsError{Count: len(draft.Attachments), Max: c.maxAttachments}
	}
	// Size-check every file before the first upload so an oversized file
	// never strands a partial upload. The store enforces the same cap as
	// the authoritative backstop.
	for _, att := range draft.Attachments {
		if att.Size > c.maxAttachmentSize {
			return "", &AttachmentTooLargeError{Name: att.Name, Max: c.maxAttachmentSize}
		}
	}

	feedbackID := uuid.New().String()

	for _, att := range draft.Attachments {
		key := blob.Key(ownerID, feedbackID, uuid.New().String(), att.Name)
		if err := c.uploadOne(ctx, key, att); err != nil {
			return "", &UploadError{Name: att.Name, Err: err}
		}
	}

	feedback := &models.Feedback{
		OwnerID:    ownerID,
		FeedbackID: feedbackID,
		Text:       draft.Text,
		Type:       draft.Type,
	}
	if err := c.records.Create(ctx, feedback); err != nil {
		return "", &RecordWriteError{Err: err}
	}
	return feedbackID, nil
}

func (c *Coordinator) uploadOne(ctx context.Context, key string, att models.Attachment) error {
	rc, err := att.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	return c.blobs.Put(ctx, key, rc, att.Size)
}
