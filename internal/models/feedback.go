package models

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// FeedbackType is the closed set of feedback categories.
type FeedbackType string

const (
	FeedbackIssue FeedbackType = "issue"
	FeedbackIdea  FeedbackType = "idea"
	FeedbackOther FeedbackType = "other"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackIssue, FeedbackIdea, FeedbackOther:
		return true
	}
	return false
}

// Feedback is the durable record for one submission. It is written exactly
// once, after every attachment blob for its FeedbackID has been stored, and
// is never mutated afterwards.
type Feedback struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID    string        `bson:"owner_id" json:"owner_id"`
	FeedbackID string        `bson:"feedback_id" json:"feedback_id"`
	Text       string        `bson:"text" json:"text"`
	Type       FeedbackType  `bson:"type" json:"type"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}

// Attachment is one pending file in a draft. Open is called at most once,
// when the file is uploaded.
type Attachment struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FeedbackDraft is the transient client-side state of a submission. A draft
// is submittable only when Type is set and Text is non-empty.
type FeedbackDraft struct {
	Type        FeedbackType
	Text        string
	Attachments []Attachment
}
