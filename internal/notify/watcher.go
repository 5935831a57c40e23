package notify

import (
	"context"
	"log"

	"feedback-backend/internal/models"
)

// Watcher drains record-creation events and runs the pipeline once per
// event. Delivery is at-least-once and the pipeline is not idempotent, so a
// redelivered event can produce a duplicate operator email. A failure is
// logged and dropped — there is no retry loop or dead-letter queue, meaning
// the operator silently never sees that notification.
type Watcher struct {
	pipeline *Pipeline
}

func NewWatcher(pipeline *Pipeline) *Watcher {
	return &Watcher{pipeline: pipeline}
}

func (w *Watcher) Run(ctx context.Context, events <-chan models.Feedback) {
	for feedback := range events {
		if err := w.pipeline.Notify(ctx, EventFromRecord(feedback)); err != nil {
			log.Printf("Error notifying for feedback %s: %v", feedback.FeedbackID, err)
		}
	}
	log.Println("Feedback event stream closed, notification watcher exiting")
}
