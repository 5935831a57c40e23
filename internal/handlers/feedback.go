package handlers

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"

	"feedback-backend/internal/middleware"
	"feedback-backend/internal/models"
	"feedback-backend/internal/submit"

	"github.com/go-chi/chi/v5"
)

// maxFormMemory caps how much of the multipart body is buffered in memory;
// larger file parts spill to disk.
const maxFormMemory = 32 << 20

// RecordFinder is the read slice of the record store the handler needs.
type RecordFinder interface {
	FindByFeedbackID(ctx context.Context, feedbackID string) (*models.Feedback, error)
}

type FeedbackHandler struct {
	coordinator *submit.Coordinator
	records     RecordFinder
}

func NewFeedbackHandler(coordinator *submit.Coordinator, records RecordFinder) *FeedbackHandler {
	return &FeedbackHandler{
		coordinator: coordinator,
		records:     records,
	}
}

// --- POST /feedback ---
//
// Multipart form: "type" (issue|idea|other), "text", and zero or more
// "attachments" file parts.

func (h *FeedbackHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	if ownerID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid multipart form"})
		return
	}
	// The parsed form owns the draft's staged files; release them once the
	// submission settles either way.
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	draft := models.FeedbackDraft{
		Type: models.FeedbackType(r.FormValue("type")),
		Text: r.FormValue("text"),
	}
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["attachments"] {
			draft.Attachments = append(draft.Attachments, models.Attachment{
				Name: fh.Filename,
				Size: fh.Size,
				Open: func() (io.ReadCloser, error) {
					f, err := fh.Open()
					if err != nil {
						return nil, err
					}
					return f, nil
				},
			})
		}
	}

	feedbackID, err := h.coordinator.Submit(r.Context(), ownerID, draft)
	if err != nil {
		h.writeSubmitError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"message":     "feedback submitted successfully",
		"feedback_id": feedbackID,
	})
}

// --- GET /feedback/{feedbackID} ---
//
// Returns the caller's own record; other owners' records are
// indistinguishable from missing ones.

func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())
	if ownerID == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
		return
	}

	feedbackID := chi.URLParam(r, "feedbackID")
	feedback, err := h.records.FindByFeedbackID(r.Context(), feedbackID)
	if err != nil {
		log.Printf("Error finding feedback %s: %v", feedbackID, err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	if feedback == nil || feedback.OwnerID != ownerID {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "feedback not found"})
		return
	}

	writeJSON(w, http.StatusOK, feedback)
}

// Validation failures get their specific, actionable message; everything
// else is a generic failure with the underlying cause logged.
func (h *FeedbackHandler) writeSubmitError(w http.ResponseWriter, err error) {
	var tooMany *submit.TooManyAttachmentsError
	var tooLarge *submit.AttachmentTooLargeError
	switch {
	case errors.Is(err, submit.ErrDraftNotSubmittable):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "feedback type and text are required"})
	case errors.As(err, &tooMany), errors.As(err, &tooLarge):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("Error submitting feedback: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "an unknown error occurred while submitting feedback"})
	}
}
