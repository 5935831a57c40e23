package submit

import (
	"errors"
	"fmt"
)

// ErrDraftNotSubmittable is returned when the precondition guard fires: the
// UI disables submission for such drafts, but the coordinator still refuses
// them defensively.
var ErrDraftNotSubmittable = errors.New("draft requires a type and non-empty text")

// TooManyAttachmentsError is a validation failure raised before any write.
type TooManyAttachmentsError struct {
	Count int
	Max   int
}

func (e *TooManyAttachmentsError) Error() string {
	return fmt.Sprintf("you can only upload a maximum of %d items", e.Max)
}

// AttachmentTooLargeError names the offending file. It is raised before any
// upload begins, so it never leaves partial state behind.
type AttachmentTooLargeError struct {
	Name string
	Max  int64
}

func (e *AttachmentTooLargeError) Error() string {
	return fmt.Sprintf("%q is larger than %d MB", e.Name, e.Max/(1024*1024))
}

// UploadError means at least one blob write failed. Blobs already uploaded
// for this feedback id stay behind as orphans; there is no rollback.
type UploadError struct {
	Name string
	Err  error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload of %q failed: %v", e.Name, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }

// RecordWriteError means every attachment was stored but the feedback record
// itself could not be written, so no notification will ever fire for it.
type RecordWriteError struct {
	Err error
}

func (e *RecordWriteError) Error() string {
	return fmt.Sprintf("feedback record write failed: %v", e.Err)
}

func (e *RecordWriteError) Unwrap() error { return e.Err }
