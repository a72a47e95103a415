package wizard

import (
	"fmt"
	"strings"

	"admission-portal/internal/common/errors"
	"admission-portal/internal/models"
)

// Slot names a place in the record that holds an uploaded file.
type Slot string

const (
	SlotPassportPhoto        Slot = "passport-photo"
	SlotSecondaryCertificate Slot = "secondary-certificate"
	SlotUniversityTranscript Slot = "university-transcript"
	SlotMotivationNote       Slot = "motivation-note"
)

func (s Slot) acceptedTypes(p Policy) []string {
	if s == SlotPassportPhoto {
		return p.ImageContentTypes
	}
	return p.DocumentContentTypes
}

// CheckAttachment verifies name, size and content type of a file destined
// for slot.
func CheckAttachment(slot Slot, a models.Attachment, p Policy) error {
	switch slot {
	case SlotPassportPhoto, SlotSecondaryCertificate, SlotUniversityTranscript, SlotMotivationNote:
	default:
		return errors.NewAttachmentRejectedError(string(slot), "unknown attachment slot")
	}
	if strings.TrimSpace(a.Name) == "" {
		return errors.NewAttachmentRejectedError(string(slot), "file name is empty")
	}
	if a.Size <= 0 {
		return errors.NewAttachmentRejectedError(string(slot), "file is empty")
	}
	if a.Size > p.MaxUploadBytes {
		return errors.NewAttachmentRejectedError(string(slot),
			fmt.Sprintf("file is larger than %d MB", p.MaxUploadBytes/(1024*1024)))
	}
	if !acceptsType(slot.acceptedTypes(p), a.ContentType) {
		return errors.NewAttachmentRejectedError(string(slot),
			fmt.Sprintf("content type %q is not accepted", a.ContentType))
	}
	return nil
}

// attachmentTarget returns the pointer field of rec that slot writes to, and
// whether the slot applies to the record's application type.
func attachmentTarget(rec *models.ApplicationRecord, slot Slot) (**models.Attachment, bool) {
	switch slot {
	case SlotPassportPhoto:
		return &rec.Personal.PassportPhoto, true
	case SlotSecondaryCertificate:
		return &rec.Education.Secondary.Certificate, rec.ApplicationType == models.ApplicationTypeUndergraduate
	case SlotUniversityTranscript:
		return &rec.Education.University.Transcript, rec.ApplicationType == models.ApplicationTypePostgraduate
	case SlotMotivationNote:
		return &rec.WorkAndMotivation.Motivation.Note, rec.ApplicationType == models.ApplicationTypePostgraduate
	}
	return nil, false
}
