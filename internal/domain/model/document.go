package model

import (
	"time"

	"github.com/velesmarket/backend/internal/domain/enums"
)

type Document struct {
	ID              int64                `json:"id"`
	VendorID        int64                `json:"vendor_id"`
	DocType         enums.DocType        `json:"doc_type"`
	ObjectKey       string               `json:"object_key"`
	FileName        string               `json:"file_name"`
	Status          enums.DocumentStatus `json:"status"`
	ModeratorNotes  string               `json:"moderator_notes"`
	RejectionReason string               `json:"rejection_reason"`
	ModeratorID     *int64               `json:"moderator_id"`
	DecidedAt       *time.Time           `json:"decided_at"`
	CreatedAt       time.Time            `json:"created_at"`
}

// DocumentSnapshot is the per-document slice captured into every moderation
// history row. Immutable once written.
type DocumentSnapshot struct {
	ID      int64                `json:"id"`
	DocType enums.DocType        `json:"doc_type"`
	Status  enums.DocumentStatus `json:"status"`
}
