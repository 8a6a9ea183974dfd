package model

import (
	"time"

	"github.com/velesmarket/backend/internal/domain/enums"
)

// ModerationHistoryItem is one row of the append-only audit trail. Rows are
// inserted once and never updated or deleted.
type ModerationHistoryItem struct {
	ID              int64                  `json:"id"`
	VendorID        int64                  `json:"vendor_id"`
	Action          enums.ModerationAction `json:"action"`
	PreviousStatus  enums.KYCStatus        `json:"previous_status"`
	NewStatus       enums.KYCStatus        `json:"new_status"`
	Notes           string                 `json:"notes"`
	RejectionReason string                 `json:"rejection_reason"`
	Documents       []DocumentSnapshot     `json:"documents"`
	ModeratorID     *int64                 `json:"moderator_id"`
	IP              string                 `json:"ip"`
	UserAgent       string                 `json:"user_agent"`
	CreatedAt       time.Time              `json:"created_at"`
}

type ModerationStats struct {
	ActionCounts       map[enums.ModerationAction]int `json:"action_counts"`
	TotalSubmissions   int                            `json:"total_submissions"`
	TotalResubmissions int                            `json:"total_resubmissions"`
	TotalAttempts      int                            `json:"total_attempts"`
}
