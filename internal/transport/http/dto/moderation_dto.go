package dto

import "time"

// ModerationDecisionRequest carries the admin decision either as a target
// status (APPROVED, REJECTED, NEEDS_INFO) or as an action verb (approve,
// reject, needs_info); status wins when both are present.
type ModerationDecisionRequest struct {
	Status          string `json:"status,omitempty"`
	Action          string `json:"action,omitempty"`
	Notes           string `json:"notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type ModerationDecisionResponse struct {
	KYCStatus string `json:"kyc_status"`
}

type DocumentDecisionRequest struct {
	Status          string `json:"status"`
	Notes           string `json:"notes,omitempty"`
	RejectionReason string `json:"rejection_reason,omitempty"`
}

type QueueDocumentResponse struct {
	ID       int64  `json:"id"`
	DocType  string `json:"doc_type"`
	FileName string `json:"file_name"`
	Status   string `json:"status"`
	URL      string `json:"url"`
}

type QueueItemResponse struct {
	VendorID     int64                   `json:"vendor_id"`
	VendorType   string                  `json:"vendor_type"`
	KYCStatus    string                  `json:"kyc_status"`
	Role         string                  `json:"role"`
	FullName     string                  `json:"full_name,omitempty"`
	CompanyName  string                  `json:"company_name,omitempty"`
	DirectorName string                  `json:"director_name,omitempty"`
	INN          string                  `json:"inn,omitempty"`
	OGRN         string                  `json:"ogrn,omitempty"`
	OGRNIP       string                  `json:"ogrnip,omitempty"`
	Documents    []QueueDocumentResponse `json:"documents"`
	QueueSize    int                     `json:"queue_size"`
	ETABucket    string                  `json:"eta_bucket"`
}

type HistoryDocumentResponse struct {
	ID      int64  `json:"id"`
	DocType string `json:"doc_type"`
	Status  string `json:"status"`
}

type HistoryItemResponse struct {
	ID              int64                     `json:"id"`
	Action          string                    `json:"action"`
	PreviousStatus  string                    `json:"previous_status"`
	NewStatus       string                    `json:"new_status"`
	Notes           string                    `json:"notes,omitempty"`
	RejectionReason string                    `json:"rejection_reason,omitempty"`
	Documents       []HistoryDocumentResponse `json:"documents"`
	ModeratorID     *int64                    `json:"moderator_id,omitempty"`
	CreatedAt       time.Time                 `json:"created_at"`
}

type HistoryStatsResponse struct {
	TotalSubmissions   int            `json:"total_submissions"`
	TotalResubmissions int            `json:"total_resubmissions"`
	TotalAttempts      int            `json:"total_attempts"`
	ActionCounts       map[string]int `json:"action_counts"`
}

type HistoryResponse struct {
	Items []HistoryItemResponse `json:"items"`
	Stats HistoryStatsResponse  `json:"stats"`
}

type RejectReasonResponse struct {
	ReasonCode      string `json:"reason_code"`
	Label           string `json:"label"`
	ReasonText      string `json:"reason_text"`
	RequiredFixStep string `json:"required_fix_step"`
}

type RejectReasonsListResponse struct {
	Items []RejectReasonResponse `json:"items"`
}
