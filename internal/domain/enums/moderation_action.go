package enums

type ModerationAction string

const (
	ModerationActionSubmitted   ModerationAction = "SUBMITTED"
	ModerationActionResubmitted ModerationAction = "RESUBMITTED"
	ModerationActionApproved    ModerationAction = "APPROVED"
	ModerationActionRejected    ModerationAction = "REJECTED"
	ModerationActionNeedsInfo   ModerationAction = "NEEDS_INFO"
)

// Submission reports whether the action opened a review cycle rather than
// closed one.
func (a ModerationAction) Submission() bool {
	return a == ModerationActionSubmitted || a == ModerationActionResubmitted
}
