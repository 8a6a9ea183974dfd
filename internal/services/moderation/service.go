package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
	pgrepo "github.com/velesmarket/backend/internal/repo/postgres"
)

const signedURLTTL = 5 * time.Minute

var (
	ErrValidation       = errors.New("validation error")
	ErrVendorNotFound   = errors.New("vendor not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidState     = errors.New("vendor is not in a reviewable state")
	ErrQueueEmpty       = errors.New("moderation queue is empty")
)

// Action is the admin-side transition on a submitted vendor.
type Action string

const (
	ActionApprove   Action = "approve"
	ActionReject    Action = "reject"
	ActionNeedsInfo Action = "needs_info"
)

// ParseAction accepts both the action verbs and the target status values, so
// clients may send either `approve` or `APPROVED` and so on.
func ParseAction(raw string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "approve", "approved":
		return ActionApprove, nil
	case "reject", "rejected":
		return ActionReject, nil
	case "needs_info":
		return ActionNeedsInfo, nil
	}
	return "", fmt.Errorf("unknown moderation action %q: %w", raw, ErrValidation)
}

// TxRunner runs a unit of work inside one transaction. Production wiring
// uses the pgx-backed runner from the postgres repo package.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type VendorStore interface {
	GetForUpdate(ctx context.Context, tx pgx.Tx, vendorID int64) (model.Vendor, error)
	UpdateKYCStatus(ctx context.Context, tx pgx.Tx, vendorID int64, status enums.KYCStatus) error
	UpdateType(ctx context.Context, tx pgx.Tx, vendorID int64, vendorType enums.VendorType) error
	SetPayoutEnabled(ctx context.Context, tx pgx.Tx, vendorID int64, enabled bool) error
	NextSubmitted(ctx context.Context) (model.Vendor, error)
	CountSubmitted(ctx context.Context) (int, error)
}

type RoleStore interface {
	GetByVendor(ctx context.Context, vendorID int64) (model.VendorRole, error)
	SetModeratorNotes(ctx context.Context, tx pgx.Tx, vendorID int64, moderatorID int64, notes string, at time.Time) error
}

type DocumentStore interface {
	ListByVendor(ctx context.Context, vendorID int64) ([]model.Document, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, documentID int64) (model.Document, error)
	UpdateDecision(ctx context.Context, tx pgx.Tx, documentID int64, status enums.DocumentStatus, moderatorID int64, notes, rejectionReason string) error
	Snapshots(ctx context.Context, tx pgx.Tx, vendorID int64) ([]model.DocumentSnapshot, error)
	CountUndecided(ctx context.Context, tx pgx.Tx, vendorID int64) (int, error)
}

type HistoryStore interface {
	Append(ctx context.Context, tx pgx.Tx, item model.ModerationHistoryItem) error
	ListByVendor(ctx context.Context, vendorID int64) ([]model.ModerationHistoryItem, error)
	CountsByAction(ctx context.Context, vendorID int64) (map[enums.ModerationAction]int, error)
}

type URLSigner interface {
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

type StatusCache interface {
	Invalidate(ctx context.Context, vendorID int64) error
}

type Service struct {
	tx          TxRunner
	vendors     VendorStore
	roles       RoleStore
	documents   DocumentStore
	history     HistoryStore
	signer      URLSigner
	statusCache StatusCache
	logger      *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Tx          TxRunner
	Vendors     VendorStore
	Roles       RoleStore
	Documents   DocumentStore
	History     HistoryStore
	Signer      URLSigner
	StatusCache StatusCache
	Logger      *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		tx:          deps.Tx,
		vendors:     deps.Vendors,
		roles:       deps.Roles,
		documents:   deps.Documents,
		history:     deps.History,
		signer:      deps.Signer,
		statusCache: deps.StatusCache,
		logger:      logger,
		now:         time.Now,
	}
}

// ModeratorInput carries the acting moderator and the audit metadata of the
// request performing the transition.
type ModeratorInput struct {
	ModeratorID     int64
	Notes           string
	RejectionReason string
	IP              string
	UserAgent       string
}

// Transition applies one admin decision to a vendor currently under review.
// APPROVED and REJECTED are terminal: any further action on the vendor needs
// a fresh submission cycle. Approval flips the vendor to PRO but does not
// enable payouts; that flag requires every document individually approved.
func (s *Service) Transition(ctx context.Context, vendorID int64, action Action, in ModeratorInput) (enums.KYCStatus, error) {
	if vendorID <= 0 {
		return "", fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}

	action, err := ParseAction(string(action))
	if err != nil {
		return "", err
	}

	var (
		newStatus     enums.KYCStatus
		historyAction enums.ModerationAction
	)
	switch action {
	case ActionApprove:
		newStatus, historyAction = enums.KYCStatusApproved, enums.ModerationActionApproved
	case ActionReject:
		if strings.TrimSpace(in.RejectionReason) == "" {
			return "", fmt.Errorf("rejection reason is required: %w", ErrValidation)
		}
		in.RejectionReason = ResolveRejectReason(in.RejectionReason)
		newStatus, historyAction = enums.KYCStatusRejected, enums.ModerationActionRejected
	case ActionNeedsInfo:
		if strings.TrimSpace(in.Notes) == "" {
			return "", fmt.Errorf("notes are required: %w", ErrValidation)
		}
		newStatus, historyAction = enums.KYCStatusNeedsInfo, enums.ModerationActionNeedsInfo
	}

	if s.tx == nil || s.vendors == nil || s.history == nil {
		return "", fmt.Errorf("moderation service dependencies are not configured")
	}

	err = s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		vendor, err := s.vendors.GetForUpdate(txCtx, tx, vendorID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrVendorNotFound) {
				return ErrVendorNotFound
			}
			return err
		}

		if vendor.KYCStatus != enums.KYCStatusSubmitted && vendor.KYCStatus != enums.KYCStatusNeedsInfo {
			return fmt.Errorf("vendor is %s: %w", vendor.KYCStatus, ErrInvalidState)
		}

		if err := s.vendors.UpdateKYCStatus(txCtx, tx, vendorID, newStatus); err != nil {
			return err
		}

		if action == ActionApprove {
			if err := s.vendors.UpdateType(txCtx, tx, vendorID, enums.VendorTypePro); err != nil {
				return err
			}
			if err := s.refreshPayoutEligibility(txCtx, tx, vendorID); err != nil {
				return err
			}
		}

		if s.roles != nil && strings.TrimSpace(in.Notes) != "" {
			if err := s.roles.SetModeratorNotes(txCtx, tx, vendorID, in.ModeratorID, in.Notes, s.now()); err != nil {
				return err
			}
		}

		snapshots, err := s.snapshots(txCtx, tx, vendorID)
		if err != nil {
			return err
		}

		moderatorID := in.ModeratorID
		return s.history.Append(txCtx, tx, model.ModerationHistoryItem{
			VendorID:        vendorID,
			Action:          historyAction,
			PreviousStatus:  vendor.KYCStatus,
			NewStatus:       newStatus,
			Notes:           in.Notes,
			RejectionReason: in.RejectionReason,
			Documents:       snapshots,
			ModeratorID:     &moderatorID,
			IP:              in.IP,
			UserAgent:       in.UserAgent,
		})
	})
	if err != nil {
		return "", err
	}

	s.invalidateStatus(ctx, vendorID)
	return newStatus, nil
}

// DecideDocument approves or rejects a single document. Rejecting a document
// of a vendor under review force-transitions the vendor to NEEDS_INFO; this
// is a domain rule applied here, not a database trigger. Rejection is not
// allowed once the vendor has reached a terminal state. Approving the last
// undecided document of an approved vendor enables payouts.
func (s *Service) DecideDocument(ctx context.Context, documentID int64, status enums.DocumentStatus, in ModeratorInput) error {
	if documentID <= 0 {
		return fmt.Errorf("invalid document id: %w", ErrValidation)
	}
	if status != enums.DocumentStatusApproved && status != enums.DocumentStatusRejected {
		return fmt.Errorf("document decision must approve or reject: %w", ErrValidation)
	}
	if status == enums.DocumentStatusRejected {
		if strings.TrimSpace(in.RejectionReason) == "" {
			return fmt.Errorf("rejection reason is required: %w", ErrValidation)
		}
		in.RejectionReason = ResolveRejectReason(in.RejectionReason)
	}
	if s.tx == nil || s.vendors == nil || s.documents == nil || s.history == nil {
		return fmt.Errorf("moderation service dependencies are not configured")
	}

	var touchedVendor int64
	err := s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		doc, err := s.documents.GetForUpdate(txCtx, tx, documentID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrDocumentNotFound) {
				return ErrDocumentNotFound
			}
			return err
		}
		if doc.Status != enums.DocumentStatusPending {
			return fmt.Errorf("document is already %s: %w", doc.Status, ErrInvalidState)
		}

		vendor, err := s.vendors.GetForUpdate(txCtx, tx, doc.VendorID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrVendorNotFound) {
				return ErrVendorNotFound
			}
			return err
		}
		touchedVendor = vendor.ID

		if status == enums.DocumentStatusRejected && vendor.KYCStatus.Terminal() {
			return fmt.Errorf("vendor review is closed as %s, documents cannot be rejected: %w", vendor.KYCStatus, ErrInvalidState)
		}
		if vendor.KYCStatus == enums.KYCStatusRejected {
			return fmt.Errorf("vendor review is closed as %s: %w", vendor.KYCStatus, ErrInvalidState)
		}
		if vendor.KYCStatus == enums.KYCStatusDraft {
			return fmt.Errorf("vendor has not submitted a review request: %w", ErrInvalidState)
		}

		if err := s.documents.UpdateDecision(txCtx, tx, documentID, status, in.ModeratorID, in.Notes, in.RejectionReason); err != nil {
			return err
		}

		if status == enums.DocumentStatusRejected && vendor.KYCStatus == enums.KYCStatusSubmitted {
			if err := s.vendors.UpdateKYCStatus(txCtx, tx, vendor.ID, enums.KYCStatusNeedsInfo); err != nil {
				return err
			}

			snapshots, err := s.snapshots(txCtx, tx, vendor.ID)
			if err != nil {
				return err
			}
			moderatorID := in.ModeratorID
			if err := s.history.Append(txCtx, tx, model.ModerationHistoryItem{
				VendorID:        vendor.ID,
				Action:          enums.ModerationActionNeedsInfo,
				PreviousStatus:  vendor.KYCStatus,
				NewStatus:       enums.KYCStatusNeedsInfo,
				Notes:           in.Notes,
				RejectionReason: in.RejectionReason,
				Documents:       snapshots,
				ModeratorID:     &moderatorID,
				IP:              in.IP,
				UserAgent:       in.UserAgent,
			}); err != nil {
				return err
			}
		}

		if status == enums.DocumentStatusApproved && vendor.KYCStatus == enums.KYCStatusApproved {
			if err := s.refreshPayoutEligibility(txCtx, tx, vendor.ID); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateStatus(ctx, touchedVendor)
	return nil
}

type HistoryResult struct {
	Items []model.ModerationHistoryItem
	Stats model.ModerationStats
}

// History returns the vendor's full audit trail plus aggregate counts.
func (s *Service) History(ctx context.Context, vendorID int64) (HistoryResult, error) {
	if vendorID <= 0 {
		return HistoryResult{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if s.history == nil {
		return HistoryResult{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	items, err := s.history.ListByVendor(ctx, vendorID)
	if err != nil {
		return HistoryResult{}, err
	}

	counts, err := s.history.CountsByAction(ctx, vendorID)
	if err != nil {
		return HistoryResult{}, err
	}

	stats := model.ModerationStats{
		ActionCounts:       counts,
		TotalSubmissions:   counts[enums.ModerationActionSubmitted],
		TotalResubmissions: counts[enums.ModerationActionResubmitted],
	}
	stats.TotalAttempts = stats.TotalSubmissions + stats.TotalResubmissions

	return HistoryResult{Items: items, Stats: stats}, nil
}

type QueueDocument struct {
	Document model.Document
	URL      string
}

type QueueItem struct {
	Vendor    model.Vendor
	Role      model.VendorRole
	Documents []QueueDocument
	QueueSize int
	ETABucket string
}

// ETABucketFromQueueSize maps the review backlog into a coarse wait
// estimate shown to vendors after submission.
func ETABucketFromQueueSize(queueSize int) string {
	switch {
	case queueSize <= 10:
		return "up_to_1_day"
	case queueSize <= 30:
		return "up_to_2_days"
	case queueSize <= 60:
		return "up_to_3_days"
	default:
		return "more_than_3_days"
	}
}

// NextPending returns the oldest submitted vendor for review, with presigned
// document URLs for the moderator UI.
func (s *Service) NextPending(ctx context.Context) (QueueItem, error) {
	if s.vendors == nil || s.roles == nil || s.documents == nil {
		return QueueItem{}, fmt.Errorf("moderation service dependencies are not configured")
	}

	vendor, err := s.vendors.NextSubmitted(ctx)
	if err != nil {
		if errors.Is(err, pgrepo.ErrVendorNotFound) {
			return QueueItem{}, ErrQueueEmpty
		}
		return QueueItem{}, err
	}

	queueSize, err := s.vendors.CountSubmitted(ctx)
	if err != nil {
		return QueueItem{}, err
	}

	role, err := s.roles.GetByVendor(ctx, vendor.ID)
	if err != nil && !errors.Is(err, pgrepo.ErrVendorRoleNotFound) {
		return QueueItem{}, err
	}

	docs, err := s.documents.ListByVendor(ctx, vendor.ID)
	if err != nil {
		return QueueItem{}, err
	}

	reviewDocs := make([]QueueDocument, 0, len(docs))
	for _, doc := range docs {
		url, signErr := s.signKey(ctx, doc.ObjectKey)
		if signErr != nil {
			return QueueItem{}, signErr
		}
		reviewDocs = append(reviewDocs, QueueDocument{Document: doc, URL: url})
	}

	return QueueItem{
		Vendor:    vendor,
		Role:      role,
		Documents: reviewDocs,
		QueueSize: queueSize,
		ETABucket: ETABucketFromQueueSize(queueSize),
	}, nil
}

func (s *Service) refreshPayoutEligibility(ctx context.Context, tx pgx.Tx, vendorID int64) error {
	undecided, err := s.documents.CountUndecided(ctx, tx, vendorID)
	if err != nil {
		return err
	}
	return s.vendors.SetPayoutEnabled(ctx, tx, vendorID, undecided == 0)
}

func (s *Service) snapshots(ctx context.Context, tx pgx.Tx, vendorID int64) ([]model.DocumentSnapshot, error) {
	if s.documents == nil {
		return nil, nil
	}
	return s.documents.Snapshots(ctx, tx, vendorID)
}

func (s *Service) invalidateStatus(ctx context.Context, vendorID int64) {
	if s.statusCache == nil || vendorID <= 0 {
		return
	}
	if err := s.statusCache.Invalidate(ctx, vendorID); err != nil {
		s.logger.Debug("invalidate kyc status cache", zap.Int64("vendor_id", vendorID), zap.Error(err))
	}
}

func (s *Service) signKey(ctx context.Context, key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", nil
	}
	if s.signer == nil {
		return "", fmt.Errorf("moderation url signer is not configured")
	}
	url, err := s.signer.PresignGet(ctx, key, signedURLTTL)
	if err != nil {
		return "", fmt.Errorf("sign document key: %w", err)
	}
	return url, nil
}
