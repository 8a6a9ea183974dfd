package onboarding

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
	"github.com/velesmarket/backend/internal/domain/rules"
	pgrepo "github.com/velesmarket/backend/internal/repo/postgres"
)

var (
	ErrVendorNotFound = errors.New("vendor not found")
	ErrConflict       = errors.New("vendor is not eligible for submission")
)

// TxRunner runs a unit of work inside one transaction. Production wiring
// uses the pgx-backed runner from the postgres repo package.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error
}

type VendorStore interface {
	GetByID(ctx context.Context, vendorID int64) (model.Vendor, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, vendorID int64) (model.Vendor, error)
	UpdateKYCStatus(ctx context.Context, tx pgx.Tx, vendorID int64, status enums.KYCStatus) error
}

type RoleStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, role model.VendorRole) error
	GetByVendor(ctx context.Context, vendorID int64) (model.VendorRole, error)
}

type BankStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, account model.BankAccount) error
}

type TaxStore interface {
	Upsert(ctx context.Context, tx pgx.Tx, profile model.TaxProfile) error
}

type DocumentStore interface {
	Snapshots(ctx context.Context, tx pgx.Tx, vendorID int64) ([]model.DocumentSnapshot, error)
}

type HistoryStore interface {
	Append(ctx context.Context, tx pgx.Tx, item model.ModerationHistoryItem) error
}

// BankDirectory resolves a routing code into the bank identity it encodes.
type BankDirectory interface {
	ResolveBank(ctx context.Context, bik string) (name, corrAccount string, err error)
}

type StatusCache interface {
	GetStatus(ctx context.Context, vendorID int64) (enums.KYCStatus, bool, error)
	SetStatus(ctx context.Context, vendorID int64, status enums.KYCStatus, ttl time.Duration) error
	Invalidate(ctx context.Context, vendorID int64) error
}

type Service struct {
	tx          TxRunner
	vendors     VendorStore
	roles       RoleStore
	banks       BankStore
	taxes       TaxStore
	documents   DocumentStore
	history     HistoryStore
	bankDir     BankDirectory
	statusCache StatusCache
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

type Dependencies struct {
	Tx            TxRunner
	Vendors       VendorStore
	Roles         RoleStore
	Banks         BankStore
	Taxes         TaxStore
	Documents     DocumentStore
	History       HistoryStore
	BankDirectory BankDirectory
	StatusCache   StatusCache
	CacheTTL      time.Duration
	Logger        *zap.Logger
}

func NewService(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cacheTTL := deps.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &Service{
		tx:          deps.Tx,
		vendors:     deps.Vendors,
		roles:       deps.Roles,
		banks:       deps.Banks,
		taxes:       deps.Taxes,
		documents:   deps.Documents,
		history:     deps.History,
		bankDir:     deps.BankDirectory,
		statusCache: deps.StatusCache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         time.Now,
	}
}

// SubmitInput is the complete wizard payload. Actor metadata goes verbatim
// into the audit trail.
type SubmitInput struct {
	Form      FormState
	IP        string
	UserAgent string
}

type SubmitResult struct {
	Action    enums.ModerationAction
	KYCStatus enums.KYCStatus
}

// Submit runs the full upgrade submission. Everything happens inside one
// transaction with the vendor row locked: precondition checks, role/bank/tax
// upserts, the status flip and the history append either all land or none
// do, so two racing submissions cannot both pass the eligibility check.
func (s *Service) Submit(ctx context.Context, vendorID int64, in SubmitInput) (SubmitResult, error) {
	if vendorID <= 0 {
		return SubmitResult{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if s.tx == nil || s.vendors == nil || s.roles == nil || s.banks == nil || s.taxes == nil || s.documents == nil || s.history == nil {
		return SubmitResult{}, fmt.Errorf("onboarding service dependencies are not configured")
	}

	form := in.Form
	if err := ValidateAll(form); err != nil {
		return SubmitResult{}, err
	}

	form.Bank = s.deriveBankFields(ctx, form.Bank)

	var result SubmitResult
	err := s.tx.WithTx(ctx, func(txCtx context.Context, tx pgx.Tx) error {
		vendor, err := s.vendors.GetForUpdate(txCtx, tx, vendorID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrVendorNotFound) {
				return ErrVendorNotFound
			}
			return err
		}

		if vendor.Type != enums.VendorTypeStart {
			return fmt.Errorf("vendor is already %s: %w", vendor.Type, ErrConflict)
		}
		if vendor.KYCStatus == enums.KYCStatusSubmitted {
			return fmt.Errorf("vendor is already under review: %w", ErrConflict)
		}

		if err := s.roles.Upsert(txCtx, tx, roleRecord(vendorID, form)); err != nil {
			return err
		}
		if err := s.banks.Upsert(txCtx, tx, bankRecord(vendorID, form)); err != nil {
			return err
		}
		if err := s.taxes.Upsert(txCtx, tx, taxRecord(vendorID, form)); err != nil {
			return err
		}

		snapshots, err := s.documents.Snapshots(txCtx, tx, vendorID)
		if err != nil {
			return err
		}
		if err := checkUploadedDocuments(form, snapshots); err != nil {
			return err
		}

		if err := s.vendors.UpdateKYCStatus(txCtx, tx, vendorID, enums.KYCStatusSubmitted); err != nil {
			return err
		}

		action := enums.ModerationActionSubmitted
		if vendor.KYCStatus != enums.KYCStatusDraft {
			action = enums.ModerationActionResubmitted
		}

		if err := s.history.Append(txCtx, tx, model.ModerationHistoryItem{
			VendorID:       vendorID,
			Action:         action,
			PreviousStatus: vendor.KYCStatus,
			NewStatus:      enums.KYCStatusSubmitted,
			Documents:      snapshots,
			IP:             in.IP,
			UserAgent:      in.UserAgent,
		}); err != nil {
			return err
		}

		result = SubmitResult{Action: action, KYCStatus: enums.KYCStatusSubmitted}
		return nil
	})
	if err != nil {
		return SubmitResult{}, err
	}

	s.invalidateStatus(ctx, vendorID)
	return result, nil
}

// Readiness is the read-only precondition probe: true means the vendor can
// be upgraded instantly without the wizard (KYC already approved while still
// on the START plan); false routes the vendor into the wizard.
func (s *Service) Readiness(ctx context.Context, vendorID int64) (bool, error) {
	if vendorID <= 0 {
		return false, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if s.vendors == nil {
		return false, fmt.Errorf("onboarding service dependencies are not configured")
	}

	vendor, err := s.vendors.GetByID(ctx, vendorID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrVendorNotFound) {
			return false, ErrVendorNotFound
		}
		return false, err
	}

	return vendor.Type == enums.VendorTypeStart && vendor.KYCStatus == enums.KYCStatusApproved, nil
}

// StatusResult is what the vendor dashboard shows: the KYC status and, when
// the review asked for fixes, the moderator's notes explaining what to fix.
type StatusResult struct {
	KYCStatus      enums.KYCStatus
	ModeratorNotes string
}

// Status returns the vendor's KYC status, served from the redis cache when
// fresh. Moderation writes invalidate the cache. Moderator notes are attached
// only for the statuses where the vendor is expected to act on them.
func (s *Service) Status(ctx context.Context, vendorID int64) (StatusResult, error) {
	if vendorID <= 0 {
		return StatusResult{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if s.vendors == nil {
		return StatusResult{}, fmt.Errorf("onboarding service dependencies are not configured")
	}

	status, cached := enums.KYCStatus(""), false
	if s.statusCache != nil {
		if cachedStatus, ok, err := s.statusCache.GetStatus(ctx, vendorID); err == nil && ok {
			status, cached = cachedStatus, true
		}
	}

	if !cached {
		vendor, err := s.vendors.GetByID(ctx, vendorID)
		if err != nil {
			if errors.Is(err, pgrepo.ErrVendorNotFound) {
				return StatusResult{}, ErrVendorNotFound
			}
			return StatusResult{}, err
		}
		status = vendor.KYCStatus

		if s.statusCache != nil {
			if err := s.statusCache.SetStatus(ctx, vendorID, status, s.cacheTTL); err != nil {
				s.logger.Debug("cache kyc status", zap.Int64("vendor_id", vendorID), zap.Error(err))
			}
		}
	}

	result := StatusResult{KYCStatus: status}
	if s.roles != nil && (status == enums.KYCStatusNeedsInfo || status == enums.KYCStatusRejected) {
		role, err := s.roles.GetByVendor(ctx, vendorID)
		if err != nil && !errors.Is(err, pgrepo.ErrVendorRoleNotFound) {
			return StatusResult{}, err
		}
		result.ModeratorNotes = role.ModeratorNotes
	}

	return result, nil
}

// deriveBankFields re-resolves bank name and correspondent account from the
// routing code. Resolved values always win over whatever the client sent;
// a directory outage falls back to the checksum-validated submitted values.
func (s *Service) deriveBankFields(ctx context.Context, bank BankDetails) BankDetails {
	if s.bankDir == nil {
		return bank
	}

	name, corr, err := s.bankDir.ResolveBank(ctx, strings.TrimSpace(bank.BIK))
	if err != nil {
		s.logger.Warn("bank directory lookup failed, keeping submitted requisites",
			zap.String("bik", bank.BIK), zap.Error(err))
		return bank
	}

	out := bank
	if name != "" {
		out.BankName = name
	}
	if corr != "" {
		out.CorrAccount = corr
	}
	return out
}

func (s *Service) invalidateStatus(ctx context.Context, vendorID int64) {
	if s.statusCache == nil {
		return
	}
	if err := s.statusCache.Invalidate(ctx, vendorID); err != nil {
		s.logger.Debug("invalidate kyc status cache", zap.Int64("vendor_id", vendorID), zap.Error(err))
	}
}

// roleRecord keeps only the fields the chosen role may carry; everything
// else is written empty and stored as NULL.
func roleRecord(vendorID int64, f FormState) model.VendorRole {
	record := model.VendorRole{
		VendorID: vendorID,
		Role:     f.Role,
		INN:      strings.TrimSpace(f.Company.INN),
	}

	switch f.Role {
	case enums.VendorRoleNPD:
		record.FullName = strings.TrimSpace(f.Company.FullName)
	case enums.VendorRoleIE:
		record.FullName = strings.TrimSpace(f.Company.FullName)
		record.OGRNIP = strings.TrimSpace(f.Company.OGRNIP)
	case enums.VendorRoleLegal:
		record.CompanyName = strings.TrimSpace(f.Company.CompanyName)
		record.DirectorName = strings.TrimSpace(f.Company.DirectorName)
		record.OGRN = strings.TrimSpace(f.Company.OGRN)
	}

	return record
}

func bankRecord(vendorID int64, f FormState) model.BankAccount {
	return model.BankAccount{
		VendorID:      vendorID,
		HolderName:    strings.TrimSpace(f.Bank.HolderName),
		BankName:      strings.TrimSpace(f.Bank.BankName),
		BIK:           strings.TrimSpace(f.Bank.BIK),
		AccountNumber: strings.TrimSpace(f.Bank.AccountNumber),
		CorrAccount:   strings.TrimSpace(f.Bank.CorrAccount),
		INN:           strings.TrimSpace(f.Company.INN),
	}
}

func taxRecord(vendorID int64, f FormState) model.TaxProfile {
	return model.TaxProfile{
		VendorID:        vendorID,
		TaxRegime:       f.Tax.TaxRegime,
		VATStatus:       f.Tax.VATStatus,
		FiscalMode:      f.Tax.FiscalMode,
		AgencyAgreement: f.Tax.AgencyAgreement,
	}
}

// checkUploadedDocuments verifies the form's document references exist as
// uploaded rows and that the role's required set is covered by what is
// actually on file, not just by what the form claims.
func checkUploadedDocuments(f FormState, snapshots []model.DocumentSnapshot) error {
	byID := make(map[int64]model.DocumentSnapshot, len(snapshots))
	for _, snapshot := range snapshots {
		byID[snapshot.ID] = snapshot
	}

	uploaded := make([]enums.DocType, 0, len(f.Documents))
	for _, ref := range f.Documents {
		snapshot, ok := byID[ref.DocumentID]
		if !ok {
			return fmt.Errorf("document %d is not uploaded: %w", ref.DocumentID, ErrValidation)
		}
		if snapshot.DocType != ref.DocType {
			return fmt.Errorf("document %d type mismatch: %w", ref.DocumentID, ErrValidation)
		}
		uploaded = append(uploaded, snapshot.DocType)
	}

	if missing := rules.MissingDocTypes(f.Role, uploaded); len(missing) > 0 {
		return fmt.Errorf("missing required documents %v: %w", missing, ErrValidation)
	}

	return nil
}
