package onboarding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/velesmarket/backend/internal/domain/enums"
)

var (
	ErrDraftNotFound    = errors.New("wizard draft not found")
	ErrSubmitInProgress = errors.New("submission already in progress")
)

// Draft is one vendor's wizard session. It lives in redis with a TTL:
// abandoning the wizard simply lets the draft expire, nothing is persisted
// to postgres until submission.
type Draft struct {
	VendorID   int64     `json:"vendor_id"`
	Step       int       `json:"step"`
	Submitting bool      `json:"submitting"`
	Form       FormState `json:"form"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewDraft returns an empty draft positioned on the first step.
func NewDraft(vendorID int64) Draft {
	return Draft{
		VendorID: vendorID,
		Step:     StepRole,
		Form:     NewFormState(),
	}
}

type DraftStore interface {
	Save(ctx context.Context, draft Draft, ttl time.Duration) error
	Get(ctx context.Context, vendorID int64) (Draft, error)
	Delete(ctx context.Context, vendorID int64) error
}

// Wizard drives the five-step upgrade form. Navigation is linear: Next is a
// no-op while the current step fails validation, Prev always works except on
// the first step, Submit is reachable only from the last step.
type Wizard struct {
	drafts DraftStore
	ttl    time.Duration
	now    func() time.Time
}

func NewWizard(drafts DraftStore, ttl time.Duration) *Wizard {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &Wizard{
		drafts: drafts,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Start returns the existing draft or creates a fresh one on the first step.
func (w *Wizard) Start(ctx context.Context, vendorID int64) (Draft, error) {
	if vendorID <= 0 {
		return Draft{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if w.drafts == nil {
		return Draft{}, fmt.Errorf("draft store is nil")
	}

	draft, err := w.drafts.Get(ctx, vendorID)
	if err == nil {
		return draft, nil
	}
	if !errors.Is(err, ErrDraftNotFound) {
		return Draft{}, err
	}

	draft = NewDraft(vendorID)
	draft.UpdatedAt = w.now().UTC()
	if err := w.drafts.Save(ctx, draft, w.ttl); err != nil {
		return Draft{}, err
	}

	return draft, nil
}

func (w *Wizard) Get(ctx context.Context, vendorID int64) (Draft, error) {
	if vendorID <= 0 {
		return Draft{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if w.drafts == nil {
		return Draft{}, fmt.Errorf("draft store is nil")
	}
	return w.drafts.Get(ctx, vendorID)
}

// StepUpdate carries the payload of exactly one step. Only the field for the
// draft's current step is applied.
type StepUpdate struct {
	Role      *enums.VendorRole
	Company   *CompanyData
	Bank      *BankDetails
	Tax       *TaxData
	Documents []UploadedDoc
}

// SaveStep merges the update into the current step and, when the step then
// validates, advances. An invalid step keeps the draft where it is and
// returns the validation error alongside the unchanged-step draft so the UI
// can re-render the offending step inline.
func (w *Wizard) SaveStep(ctx context.Context, vendorID int64, update StepUpdate) (Draft, error) {
	draft, err := w.editableDraft(ctx, vendorID)
	if err != nil {
		return Draft{}, err
	}

	form := draft.Form
	switch draft.Step {
	case StepRole:
		if update.Role != nil {
			form = form.WithRole(*update.Role)
		}
	case StepCompany:
		if update.Company != nil {
			form = form.WithCompany(*update.Company)
		}
	case StepBank:
		if update.Bank != nil {
			form = form.WithBank(*update.Bank)
		}
	case StepTax:
		if update.Tax != nil {
			form = form.WithTax(*update.Tax)
		}
	case StepDocuments:
		if update.Documents != nil {
			form = form.WithDocuments(update.Documents)
		}
	}

	draft.Form = form
	draft.UpdatedAt = w.now().UTC()

	validationErr := ValidateStep(draft.Step, draft.Form)
	if validationErr == nil && draft.Step < lastStep {
		draft.Step++
	}

	if err := w.drafts.Save(ctx, draft, w.ttl); err != nil {
		return Draft{}, err
	}

	return draft, validationErr
}

// Prev steps back; on the first step it is a no-op.
func (w *Wizard) Prev(ctx context.Context, vendorID int64) (Draft, error) {
	draft, err := w.editableDraft(ctx, vendorID)
	if err != nil {
		return Draft{}, err
	}

	if draft.Step > firstStep {
		draft.Step--
		draft.UpdatedAt = w.now().UTC()
		if err := w.drafts.Save(ctx, draft, w.ttl); err != nil {
			return Draft{}, err
		}
	}

	return draft, nil
}

// ChangeRole is allowed from any step: the wizard jumps back to the role
// step and incompatible fields are dropped by the form merge.
func (w *Wizard) ChangeRole(ctx context.Context, vendorID int64, role enums.VendorRole) (Draft, error) {
	if !role.Valid() {
		return Draft{}, fmt.Errorf("vendor role is malformed: %w", ErrValidation)
	}

	draft, err := w.editableDraft(ctx, vendorID)
	if err != nil {
		return Draft{}, err
	}

	draft.Form = draft.Form.WithRole(role)
	draft.Step = StepRole
	draft.UpdatedAt = w.now().UTC()
	if err := w.drafts.Save(ctx, draft, w.ttl); err != nil {
		return Draft{}, err
	}

	return draft, nil
}

// AttachDocument records an uploaded document in the draft.
func (w *Wizard) AttachDocument(ctx context.Context, vendorID int64, doc UploadedDoc) (Draft, error) {
	if doc.DocumentID <= 0 || !doc.DocType.Valid() {
		return Draft{}, fmt.Errorf("document reference is malformed: %w", ErrValidation)
	}

	draft, err := w.editableDraft(ctx, vendorID)
	if err != nil {
		return Draft{}, err
	}

	draft.Form = draft.Form.WithDocument(doc)
	draft.UpdatedAt = w.now().UTC()
	if err := w.drafts.Save(ctx, draft, w.ttl); err != nil {
		return Draft{}, err
	}

	return draft, nil
}

// BeginSubmit moves the draft into the submitting state. It fails unless the
// draft sits on the last step with every step valid, and refuses a second
// concurrent submit for the same vendor.
func (w *Wizard) BeginSubmit(ctx context.Context, vendorID int64) (Draft, error) {
	if vendorID <= 0 {
		return Draft{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if w.drafts == nil {
		return Draft{}, fmt.Errorf("draft store is nil")
	}

	draft, err := w.drafts.Get(ctx, vendorID)
	if err != nil {
		return Draft{}, err
	}
	if draft.Submitting {
		return Draft{}, ErrSubmitInProgress
	}
	if draft.Step != lastStep {
		return Draft{}, fmt.Errorf("submission is only allowed from the final step: %w", ErrValidation)
	}
	if err := ValidateAll(draft.Form); err != nil {
		return Draft{}, err
	}

	draft.Submitting = true
	draft.UpdatedAt = w.now().UTC()
	if err := w.drafts.Save(ctx, draft, w.ttl); err != nil {
		return Draft{}, err
	}

	return draft, nil
}

// FinishSubmit closes the submitting state: success discards the draft,
// failure returns the vendor to the final step so the error can be fixed and
// the wizard resubmitted.
func (w *Wizard) FinishSubmit(ctx context.Context, vendorID int64, success bool) error {
	if w.drafts == nil {
		return fmt.Errorf("draft store is nil")
	}

	if success {
		return w.drafts.Delete(ctx, vendorID)
	}

	draft, err := w.drafts.Get(ctx, vendorID)
	if err != nil {
		if errors.Is(err, ErrDraftNotFound) {
			return nil
		}
		return err
	}

	draft.Submitting = false
	draft.Step = lastStep
	draft.UpdatedAt = w.now().UTC()
	return w.drafts.Save(ctx, draft, w.ttl)
}

func (w *Wizard) editableDraft(ctx context.Context, vendorID int64) (Draft, error) {
	if vendorID <= 0 {
		return Draft{}, fmt.Errorf("invalid vendor id: %w", ErrValidation)
	}
	if w.drafts == nil {
		return Draft{}, fmt.Errorf("draft store is nil")
	}

	draft, err := w.drafts.Get(ctx, vendorID)
	if err != nil {
		return Draft{}, err
	}
	if draft.Submitting {
		return Draft{}, ErrSubmitInProgress
	}

	return draft, nil
}
