package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/velesmarket/backend/internal/domain/enums"
)

type memDraftStore struct {
	drafts  map[int64]Draft
	saveErr error
}

func newMemDraftStore() *memDraftStore {
	return &memDraftStore{drafts: make(map[int64]Draft)}
}

func (s *memDraftStore) Save(ctx context.Context, draft Draft, ttl time.Duration) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.drafts[draft.VendorID] = draft
	return nil
}

func (s *memDraftStore) Get(ctx context.Context, vendorID int64) (Draft, error) {
	draft, ok := s.drafts[vendorID]
	if !ok {
		return Draft{}, ErrDraftNotFound
	}
	return draft, nil
}

func (s *memDraftStore) Delete(ctx context.Context, vendorID int64) error {
	delete(s.drafts, vendorID)
	return nil
}

func newTestWizard(store DraftStore) *Wizard {
	w := NewWizard(store, time.Hour)
	w.now = func() time.Time { return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC) }
	return w
}

func rolePtr(r enums.VendorRole) *enums.VendorRole { return &r }

func TestWizardStartCreatesAndReturnsExisting(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	draft, err := w.Start(ctx, 7)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if draft.Step != StepRole {
		t.Fatalf("new draft step = %d, want %d", draft.Step, StepRole)
	}
	if draft.Form.Role != enums.VendorRoleNPD {
		t.Fatalf("new draft role = %s, want NPD", draft.Form.Role)
	}

	store.drafts[7] = Draft{VendorID: 7, Step: StepBank, Form: validIEForm()}
	draft, err = w.Start(ctx, 7)
	if err != nil {
		t.Fatalf("Start over existing draft: %v", err)
	}
	if draft.Step != StepBank {
		t.Fatalf("existing draft step = %d, want %d", draft.Step, StepBank)
	}
}

func TestWizardSaveStepAdvancesOnValidInput(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	if _, err := w.Start(ctx, 7); err != nil {
		t.Fatalf("Start: %v", err)
	}

	draft, err := w.SaveStep(ctx, 7, StepUpdate{Role: rolePtr(enums.VendorRoleIE)})
	if err != nil {
		t.Fatalf("SaveStep role: %v", err)
	}
	if draft.Step != StepCompany {
		t.Fatalf("step after role = %d, want %d", draft.Step, StepCompany)
	}

	company := validIEForm().Company
	draft, err = w.SaveStep(ctx, 7, StepUpdate{Company: &company})
	if err != nil {
		t.Fatalf("SaveStep company: %v", err)
	}
	if draft.Step != StepBank {
		t.Fatalf("step after company = %d, want %d", draft.Step, StepBank)
	}
}

func TestWizardSaveStepStaysOnValidationError(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	store.drafts[7] = Draft{VendorID: 7, Step: StepCompany, Form: NewFormState()}

	draft, err := w.SaveStep(ctx, 7, StepUpdate{Company: &CompanyData{INN: "123"}})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if draft.Step != StepCompany {
		t.Fatalf("step = %d, want to stay on %d", draft.Step, StepCompany)
	}
	if store.drafts[7].Form.Company.INN != "123" {
		t.Fatal("invalid input was not persisted into the draft")
	}
}

func TestWizardPrevStopsAtFirstStep(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	store.drafts[7] = Draft{VendorID: 7, Step: StepBank, Form: NewFormState()}

	draft, err := w.Prev(ctx, 7)
	if err != nil {
		t.Fatalf("Prev: %v", err)
	}
	if draft.Step != StepCompany {
		t.Fatalf("step = %d, want %d", draft.Step, StepCompany)
	}

	store.drafts[7] = Draft{VendorID: 7, Step: StepRole, Form: NewFormState()}
	draft, err = w.Prev(ctx, 7)
	if err != nil {
		t.Fatalf("Prev on first step: %v", err)
	}
	if draft.Step != StepRole {
		t.Fatalf("step = %d, want to stay on %d", draft.Step, StepRole)
	}
}

func TestWizardChangeRoleJumpsBackAndClearsFields(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	store.drafts[7] = Draft{VendorID: 7, Step: StepTax, Form: validIEForm()}

	draft, err := w.ChangeRole(ctx, 7, enums.VendorRoleLegal)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if draft.Step != StepRole {
		t.Fatalf("step = %d, want %d", draft.Step, StepRole)
	}
	if draft.Form.Company.FullName != "" || draft.Form.Company.OGRNIP != "" {
		t.Fatalf("natural-person fields survived the switch to LEGAL: %+v", draft.Form.Company)
	}
	if draft.Form.Company.INN != "" {
		t.Fatal("INN survived a switch between person and legal entity")
	}

	if _, err := w.ChangeRole(ctx, 7, enums.VendorRole("SHOP")); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown role: err = %v, want ErrValidation", err)
	}
}

func TestWizardAttachDocument(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	store.drafts[7] = Draft{VendorID: 7, Step: StepDocuments, Form: validNPDForm().WithDocuments(nil)}

	draft, err := w.AttachDocument(ctx, 7, UploadedDoc{DocumentID: 42, DocType: enums.DocTypePassport})
	if err != nil {
		t.Fatalf("AttachDocument: %v", err)
	}
	if len(draft.Form.Documents) != 1 || draft.Form.Documents[0].DocumentID != 42 {
		t.Fatalf("documents = %+v, want the attached one", draft.Form.Documents)
	}

	if _, err := w.AttachDocument(ctx, 7, UploadedDoc{DocumentID: 0, DocType: enums.DocTypePassport}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero document id: err = %v, want ErrValidation", err)
	}
}

func TestWizardBeginSubmit(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	store.drafts[7] = Draft{VendorID: 7, Step: StepBank, Form: validNPDForm()}
	if _, err := w.BeginSubmit(ctx, 7); !errors.Is(err, ErrValidation) {
		t.Fatalf("submit before last step: err = %v, want ErrValidation", err)
	}

	store.drafts[7] = Draft{VendorID: 7, Step: StepDocuments, Form: validNPDForm()}
	draft, err := w.BeginSubmit(ctx, 7)
	if err != nil {
		t.Fatalf("BeginSubmit: %v", err)
	}
	if !draft.Submitting {
		t.Fatal("draft is not marked submitting")
	}

	if _, err := w.BeginSubmit(ctx, 7); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("second submit: err = %v, want ErrSubmitInProgress", err)
	}
	if _, err := w.SaveStep(ctx, 7, StepUpdate{}); !errors.Is(err, ErrSubmitInProgress) {
		t.Fatalf("edit while submitting: err = %v, want ErrSubmitInProgress", err)
	}
}

func TestWizardFinishSubmit(t *testing.T) {
	store := newMemDraftStore()
	w := newTestWizard(store)
	ctx := context.Background()

	store.drafts[7] = Draft{VendorID: 7, Step: StepDocuments, Submitting: true, Form: validNPDForm()}
	if err := w.FinishSubmit(ctx, 7, true); err != nil {
		t.Fatalf("FinishSubmit success: %v", err)
	}
	if _, ok := store.drafts[7]; ok {
		t.Fatal("draft survived a successful submission")
	}

	store.drafts[7] = Draft{VendorID: 7, Step: StepDocuments, Submitting: true, Form: validNPDForm()}
	if err := w.FinishSubmit(ctx, 7, false); err != nil {
		t.Fatalf("FinishSubmit failure: %v", err)
	}
	draft := store.drafts[7]
	if draft.Submitting {
		t.Fatal("draft is still marked submitting after a failed submission")
	}
	if draft.Step != StepDocuments {
		t.Fatalf("step = %d, want the final step", draft.Step)
	}

	if err := w.FinishSubmit(ctx, 99, false); err != nil {
		t.Fatalf("FinishSubmit without a draft: %v", err)
	}
}
