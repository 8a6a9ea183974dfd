package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
	pgrepo "github.com/velesmarket/backend/internal/repo/postgres"
)

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(context.Context, pgx.Tx) error) error {
	return fn(ctx, nil)
}

type stubVendorStore struct {
	vendor        model.Vendor
	err           error
	statusUpdates []enums.KYCStatus
}

func (s *stubVendorStore) GetByID(ctx context.Context, vendorID int64) (model.Vendor, error) {
	return s.vendor, s.err
}

func (s *stubVendorStore) GetForUpdate(ctx context.Context, tx pgx.Tx, vendorID int64) (model.Vendor, error) {
	return s.vendor, s.err
}

func (s *stubVendorStore) UpdateKYCStatus(ctx context.Context, tx pgx.Tx, vendorID int64, status enums.KYCStatus) error {
	s.statusUpdates = append(s.statusUpdates, status)
	return nil
}

type stubStatusCache struct {
	status   enums.KYCStatus
	hit      bool
	setCalls int
}

func (c *stubStatusCache) GetStatus(ctx context.Context, vendorID int64) (enums.KYCStatus, bool, error) {
	return c.status, c.hit, nil
}

func (c *stubStatusCache) SetStatus(ctx context.Context, vendorID int64, status enums.KYCStatus, ttl time.Duration) error {
	c.setCalls++
	c.status = status
	return nil
}

func (c *stubStatusCache) Invalidate(ctx context.Context, vendorID int64) error {
	c.hit = false
	return nil
}

type stubRoleStore struct {
	role model.VendorRole
	err  error
}

func (s *stubRoleStore) Upsert(ctx context.Context, tx pgx.Tx, role model.VendorRole) error {
	s.role = role
	return s.err
}

func (s *stubRoleStore) GetByVendor(ctx context.Context, vendorID int64) (model.VendorRole, error) {
	return s.role, s.err
}

type stubBankStore struct {
	accounts []model.BankAccount
}

func (s *stubBankStore) Upsert(ctx context.Context, tx pgx.Tx, account model.BankAccount) error {
	s.accounts = append(s.accounts, account)
	return nil
}

type stubTaxStore struct {
	profiles []model.TaxProfile
}

func (s *stubTaxStore) Upsert(ctx context.Context, tx pgx.Tx, profile model.TaxProfile) error {
	s.profiles = append(s.profiles, profile)
	return nil
}

type stubSnapshotStore struct {
	snapshots []model.DocumentSnapshot
}

func (s *stubSnapshotStore) Snapshots(ctx context.Context, tx pgx.Tx, vendorID int64) ([]model.DocumentSnapshot, error) {
	return s.snapshots, nil
}

type stubHistoryStore struct {
	items []model.ModerationHistoryItem
}

func (s *stubHistoryStore) Append(ctx context.Context, tx pgx.Tx, item model.ModerationHistoryItem) error {
	s.items = append(s.items, item)
	return nil
}

type stubBankDirectory struct {
	name string
	corr string
	err  error
}

func (d *stubBankDirectory) ResolveBank(ctx context.Context, bik string) (string, string, error) {
	return d.name, d.corr, d.err
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name   string
		vendor model.Vendor
		want   bool
	}{
		{"approved start vendor", model.Vendor{Type: enums.VendorTypeStart, KYCStatus: enums.KYCStatusApproved}, true},
		{"draft start vendor", model.Vendor{Type: enums.VendorTypeStart, KYCStatus: enums.KYCStatusDraft}, false},
		{"already pro", model.Vendor{Type: enums.VendorTypePro, KYCStatus: enums.KYCStatusApproved}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(Dependencies{Vendors: &stubVendorStore{vendor: tc.vendor}})
			got, err := svc.Readiness(context.Background(), 7)
			if err != nil {
				t.Fatalf("Readiness: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Readiness = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestReadinessVendorNotFound(t *testing.T) {
	svc := NewService(Dependencies{Vendors: &stubVendorStore{err: pgrepo.ErrVendorNotFound}})
	if _, err := svc.Readiness(context.Background(), 7); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("err = %v, want ErrVendorNotFound", err)
	}
}

func TestStatusServedFromCache(t *testing.T) {
	vendors := &stubVendorStore{err: errors.New("postgres must not be hit")}
	cache := &stubStatusCache{status: enums.KYCStatusSubmitted, hit: true}
	svc := NewService(Dependencies{Vendors: vendors, StatusCache: cache})

	result, err := svc.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if result.KYCStatus != enums.KYCStatusSubmitted {
		t.Fatalf("status = %s, want SUBMITTED", result.KYCStatus)
	}
}

func TestStatusFillsCacheOnMiss(t *testing.T) {
	vendors := &stubVendorStore{vendor: model.Vendor{KYCStatus: enums.KYCStatusApproved}}
	cache := &stubStatusCache{}
	svc := NewService(Dependencies{Vendors: vendors, StatusCache: cache})

	result, err := svc.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if result.KYCStatus != enums.KYCStatusApproved {
		t.Fatalf("status = %s, want APPROVED", result.KYCStatus)
	}
	if cache.setCalls != 1 || cache.status != enums.KYCStatusApproved {
		t.Fatalf("cache was not filled: calls=%d status=%s", cache.setCalls, cache.status)
	}
}

func TestStatusAttachesModeratorNotesWhenActionable(t *testing.T) {
	vendors := &stubVendorStore{vendor: model.Vendor{KYCStatus: enums.KYCStatusNeedsInfo}}
	roles := &stubRoleStore{role: model.VendorRole{VendorID: 7, ModeratorNotes: "passport scan is unreadable"}}
	svc := NewService(Dependencies{Vendors: vendors, Roles: roles})

	result, err := svc.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if result.ModeratorNotes != "passport scan is unreadable" {
		t.Fatalf("notes = %q, want the moderator notes", result.ModeratorNotes)
	}

	vendors.vendor.KYCStatus = enums.KYCStatusSubmitted
	result, err = svc.Status(context.Background(), 7)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if result.ModeratorNotes != "" {
		t.Fatalf("notes attached for SUBMITTED vendor: %q", result.ModeratorNotes)
	}
}

func TestSubmitRejectsInvalidInput(t *testing.T) {
	svc := NewService(Dependencies{})

	if _, err := svc.Submit(context.Background(), 0, SubmitInput{}); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero vendor id: err = %v, want ErrValidation", err)
	}

	if _, err := svc.Submit(context.Background(), 7, SubmitInput{Form: NewFormState()}); err == nil {
		t.Fatal("submission passed without configured stores")
	}
}

func newSubmitDeps(vendor model.Vendor) (Dependencies, *stubVendorStore, *stubHistoryStore) {
	vendors := &stubVendorStore{vendor: vendor}
	history := &stubHistoryStore{}
	deps := Dependencies{
		Tx:      fakeTxRunner{},
		Vendors: vendors,
		Roles:   &stubRoleStore{},
		Banks:   &stubBankStore{},
		Taxes:   &stubTaxStore{},
		Documents: &stubSnapshotStore{snapshots: []model.DocumentSnapshot{
			{ID: 1, DocType: enums.DocTypePassport, Status: enums.DocumentStatusPending},
		}},
		History: history,
	}
	return deps, vendors, history
}

func TestSubmitRecordsSingleTransition(t *testing.T) {
	deps, vendors, history := newSubmitDeps(model.Vendor{
		ID:        7,
		Type:      enums.VendorTypeStart,
		KYCStatus: enums.KYCStatusDraft,
	})
	svc := NewService(deps)

	result, err := svc.Submit(context.Background(), 7, SubmitInput{Form: validNPDForm()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Action != enums.ModerationActionSubmitted {
		t.Fatalf("action = %s, want SUBMITTED", result.Action)
	}
	if len(vendors.statusUpdates) != 1 || vendors.statusUpdates[0] != enums.KYCStatusSubmitted {
		t.Fatalf("status updates = %v, want exactly one SUBMITTED", vendors.statusUpdates)
	}
	if len(history.items) != 1 {
		t.Fatalf("history rows = %d, want exactly 1", len(history.items))
	}
	item := history.items[0]
	if item.Action != enums.ModerationActionSubmitted || item.PreviousStatus != enums.KYCStatusDraft || item.NewStatus != enums.KYCStatusSubmitted {
		t.Fatalf("history row = %+v, want SUBMITTED DRAFT->SUBMITTED", item)
	}
}

func TestSubmitFromNeedsInfoIsResubmission(t *testing.T) {
	deps, _, history := newSubmitDeps(model.Vendor{
		ID:        7,
		Type:      enums.VendorTypeStart,
		KYCStatus: enums.KYCStatusNeedsInfo,
	})
	svc := NewService(deps)

	result, err := svc.Submit(context.Background(), 7, SubmitInput{Form: validNPDForm()})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if result.Action != enums.ModerationActionResubmitted {
		t.Fatalf("action = %s, want RESUBMITTED", result.Action)
	}
	if len(history.items) != 1 || history.items[0].PreviousStatus != enums.KYCStatusNeedsInfo {
		t.Fatalf("history = %+v, want one RESUBMITTED row with previous NEEDS_INFO", history.items)
	}
}

func TestSubmitRejectsProVendor(t *testing.T) {
	deps, vendors, history := newSubmitDeps(model.Vendor{
		ID:        7,
		Type:      enums.VendorTypePro,
		KYCStatus: enums.KYCStatusApproved,
	})
	svc := NewService(deps)

	if _, err := svc.Submit(context.Background(), 7, SubmitInput{Form: validNPDForm()}); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(vendors.statusUpdates) != 0 || len(history.items) != 0 {
		t.Fatalf("pro vendor submission must not write: updates=%v history=%v", vendors.statusUpdates, history.items)
	}
}

func TestSubmitRejectsVendorUnderReview(t *testing.T) {
	deps, vendors, history := newSubmitDeps(model.Vendor{
		ID:        7,
		Type:      enums.VendorTypeStart,
		KYCStatus: enums.KYCStatusSubmitted,
	})
	svc := NewService(deps)

	if _, err := svc.Submit(context.Background(), 7, SubmitInput{Form: validNPDForm()}); !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	if len(vendors.statusUpdates) != 0 || len(history.items) != 0 {
		t.Fatalf("second submission must not write: updates=%v history=%v", vendors.statusUpdates, history.items)
	}
}

func TestDeriveBankFields(t *testing.T) {
	bank := validNPDForm().Bank

	svc := NewService(Dependencies{BankDirectory: &stubBankDirectory{name: "PAO Resolved", corr: "30101810400000000225"}})
	out := svc.deriveBankFields(context.Background(), bank)
	if out.BankName != "PAO Resolved" {
		t.Fatalf("bank name = %q, want the resolved one", out.BankName)
	}

	svc = NewService(Dependencies{BankDirectory: &stubBankDirectory{err: errors.New("directory down")}})
	out = svc.deriveBankFields(context.Background(), bank)
	if out != bank {
		t.Fatalf("directory outage must keep submitted requisites, got %+v", out)
	}

	svc = NewService(Dependencies{})
	if out = svc.deriveBankFields(context.Background(), bank); out != bank {
		t.Fatal("nil directory must keep submitted requisites")
	}
}

func TestCheckUploadedDocuments(t *testing.T) {
	form := validIEForm()
	snapshots := []model.DocumentSnapshot{
		{ID: 1, DocType: enums.DocTypePassport, Status: enums.DocumentStatusPending},
		{ID: 2, DocType: enums.DocTypeProofOfRegistration, Status: enums.DocumentStatusPending},
	}

	if err := checkUploadedDocuments(form, snapshots); err != nil {
		t.Fatalf("complete set: %v", err)
	}

	if err := checkUploadedDocuments(form, snapshots[:1]); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown document reference: err = %v, want ErrValidation", err)
	}

	mismatched := []model.DocumentSnapshot{
		{ID: 1, DocType: enums.DocTypeOther, Status: enums.DocumentStatusPending},
		{ID: 2, DocType: enums.DocTypeProofOfRegistration, Status: enums.DocumentStatusPending},
	}
	if err := checkUploadedDocuments(form, mismatched); !errors.Is(err, ErrValidation) {
		t.Fatalf("doc type mismatch: err = %v, want ErrValidation", err)
	}
}

func TestRoleRecordKeepsOnlyRoleFields(t *testing.T) {
	form := validLegalForm()
	form.Company.FullName = "leftover"
	form.Company.OGRNIP = testOGRNIP

	record := roleRecord(7, form)
	if record.FullName != "" || record.OGRNIP != "" {
		t.Fatalf("legal record carries natural-person fields: %+v", record)
	}
	if record.CompanyName == "" || record.OGRN == "" {
		t.Fatalf("legal record lost its own fields: %+v", record)
	}

	record = roleRecord(7, validNPDForm())
	if record.OGRN != "" || record.OGRNIP != "" || record.CompanyName != "" {
		t.Fatalf("npd record carries foreign fields: %+v", record)
	}
}
