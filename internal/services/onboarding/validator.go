package onboarding

import (
	"errors"
	"fmt"
	"strings"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/rules"
)

var ErrValidation = errors.New("validation error")

const (
	StepRole      = 1
	StepCompany   = 2
	StepBank      = 3
	StepTax       = 4
	StepDocuments = 5

	firstStep = StepRole
	lastStep  = StepDocuments
)

// ValidateStep is a pure check of one wizard step against the current form
// value. It has no side effects; both the wizard and the submission handler
// call it, so a client cannot submit anything the wizard would not let pass.
func ValidateStep(step int, f FormState) error {
	switch step {
	case StepRole:
		return validateRole(f)
	case StepCompany:
		return validateCompany(f)
	case StepBank:
		return validateBank(f)
	case StepTax:
		return validateTax(f)
	case StepDocuments:
		return validateDocuments(f)
	}
	return fmt.Errorf("unknown wizard step %d: %w", step, ErrValidation)
}

// ValidateAll re-runs every step check, used before submission.
func ValidateAll(f FormState) error {
	for step := firstStep; step <= lastStep; step++ {
		if err := ValidateStep(step, f); err != nil {
			return err
		}
	}
	return nil
}

func validateRole(f FormState) error {
	if !f.Role.Valid() {
		return fmt.Errorf("vendor role is required: %w", ErrValidation)
	}
	return nil
}

func validateCompany(f FormState) error {
	c := f.Company

	inn := strings.TrimSpace(c.INN)
	if inn == "" {
		return fmt.Errorf("inn is required: %w", ErrValidation)
	}
	if len(inn) != rules.INNLengthFor(f.Role) || !rules.ValidINN(inn) {
		return fmt.Errorf("inn is malformed for role %s: %w", f.Role, ErrValidation)
	}

	switch f.Role {
	case enums.VendorRoleNPD:
		if strings.TrimSpace(c.FullName) == "" {
			return fmt.Errorf("full name is required: %w", ErrValidation)
		}
	case enums.VendorRoleIE:
		if strings.TrimSpace(c.FullName) == "" {
			return fmt.Errorf("full name is required: %w", ErrValidation)
		}
		if !rules.ValidOGRNIP(strings.TrimSpace(c.OGRNIP)) {
			return fmt.Errorf("ogrnip is required for sole proprietors: %w", ErrValidation)
		}
	case enums.VendorRoleLegal:
		if strings.TrimSpace(c.CompanyName) == "" {
			return fmt.Errorf("company name is required: %w", ErrValidation)
		}
		if strings.TrimSpace(c.DirectorName) == "" {
			return fmt.Errorf("director name is required: %w", ErrValidation)
		}
		if !rules.ValidOGRN(strings.TrimSpace(c.OGRN)) {
			return fmt.Errorf("ogrn is required for legal entities: %w", ErrValidation)
		}
	default:
		return fmt.Errorf("vendor role is required: %w", ErrValidation)
	}

	// exclusivity: a role must not carry the other roles' registration numbers
	if f.Role != enums.VendorRoleIE && strings.TrimSpace(c.OGRNIP) != "" {
		return fmt.Errorf("ogrnip is only valid for sole proprietors: %w", ErrValidation)
	}
	if f.Role != enums.VendorRoleLegal && strings.TrimSpace(c.OGRN) != "" {
		return fmt.Errorf("ogrn is only valid for legal entities: %w", ErrValidation)
	}

	return nil
}

func validateBank(f FormState) error {
	b := f.Bank

	if strings.TrimSpace(b.HolderName) == "" {
		return fmt.Errorf("account holder name is required: %w", ErrValidation)
	}
	if strings.TrimSpace(b.BankName) == "" {
		return fmt.Errorf("bank name is required: %w", ErrValidation)
	}
	bik := strings.TrimSpace(b.BIK)
	if !rules.ValidBIK(bik) {
		return fmt.Errorf("bik is malformed: %w", ErrValidation)
	}
	if !rules.ValidAccount(strings.TrimSpace(b.AccountNumber), bik) {
		return fmt.Errorf("account number does not match bik: %w", ErrValidation)
	}
	if !rules.ValidCorrAccount(strings.TrimSpace(b.CorrAccount), bik) {
		return fmt.Errorf("correspondent account does not match bik: %w", ErrValidation)
	}

	return nil
}

func validateTax(f FormState) error {
	t := f.Tax

	if !t.TaxRegime.Valid() {
		return fmt.Errorf("tax regime is required: %w", ErrValidation)
	}
	if t.TaxRegime == enums.TaxRegimeNPD && f.Role != enums.VendorRoleNPD {
		return fmt.Errorf("npd tax regime is only valid for self-employed vendors: %w", ErrValidation)
	}
	if !t.VATStatus.Valid() {
		return fmt.Errorf("vat status is required: %w", ErrValidation)
	}
	if !t.FiscalMode.Valid() {
		return fmt.Errorf("fiscal mode is malformed: %w", ErrValidation)
	}

	return nil
}

func validateDocuments(f FormState) error {
	for _, d := range f.Documents {
		if d.DocumentID <= 0 || !d.DocType.Valid() {
			return fmt.Errorf("document reference is malformed: %w", ErrValidation)
		}
	}

	if missing := rules.MissingDocTypes(f.Role, f.docTypes()); len(missing) > 0 {
		return fmt.Errorf("missing required documents %v: %w", missing, ErrValidation)
	}

	return nil
}
