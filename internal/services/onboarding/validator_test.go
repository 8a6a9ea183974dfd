package onboarding

import (
	"errors"
	"testing"

	"github.com/velesmarket/backend/internal/domain/enums"
)

const (
	testPersonINN   = "500100732259"
	testLegalINN    = "7707083893"
	testOGRN        = "1027700132195"
	testOGRNIP      = "304500116000157"
	testBIK         = "044525225"
	testAccount     = "40702810600000000009"
	testCorrAccount = "30101810400000000225"
)

func validNPDForm() FormState {
	return FormState{
		Role: enums.VendorRoleNPD,
		Company: CompanyData{
			FullName: "Ivanov Ivan Ivanovich",
			INN:      testPersonINN,
		},
		Bank: BankDetails{
			HolderName:    "Ivanov Ivan Ivanovich",
			BankName:      "PAO Sberbank",
			BIK:           testBIK,
			AccountNumber: testAccount,
			CorrAccount:   testCorrAccount,
		},
		Tax: TaxData{
			TaxRegime:  enums.TaxRegimeNPD,
			VATStatus:  enums.VATStatusNone,
			FiscalMode: enums.FiscalModePlatform,
		},
		Documents: []UploadedDoc{
			{DocumentID: 1, DocType: enums.DocTypePassport},
		},
	}
}

func validLegalForm() FormState {
	f := validNPDForm()
	f.Role = enums.VendorRoleLegal
	f.Company = CompanyData{
		CompanyName:  "OOO Romashka",
		DirectorName: "Petrov Petr Petrovich",
		INN:          testLegalINN,
		OGRN:         testOGRN,
	}
	f.Tax.TaxRegime = enums.TaxRegimeOSN
	f.Tax.VATStatus = enums.VATStatus20
	f.Documents = []UploadedDoc{
		{DocumentID: 1, DocType: enums.DocTypeRegistryExtract},
		{DocumentID: 2, DocType: enums.DocTypeDirectorOrder},
	}
	return f
}

func validIEForm() FormState {
	f := validNPDForm()
	f.Role = enums.VendorRoleIE
	f.Company.OGRNIP = testOGRNIP
	f.Tax.TaxRegime = enums.TaxRegimeUSN
	f.Documents = []UploadedDoc{
		{DocumentID: 1, DocType: enums.DocTypePassport},
		{DocumentID: 2, DocType: enums.DocTypeProofOfRegistration},
	}
	return f
}

func TestValidateAllAcceptsCompleteForms(t *testing.T) {
	for _, f := range []FormState{validNPDForm(), validIEForm(), validLegalForm()} {
		if err := ValidateAll(f); err != nil {
			t.Errorf("role %s: ValidateAll returned %v", f.Role, err)
		}
	}
}

func TestValidateCompanyRejectsWrongINNLength(t *testing.T) {
	f := validNPDForm()
	f.Company.INN = testLegalINN

	err := ValidateStep(StepCompany, f)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("10-digit INN for NPD: err = %v, want ErrValidation", err)
	}

	f = validLegalForm()
	f.Company.INN = testPersonINN
	if err := ValidateStep(StepCompany, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("12-digit INN for legal entity: err = %v, want ErrValidation", err)
	}
}

func TestValidateCompanyRegistrationNumberExclusivity(t *testing.T) {
	f := validNPDForm()
	f.Company.OGRNIP = testOGRNIP
	if err := ValidateStep(StepCompany, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("ogrnip on NPD: err = %v, want ErrValidation", err)
	}

	f = validIEForm()
	f.Company.OGRN = testOGRN
	if err := ValidateStep(StepCompany, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("ogrn on IE: err = %v, want ErrValidation", err)
	}
}

func TestValidateCompanyRequiresIdentityFields(t *testing.T) {
	f := validLegalForm()
	f.Company.DirectorName = "  "
	if err := ValidateStep(StepCompany, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank director name: err = %v, want ErrValidation", err)
	}

	f = validIEForm()
	f.Company.FullName = ""
	if err := ValidateStep(StepCompany, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank full name: err = %v, want ErrValidation", err)
	}
}

func TestValidateBankChecksRequisites(t *testing.T) {
	f := validNPDForm()
	f.Bank.AccountNumber = "40702810600000000008"
	if err := ValidateStep(StepBank, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("broken account check digit: err = %v, want ErrValidation", err)
	}

	f = validNPDForm()
	f.Bank.BIK = "144525225"
	if err := ValidateStep(StepBank, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("malformed bik: err = %v, want ErrValidation", err)
	}
}

func TestValidateTaxRestrictsNPDRegime(t *testing.T) {
	f := validIEForm()
	f.Tax.TaxRegime = enums.TaxRegimeNPD
	if err := ValidateStep(StepTax, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("NPD regime on IE: err = %v, want ErrValidation", err)
	}

	f = validNPDForm()
	if err := ValidateStep(StepTax, f); err != nil {
		t.Fatalf("NPD regime on NPD: err = %v", err)
	}
}

func TestValidateDocumentsRequiresRoleSet(t *testing.T) {
	f := validIEForm()
	f.Documents = f.Documents[:1]
	if err := ValidateStep(StepDocuments, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("missing proof of registration: err = %v, want ErrValidation", err)
	}

	f = validNPDForm()
	f.Documents = []UploadedDoc{{DocumentID: 0, DocType: enums.DocTypePassport}}
	if err := ValidateStep(StepDocuments, f); !errors.Is(err, ErrValidation) {
		t.Fatalf("zero document id: err = %v, want ErrValidation", err)
	}
}

func TestValidateStepUnknownStep(t *testing.T) {
	if err := ValidateStep(99, validNPDForm()); !errors.Is(err, ErrValidation) {
		t.Fatalf("unknown step: err = %v, want ErrValidation", err)
	}
}
