package onboarding

import (
	"github.com/velesmarket/backend/internal/domain/enums"
)

// FormState is the full wizard form as a value. Steps merge into it through
// the With* methods and never mutate in place, so every draft revision the
// store sees is a complete, self-consistent snapshot.
type FormState struct {
	Role      enums.VendorRole `json:"role"`
	Company   CompanyData      `json:"company"`
	Bank      BankDetails      `json:"bank"`
	Tax       TaxData          `json:"tax"`
	Documents []UploadedDoc    `json:"documents"`
}

type CompanyData struct {
	FullName     string `json:"full_name"`
	CompanyName  string `json:"company_name"`
	DirectorName string `json:"director_name"`
	INN          string `json:"inn"`
	OGRNIP       string `json:"ogrnip"`
	OGRN         string `json:"ogrn"`
}

type BankDetails struct {
	HolderName    string `json:"holder_name"`
	BankName      string `json:"bank_name"`
	BIK           string `json:"bik"`
	AccountNumber string `json:"account_number"`
	CorrAccount   string `json:"corr_account"`
}

type TaxData struct {
	TaxRegime       enums.TaxRegime  `json:"tax_regime"`
	VATStatus       enums.VATStatus  `json:"vat_status"`
	FiscalMode      enums.FiscalMode `json:"fiscal_mode"`
	AgencyAgreement bool             `json:"agency_agreement"`
}

type UploadedDoc struct {
	DocumentID int64         `json:"document_id"`
	DocType    enums.DocType `json:"doc_type"`
}

// NewFormState returns the initial form: NPD preselected, platform fiscal
// mode. The role default means step 1 always validates; the submission
// handler is the hard gate.
func NewFormState() FormState {
	return FormState{
		Role: enums.VendorRoleNPD,
		Tax:  TaxData{FiscalMode: enums.FiscalModePlatform},
	}
}

// WithRole switches the vendor role and clears fields the new role cannot
// carry, so stale identity data from a previous choice never survives into
// submission. NPD and IE share the natural-person fields; LEGAL does not.
func (f FormState) WithRole(role enums.VendorRole) FormState {
	if role == f.Role {
		return f
	}

	out := f
	out.Role = role

	switch {
	case role == enums.VendorRoleLegal:
		out.Company.FullName = ""
		out.Company.OGRNIP = ""
	case f.Role == enums.VendorRoleLegal:
		out.Company.CompanyName = ""
		out.Company.DirectorName = ""
		out.Company.OGRN = ""
	}
	if role != enums.VendorRoleIE {
		out.Company.OGRNIP = ""
	}
	if !role.NaturalPerson() || !f.Role.NaturalPerson() {
		// INN length differs between natural persons and legal entities.
		out.Company.INN = ""
	}
	if f.Role == enums.VendorRoleNPD && out.Tax.TaxRegime == enums.TaxRegimeNPD {
		out.Tax.TaxRegime = ""
	}

	return out
}

func (f FormState) WithCompany(c CompanyData) FormState {
	out := f
	out.Company = c
	return out
}

func (f FormState) WithBank(b BankDetails) FormState {
	out := f
	out.Bank = b
	return out
}

func (f FormState) WithTax(t TaxData) FormState {
	out := f
	if t.FiscalMode == "" {
		t.FiscalMode = enums.FiscalModePlatform
	}
	out.Tax = t
	return out
}

func (f FormState) WithDocuments(docs []UploadedDoc) FormState {
	out := f
	out.Documents = append([]UploadedDoc(nil), docs...)
	return out
}

func (f FormState) WithDocument(doc UploadedDoc) FormState {
	out := f
	out.Documents = append(append([]UploadedDoc(nil), f.Documents...), doc)
	return out
}

func (f FormState) docTypes() []enums.DocType {
	types := make([]enums.DocType, 0, len(f.Documents))
	for _, d := range f.Documents {
		types = append(types, d.DocType)
	}
	return types
}
