package dto

import "time"

type CompanyPayload struct {
	FullName     string `json:"full_name,omitempty"`
	CompanyName  string `json:"company_name,omitempty"`
	DirectorName string `json:"director_name,omitempty"`
	INN          string `json:"inn,omitempty"`
	OGRNIP       string `json:"ogrnip,omitempty"`
	OGRN         string `json:"ogrn,omitempty"`
}

type BankPayload struct {
	HolderName    string `json:"holder_name,omitempty"`
	BankName      string `json:"bank_name,omitempty"`
	BIK           string `json:"bik,omitempty"`
	AccountNumber string `json:"account_number,omitempty"`
	CorrAccount   string `json:"corr_account,omitempty"`
}

type TaxPayload struct {
	TaxRegime       string `json:"tax_regime,omitempty"`
	VATStatus       string `json:"vat_status,omitempty"`
	FiscalMode      string `json:"fiscal_mode,omitempty"`
	AgencyAgreement bool   `json:"agency_agreement,omitempty"`
}

type FormDocumentPayload struct {
	DocumentID int64  `json:"document_id"`
	DocType    string `json:"doc_type"`
}

type WizardStepRequest struct {
	Role      string                `json:"role,omitempty"`
	Company   *CompanyPayload       `json:"company,omitempty"`
	Bank      *BankPayload          `json:"bank,omitempty"`
	Tax       *TaxPayload           `json:"tax,omitempty"`
	Documents []FormDocumentPayload `json:"documents,omitempty"`
}

type ChangeRoleRequest struct {
	Role string `json:"role"`
}

type WizardDraftResponse struct {
	VendorID  int64                 `json:"vendor_id"`
	Step      int                   `json:"step"`
	StepError string                `json:"step_error,omitempty"`
	Role      string                `json:"role"`
	Company   CompanyPayload        `json:"company"`
	Bank      BankPayload           `json:"bank"`
	Tax       TaxPayload            `json:"tax"`
	Documents []FormDocumentPayload `json:"documents"`
	UpdatedAt time.Time             `json:"updated_at"`
}

type SubmitResponse struct {
	Action    string `json:"action"`
	KYCStatus string `json:"kyc_status"`
}

type ReadinessResponse struct {
	IsReady bool `json:"is_ready"`
}

type StatusResponse struct {
	KYCStatus      string `json:"kyc_status"`
	ModeratorNotes string `json:"moderator_notes,omitempty"`
}
