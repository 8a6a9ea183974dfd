package model

import (
	"time"

	"github.com/velesmarket/backend/internal/domain/enums"
)

type Vendor struct {
	ID                 int64            `json:"id"`
	Name               string           `json:"name"`
	Type               enums.VendorType `json:"type"`
	KYCStatus          enums.KYCStatus  `json:"kyc_status"`
	PayoutEnabled      bool             `json:"payout_enabled"`
	OfficialPartner    bool             `json:"official_partner"`
	SubscriptionStatus string           `json:"subscription_status"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

type VendorRole struct {
	VendorID       int64            `json:"vendor_id"`
	Role           enums.VendorRole `json:"role"`
	FullName       string           `json:"full_name"`
	CompanyName    string           `json:"company_name"`
	DirectorName   string           `json:"director_name"`
	INN            string           `json:"inn"`
	OGRNIP         string           `json:"ogrnip"`
	OGRN           string           `json:"ogrn"`
	ModeratorNotes string           `json:"moderator_notes"`
	ModeratorID    *int64           `json:"moderator_id"`
	ModeratedAt    *time.Time       `json:"moderated_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

type BankAccount struct {
	VendorID      int64     `json:"vendor_id"`
	HolderName    string    `json:"holder_name"`
	BankName      string    `json:"bank_name"`
	BIK           string    `json:"bik"`
	AccountNumber string    `json:"account_number"`
	CorrAccount   string    `json:"corr_account"`
	INN           string    `json:"inn"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type TaxProfile struct {
	VendorID        int64            `json:"vendor_id"`
	TaxRegime       enums.TaxRegime  `json:"tax_regime"`
	VATStatus       enums.VATStatus  `json:"vat_status"`
	FiscalMode      enums.FiscalMode `json:"fiscal_mode"`
	AgencyAgreement bool             `json:"agency_agreement"`
	UpdatedAt       time.Time        `json:"updated_at"`
}
