package enums

type TaxRegime string

const (
	TaxRegimeNPD TaxRegime = "NPD"
	TaxRegimeUSN TaxRegime = "USN"
	TaxRegimeOSN TaxRegime = "OSN"
	TaxRegimePSN TaxRegime = "PSN"
)

func (t TaxRegime) Valid() bool {
	switch t {
	case TaxRegimeNPD, TaxRegimeUSN, TaxRegimeOSN, TaxRegimePSN:
		return true
	}
	return false
}

type VATStatus string

const (
	VATStatusNone VATStatus = "NONE"
	VATStatus0    VATStatus = "VAT_0"
	VATStatus5    VATStatus = "VAT_5"
	VATStatus7    VATStatus = "VAT_7"
	VATStatus20   VATStatus = "VAT_20"
)

func (v VATStatus) Valid() bool {
	switch v {
	case VATStatusNone, VATStatus0, VATStatus5, VATStatus7, VATStatus20:
		return true
	}
	return false
}

// FiscalMode names who issues the fiscal receipt for a sale.
type FiscalMode string

const (
	FiscalModePlatform FiscalMode = "PLATFORM"
	FiscalModeVendor   FiscalMode = "VENDOR"
)

func (f FiscalMode) Valid() bool {
	return f == FiscalModePlatform || f == FiscalModeVendor
}
