package enums

type VendorType string

const (
	VendorTypeStart VendorType = "START"
	VendorTypePro   VendorType = "PRO"
)

type KYCStatus string

const (
	KYCStatusDraft     KYCStatus = "DRAFT"
	KYCStatusSubmitted KYCStatus = "SUBMITTED"
	KYCStatusNeedsInfo KYCStatus = "NEEDS_INFO"
	KYCStatusApproved  KYCStatus = "APPROVED"
	KYCStatusRejected  KYCStatus = "REJECTED"
)

func (s KYCStatus) Valid() bool {
	switch s {
	case KYCStatusDraft, KYCStatusSubmitted, KYCStatusNeedsInfo, KYCStatusApproved, KYCStatusRejected:
		return true
	}
	return false
}

// Terminal reports whether admin actions may no longer be applied to the
// vendor; a new submission cycle is required instead.
func (s KYCStatus) Terminal() bool {
	return s == KYCStatusApproved || s == KYCStatusRejected
}

type VendorRole string

const (
	VendorRoleNPD   VendorRole = "NPD"
	VendorRoleIE    VendorRole = "IE"
	VendorRoleLegal VendorRole = "LEGAL"
)

func (r VendorRole) Valid() bool {
	switch r {
	case VendorRoleNPD, VendorRoleIE, VendorRoleLegal:
		return true
	}
	return false
}

// NaturalPerson groups NPD and IE: both identify by a person's full name,
// unlike LEGAL which identifies by company name and director.
func (r VendorRole) NaturalPerson() bool {
	return r == VendorRoleNPD || r == VendorRoleIE
}
