package enums

type DocType string

const (
	DocTypePassport            DocType = "passport"
	DocTypeRegistryExtract     DocType = "registry_extract"
	DocTypeDirectorOrder       DocType = "director_order"
	DocTypeProofOfRegistration DocType = "proof_of_registration"
	DocTypeBankStatement       DocType = "bank_statement"
	DocTypeTaxCertificate      DocType = "tax_certificate"
	DocTypeOther               DocType = "other"
)

func (d DocType) Valid() bool {
	switch d {
	case DocTypePassport, DocTypeRegistryExtract, DocTypeDirectorOrder,
		DocTypeProofOfRegistration, DocTypeBankStatement, DocTypeTaxCertificate,
		DocTypeOther:
		return true
	}
	return false
}

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
	DocumentStatusExpired  DocumentStatus = "EXPIRED"
)
