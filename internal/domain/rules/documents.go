package rules

import "github.com/velesmarket/backend/internal/domain/enums"

// RequiredDocTypes lists the document types a vendor must upload before the
// wizard may be submitted for the chosen role.
func RequiredDocTypes(role enums.VendorRole) []enums.DocType {
	switch role {
	case enums.VendorRoleNPD:
		return []enums.DocType{enums.DocTypePassport}
	case enums.VendorRoleIE:
		return []enums.DocType{enums.DocTypePassport, enums.DocTypeProofOfRegistration}
	case enums.VendorRoleLegal:
		return []enums.DocType{enums.DocTypeRegistryExtract, enums.DocTypeDirectorOrder}
	}
	return nil
}

// MissingDocTypes returns the required types not covered by the uploaded set.
func MissingDocTypes(role enums.VendorRole, uploaded []enums.DocType) []enums.DocType {
	have := make(map[enums.DocType]bool, len(uploaded))
	for _, t := range uploaded {
		have[t] = true
	}

	var missing []enums.DocType
	for _, t := range RequiredDocTypes(role) {
		if !have[t] {
			missing = append(missing, t)
		}
	}
	return missing
}
