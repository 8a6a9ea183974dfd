package rules

import "github.com/velesmarket/backend/internal/domain/enums"

// Russian tax and banking requisites carry their own check digits; the wizard
// and the submission handler both validate with these helpers so that a bad
// requisite never reaches the registry lookup.

var (
	innWeights10 = []int{2, 4, 10, 3, 5, 9, 4, 6, 8}
	innWeights11 = []int{7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
	innWeights12 = []int{3, 7, 2, 4, 10, 3, 5, 9, 4, 6, 8}
)

func digits(s string) ([]int, bool) {
	out := make([]int, 0, len(s))
	for _, r := range s {
		if r < '0' || r > '9' {
			return nil, false
		}
		out = append(out, int(r-'0'))
	}
	return out, true
}

func weightedMod(ds []int, weights []int, mod int) int {
	sum := 0
	for i, w := range weights {
		sum += ds[i] * w
	}
	return sum % mod % 10
}

// ValidINN accepts a 10-digit legal-entity INN or a 12-digit personal INN.
func ValidINN(inn string) bool {
	ds, ok := digits(inn)
	if !ok {
		return false
	}
	switch len(ds) {
	case 10:
		return weightedMod(ds, innWeights10, 11) == ds[9]
	case 12:
		return weightedMod(ds, innWeights11, 11) == ds[10] &&
			weightedMod(ds, innWeights12, 11) == ds[11]
	}
	return false
}

// INNLengthFor returns the INN length a role is expected to carry: legal
// entities use the 10-digit form, natural persons the 12-digit one.
func INNLengthFor(role enums.VendorRole) int {
	if role == enums.VendorRoleLegal {
		return 10
	}
	return 12
}

// ValidOGRN checks the 13-digit registration number of a legal entity.
func ValidOGRN(ogrn string) bool {
	ds, ok := digits(ogrn)
	if !ok || len(ds) != 13 {
		return false
	}
	var base int64
	for _, d := range ds[:12] {
		base = base*10 + int64(d)
	}
	return int(base%11%10) == ds[12]
}

// ValidOGRNIP checks the 15-digit registration number of a sole proprietor.
func ValidOGRNIP(ogrnip string) bool {
	ds, ok := digits(ogrnip)
	if !ok || len(ds) != 15 {
		return false
	}
	var base int64
	for _, d := range ds[:14] {
		base = base*10 + int64(d)
	}
	return int(base%13%10) == ds[14]
}

// ValidBIK checks the 9-digit bank routing code.
func ValidBIK(bik string) bool {
	ds, ok := digits(bik)
	if !ok || len(ds) != 9 {
		return false
	}
	return ds[0] == 0 && ds[1] == 4
}

var accountWeights = []int{7, 1, 3}

func accountKeyed(key string, account string) bool {
	ds, ok := digits(key + account)
	if !ok || len(ds) != 23 {
		return false
	}
	sum := 0
	for i, d := range ds {
		sum += d % 10 * accountWeights[i%3]
	}
	return sum%10 == 0
}

// ValidAccount checks a 20-digit checking account against the bank's BIK.
func ValidAccount(account, bik string) bool {
	if len(account) != 20 || !ValidBIK(bik) {
		return false
	}
	return accountKeyed(bik[6:9], account)
}

// ValidCorrAccount checks a 20-digit correspondent account against the BIK.
func ValidCorrAccount(corr, bik string) bool {
	if len(corr) != 20 || !ValidBIK(bik) {
		return false
	}
	return accountKeyed("0"+bik[4:6], corr)
}
