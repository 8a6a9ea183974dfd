package dto

type CompanyLookupResponse struct {
	INN       string `json:"inn"`
	OGRN      string `json:"ogrn"`
	KPP       string `json:"kpp,omitempty"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	Director  string `json:"director,omitempty"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Address   string `json:"address,omitempty"`
}

type BankLookupResponse struct {
	BIK         string `json:"bik"`
	Name        string `json:"name"`
	CorrAccount string `json:"corr_account"`
	SWIFT       string `json:"swift,omitempty"`
	Address     string `json:"address,omitempty"`
}
