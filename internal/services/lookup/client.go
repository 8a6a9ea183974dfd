package lookup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("lookup record not found")
	ErrUnavailable = errors.New("lookup provider unavailable")
)

// Client talks to a DaData-compatible suggestion API for company and bank
// requisites. Both endpoints are exact findById lookups, not fuzzy search.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *zap.Logger
}

func NewClient(baseURL, apiKey string, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
		logger:     logger,
	}
}

// Company is the registry record behind an INN.
type Company struct {
	INN       string `json:"inn"`
	OGRN      string `json:"ogrn"`
	KPP       string `json:"kpp"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
	Director  string `json:"director"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	Address   string `json:"address"`
}

// Bank is the directory record behind a BIK.
type Bank struct {
	BIK         string `json:"bik"`
	Name        string `json:"name"`
	CorrAccount string `json:"corr_account"`
	SWIFT       string `json:"swift"`
	Address     string `json:"address"`
}

type suggestRequest struct {
	Query string `json:"query"`
}

type partySuggestion struct {
	Value string `json:"value"`
	Data  struct {
		INN  string `json:"inn"`
		OGRN string `json:"ogrn"`
		KPP  string `json:"kpp"`
		Name struct {
			FullWithOPF  string `json:"full_with_opf"`
			ShortWithOPF string `json:"short_with_opf"`
		} `json:"name"`
		Management struct {
			Name string `json:"name"`
		} `json:"management"`
		FIO struct {
			Surname    string `json:"surname"`
			Name       string `json:"name"`
			Patronymic string `json:"patronymic"`
		} `json:"fio"`
		Type  string `json:"type"`
		State struct {
			Status string `json:"status"`
		} `json:"state"`
		Address struct {
			UnrestrictedValue string `json:"unrestricted_value"`
		} `json:"address"`
	} `json:"data"`
}

type bankSuggestion struct {
	Value string `json:"value"`
	Data  struct {
		BIC                  string `json:"bic"`
		SWIFT                string `json:"swift"`
		CorrespondentAccount string `json:"correspondent_account"`
		Name                 struct {
			Payment string `json:"payment"`
		} `json:"name"`
		Address struct {
			UnrestrictedValue string `json:"unrestricted_value"`
		} `json:"address"`
	} `json:"data"`
}

// CompanyByINN resolves an INN to a registry record.
func (c *Client) CompanyByINN(ctx context.Context, inn string) (Company, error) {
	inn = strings.TrimSpace(inn)
	if inn == "" {
		return Company{}, fmt.Errorf("inn is required: %w", ErrValidation)
	}

	var response struct {
		Suggestions []partySuggestion `json:"suggestions"`
	}
	if err := c.post(ctx, "/findById/party", suggestRequest{Query: inn}, &response); err != nil {
		return Company{}, err
	}
	if len(response.Suggestions) == 0 {
		return Company{}, fmt.Errorf("inn %s: %w", inn, ErrNotFound)
	}

	s := response.Suggestions[0]
	director := strings.TrimSpace(s.Data.Management.Name)
	if director == "" {
		director = joinNonEmpty(s.Data.FIO.Surname, s.Data.FIO.Name, s.Data.FIO.Patronymic)
	}

	name := strings.TrimSpace(s.Data.Name.FullWithOPF)
	if name == "" {
		name = strings.TrimSpace(s.Value)
	}

	return Company{
		INN:       s.Data.INN,
		OGRN:      s.Data.OGRN,
		KPP:       s.Data.KPP,
		Name:      name,
		ShortName: s.Data.Name.ShortWithOPF,
		Director:  director,
		Type:      s.Data.Type,
		Status:    s.Data.State.Status,
		Address:   s.Data.Address.UnrestrictedValue,
	}, nil
}

// BankByBIK resolves a BIK to a bank directory record.
func (c *Client) BankByBIK(ctx context.Context, bik string) (Bank, error) {
	bik = strings.TrimSpace(bik)
	if bik == "" {
		return Bank{}, fmt.Errorf("bik is required: %w", ErrValidation)
	}

	var response struct {
		Suggestions []bankSuggestion `json:"suggestions"`
	}
	if err := c.post(ctx, "/findById/bank", suggestRequest{Query: bik}, &response); err != nil {
		return Bank{}, err
	}
	if len(response.Suggestions) == 0 {
		return Bank{}, fmt.Errorf("bik %s: %w", bik, ErrNotFound)
	}

	s := response.Suggestions[0]
	name := strings.TrimSpace(s.Data.Name.Payment)
	if name == "" {
		name = strings.TrimSpace(s.Value)
	}

	return Bank{
		BIK:         s.Data.BIC,
		Name:        name,
		CorrAccount: s.Data.CorrespondentAccount,
		SWIFT:       s.Data.SWIFT,
		Address:     s.Data.Address.UnrestrictedValue,
	}, nil
}

// ResolveBank adapts the client to the submission pipeline, which needs only
// the display name and the correspondent account for the given BIK.
func (c *Client) ResolveBank(ctx context.Context, bik string) (string, string, error) {
	bank, err := c.BankByBIK(ctx, bik)
	if err != nil {
		return "", "", err
	}
	return bank.Name, bank.CorrAccount, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	if c.baseURL == "" {
		return fmt.Errorf("lookup base url is not configured")
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal lookup request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create lookup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Token "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("lookup request failed", zap.String("path", path), zap.Error(err))
		return fmt.Errorf("lookup request: %w", ErrUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("unexpected lookup status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("lookup status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode lookup response: %w", err)
	}

	return nil
}

func joinNonEmpty(parts ...string) string {
	kept := parts[:0]
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, " ")
}
