package handlers

import (
	"errors"
	"net/http"
	"strings"

	authsvc "github.com/velesmarket/backend/internal/services/auth"
	lookupsvc "github.com/velesmarket/backend/internal/services/lookup"
	"github.com/velesmarket/backend/internal/transport/http/dto"
	httperrors "github.com/velesmarket/backend/internal/transport/http/errors"
)

type LookupHandler struct {
	client *lookupsvc.Client
}

func NewLookupHandler(client *lookupsvc.Client) *LookupHandler {
	return &LookupHandler{client: client}
}

func (h *LookupHandler) Company(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.client == nil {
		writeInternal(w, "LOOKUP_UNAVAILABLE", "lookup service is unavailable")
		return
	}

	inn := strings.TrimSpace(r.URL.Query().Get("inn"))
	if inn == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "inn query parameter is required")
		return
	}

	company, err := h.client.CompanyByINN(r.Context(), inn)
	if err != nil {
		handleLookupError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.CompanyLookupResponse{
		INN:       company.INN,
		OGRN:      company.OGRN,
		KPP:       company.KPP,
		Name:      company.Name,
		ShortName: company.ShortName,
		Director:  company.Director,
		Type:      company.Type,
		Status:    company.Status,
		Address:   company.Address,
	})
}

func (h *LookupHandler) Bank(w http.ResponseWriter, r *http.Request) {
	if _, ok := authsvc.IdentityFromContext(r.Context()); !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.client == nil {
		writeInternal(w, "LOOKUP_UNAVAILABLE", "lookup service is unavailable")
		return
	}

	bik := strings.TrimSpace(r.URL.Query().Get("bik"))
	if bik == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "bik query parameter is required")
		return
	}

	bank, err := h.client.BankByBIK(r.Context(), bik)
	if err != nil {
		handleLookupError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.BankLookupResponse{
		BIK:         bank.BIK,
		Name:        bank.Name,
		CorrAccount: bank.CorrAccount,
		SWIFT:       bank.SWIFT,
		Address:     bank.Address,
	})
}

func handleLookupError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lookupsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, lookupsvc.ErrNotFound):
		writeNotFound(w, "LOOKUP_NOT_FOUND", "no registry record found")
	case errors.Is(err, lookupsvc.ErrUnavailable):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "LOOKUP_UNAVAILABLE",
			Message: "registry lookup provider is unavailable",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "lookup operation failed")
	}
}
