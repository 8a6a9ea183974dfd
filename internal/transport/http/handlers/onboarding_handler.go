package handlers

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/velesmarket/backend/internal/domain/enums"
	authsvc "github.com/velesmarket/backend/internal/services/auth"
	onboardingsvc "github.com/velesmarket/backend/internal/services/onboarding"
	"github.com/velesmarket/backend/internal/transport/http/dto"
	httperrors "github.com/velesmarket/backend/internal/transport/http/errors"
)

type OnboardingHandler struct {
	wizard  *onboardingsvc.Wizard
	service *onboardingsvc.Service
}

func NewOnboardingHandler(wizard *onboardingsvc.Wizard, service *onboardingsvc.Service) *OnboardingHandler {
	return &OnboardingHandler{wizard: wizard, service: service}
}

func (h *OnboardingHandler) WizardStart(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wizard == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	draft, err := h.wizard.Start(r.Context(), identity.UserID)
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, draftResponse(draft, nil))
}

func (h *OnboardingHandler) WizardGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wizard == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	draft, err := h.wizard.Get(r.Context(), identity.UserID)
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, draftResponse(draft, nil))
}

func (h *OnboardingHandler) WizardStep(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wizard == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	var req dto.WizardStepRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	draft, err := h.wizard.SaveStep(r.Context(), identity.UserID, stepUpdate(req))
	if err != nil && !errors.Is(err, onboardingsvc.ErrValidation) {
		handleOnboardingError(w, err)
		return
	}

	// A failing step validation is not an HTTP error: the draft is saved
	// as-is and the message tells the vendor what to fix before advancing.
	httperrors.Write(w, http.StatusOK, draftResponse(draft, err))
}

func (h *OnboardingHandler) WizardPrev(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wizard == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	draft, err := h.wizard.Prev(r.Context(), identity.UserID)
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, draftResponse(draft, nil))
}

func (h *OnboardingHandler) WizardChangeRole(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wizard == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	var req dto.ChangeRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	draft, err := h.wizard.ChangeRole(r.Context(), identity.UserID, enums.VendorRole(req.Role))
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, draftResponse(draft, nil))
}

// Submit finalizes the wizard. The submitting flag on the draft is taken
// first so a double-click cannot start two submissions; the flag is released
// on failure and the draft is dropped on success.
func (h *OnboardingHandler) Submit(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.wizard == nil || h.service == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	draft, err := h.wizard.BeginSubmit(r.Context(), identity.UserID)
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	result, err := h.service.Submit(r.Context(), identity.UserID, onboardingsvc.SubmitInput{
		Form:      draft.Form,
		IP:        clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if finishErr := h.wizard.FinishSubmit(r.Context(), identity.UserID, err == nil); finishErr != nil && err == nil {
		err = finishErr
	}
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.SubmitResponse{
		Action:    string(result.Action),
		KYCStatus: string(result.KYCStatus),
	})
}

func (h *OnboardingHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	ready, err := h.service.Readiness(r.Context(), identity.UserID)
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ReadinessResponse{IsReady: ready})
}

func (h *OnboardingHandler) Status(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "ONBOARDING_UNAVAILABLE", "onboarding service is unavailable")
		return
	}

	status, err := h.service.Status(r.Context(), identity.UserID)
	if err != nil {
		handleOnboardingError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.StatusResponse{
		KYCStatus:      string(status.KYCStatus),
		ModeratorNotes: status.ModeratorNotes,
	})
}

func handleOnboardingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, onboardingsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, onboardingsvc.ErrDraftNotFound):
		writeNotFound(w, "DRAFT_NOT_FOUND", "wizard draft not found")
	case errors.Is(err, onboardingsvc.ErrVendorNotFound):
		writeNotFound(w, "VENDOR_NOT_FOUND", "vendor not found")
	case errors.Is(err, onboardingsvc.ErrSubmitInProgress):
		writeConflict(w, "SUBMIT_IN_PROGRESS", "submission is already in progress")
	case errors.Is(err, onboardingsvc.ErrConflict):
		writeConflict(w, "CONFLICT", err.Error())
	default:
		writeInternal(w, "INTERNAL_ERROR", "onboarding operation failed")
	}
}

func stepUpdate(req dto.WizardStepRequest) onboardingsvc.StepUpdate {
	var update onboardingsvc.StepUpdate

	if strings.TrimSpace(req.Role) != "" {
		role := enums.VendorRole(req.Role)
		update.Role = &role
	}
	if req.Company != nil {
		update.Company = &onboardingsvc.CompanyData{
			FullName:     req.Company.FullName,
			CompanyName:  req.Company.CompanyName,
			DirectorName: req.Company.DirectorName,
			INN:          req.Company.INN,
			OGRNIP:       req.Company.OGRNIP,
			OGRN:         req.Company.OGRN,
		}
	}
	if req.Bank != nil {
		update.Bank = &onboardingsvc.BankDetails{
			HolderName:    req.Bank.HolderName,
			BankName:      req.Bank.BankName,
			BIK:           req.Bank.BIK,
			AccountNumber: req.Bank.AccountNumber,
			CorrAccount:   req.Bank.CorrAccount,
		}
	}
	if req.Tax != nil {
		update.Tax = &onboardingsvc.TaxData{
			TaxRegime:       enums.TaxRegime(req.Tax.TaxRegime),
			VATStatus:       enums.VATStatus(req.Tax.VATStatus),
			FiscalMode:      enums.FiscalMode(req.Tax.FiscalMode),
			AgencyAgreement: req.Tax.AgencyAgreement,
		}
	}
	if req.Documents != nil {
		docs := make([]onboardingsvc.UploadedDoc, 0, len(req.Documents))
		for _, doc := range req.Documents {
			docs = append(docs, onboardingsvc.UploadedDoc{
				DocumentID: doc.DocumentID,
				DocType:    enums.DocType(doc.DocType),
			})
		}
		update.Documents = docs
	}

	return update
}

func draftResponse(draft onboardingsvc.Draft, stepErr error) dto.WizardDraftResponse {
	docs := make([]dto.FormDocumentPayload, 0, len(draft.Form.Documents))
	for _, doc := range draft.Form.Documents {
		docs = append(docs, dto.FormDocumentPayload{
			DocumentID: doc.DocumentID,
			DocType:    string(doc.DocType),
		})
	}

	resp := dto.WizardDraftResponse{
		VendorID: draft.VendorID,
		Step:     draft.Step,
		Role:     string(draft.Form.Role),
		Company: dto.CompanyPayload{
			FullName:     draft.Form.Company.FullName,
			CompanyName:  draft.Form.Company.CompanyName,
			DirectorName: draft.Form.Company.DirectorName,
			INN:          draft.Form.Company.INN,
			OGRNIP:       draft.Form.Company.OGRNIP,
			OGRN:         draft.Form.Company.OGRN,
		},
		Bank: dto.BankPayload{
			HolderName:    draft.Form.Bank.HolderName,
			BankName:      draft.Form.Bank.BankName,
			BIK:           draft.Form.Bank.BIK,
			AccountNumber: draft.Form.Bank.AccountNumber,
			CorrAccount:   draft.Form.Bank.CorrAccount,
		},
		Tax: dto.TaxPayload{
			TaxRegime:       string(draft.Form.Tax.TaxRegime),
			VATStatus:       string(draft.Form.Tax.VATStatus),
			FiscalMode:      string(draft.Form.Tax.FiscalMode),
			AgencyAgreement: draft.Form.Tax.AgencyAgreement,
		},
		Documents: docs,
		UpdatedAt: draft.UpdatedAt,
	}
	if stepErr != nil {
		resp.StepError = stepErr.Error()
	}

	return resp
}

func decodeJSON(r *http.Request, target any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeBadRequest(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusBadRequest, httperrors.APIError{Code: code, Message: message})
}

func writeUnauthorized(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{Code: code, Message: message})
}

func writeForbidden(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusForbidden, httperrors.APIError{Code: code, Message: message})
}

func writeNotFound(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusNotFound, httperrors.APIError{Code: code, Message: message})
}

func writeConflict(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusConflict, httperrors.APIError{Code: code, Message: message})
}

func writeInternal(w http.ResponseWriter, code, message string) {
	httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{Code: code, Message: message})
}

func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		if idx := strings.IndexByte(forwarded, ','); idx > 0 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
