package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
	authsvc "github.com/velesmarket/backend/internal/services/auth"
	modsvc "github.com/velesmarket/backend/internal/services/moderation"
	"github.com/velesmarket/backend/internal/transport/http/dto"
	httperrors "github.com/velesmarket/backend/internal/transport/http/errors"
)

type ModerationHandler struct {
	service *modsvc.Service
}

func NewModerationHandler(service *modsvc.Service) *ModerationHandler {
	return &ModerationHandler{service: service}
}

func (h *ModerationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	vendorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.ModerationDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	decision := req.Status
	if strings.TrimSpace(decision) == "" {
		decision = req.Action
	}
	action, err := modsvc.ParseAction(decision)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	status, err := h.service.Transition(r.Context(), vendorID, action, modsvc.ModeratorInput{
		ModeratorID:     identity.UserID,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
		IP:              clientIP(r),
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		handleModerationError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ModerationDecisionResponse{KYCStatus: string(status)})
}

func (h *ModerationHandler) DecideDocument(w http.ResponseWriter, r *http.Request) {
	identity, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	documentID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.DocumentDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	err := h.service.DecideDocument(r.Context(), documentID, enums.DocumentStatus(strings.ToUpper(req.Status)), modsvc.ModeratorInput{
		ModeratorID:     identity.UserID,
		Notes:           req.Notes,
		RejectionReason: req.RejectionReason,
		IP:              clientIP(r),
		UserAgent:       r.UserAgent(),
	})
	if err != nil {
		handleModerationError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ModerationHandler) History(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	vendorID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	result, err := h.service.History(r.Context(), vendorID)
	if err != nil {
		handleModerationError(w, err)
		return
	}

	items := make([]dto.HistoryItemResponse, 0, len(result.Items))
	for _, item := range result.Items {
		items = append(items, historyItemResponse(item))
	}

	counts := make(map[string]int, len(result.Stats.ActionCounts))
	for action, count := range result.Stats.ActionCounts {
		counts[string(action)] = count
	}

	httperrors.Write(w, http.StatusOK, dto.HistoryResponse{
		Items: items,
		Stats: dto.HistoryStatsResponse{
			TotalSubmissions:   result.Stats.TotalSubmissions,
			TotalResubmissions: result.Stats.TotalResubmissions,
			TotalAttempts:      result.Stats.TotalAttempts,
			ActionCounts:       counts,
		},
	})
}

func (h *ModerationHandler) QueueNext(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	item, err := h.service.NextPending(r.Context())
	if err != nil {
		handleModerationError(w, err)
		return
	}

	docs := make([]dto.QueueDocumentResponse, 0, len(item.Documents))
	for _, doc := range item.Documents {
		docs = append(docs, dto.QueueDocumentResponse{
			ID:       doc.Document.ID,
			DocType:  string(doc.Document.DocType),
			FileName: doc.Document.FileName,
			Status:   string(doc.Document.Status),
			URL:      doc.URL,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.QueueItemResponse{
		VendorID:     item.Vendor.ID,
		VendorType:   string(item.Vendor.Type),
		KYCStatus:    string(item.Vendor.KYCStatus),
		Role:         string(item.Role.Role),
		FullName:     item.Role.FullName,
		CompanyName:  item.Role.CompanyName,
		DirectorName: item.Role.DirectorName,
		INN:          item.Role.INN,
		OGRN:         item.Role.OGRN,
		OGRNIP:       item.Role.OGRNIP,
		Documents:    docs,
		QueueSize:    item.QueueSize,
		ETABucket:    item.ETABucket,
	})
}

func (h *ModerationHandler) RejectReasons(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if h.service == nil {
		writeInternal(w, "MODERATION_UNAVAILABLE", "moderation service is unavailable")
		return
	}

	reasons := h.service.ListRejectReasons()
	items := make([]dto.RejectReasonResponse, 0, len(reasons))
	for _, reason := range reasons {
		items = append(items, dto.RejectReasonResponse{
			ReasonCode:      reason.ReasonCode,
			Label:           reason.Label,
			ReasonText:      reason.ReasonText,
			RequiredFixStep: reason.RequiredFixStep,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.RejectReasonsListResponse{Items: items})
}

func handleModerationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, modsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, modsvc.ErrVendorNotFound):
		writeNotFound(w, "VENDOR_NOT_FOUND", "vendor not found")
	case errors.Is(err, modsvc.ErrDocumentNotFound):
		writeNotFound(w, "DOCUMENT_NOT_FOUND", "document not found")
	case errors.Is(err, modsvc.ErrInvalidState):
		writeConflict(w, "INVALID_STATE", err.Error())
	case errors.Is(err, modsvc.ErrQueueEmpty):
		writeNotFound(w, "QUEUE_EMPTY", "no submissions waiting for review")
	default:
		writeInternal(w, "INTERNAL_ERROR", "moderation operation failed")
	}
}

func historyItemResponse(item model.ModerationHistoryItem) dto.HistoryItemResponse {
	docs := make([]dto.HistoryDocumentResponse, 0, len(item.Documents))
	for _, doc := range item.Documents {
		docs = append(docs, dto.HistoryDocumentResponse{
			ID:      doc.ID,
			DocType: string(doc.DocType),
			Status:  string(doc.Status),
		})
	}

	return dto.HistoryItemResponse{
		ID:              item.ID,
		Action:          string(item.Action),
		PreviousStatus:  string(item.PreviousStatus),
		NewStatus:       string(item.NewStatus),
		Notes:           item.Notes,
		RejectionReason: item.RejectionReason,
		Documents:       docs,
		ModeratorID:     item.ModeratorID,
		CreatedAt:       item.CreatedAt,
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (authsvc.Identity, bool) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return authsvc.Identity{}, false
	}
	if identity.Role != authsvc.RoleAdmin {
		writeForbidden(w, "FORBIDDEN", "admin role required")
		return authsvc.Identity{}, false
	}
	return identity, true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid "+name+" path parameter")
		return 0, false
	}
	return id, true
}
