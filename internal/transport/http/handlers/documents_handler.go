package handlers

import (
	"errors"
	"net/http"

	"github.com/velesmarket/backend/internal/domain/enums"
	authsvc "github.com/velesmarket/backend/internal/services/auth"
	docsvc "github.com/velesmarket/backend/internal/services/documents"
	onboardingsvc "github.com/velesmarket/backend/internal/services/onboarding"
	"github.com/velesmarket/backend/internal/transport/http/dto"
	httperrors "github.com/velesmarket/backend/internal/transport/http/errors"
)

const maxDocumentUploadSize = 15 << 20 // 15 MiB

type DocumentsHandler struct {
	service *docsvc.Service
	wizard  *onboardingsvc.Wizard
}

func NewDocumentsHandler(service *docsvc.Service, wizard *onboardingsvc.Wizard) *DocumentsHandler {
	return &DocumentsHandler{service: service, wizard: wizard}
}

// Upload stores one evidence file and, when a wizard draft is open, attaches
// the reference to it so the documents step picks the file up automatically.
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DOCUMENTS_UNAVAILABLE", "document service is unavailable")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxDocumentUploadSize)
	if err := r.ParseMultipartForm(maxDocumentUploadSize); err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "invalid multipart form")
		return
	}

	docType := enums.DocType(r.FormValue("doc_type"))
	if !docType.Valid() {
		writeBadRequest(w, "VALIDATION_ERROR", "unknown doc_type")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeBadRequest(w, "VALIDATION_ERROR", "file is required")
		return
	}
	defer file.Close()

	if header == nil || header.Size <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "file is empty")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	doc, err := h.service.Upload(r.Context(), identity.UserID, docType, header.Filename, contentType, file, header.Size)
	if err != nil {
		handleDocumentsError(w, err)
		return
	}

	if h.wizard != nil {
		_, attachErr := h.wizard.AttachDocument(r.Context(), identity.UserID, onboardingsvc.UploadedDoc{
			DocumentID: doc.ID,
			DocType:    doc.DocType,
		})
		if attachErr != nil && !errors.Is(attachErr, onboardingsvc.ErrDraftNotFound) {
			handleOnboardingError(w, attachErr)
			return
		}
	}

	httperrors.Write(w, http.StatusOK, documentResponse(doc))
}

func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	identity, ok := authsvc.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "authentication required")
		return
	}
	if h.service == nil {
		writeInternal(w, "DOCUMENTS_UNAVAILABLE", "document service is unavailable")
		return
	}

	docs, err := h.service.List(r.Context(), identity.UserID)
	if err != nil {
		handleDocumentsError(w, err)
		return
	}

	items := make([]dto.DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		items = append(items, documentResponse(doc))
	}

	httperrors.Write(w, http.StatusOK, dto.DocumentsListResponse{Items: items})
}

func handleDocumentsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, docsvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, docsvc.ErrFileTooLarge):
		writeBadRequest(w, "FILE_TOO_LARGE", "document file exceeds the size limit")
	case errors.Is(err, docsvc.ErrNotFound):
		writeNotFound(w, "DOCUMENT_NOT_FOUND", "document not found")
	case errors.Is(err, docsvc.ErrUpload):
		httperrors.Write(w, http.StatusBadGateway, httperrors.APIError{
			Code:    "UPLOAD_FAILED",
			Message: "document storage is unavailable",
		})
	default:
		writeInternal(w, "INTERNAL_ERROR", "document operation failed")
	}
}

func documentResponse(doc docsvc.UploadedDocument) dto.DocumentResponse {
	return dto.DocumentResponse{
		ID:        doc.ID,
		DocType:   string(doc.DocType),
		FileName:  doc.FileName,
		Status:    string(doc.Status),
		URL:       doc.URL,
		CreatedAt: doc.CreatedAt,
	}
}
