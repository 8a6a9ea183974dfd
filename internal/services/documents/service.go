package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
	pgrepo "github.com/velesmarket/backend/internal/repo/postgres"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrUpload       = errors.New("document upload failed")
	ErrNotFound     = errors.New("document not found")
	ErrFileTooLarge = errors.New("document file is too large")
)

const signedURLTTL = 5 * time.Minute

type Store interface {
	Insert(ctx context.Context, vendorID int64, docType enums.DocType, objectKey, fileName string) (model.Document, error)
	GetByID(ctx context.Context, documentID int64) (model.Document, error)
	ListByVendor(ctx context.Context, vendorID int64) ([]model.Document, error)
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	PutDocument(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// Service stores KYC evidence files. The S3 object is written first; if the
// database insert then fails the object is removed, so an orphaned upload
// never survives.
type Service struct {
	store   Store
	storage ObjectStorage
	maxSize int64
}

func NewService(store Store, storage ObjectStorage, maxSize int64) *Service {
	return &Service{
		store:   store,
		storage: storage,
		maxSize: maxSize,
	}
}

type UploadedDocument struct {
	ID        int64
	DocType   enums.DocType
	FileName  string
	Status    enums.DocumentStatus
	URL       string
	CreatedAt time.Time
}

func (s *Service) Upload(ctx context.Context, vendorID int64, docType enums.DocType, fileName, contentType string, body io.Reader, size int64) (UploadedDocument, error) {
	if vendorID <= 0 || body == nil || size <= 0 {
		return UploadedDocument{}, ErrValidation
	}
	if !docType.Valid() {
		return UploadedDocument{}, fmt.Errorf("unknown document type %q: %w", docType, ErrValidation)
	}
	if s.maxSize > 0 && size > s.maxSize {
		return UploadedDocument{}, fmt.Errorf("%d bytes over limit %d: %w", size, s.maxSize, ErrFileTooLarge)
	}
	if s.store == nil || s.storage == nil {
		return UploadedDocument{}, fmt.Errorf("document dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return UploadedDocument{}, fmt.Errorf("ensure bucket: %w", ErrUpload)
	}

	objectKey := buildDocumentObjectKey(vendorID, fileName)

	if strings.TrimSpace(contentType) == "" {
		contentType = "application/octet-stream"
	}

	if err := s.storage.PutDocument(ctx, objectKey, body, size, contentType); err != nil {
		return UploadedDocument{}, fmt.Errorf("put object: %w", ErrUpload)
	}

	record, err := s.store.Insert(ctx, vendorID, docType, objectKey, fileName)
	if err != nil {
		_ = s.storage.Delete(ctx, objectKey)
		return UploadedDocument{}, fmt.Errorf("create document record: %w", err)
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("presign document url: %w", err)
	}

	return UploadedDocument{
		ID:        record.ID,
		DocType:   record.DocType,
		FileName:  record.FileName,
		Status:    record.Status,
		URL:       url,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s *Service) List(ctx context.Context, vendorID int64) ([]UploadedDocument, error) {
	if vendorID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return nil, fmt.Errorf("document dependencies are not configured")
	}

	records, err := s.store.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list document records: %w", err)
	}

	docs := make([]UploadedDocument, 0, len(records))
	for _, rec := range records {
		url, err := s.storage.PresignGet(ctx, rec.ObjectKey, signedURLTTL)
		if err != nil {
			return nil, fmt.Errorf("presign document url: %w", err)
		}
		docs = append(docs, UploadedDocument{
			ID:        rec.ID,
			DocType:   rec.DocType,
			FileName:  rec.FileName,
			Status:    rec.Status,
			URL:       url,
			CreatedAt: rec.CreatedAt,
		})
	}

	return docs, nil
}

// Get returns one document with a fresh signed URL, scoped to the owning
// vendor.
func (s *Service) Get(ctx context.Context, vendorID, documentID int64) (UploadedDocument, error) {
	if vendorID <= 0 || documentID <= 0 {
		return UploadedDocument{}, ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return UploadedDocument{}, fmt.Errorf("document dependencies are not configured")
	}

	record, err := s.store.GetByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, pgrepo.ErrDocumentNotFound) {
			return UploadedDocument{}, ErrNotFound
		}
		return UploadedDocument{}, err
	}
	if record.VendorID != vendorID {
		return UploadedDocument{}, ErrNotFound
	}

	url, err := s.storage.PresignGet(ctx, record.ObjectKey, signedURLTTL)
	if err != nil {
		return UploadedDocument{}, fmt.Errorf("presign document url: %w", err)
	}

	return UploadedDocument{
		ID:        record.ID,
		DocType:   record.DocType,
		FileName:  record.FileName,
		Status:    record.Status,
		URL:       url,
		CreatedAt: record.CreatedAt,
	}, nil
}

func buildDocumentObjectKey(vendorID int64, fileName string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(fileName)))
	if ext == "" {
		ext = ".bin"
	}

	stamp := time.Now().UTC().Format("20060102T150405")
	return fmt.Sprintf("vendors/%d/docs/%s_%s%s", vendorID, stamp, uuid.NewString(), ext)
}
