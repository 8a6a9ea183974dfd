package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepo struct {
	pool *pgxpool.Pool
}

func NewDocumentRepo(pool *pgxpool.Pool) *DocumentRepo {
	return &DocumentRepo{pool: pool}
}

const documentColumns = `id, vendor_id, doc_type, object_key, file_name, status, moderator_notes, rejection_reason, moderator_id, decided_at, created_at`

func scanDocument(row pgx.Row) (model.Document, error) {
	var (
		doc           model.Document
		notes, reason *string
	)
	err := row.Scan(
		&doc.ID,
		&doc.VendorID,
		&doc.DocType,
		&doc.ObjectKey,
		&doc.FileName,
		&doc.Status,
		&notes,
		&reason,
		&doc.ModeratorID,
		&doc.DecidedAt,
		&doc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Document{}, ErrDocumentNotFound
		}
		return model.Document{}, fmt.Errorf("scan document: %w", err)
	}
	doc.ModeratorNotes = deref(notes)
	doc.RejectionReason = deref(reason)
	return doc, nil
}

func (r *DocumentRepo) Insert(ctx context.Context, vendorID int64, docType enums.DocType, objectKey, fileName string) (model.Document, error) {
	if r.pool == nil {
		return model.Document{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 || strings.TrimSpace(objectKey) == "" {
		return model.Document{}, fmt.Errorf("invalid document payload")
	}

	doc := model.Document{
		VendorID:  vendorID,
		DocType:   docType,
		ObjectKey: objectKey,
		FileName:  fileName,
		Status:    enums.DocumentStatusPending,
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO vendor_documents (vendor_id, doc_type, object_key, file_name, status, created_at)
VALUES ($1, $2, $3, $4, 'PENDING', NOW())
RETURNING id, created_at
`, vendorID, docType, objectKey, fileName).Scan(&doc.ID, &doc.CreatedAt)
	if err != nil {
		return model.Document{}, fmt.Errorf("insert document: %w", err)
	}

	return doc, nil
}

func (r *DocumentRepo) GetByID(ctx context.Context, documentID int64) (model.Document, error) {
	if r.pool == nil {
		return model.Document{}, fmt.Errorf("postgres pool is nil")
	}
	if documentID <= 0 {
		return model.Document{}, fmt.Errorf("invalid document id")
	}

	return scanDocument(r.pool.QueryRow(ctx, `
SELECT `+documentColumns+`
FROM vendor_documents
WHERE id = $1
`, documentID))
}

// GetForUpdate locks one document row for a decision transaction.
func (r *DocumentRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, documentID int64) (model.Document, error) {
	if tx == nil {
		return model.Document{}, fmt.Errorf("transaction is nil")
	}
	if documentID <= 0 {
		return model.Document{}, fmt.Errorf("invalid document id")
	}

	return scanDocument(tx.QueryRow(ctx, `
SELECT `+documentColumns+`
FROM vendor_documents
WHERE id = $1
FOR UPDATE
`, documentID))
}

func (r *DocumentRepo) ListByVendor(ctx context.Context, vendorID int64) ([]model.Document, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return nil, fmt.Errorf("invalid vendor id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+documentColumns+`
FROM vendor_documents
WHERE vendor_id = $1
ORDER BY created_at ASC, id ASC
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list vendor documents: %w", err)
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		doc, scanErr := scanDocument(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendor documents: %w", err)
	}

	return docs, nil
}

// Snapshots returns the compact per-document view captured into history rows.
// Runs inside the caller's transaction so the snapshot matches what the
// transition saw.
func (r *DocumentRepo) Snapshots(ctx context.Context, tx pgx.Tx, vendorID int64) ([]model.DocumentSnapshot, error) {
	if tx == nil {
		return nil, fmt.Errorf("transaction is nil")
	}

	rows, err := tx.Query(ctx, `
SELECT id, doc_type, status
FROM vendor_documents
WHERE vendor_id = $1
ORDER BY created_at ASC, id ASC
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("snapshot vendor documents: %w", err)
	}
	defer rows.Close()

	var snapshots []model.DocumentSnapshot
	for rows.Next() {
		var s model.DocumentSnapshot
		if err := rows.Scan(&s.ID, &s.DocType, &s.Status); err != nil {
			return nil, fmt.Errorf("scan document snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document snapshots: %w", err)
	}

	return snapshots, nil
}

func (r *DocumentRepo) UpdateDecision(
	ctx context.Context,
	tx pgx.Tx,
	documentID int64,
	status enums.DocumentStatus,
	moderatorID int64,
	notes, rejectionReason string,
) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if documentID <= 0 {
		return fmt.Errorf("invalid document id")
	}

	tag, err := tx.Exec(ctx, `
UPDATE vendor_documents
SET
	status = $2,
	moderator_id = $3,
	moderator_notes = NULLIF($4, ''),
	rejection_reason = NULLIF($5, ''),
	decided_at = NOW()
WHERE id = $1
`, documentID, status, moderatorID, strings.TrimSpace(notes), strings.TrimSpace(rejectionReason))
	if err != nil {
		return fmt.Errorf("update document decision: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// CountUndecided reports how many of the vendor's documents are not yet
// APPROVED. Payout eligibility requires zero.
func (r *DocumentRepo) CountUndecided(ctx context.Context, tx pgx.Tx, vendorID int64) (int, error) {
	if tx == nil {
		return 0, fmt.Errorf("transaction is nil")
	}

	var count int
	if err := tx.QueryRow(ctx, `
SELECT COUNT(*)
FROM vendor_documents
WHERE vendor_id = $1 AND status <> 'APPROVED'
`, vendorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count undecided documents: %w", err)
	}

	return count, nil
}

// ExpireOlderThan flips PENDING and APPROVED documents created before the
// cutoff to EXPIRED. History rows are never touched.
func (r *DocumentRepo) ExpireOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE vendor_documents
SET status = 'EXPIRED'
WHERE status IN ('PENDING', 'APPROVED') AND created_at < $1
`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("expire documents: %w", err)
	}

	return tag.RowsAffected(), nil
}
