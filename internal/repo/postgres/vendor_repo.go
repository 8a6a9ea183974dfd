package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
)

var ErrVendorNotFound = errors.New("vendor not found")

type VendorRepo struct {
	pool *pgxpool.Pool
}

func NewVendorRepo(pool *pgxpool.Pool) *VendorRepo {
	return &VendorRepo{pool: pool}
}

const vendorColumns = `id, name, type, kyc_status, payout_enabled, official_partner, subscription_status, created_at, updated_at`

func scanVendor(row pgx.Row) (model.Vendor, error) {
	var v model.Vendor
	err := row.Scan(
		&v.ID,
		&v.Name,
		&v.Type,
		&v.KYCStatus,
		&v.PayoutEnabled,
		&v.OfficialPartner,
		&v.SubscriptionStatus,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Vendor{}, ErrVendorNotFound
		}
		return model.Vendor{}, fmt.Errorf("scan vendor: %w", err)
	}
	return v, nil
}

func (r *VendorRepo) GetByID(ctx context.Context, vendorID int64) (model.Vendor, error) {
	if r.pool == nil {
		return model.Vendor{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return model.Vendor{}, fmt.Errorf("invalid vendor id")
	}

	return scanVendor(r.pool.QueryRow(ctx, `
SELECT `+vendorColumns+`
FROM vendors
WHERE id = $1
`, vendorID))
}

// GetForUpdate locks the vendor row for the duration of the transaction.
// The submission and moderation paths both re-check preconditions under this
// lock so that concurrent requests cannot slip past each other.
func (r *VendorRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, vendorID int64) (model.Vendor, error) {
	if tx == nil {
		return model.Vendor{}, fmt.Errorf("transaction is nil")
	}
	if vendorID <= 0 {
		return model.Vendor{}, fmt.Errorf("invalid vendor id")
	}

	return scanVendor(tx.QueryRow(ctx, `
SELECT `+vendorColumns+`
FROM vendors
WHERE id = $1
FOR UPDATE
`, vendorID))
}

func (r *VendorRepo) UpdateKYCStatus(ctx context.Context, tx pgx.Tx, vendorID int64, status enums.KYCStatus) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	tag, err := tx.Exec(ctx, `
UPDATE vendors
SET kyc_status = $2, updated_at = NOW()
WHERE id = $1
`, vendorID, status)
	if err != nil {
		return fmt.Errorf("update vendor kyc status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}

	return nil
}

func (r *VendorRepo) UpdateType(ctx context.Context, tx pgx.Tx, vendorID int64, vendorType enums.VendorType) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	tag, err := tx.Exec(ctx, `
UPDATE vendors
SET type = $2, updated_at = NOW()
WHERE id = $1
`, vendorID, vendorType)
	if err != nil {
		return fmt.Errorf("update vendor type: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrVendorNotFound
	}

	return nil
}

func (r *VendorRepo) SetPayoutEnabled(ctx context.Context, tx pgx.Tx, vendorID int64, enabled bool) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	if _, err := tx.Exec(ctx, `
UPDATE vendors
SET payout_enabled = $2, updated_at = NOW()
WHERE id = $1
`, vendorID, enabled); err != nil {
		return fmt.Errorf("set vendor payout flag: %w", err)
	}

	return nil
}

// NextSubmitted returns the oldest vendor awaiting review.
func (r *VendorRepo) NextSubmitted(ctx context.Context) (model.Vendor, error) {
	if r.pool == nil {
		return model.Vendor{}, fmt.Errorf("postgres pool is nil")
	}

	return scanVendor(r.pool.QueryRow(ctx, `
SELECT `+vendorColumns+`
FROM vendors
WHERE kyc_status = 'SUBMITTED'
ORDER BY updated_at ASC, id ASC
LIMIT 1
`))
}

func (r *VendorRepo) CountSubmitted(ctx context.Context) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int
	if err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM vendors
WHERE kyc_status = 'SUBMITTED'
`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count submitted vendors: %w", err)
	}

	return count, nil
}
