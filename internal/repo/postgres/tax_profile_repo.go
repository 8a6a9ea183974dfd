package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velesmarket/backend/internal/domain/model"
)

var ErrTaxProfileNotFound = errors.New("tax profile not found")

type TaxProfileRepo struct {
	pool *pgxpool.Pool
}

func NewTaxProfileRepo(pool *pgxpool.Pool) *TaxProfileRepo {
	return &TaxProfileRepo{pool: pool}
}

func (r *TaxProfileRepo) Upsert(ctx context.Context, tx pgx.Tx, profile model.TaxProfile) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if profile.VendorID <= 0 {
		return fmt.Errorf("invalid tax profile payload")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO tax_profiles (vendor_id, tax_regime, vat_status, fiscal_mode, agency_agreement, updated_at)
VALUES ($1, $2, $3, $4, $5, NOW())
ON CONFLICT (vendor_id) DO UPDATE SET
	tax_regime = EXCLUDED.tax_regime,
	vat_status = EXCLUDED.vat_status,
	fiscal_mode = EXCLUDED.fiscal_mode,
	agency_agreement = EXCLUDED.agency_agreement,
	updated_at = NOW()
`,
		profile.VendorID,
		profile.TaxRegime,
		profile.VATStatus,
		profile.FiscalMode,
		profile.AgencyAgreement,
	); err != nil {
		return fmt.Errorf("upsert tax profile: %w", err)
	}

	return nil
}

func (r *TaxProfileRepo) GetByVendor(ctx context.Context, vendorID int64) (model.TaxProfile, error) {
	if r.pool == nil {
		return model.TaxProfile{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return model.TaxProfile{}, fmt.Errorf("invalid vendor id")
	}

	var profile model.TaxProfile
	err := r.pool.QueryRow(ctx, `
SELECT vendor_id, tax_regime, vat_status, fiscal_mode, agency_agreement, updated_at
FROM tax_profiles
WHERE vendor_id = $1
`, vendorID).Scan(
		&profile.VendorID,
		&profile.TaxRegime,
		&profile.VATStatus,
		&profile.FiscalMode,
		&profile.AgencyAgreement,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.TaxProfile{}, ErrTaxProfileNotFound
		}
		return model.TaxProfile{}, fmt.Errorf("query tax profile: %w", err)
	}

	return profile, nil
}
