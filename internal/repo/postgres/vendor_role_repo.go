package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velesmarket/backend/internal/domain/model"
)

var ErrVendorRoleNotFound = errors.New("vendor role not found")

type VendorRoleRepo struct {
	pool *pgxpool.Pool
}

func NewVendorRoleRepo(pool *pgxpool.Pool) *VendorRoleRepo {
	return &VendorRoleRepo{pool: pool}
}

// Upsert writes the role record inside the submission transaction. Fields
// that do not belong to the chosen role arrive empty and are stored as NULL,
// which keeps the ogrn/ogrnip exclusivity invariant in the data itself.
func (r *VendorRoleRepo) Upsert(ctx context.Context, tx pgx.Tx, role model.VendorRole) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if role.VendorID <= 0 {
		return fmt.Errorf("invalid vendor role payload")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO vendor_roles (vendor_id, role, full_name, company_name, director_name, inn, ogrnip, ogrn, updated_at)
VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), $6, NULLIF($7, ''), NULLIF($8, ''), NOW())
ON CONFLICT (vendor_id) DO UPDATE SET
	role = EXCLUDED.role,
	full_name = EXCLUDED.full_name,
	company_name = EXCLUDED.company_name,
	director_name = EXCLUDED.director_name,
	inn = EXCLUDED.inn,
	ogrnip = EXCLUDED.ogrnip,
	ogrn = EXCLUDED.ogrn,
	updated_at = NOW()
`,
		role.VendorID,
		role.Role,
		strings.TrimSpace(role.FullName),
		strings.TrimSpace(role.CompanyName),
		strings.TrimSpace(role.DirectorName),
		strings.TrimSpace(role.INN),
		strings.TrimSpace(role.OGRNIP),
		strings.TrimSpace(role.OGRN),
	); err != nil {
		return fmt.Errorf("upsert vendor role: %w", err)
	}

	return nil
}

func (r *VendorRoleRepo) GetByVendor(ctx context.Context, vendorID int64) (model.VendorRole, error) {
	if r.pool == nil {
		return model.VendorRole{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return model.VendorRole{}, fmt.Errorf("invalid vendor id")
	}

	var (
		role                                model.VendorRole
		fullName, companyName, directorName *string
		ogrnip, ogrn, moderatorNotes        *string
	)
	err := r.pool.QueryRow(ctx, `
SELECT vendor_id, role, full_name, company_name, director_name, inn, ogrnip, ogrn, moderator_notes, moderator_id, moderated_at, updated_at
FROM vendor_roles
WHERE vendor_id = $1
`, vendorID).Scan(
		&role.VendorID,
		&role.Role,
		&fullName,
		&companyName,
		&directorName,
		&role.INN,
		&ogrnip,
		&ogrn,
		&moderatorNotes,
		&role.ModeratorID,
		&role.ModeratedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VendorRole{}, ErrVendorRoleNotFound
		}
		return model.VendorRole{}, fmt.Errorf("query vendor role: %w", err)
	}

	role.FullName = deref(fullName)
	role.CompanyName = deref(companyName)
	role.DirectorName = deref(directorName)
	role.OGRNIP = deref(ogrnip)
	role.OGRN = deref(ogrn)
	role.ModeratorNotes = deref(moderatorNotes)
	return role, nil
}

func (r *VendorRoleRepo) SetModeratorNotes(ctx context.Context, tx pgx.Tx, vendorID int64, moderatorID int64, notes string, at time.Time) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}

	if _, err := tx.Exec(ctx, `
UPDATE vendor_roles
SET moderator_notes = NULLIF($2, ''), moderator_id = $3, moderated_at = $4, updated_at = NOW()
WHERE vendor_id = $1
`, vendorID, strings.TrimSpace(notes), moderatorID, at.UTC()); err != nil {
		return fmt.Errorf("set vendor role moderator notes: %w", err)
	}

	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
