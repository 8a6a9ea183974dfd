package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velesmarket/backend/internal/domain/model"
)

var ErrBankAccountNotFound = errors.New("bank account not found")

type BankAccountRepo struct {
	pool *pgxpool.Pool
}

func NewBankAccountRepo(pool *pgxpool.Pool) *BankAccountRepo {
	return &BankAccountRepo{pool: pool}
}

func (r *BankAccountRepo) Upsert(ctx context.Context, tx pgx.Tx, account model.BankAccount) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if account.VendorID <= 0 {
		return fmt.Errorf("invalid bank account payload")
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO bank_accounts (vendor_id, holder_name, bank_name, bik, account_number, corr_account, inn, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
ON CONFLICT (vendor_id) DO UPDATE SET
	holder_name = EXCLUDED.holder_name,
	bank_name = EXCLUDED.bank_name,
	bik = EXCLUDED.bik,
	account_number = EXCLUDED.account_number,
	corr_account = EXCLUDED.corr_account,
	inn = EXCLUDED.inn,
	updated_at = NOW()
`,
		account.VendorID,
		strings.TrimSpace(account.HolderName),
		strings.TrimSpace(account.BankName),
		strings.TrimSpace(account.BIK),
		strings.TrimSpace(account.AccountNumber),
		strings.TrimSpace(account.CorrAccount),
		strings.TrimSpace(account.INN),
	); err != nil {
		return fmt.Errorf("upsert bank account: %w", err)
	}

	return nil
}

func (r *BankAccountRepo) GetByVendor(ctx context.Context, vendorID int64) (model.BankAccount, error) {
	if r.pool == nil {
		return model.BankAccount{}, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return model.BankAccount{}, fmt.Errorf("invalid vendor id")
	}

	var account model.BankAccount
	err := r.pool.QueryRow(ctx, `
SELECT vendor_id, holder_name, bank_name, bik, account_number, corr_account, inn, updated_at
FROM bank_accounts
WHERE vendor_id = $1
`, vendorID).Scan(
		&account.VendorID,
		&account.HolderName,
		&account.BankName,
		&account.BIK,
		&account.AccountNumber,
		&account.CorrAccount,
		&account.INN,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.BankAccount{}, ErrBankAccountNotFound
		}
		return model.BankAccount{}, fmt.Errorf("query bank account: %w", err)
	}

	return account, nil
}
