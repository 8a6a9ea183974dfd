package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/velesmarket/backend/internal/domain/enums"
	"github.com/velesmarket/backend/internal/domain/model"
)

// HistoryRepo writes the append-only moderation audit trail. The table is
// insert-only: no update or delete statement exists in this repo on purpose.
type HistoryRepo struct {
	pool *pgxpool.Pool
}

func NewHistoryRepo(pool *pgxpool.Pool) *HistoryRepo {
	return &HistoryRepo{pool: pool}
}

func (r *HistoryRepo) Append(ctx context.Context, tx pgx.Tx, item model.ModerationHistoryItem) error {
	if tx == nil {
		return fmt.Errorf("transaction is nil")
	}
	if item.VendorID <= 0 || item.Action == "" {
		return fmt.Errorf("invalid history payload")
	}

	snapshot, err := json.Marshal(item.Documents)
	if err != nil {
		return fmt.Errorf("marshal documents snapshot: %w", err)
	}

	if _, err := tx.Exec(ctx, `
INSERT INTO moderation_history (
	vendor_id,
	action,
	previous_status,
	new_status,
	notes,
	rejection_reason,
	documents_snapshot,
	moderator_id,
	ip,
	user_agent,
	created_at
) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, $8, NULLIF($9, ''), NULLIF($10, ''), NOW())
`,
		item.VendorID,
		item.Action,
		item.PreviousStatus,
		item.NewStatus,
		strings.TrimSpace(item.Notes),
		strings.TrimSpace(item.RejectionReason),
		snapshot,
		item.ModeratorID,
		strings.TrimSpace(item.IP),
		strings.TrimSpace(item.UserAgent),
	); err != nil {
		return fmt.Errorf("append moderation history: %w", err)
	}

	return nil
}

func (r *HistoryRepo) ListByVendor(ctx context.Context, vendorID int64) ([]model.ModerationHistoryItem, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return nil, fmt.Errorf("invalid vendor id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, vendor_id, action, previous_status, new_status, notes, rejection_reason, documents_snapshot, moderator_id, ip, user_agent, created_at
FROM moderation_history
WHERE vendor_id = $1
ORDER BY created_at DESC, id DESC
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("list moderation history: %w", err)
	}
	defer rows.Close()

	var items []model.ModerationHistoryItem
	for rows.Next() {
		item, scanErr := scanHistoryItem(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate moderation history: %w", err)
	}

	return items, nil
}

// CountsByAction aggregates the audit trail for the history stats endpoint.
func (r *HistoryRepo) CountsByAction(ctx context.Context, vendorID int64) (map[enums.ModerationAction]int, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}
	if vendorID <= 0 {
		return nil, fmt.Errorf("invalid vendor id")
	}

	rows, err := r.pool.Query(ctx, `
SELECT action, COUNT(*)
FROM moderation_history
WHERE vendor_id = $1
GROUP BY action
`, vendorID)
	if err != nil {
		return nil, fmt.Errorf("count moderation history: %w", err)
	}
	defer rows.Close()

	counts := make(map[enums.ModerationAction]int)
	for rows.Next() {
		var (
			action enums.ModerationAction
			n      int
		)
		if err := rows.Scan(&action, &n); err != nil {
			return nil, fmt.Errorf("scan history count: %w", err)
		}
		counts[action] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history counts: %w", err)
	}

	return counts, nil
}

func scanHistoryItem(row pgx.Row) (model.ModerationHistoryItem, error) {
	var (
		item                  model.ModerationHistoryItem
		notes, reason, ip, ua *string
		snapshot              []byte
	)
	err := row.Scan(
		&item.ID,
		&item.VendorID,
		&item.Action,
		&item.PreviousStatus,
		&item.NewStatus,
		&notes,
		&reason,
		&snapshot,
		&item.ModeratorID,
		&ip,
		&ua,
		&item.CreatedAt,
	)
	if err != nil {
		return model.ModerationHistoryItem{}, fmt.Errorf("scan history item: %w", err)
	}

	item.Notes = deref(notes)
	item.RejectionReason = deref(reason)
	item.IP = deref(ip)
	item.UserAgent = deref(ua)
	if len(snapshot) > 0 {
		if err := json.Unmarshal(snapshot, &item.Documents); err != nil {
			return model.ModerationHistoryItem{}, fmt.Errorf("unmarshal documents snapshot: %w", err)
		}
	}

	return item, nil
}
