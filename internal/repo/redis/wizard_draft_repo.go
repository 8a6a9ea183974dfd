package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	onboardingsvc "github.com/velesmarket/backend/internal/services/onboarding"
)

const wizardDraftPrefix = "wizard:"

// WizardDraftRepo keeps in-progress upgrade forms in redis so a vendor can
// resume from any device. The whole draft lives under one key with a TTL;
// abandoned forms expire on their own.
type WizardDraftRepo struct {
	client *goredis.Client
}

func NewWizardDraftRepo(client *goredis.Client) *WizardDraftRepo {
	return &WizardDraftRepo{client: client}
}

func (r *WizardDraftRepo) Save(ctx context.Context, draft onboardingsvc.Draft, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if draft.VendorID <= 0 {
		return fmt.Errorf("invalid vendor id in draft")
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	payload, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("marshal wizard draft: %w", err)
	}

	if err := r.client.Set(ctx, wizardDraftKey(draft.VendorID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("save wizard draft: %w", err)
	}

	return nil
}

func (r *WizardDraftRepo) Get(ctx context.Context, vendorID int64) (onboardingsvc.Draft, error) {
	if r.client == nil {
		return onboardingsvc.Draft{}, fmt.Errorf("redis client is nil")
	}

	payload, err := r.client.Get(ctx, wizardDraftKey(vendorID)).Bytes()
	if err == goredis.Nil {
		return onboardingsvc.Draft{}, onboardingsvc.ErrDraftNotFound
	}
	if err != nil {
		return onboardingsvc.Draft{}, fmt.Errorf("get wizard draft: %w", err)
	}

	var draft onboardingsvc.Draft
	if err := json.Unmarshal(payload, &draft); err != nil {
		return onboardingsvc.Draft{}, fmt.Errorf("unmarshal wizard draft: %w", err)
	}

	return draft, nil
}

func (r *WizardDraftRepo) Delete(ctx context.Context, vendorID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, wizardDraftKey(vendorID)).Err(); err != nil {
		return fmt.Errorf("delete wizard draft: %w", err)
	}

	return nil
}

func wizardDraftKey(vendorID int64) string {
	return wizardDraftPrefix + strconv.FormatInt(vendorID, 10)
}
