package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/velesmarket/backend/internal/domain/enums"
)

const kycStatusPrefix = "kyc_status:"

// StatusCacheRepo is a short-TTL cache in front of the vendors table for the
// status polling endpoint. Stale reads are bounded by the TTL; writes that
// change the status invalidate the key explicitly.
type StatusCacheRepo struct {
	client *goredis.Client
}

func NewStatusCacheRepo(client *goredis.Client) *StatusCacheRepo {
	return &StatusCacheRepo{client: client}
}

func (r *StatusCacheRepo) GetStatus(ctx context.Context, vendorID int64) (enums.KYCStatus, bool, error) {
	if r.client == nil {
		return "", false, fmt.Errorf("redis client is nil")
	}

	value, err := r.client.Get(ctx, kycStatusKey(vendorID)).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get kyc status: %w", err)
	}

	status := enums.KYCStatus(value)
	if !status.Valid() {
		return "", false, nil
	}

	return status, true, nil
}

func (r *StatusCacheRepo) SetStatus(ctx context.Context, vendorID int64, status enums.KYCStatus, ttl time.Duration) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if ttl <= 0 {
		ttl = time.Second
	}

	if err := r.client.Set(ctx, kycStatusKey(vendorID), string(status), ttl).Err(); err != nil {
		return fmt.Errorf("set kyc status: %w", err)
	}

	return nil
}

func (r *StatusCacheRepo) Invalidate(ctx context.Context, vendorID int64) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}

	if err := r.client.Del(ctx, kycStatusKey(vendorID)).Err(); err != nil {
		return fmt.Errorf("invalidate kyc status: %w", err)
	}

	return nil
}

func kycStatusKey(vendorID int64) string {
	return kycStatusPrefix + strconv.FormatInt(vendorID, 10)
}
