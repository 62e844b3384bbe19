package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Andrew-C-BOS/WilsonTool-sub001/internal/models"
)

// ChargeAllocation is one obligation's line in the allocation snapshot.
type ChargeAllocation struct {
	Key           string                  `json:"key"`
	ObligationKey string                  `json:"obligation_key"`
	Bucket        string                  `json:"bucket"`
	AmountCents   models.Cents            `json:"amount_cents"`
	PostedCents   models.Cents            `json:"posted_cents"`
	PendingCents  models.Cents            `json:"pending_cents"`
	Status        models.ObligationStatus `json:"status"`
}

// AllocationSnapshot is the cached read model of a full recomputation.
// Posted bucket totals count pre-sign charges only; they feed the
// countersign minimum checks.
type AllocationSnapshot struct {
	ApplicationID      models.ApplicationID    `json:"application_id"`
	PlanVersion        int                     `json:"plan_version"`
	Charges            []ChargeAllocation      `json:"charges"`
	OverageByBucket    map[string]models.Cents `json:"overage_by_bucket,omitempty"`
	PostedUpfrontCents models.Cents            `json:"posted_upfront_cents"`
	PostedDepositCents models.Cents            `json:"posted_deposit_cents"`
	ComputedAt         time.Time               `json:"computed_at"`
}

// AllocationCache keeps the latest snapshot per application in Redis.
// The cache is advisory: misses and Redis errors fall back to a fresh
// recomputation, and every payment event invalidates the key before the
// rewrite.
type AllocationCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewAllocationCache(rdb *redis.Client, ttl time.Duration) *AllocationCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AllocationCache{rdb: rdb, ttl: ttl}
}

func snapshotKey(appID models.ApplicationID) string {
	return fmt.Sprintf("alloc:%s", appID)
}

func (c *AllocationCache) Get(ctx context.Context, appID models.ApplicationID) (AllocationSnapshot, bool, error) {
	raw, err := c.rdb.Get(ctx, snapshotKey(appID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return AllocationSnapshot{}, false, nil
		}
		return AllocationSnapshot{}, false, err
	}
	var snap AllocationSnapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return AllocationSnapshot{}, false, err
	}
	return snap, true, nil
}

func (c *AllocationCache) Set(ctx context.Context, snap AllocationSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, snapshotKey(snap.ApplicationID), raw, c.ttl).Err()
}

func (c *AllocationCache) Invalidate(ctx context.Context, appID models.ApplicationID) error {
	return c.rdb.Del(ctx, snapshotKey(appID)).Err()
}
