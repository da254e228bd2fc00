package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/finview/finview/internal/tier"
)

// Class names an endpoint family with its own budget.
type Class string

const (
	ClassAPI    Class = "api"    // general API requests
	ClassAI     Class = "ai"     // AI-question requests
	ClassSearch Class = "search" // symbol-search requests
)

// Config is the request budget for one (class, tier) pair.
type Config struct {
	Requests int
	Window   time.Duration
}

// limits holds the budget per class and tier. Free tiers are always
// stricter than pro.
var limits = map[Class]map[tier.Tier]Config{
	ClassAPI: {
		tier.Free: {Requests: 60, Window: time.Minute},
		tier.Pro:  {Requests: 300, Window: time.Minute},
	},
	ClassAI: {
		tier.Free: {Requests: 5, Window: 24 * time.Hour},
		tier.Pro:  {Requests: 100, Window: time.Hour},
	},
	ClassSearch: {
		tier.Free: {Requests: 10, Window: time.Hour},
		tier.Pro:  {Requests: 100, Window: time.Hour},
	},
}

// GetConfig returns the budget for a class and tier.
func GetConfig(class Class, t tier.Tier) Config {
	cfg, ok := limits[class][t]
	if !ok {
		return limits[ClassAPI][tier.Free]
	}
	return cfg
}

// Decision is the outcome of one admission check. It carries enough for
// the caller to build a retry-after signal on denial. Decisions are
// ephemeral; nothing outlives the counter window.
type Decision struct {
	Identity  string
	Class     Class
	Tier      tier.Tier
	Success   bool
	Remaining int
	Reset     time.Time
	Limit     int
}

// Limiter admits or denies requests with a sliding-window counter in
// Redis. It fails open: if the counter store is unreachable or was never
// configured, every check succeeds with the full budget remaining.
type Limiter struct {
	client *redis.Client
}

// NewLimiter creates a limiter over client. A nil client disables
// counting entirely (every check fails open).
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client}
}

// Check runs a sliding-window admission for identity under the (class,
// tier) budget.
func (l *Limiter) Check(ctx context.Context, class Class, identity string, t tier.Tier) Decision {
	cfg := GetConfig(class, t)
	now := time.Now()

	if l.client == nil {
		return failOpen(class, identity, t, cfg, now)
	}

	key := counterKey(class, t, identity)
	windowStart := now.Add(-cfg.Window)

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart.UnixMilli()))
	countCmd := pipe.ZCard(ctx, key)
	oldestCmd := pipe.ZRangeWithScores(ctx, key, 0, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		slog.Error("rate limit check failed, failing open", "class", class, "identity", identity, "error", err)
		return failOpen(class, identity, t, cfg, now)
	}

	count := int(countCmd.Val())
	reset := now.Add(cfg.Window)
	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		reset = time.UnixMilli(int64(oldest[0].Score)).Add(cfg.Window)
	}

	if count >= cfg.Requests {
		return Decision{
			Identity:  identity,
			Class:     class,
			Tier:      t,
			Success:   false,
			Remaining: 0,
			Reset:     reset,
			Limit:     cfg.Requests,
		}
	}

	// Record this request. Member must be unique within the window so
	// concurrent requests in the same millisecond both count.
	member := fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString())
	record := l.client.TxPipeline()
	record.ZAdd(ctx, key, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	record.PExpire(ctx, key, cfg.Window)
	if _, err := record.Exec(ctx); err != nil {
		slog.Error("rate limit record failed, failing open", "class", class, "identity", identity, "error", err)
		return failOpen(class, identity, t, cfg, now)
	}

	return Decision{
		Identity:  identity,
		Class:     class,
		Tier:      t,
		Success:   true,
		Remaining: cfg.Requests - count - 1,
		Reset:     reset,
		Limit:     cfg.Requests,
	}
}

// Reset drops the counter for an identity, ending its window immediately.
func (l *Limiter) Reset(ctx context.Context, class Class, identity string, t tier.Tier) error {
	if l.client == nil {
		return nil
	}
	return l.client.Del(ctx, counterKey(class, t, identity)).Err()
}

func counterKey(class Class, t tier.Tier, identity string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%s", class, t, identity)
}

func failOpen(class Class, identity string, t tier.Tier, cfg Config, now time.Time) Decision {
	return Decision{
		Identity:  identity,
		Class:     class,
		Tier:      t,
		Success:   true,
		Remaining: cfg.Requests,
		Reset:     now.Add(cfg.Window),
		Limit:     cfg.Requests,
	}
}
