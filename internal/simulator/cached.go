package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/finantah/credit-simulator/internal/cache"
	"github.com/finantah/credit-simulator/pkg/profitability"
	"go.uber.org/zap"
)

// Cached memoizes the outcomes of another Evaluator. Scenarios that differ
// only in formatting share a cache entry. A failing store is logged and
// bypassed so evaluation keeps working without it.
type Cached struct {
	next      Evaluator
	namespace string
	store     cache.Store
	ttl       time.Duration
	logger    *zap.Logger
}

type namespaced interface {
	CacheNamespace() string
}

// NewCached wraps next. Entries are keyed by next's mode, or by its
// CacheNamespace when it has one.
func NewCached(next Evaluator, store cache.Store, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	namespace := next.Mode()
	if n, ok := next.(namespaced); ok {
		namespace = n.CacheNamespace()
	}
	return &Cached{next: next, namespace: namespace, store: store, ttl: ttl, logger: logger}
}

func (c *Cached) Mode() string {
	return c.next.Mode()
}

func (c *Cached) Evaluate(ctx context.Context, raw profitability.RawScenario) (Outcome, error) {
	const op = "simulator.Cached.Evaluate"
	key := cache.Key(c.namespace, raw.Canonical())

	data, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		var outcome Outcome
		if err := json.Unmarshal(data, &outcome); err == nil {
			c.logger.Debug("cache hit", zap.String("op", op), zap.String("key", key))
			outcome.Scenario = raw
			return outcome, nil
		}
		c.logger.Warn("discarding unreadable cache entry", zap.String("op", op), zap.String("key", key))
	case !errors.Is(err, cache.ErrMiss):
		c.logger.Warn("cache lookup failed", zap.String("op", op), zap.Error(err))
	}

	outcome, err := c.next.Evaluate(ctx, raw)
	if err != nil {
		return outcome, err
	}

	data, err = json.Marshal(outcome)
	if err != nil {
		c.logger.Warn("unable to encode outcome for cache", zap.String("op", op), zap.Error(err))
		return outcome, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache write failed", zap.String("op", op), zap.Error(err))
	}

	return outcome, nil
}
