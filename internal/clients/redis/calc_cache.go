package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/bmc-backend/internal/logger"
	"github.com/yungbote/bmc-backend/internal/types"
)

// CalcCache caches canvas completeness calculations. Entry and canvas
// mutations must call Invalidate explicitly: entry writes do not touch the
// canvas row, so there is no updated_at to key freshness off.
type CalcCache interface {
	Get(ctx context.Context, canvasID uint) (*types.CanvasCalculation, bool)
	Set(ctx context.Context, canvasID uint, calc *types.CanvasCalculation)
	Invalidate(ctx context.Context, canvasID uint)
	Close() error
}

type calcCache struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewCalcCache(log *logger.Logger) (CalcCache, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &calcCache{
		log: log.With("service", "RedisCalcCache"),
		rdb: rdb,
		ttl: 10 * time.Minute,
	}, nil
}

// NewNopCalcCache returns a cache that never hits. Used when REDIS_ADDR is
// unset or the server is unreachable, so calculation always recomputes.
func NewNopCalcCache() CalcCache {
	return (*calcCache)(nil)
}

func calcKey(canvasID uint) string {
	return fmt.Sprintf("bmc:calc:%d", canvasID)
}

func (c *calcCache) Get(ctx context.Context, canvasID uint) (*types.CanvasCalculation, bool) {
	if c == nil || c.rdb == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, calcKey(canvasID)).Bytes()
	if err != nil {
		return nil, false
	}
	var calc types.CanvasCalculation
	if err := json.Unmarshal(raw, &calc); err != nil {
		c.log.Warn("bad cached calculation payload", "canvas_id", canvasID, "error", err)
		return nil, false
	}
	return &calc, true
}

func (c *calcCache) Set(ctx context.Context, canvasID uint, calc *types.CanvasCalculation) {
	if c == nil || c.rdb == nil || calc == nil {
		return
	}
	raw, err := json.Marshal(calc)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, calcKey(canvasID), raw, c.ttl).Err(); err != nil {
		c.log.Warn("calc cache set failed", "canvas_id", canvasID, "error", err)
	}
}

func (c *calcCache) Invalidate(ctx context.Context, canvasID uint) {
	if c == nil || c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, calcKey(canvasID)).Err(); err != nil {
		c.log.Warn("calc cache invalidate failed", "canvas_id", canvasID, "error", err)
	}
}

func (c *calcCache) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
