package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/linrh-dut/otc-report/internal/application/port"
)

// Cache 日报看板载荷的读缓存。采集与修正写入后按日期失效，
// 缓存丢失只影响一次读放大，不影响正确性。
type Cache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func New(rdb *redis.Client, prefix string, ttl time.Duration) *Cache {
	if prefix == "" {
		prefix = "otcreport"
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(date string) string {
	return c.prefix + ":report:" + date
}

func (c *Cache) GetReport(ctx context.Context, date string) ([]byte, bool) {
	b, err := c.rdb.Get(ctx, c.key(date)).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (c *Cache) SetReport(ctx context.Context, date string, payload []byte) error {
	return c.rdb.Set(ctx, c.key(date), payload, c.ttl).Err()
}

func (c *Cache) InvalidateReport(ctx context.Context, date string) error {
	return c.rdb.Del(ctx, c.key(date)).Err()
}

var _ port.ReportCache = (*Cache)(nil)
