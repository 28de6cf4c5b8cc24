package sales

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "salesboard:version"
	// BumpChannel carries cache version bumps between processes.
	BumpChannel = "salesboard.bump"
)

// Cache stores computed dashboards in Redis under a global version, so a bump
// invalidates every dashboard at once. A Cache without a client caches nothing.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. client may be nil.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising it to 1.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	if err := c.client.SetNX(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
		return 0, fmt.Errorf("cache: init version: %w", err)
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err != nil {
		return 0, fmt.Errorf("cache: read version: %w", err)
	}
	return ver, nil
}

// DashboardKey names the cached dashboard for window as seen at now. The
// current month's figures move with the calendar day, so its key carries the
// day as well as the period.
func (c *Cache) DashboardKey(ctx context.Context, window MonthWindow, now time.Time) (string, error) {
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	key := "salesboard:dashboard:" + window.Period()
	if window.Contains(now) {
		key += ":" + now.In(window.Location()).Format(time.DateOnly)
	}
	return key + ":v" + strconv.FormatInt(ver, 10), nil
}

// GetDashboard returns the dashboard stored under key. ok is false on a miss.
func (c *Cache) GetDashboard(ctx context.Context, key string) (dashboard Dashboard, ok bool, err error) {
	if !c.enabled() {
		return Dashboard{}, false, nil
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Dashboard{}, false, nil
	}
	if err != nil {
		return Dashboard{}, false, fmt.Errorf("cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		return Dashboard{}, false, fmt.Errorf("cache: decode %s: %w", key, err)
	}
	return dashboard, true, nil
}

// PutDashboard stores dashboard under key for the cache TTL.
func (c *Cache) PutDashboard(ctx context.Context, key string, dashboard Dashboard) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache: set %s: %w", key, err)
	}
	return nil
}

// Bump invalidates every cached dashboard and tells other processes.
func (c *Cache) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, BumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation calls fn with the new version every time any process
// bumps the cache, until ctx is done.
func (c *Cache) ListenForInvalidation(ctx context.Context, fn func(version int64)) error {
	if !c.enabled() || fn == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, BumpChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("cache: subscribe: %w", err)
	}
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				ver, err := strconv.ParseInt(msg.Payload, 10, 64)
				if err != nil {
					continue
				}
				fn(ver)
			}
		}
	}()
	return nil
}
