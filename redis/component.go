package redis

import (
	"context"
	"fmt"

	"github.com/kbukum/socialauth/component"
	"github.com/kbukum/socialauth/logger"
)

// SessionSuffix is appended to Config.KeyPrefix for session-half keys.
const SessionSuffix = "session"

// Component owns the Redis connection behind the session half. Once
// started it hands out a KVStore under "<key_prefix>:session" that expires
// entries after Config.SessionTTL.
type Component struct {
	cfg     Config
	log     *logger.Logger
	client  *Client
	session *KVStore
}

// NewComponent creates a Redis component for use with the component registry.
func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg: cfg,
		log: logger.OrNop(log).WithComponent("redis"),
	}
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// Client returns the underlying *Client, or nil if not started.
func (c *Component) Client() *Client {
	return c.client
}

// SessionHalf returns the session-half store, or nil if not started.
func (c *Component) SessionHalf() *KVStore {
	return c.session
}

// SessionPrefix is the key prefix under which session halves are written.
func (c *Component) SessionPrefix() string {
	return c.cfg.KeyPrefix + ":" + SessionSuffix
}

func (c *Component) Name() string { return "redis" }

// Start connects, pings, and prepares the session-half store.
func (c *Component) Start(ctx context.Context) error {
	client, err := New(c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("redis start: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return fmt.Errorf("redis start ping: %w", err)
	}

	c.client = client
	c.session = NewKVStore(client).WithPrefix(c.SessionPrefix())
	c.log.Debug("Session half backed by redis", map[string]interface{}{
		"prefix": c.SessionPrefix(),
		"ttl":    c.ttlLabel(),
	})
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	if c.client == nil {
		return nil
	}
	err := c.client.Close()
	c.client, c.session = nil, nil
	return err
}

// Health pings the server and counts the session halves currently
// persisted under the session prefix. Halves left behind with no TTL
// never expire, so a non-zero count without a TTL reports degraded.
func (c *Component) Health(ctx context.Context) component.Health {
	h := component.Health{Name: c.Name()}
	if c.client == nil {
		h.Status = component.StatusUnhealthy
		h.Message = "redis not initialized"
		return h
	}
	if err := c.client.Ping(ctx); err != nil {
		h.Status = component.StatusUnhealthy
		h.Message = fmt.Sprintf("ping failed: %v", err)
		return h
	}

	halves, err := c.countSessionHalves(ctx)
	if err != nil {
		h.Status = component.StatusDegraded
		h.Message = fmt.Sprintf("scan %s: %v", c.SessionPrefix(), err)
		return h
	}
	h.Status = component.StatusHealthy
	if halves > 0 && c.cfg.sessionTTL() <= 0 {
		h.Status = component.StatusDegraded
	}
	h.Message = fmt.Sprintf("prefix=%s ttl=%s halves=%d", c.SessionPrefix(), c.ttlLabel(), halves)
	return h
}

func (c *Component) Describe() component.Description {
	return component.Description{
		Name:    "Redis session half",
		Type:    "redis",
		Details: fmt.Sprintf("%s db=%d prefix=%s ttl=%s", c.cfg.Addr, c.cfg.DB, c.SessionPrefix(), c.ttlLabel()),
	}
}

func (c *Component) countSessionHalves(ctx context.Context) (int, error) {
	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := c.client.Unwrap().Scan(ctx, cursor, c.SessionPrefix()+":*", 100).Result()
		if err != nil {
			return 0, err
		}
		count += len(keys)
		if next == 0 {
			return count, nil
		}
		cursor = next
	}
}

func (c *Component) ttlLabel() string {
	if d := c.cfg.sessionTTL(); d > 0 {
		return d.String()
	}
	return "off"
}
