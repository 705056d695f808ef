package cache

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/replanhq/replan/internal/config"
	"github.com/replanhq/replan/internal/domain"
)

const (
	purchaseProposalKeyPrefix = "planning:purchase"
	scanBatchSize             = 100
	defaultProposalsTTL       = time.Minute
)

// PurchaseProposalCache keeps computed purchase proposals warm between
// identical requests. Cache misses and cache failures are equivalent: the
// service recomputes.
type PurchaseProposalCache interface {
	Get(ctx context.Context, req domain.ProposalRequest) (*domain.PurchaseProposalResponse, bool, error)
	Set(ctx context.Context, req domain.ProposalRequest, resp *domain.PurchaseProposalResponse) error
	InvalidateAll(ctx context.Context) error
}

type redisProposalCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopProposalCache struct{}

func NewPurchaseProposalCache(cfg config.CacheConfig) (PurchaseProposalCache, error) {
	if !cfg.Enabled {
		return &noopProposalCache{}, nil
	}

	opts, err := buildRedisOptions(cfg)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	ttl := time.Duration(cfg.ProposalsTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultProposalsTTL
	}

	return &redisProposalCache{client: client, ttl: ttl}, nil
}

func NewNoopPurchaseProposalCache() PurchaseProposalCache {
	return &noopProposalCache{}
}

func (c *redisProposalCache) Get(ctx context.Context, req domain.ProposalRequest) (*domain.PurchaseProposalResponse, bool, error) {
	key := buildProposalKey(req)

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var resp domain.PurchaseProposalResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, false, fmt.Errorf("decode purchase proposal cache: %w", err)
	}

	return &resp, true, nil
}

func (c *redisProposalCache) Set(ctx context.Context, req domain.ProposalRequest, resp *domain.PurchaseProposalResponse) error {
	key := buildProposalKey(req)
	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode purchase proposal cache: %w", err)
	}

	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}

	return nil
}

func (c *redisProposalCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	for {
		keys, nextCursor, err := c.client.Scan(ctx, cursor, purchaseProposalKeyPrefix+"*", scanBatchSize).Result()
		if err != nil {
			return fmt.Errorf("redis scan failed: %w", err)
		}

		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis delete failed: %w", err)
			}
		}

		cursor = nextCursor
		if cursor == 0 {
			break
		}
	}

	return nil
}

func (n *noopProposalCache) Get(ctx context.Context, req domain.ProposalRequest) (*domain.PurchaseProposalResponse, bool, error) {
	return nil, false, nil
}

func (n *noopProposalCache) Set(ctx context.Context, req domain.ProposalRequest, resp *domain.PurchaseProposalResponse) error {
	return nil
}

func (n *noopProposalCache) InvalidateAll(ctx context.Context) error {
	return nil
}

func buildRedisOptions(cfg config.CacheConfig) (*redis.Options, error) {
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		return opt, nil
	}

	host := cfg.RedisHost
	if host == "" {
		host = "127.0.0.1"
	}

	port := cfg.RedisPort
	if port == "" {
		port = "6379"
	}

	return &redis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, nil
}

// buildProposalKey hashes the request identity. AsOf participates because a
// different reference date changes ASAP flags even for the same item.
func buildProposalKey(req domain.ProposalRequest) string {
	parts := []string{
		fmt.Sprintf("item=%d", req.ItemID),
		"location=" + req.Location,
		fmt.Sprintf("supplier=%d", req.SupplierID),
		fmt.Sprintf("horizon=%d", req.Horizon),
	}
	if !req.AsOf.IsZero() {
		parts = append(parts, "as_of="+req.AsOf.Format("2006-01-02"))
	}

	raw := strings.Join(parts, "|")
	hash := sha1.Sum([]byte(raw))
	return fmt.Sprintf("%s:%s", purchaseProposalKeyPrefix, hex.EncodeToString(hash[:]))
}
