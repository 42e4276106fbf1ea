package services

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
)

const (
	redisKeyPrefix = "listing_cleaner:"
	redisScanCount = 500
)

// RedisCacheService cache service sử dụng Redis
type RedisCacheService struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	// Stats
	hits   atomic.Int64
	misses atomic.Int64
}

var _ ICacheService = (*RedisCacheService)(nil)

// NewRedisCacheService tạo mới Redis cache service và kiểm tra kết nối
func NewRedisCacheService(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, eris.Wrap(err, "parse redis url")
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, eris.Wrapf(err, "connect redis %s", opts.Addr)
	}

	return newRedisCacheService(client, ttl, logger), nil
}

func newRedisCacheService(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisCacheService{
		client: client,
		logger: logger,
		prefix: redisKeyPrefix,
		ttl:    ttl,
	}
}

// Get lấy bản ghi từ cache
func (rcs *RedisCacheService) Get(ctx context.Context, key string) (*models.CleanCache, bool, error) {
	cacheKey := rcs.prefix + key

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrapf(err, "redis get %s", cacheKey)
	}

	var entry models.CleanCache
	if err := json.Unmarshal(val, &entry); err != nil {
		rcs.logger.Warn("Dropping undecodable cache entry", zap.String("key", cacheKey), zap.Error(err))
		rcs.client.Del(ctx, cacheKey)
		rcs.misses.Add(1)
		return nil, false, nil
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return &entry, true, nil
}

// Set lưu bản ghi vào cache
func (rcs *RedisCacheService) Set(ctx context.Context, key string, entry *models.CleanCache) error {
	if entry == nil {
		return eris.New("cache entry is nil")
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return eris.Wrap(err, "marshal cache entry")
	}
	if err := rcs.client.Set(ctx, rcs.prefix+key, data, rcs.ttl).Err(); err != nil {
		return eris.Wrapf(err, "redis set %s", key)
	}
	rcs.logger.Debug("Đã lưu vào Redis cache", zap.String("key", key))
	return nil
}

// Delete xóa key khỏi cache
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	if err := rcs.client.Del(ctx, rcs.prefix+key).Err(); err != nil {
		return eris.Wrapf(err, "redis del %s", key)
	}
	return nil
}

// Clear xóa toàn bộ key có prefix của service
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	deleted, err := rcs.deletePrefixed(ctx)
	if err != nil {
		return err
	}
	rcs.hits.Store(0)
	rcs.misses.Store(0)
	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", deleted))
	return nil
}

// InvalidateByRulesVersion Redis không lưu version trong key nên xóa toàn bộ
func (rcs *RedisCacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	return rcs.Clear(ctx)
}

// deletePrefixed xóa theo lô các key tìm được bằng SCAN
func (rcs *RedisCacheService) deletePrefixed(ctx context.Context) (int, error) {
	deleted := 0
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", redisScanCount).Iterator()
	batch := make([]string, 0, redisScanCount)
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == redisScanCount {
			if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
				return deleted, eris.Wrap(err, "redis del batch")
			}
			deleted += len(batch)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, eris.Wrap(err, "redis scan")
	}
	if len(batch) > 0 {
		if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
			return deleted, eris.Wrap(err, "redis del batch")
		}
		deleted += len(batch)
	}
	return deleted, nil
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	var items int64
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", redisScanCount).Iterator()
	for iter.Next(ctx) {
		items++
	}
	if err := iter.Err(); err != nil {
		rcs.logger.Warn("Không thể đếm key Redis", zap.Error(err))
	}
	return newCacheStats(rcs.hits.Load(), rcs.misses.Load(), items), nil
}

// Exists kiểm tra key có tồn tại không
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	n, err := rcs.client.Exists(ctx, rcs.prefix+key).Result()
	if err != nil {
		return false, eris.Wrapf(err, "redis exists %s", key)
	}
	return n > 0, nil
}

// GetTTL lấy TTL của key
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := rcs.client.TTL(ctx, rcs.prefix+key).Result()
	if err != nil {
		return 0, eris.Wrapf(err, "redis ttl %s", key)
	}
	return max(ttl, 0), nil
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}
