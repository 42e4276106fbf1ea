package services

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rotisserie/eris"

	"github.com/listing-cleaner/app/models"
)

// CacheService cache in-memory dạng LRU có TTL, dùng khi không có Redis/MongoDB
type CacheService struct {
	cache *expirable.LRU[string, *models.CleanCache]
	ttl   time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

var _ ICacheService = (*CacheService)(nil)

// NewCacheService tạo mới CacheService; size <= 0 là không giới hạn, ttl <= 0 là không hết hạn
func NewCacheService(size int, ttl time.Duration) *CacheService {
	if ttl < 0 {
		ttl = 0
	}
	return &CacheService{
		cache: expirable.NewLRU[string, *models.CleanCache](size, nil, ttl),
		ttl:   ttl,
	}
}

// Get lấy kết quả từ cache
func (cs *CacheService) Get(ctx context.Context, key string) (*models.CleanCache, bool, error) {
	entry, ok := cs.cache.Get(key)
	if !ok {
		cs.misses.Add(1)
		return nil, false, nil
	}
	cs.hits.Add(1)
	return entry, true, nil
}

// Set lưu kết quả vào cache
func (cs *CacheService) Set(ctx context.Context, key string, entry *models.CleanCache) error {
	if entry == nil {
		return eris.New("cache entry is nil")
	}
	cs.cache.Add(key, entry)
	return nil
}

// Delete xóa item khỏi cache
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.cache.Remove(key)
	return nil
}

// Clear xóa toàn bộ cache
func (cs *CacheService) Clear(ctx context.Context) error {
	cs.cache.Purge()
	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

// InvalidateByRulesVersion xóa các item của phiên bản khác
func (cs *CacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	for _, key := range cs.cache.Keys() {
		if entry, ok := cs.cache.Peek(key); ok && !entry.IsValidRulesVersion(rulesVersion) {
			cs.cache.Remove(key)
		}
	}
	return nil
}

// Size lấy kích thước cache
func (cs *CacheService) Size() int {
	return cs.cache.Len()
}

// GetStats lấy thống kê cache
func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	return newCacheStats(cs.hits.Load(), cs.misses.Load(), int64(cs.cache.Len())), nil
}

// Exists kiểm tra key có tồn tại không
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	return cs.cache.Contains(key), nil
}

// GetTTL lấy TTL còn lại của key
func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	entry, ok := cs.cache.Peek(key)
	if !ok || cs.ttl == 0 {
		return 0, nil
	}
	return max(cs.ttl-time.Since(entry.CreatedAt), 0), nil
}

// Close đóng kết nối (không cần thiết cho in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
