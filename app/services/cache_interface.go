package services

import (
	"context"
	"time"

	"github.com/listing-cleaner/app/models"
)

// CacheStats thống kê cache
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

func newCacheStats(hits, misses, items int64) *CacheStats {
	stats := &CacheStats{TotalHits: hits, TotalMiss: misses, TotalItems: items}
	if total := hits + misses; total > 0 {
		stats.HitRate = float64(hits) / float64(total)
	}
	return stats
}

// ICacheService interface định nghĩa các method cần thiết cho cache kết quả làm sạch.
// Key là fingerprint nội dung của tin đăng (pipeline.ListingFingerprint).
type ICacheService interface {
	// Get lấy bản ghi cache
	Get(ctx context.Context, key string) (*models.CleanCache, bool, error)

	// Set lưu bản ghi cache
	Set(ctx context.Context, key string, entry *models.CleanCache) error

	// Delete xóa bản ghi khỏi cache
	Delete(ctx context.Context, key string) error

	// Clear xóa tất cả cache
	Clear(ctx context.Context) error

	// InvalidateByRulesVersion xóa các bản ghi tạo bởi phiên bản luật/dữ liệu tham chiếu khác
	InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists kiểm tra key có tồn tại không
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL lấy TTL còn lại của key
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}
