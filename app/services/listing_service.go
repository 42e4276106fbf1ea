package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/pipeline"
)

// ErrMissingURL tin đăng không có URL nên không có khóa cache và bị bộ lọc loại
var ErrMissingURL = eris.New("listing url is empty")

// CleanOutcome kết quả làm sạch một tin qua service
type CleanOutcome struct {
	Result   models.CleanResult
	CacheHit bool
	Version  string
}

// ListingService làm sạch tin đăng qua pipeline, có cache theo fingerprint nội dung tin
type ListingService struct {
	runner    *pipeline.Runner
	cache     ICacheService // nil = không cache
	logger    *zap.Logger
	startTime time.Time

	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewListingService tạo mới ListingService
func NewListingService(runner *pipeline.Runner, cache ICacheService, logger *zap.Logger) *ListingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ListingService{
		runner:    runner,
		cache:     cache,
		logger:    logger,
		startTime: time.Now(),
		jobs:      make(map[string]*Job),
	}
}

// Version phiên bản luật + dữ liệu tham chiếu đang dùng
func (ls *ListingService) Version() string {
	return ls.runner.Processor().Version()
}

// GetStartTime thời điểm service khởi động
func (ls *ListingService) GetStartTime() time.Time {
	return ls.startTime
}

// CacheKey khóa cache của một tin đăng theo nội dung, trùng với CleanResult.Fingerprint
func CacheKey(l models.RawListing) string {
	return pipeline.ListingFingerprint(l)
}

// Clean làm sạch một tin. useCache = false bỏ qua cả đọc và ghi cache.
func (ls *ListingService) Clean(ctx context.Context, l models.RawListing, useCache bool) (*CleanOutcome, error) {
	if strings.TrimSpace(l.URL) == "" {
		return nil, ErrMissingURL
	}
	version := ls.Version()
	key := CacheKey(l)

	if useCache && ls.cache != nil {
		if entry, ok := ls.lookup(ctx, key, version); ok {
			return &CleanOutcome{Result: entry.Result, CacheHit: true, Version: version}, nil
		}
	}

	res := ls.runner.Processor().Clean(l)
	if useCache && ls.cache != nil && res.Status == models.StatusCleaned {
		ls.store(ctx, key, res, version)
	}
	return &CleanOutcome{Result: res, Version: version}, nil
}

// lookup đọc cache; bản ghi của phiên bản luật cũ bị xóa và coi như miss
func (ls *ListingService) lookup(ctx context.Context, key, version string) (*models.CleanCache, bool) {
	entry, found, err := ls.cache.Get(ctx, key)
	if err != nil {
		ls.logger.Warn("Cache get failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !found {
		return nil, false
	}
	if !entry.IsValidRulesVersion(version) {
		if err := ls.cache.Delete(ctx, key); err != nil {
			ls.logger.Warn("Cache delete failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	return entry, true
}

func (ls *ListingService) store(ctx context.Context, key string, res models.CleanResult, version string) {
	if err := ls.cache.Set(ctx, key, models.NewCleanCache(res, version)); err != nil {
		ls.logger.Warn("Cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Batch làm sạch nhiều tin đồng bộ qua runner; kết quả đã làm sạch được ghi cache
func (ls *ListingService) Batch(ctx context.Context, listings []models.RawListing, useCache bool) ([]models.CleanResult, pipeline.Summary, error) {
	results, sum, err := ls.runner.Clean(ctx, listings)
	if err != nil {
		return nil, pipeline.Summary{}, err
	}
	if useCache && ls.cache != nil {
		version := ls.Version()
		for i := range results {
			if results[i].Status == models.StatusCleaned {
				ls.store(ctx, results[i].Fingerprint, results[i], version)
			}
		}
	}
	return results, sum, nil
}

// InvalidateCache xóa bản ghi cache của các phiên bản luật khác phiên bản hiện tại
func (ls *ListingService) InvalidateCache(ctx context.Context) (string, error) {
	version := ls.Version()
	if ls.cache == nil {
		return version, nil
	}
	if err := ls.cache.InvalidateByRulesVersion(ctx, version); err != nil {
		return version, err
	}
	ls.logger.Info("Cache invalidated", zap.String("rules_version", version))
	return version, nil
}

// ClearCache xóa toàn bộ cache
func (ls *ListingService) ClearCache(ctx context.Context) error {
	if ls.cache == nil {
		return nil
	}
	return ls.cache.Clear(ctx)
}

// CacheStats thống kê cache; nil khi không cấu hình cache
func (ls *ListingService) CacheStats(ctx context.Context) (*CacheStats, error) {
	if ls.cache == nil {
		return nil, nil
	}
	return ls.cache.GetStats(ctx)
}
