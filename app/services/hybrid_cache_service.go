package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
)

// HybridCacheService cache service kết hợp Redis (L1) + MongoDB (L2)
type HybridCacheService struct {
	redisCache ICacheService // L1 cache - nhanh
	mongoCache ICacheService // L2 cache - persistent
	logger     *zap.Logger
}

var _ ICacheService = (*HybridCacheService)(nil)

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(redisCache, mongoCache ICacheService, logger *zap.Logger) *HybridCacheService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HybridCacheService{
		redisCache: redisCache,
		mongoCache: mongoCache,
		logger:     logger,
	}
}

// Get lấy bản ghi từ cache (Redis trước, MongoDB sau)
func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.CleanCache, bool, error) {
	entry, found, err := hcs.redisCache.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi Redis cache, fallback MongoDB", zap.Error(err))
	} else if found {
		return entry, true, nil
	}

	entry, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil || !found {
		return nil, false, err
	}

	// đồng bộ ngược lên Redis
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.redisCache.Set(bgCtx, key, entry); err != nil {
			hcs.logger.Warn("Lỗi sync MongoDB->Redis", zap.Error(err), zap.String("key", key))
		}
	}()

	hcs.logger.Debug("L2 cache hit (MongoDB)", zap.String("key", key))
	return entry, true, nil
}

// Set lưu bản ghi vào cả Redis và MongoDB
func (hcs *HybridCacheService) Set(ctx context.Context, key string, entry *models.CleanCache) error {
	return both("set",
		func() error { return hcs.redisCache.Set(ctx, key, entry) },
		func() error { return hcs.mongoCache.Set(ctx, key, entry) })
}

// Delete xóa key khỏi cả Redis và MongoDB
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	return both("delete",
		func() error { return hcs.redisCache.Delete(ctx, key) },
		func() error { return hcs.mongoCache.Delete(ctx, key) })
}

// Clear xóa toàn bộ cache (cả Redis và MongoDB)
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := both("clear",
		func() error { return hcs.redisCache.Clear(ctx) },
		func() error { return hcs.mongoCache.Clear(ctx) }); err != nil {
		return err
	}
	hcs.logger.Info("Cleared hybrid cache (Redis + MongoDB)")
	return nil
}

// InvalidateByRulesVersion xóa cache theo phiên bản luật
func (hcs *HybridCacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	return both("invalidate",
		func() error { return hcs.redisCache.InvalidateByRulesVersion(ctx, rulesVersion) },
		func() error { return hcs.mongoCache.InvalidateByRulesVersion(ctx, rulesVersion) })
}

// GetStats lấy thống kê cache (kết hợp từ cả 2)
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := hcs.redisCache.GetStats(ctx)
	mongoStats, mongoErr := hcs.mongoCache.GetStats(ctx)

	switch {
	case redisErr != nil && mongoErr != nil:
		return nil, eris.Wrapf(mongoErr, "redis and mongo stats failed (redis: %v)", redisErr)
	case redisErr != nil:
		return mongoStats, nil
	case mongoErr != nil:
		return redisStats, nil
	}
	// Redis miss rồi Mongo hit được tính một lần ở mỗi tầng; số item lấy theo tầng persistent
	return newCacheStats(
		redisStats.TotalHits+mongoStats.TotalHits,
		mongoStats.TotalMiss,
		mongoStats.TotalItems), nil
}

// Exists kiểm tra key có tồn tại không (Redis trước, MongoDB sau)
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redisCache.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check Redis exists, fallback MongoDB", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.mongoCache.Exists(ctx, key)
}

// GetTTL lấy TTL của key (từ Redis)
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.redisCache.GetTTL(ctx, key)
}

// Close đóng kết nối cả 2 cache
func (hcs *HybridCacheService) Close() error {
	return both("close", hcs.redisCache.Close, hcs.mongoCache.Close)
}

// both chạy song song thao tác trên hai tầng cache và gộp lỗi
func both(op string, l1, l2 func() error) error {
	errCh := make(chan error, 2)
	go func() { errCh <- l1() }()
	go func() { errCh <- l2() }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return eris.Wrapf(errs[0], "hybrid cache %s", op)
	default:
		return eris.Wrapf(errs[0], "hybrid cache %s (also: %v)", op, errs[1])
	}
}
