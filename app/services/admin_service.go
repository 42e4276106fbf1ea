package services

import (
	"context"
	"runtime"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SystemStats thống kê hệ thống
type SystemStats struct {
	Version       string                 `json:"version"`
	Uptime        string                 `json:"uptime"`
	Jobs          int                    `json:"jobs"`
	MemoryUsage   map[string]interface{} `json:"memory_usage"`
	Cache         *CacheStats            `json:"cache,omitempty"`
	Reference     ReferenceStats         `json:"reference"`
	DatabaseStats *DatabaseStats         `json:"database_stats,omitempty"`
}

// DatabaseStats thống kê database
type DatabaseStats struct {
	AdminUnits   int64 `json:"admin_units"`
	ListingCache int64 `json:"listing_cache"`
}

// AdminService service quản lý admin functions
type AdminService struct {
	listings  *ListingService
	reference *ReferenceService
	db        *mongo.Database // nil khi không dùng MongoDB
	logger    *zap.Logger
}

// NewAdminService tạo mới AdminService
func NewAdminService(listings *ListingService, reference *ReferenceService, db *mongo.Database, logger *zap.Logger) *AdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminService{
		listings:  listings,
		reference: reference,
		db:        db,
		logger:    logger,
	}
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	cache, err := as.listings.CacheStats(ctx)
	if err != nil {
		as.logger.Warn("Không lấy được cache stats", zap.Error(err))
	}

	as.listings.mu.RLock()
	jobs := len(as.listings.jobs)
	as.listings.mu.RUnlock()

	stats := &SystemStats{
		Version: as.listings.Version(),
		Uptime:  time.Since(as.listings.GetStartTime()).Round(time.Second).String(),
		Jobs:    jobs,
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
			"goroutines":     runtime.NumGoroutine(),
		},
		Cache:     cache,
		Reference: as.reference.Stats(ctx),
	}

	if as.db != nil {
		dbStats, err := as.getDatabaseStats(ctx)
		if err != nil {
			return nil, err
		}
		stats.DatabaseStats = dbStats
	}
	return stats, nil
}

// getDatabaseStats lấy thống kê database
func (as *AdminService) getDatabaseStats(ctx context.Context) (*DatabaseStats, error) {
	stats := &DatabaseStats{}
	var err error
	if stats.AdminUnits, err = as.db.Collection(CollectionAdminUnits).EstimatedDocumentCount(ctx); err != nil {
		return nil, eris.Wrap(err, "count admin_units")
	}
	if stats.ListingCache, err = as.db.Collection(CollectionListingCache).EstimatedDocumentCount(ctx); err != nil {
		return nil, eris.Wrap(err, "count listing_cache")
	}
	return stats, nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
