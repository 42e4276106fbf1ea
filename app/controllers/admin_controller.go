package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/requests"
	"github.com/listing-cleaner/app/responses"
	"github.com/listing-cleaner/app/services"
)

// AdminController controller xử lý các request admin
type AdminController struct {
	adminService     *services.AdminService
	listingService   *services.ListingService
	referenceService *services.ReferenceService
	logger           *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, listingService *services.ListingService, referenceService *services.ReferenceService, logger *zap.Logger) *AdminController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminController{
		adminService:     adminService,
		listingService:   listingService,
		referenceService: referenceService,
		logger:           logger,
	}
}

// InvalidateCache xóa các kết quả cache không còn khớp phiên bản luật hiện tại
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	startTime := time.Now()
	version, err := ac.listingService.InvalidateCache(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi invalidate cache", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "INVALIDATE_ERROR", "Lỗi invalidate cache: "+err.Error())
		return
	}

	ac.logger.Info("Invalidate cache thành công",
		zap.String("version", version),
		zap.Duration("duration", time.Since(startTime)))

	c.JSON(http.StatusOK, responses.InvalidateCacheResponse{
		RulesVersion: version,
		Cleared:      true,
		Message:      "Invalidate cache thành công",
	})
}

// ClearCache xóa toàn bộ cache
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.listingService.ClearCache(c.Request.Context()); err != nil {
		ac.logger.Error("Lỗi xóa cache", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "CLEAR_ERROR", "Lỗi xóa cache: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Đã xóa toàn bộ cache",
	})
}

// CacheStats thống kê cache
func (ac *AdminController) CacheStats(c *gin.Context) {
	stats, err := ac.listingService.CacheStats(c.Request.Context())
	if err != nil {
		ac.logger.Warn("Lỗi lấy cache stats", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "STATS_ERROR", "Lỗi lấy cache stats: "+err.Error())
		return
	}
	if stats == nil {
		stats = &services.CacheStats{}
	}
	c.JSON(http.StatusOK, stats)
}

// RebuildIndex cấu hình lại và nạp lại index Meilisearch
func (ac *AdminController) RebuildIndex(c *gin.Context) {
	startTime := time.Now()
	n, err := ac.referenceService.RebuildIndex(c.Request.Context())
	if eris.Is(err, services.ErrIndexUnavailable) {
		abortWithError(c, http.StatusServiceUnavailable, "INDEX_UNAVAILABLE", "Chưa cấu hình Meilisearch")
		return
	}
	if err != nil {
		ac.logger.Error("Lỗi rebuild index", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "REBUILD_ERROR", "Lỗi rebuild index: "+err.Error())
		return
	}

	processingTime := time.Since(startTime)
	ac.logger.Info("Rebuild index thành công", zap.Int("documents", n), zap.Duration("duration", processingTime))

	c.JSON(http.StatusOK, responses.RebuildIndexResponse{
		Documents:        n,
		ProcessingTimeMs: processingTime.Milliseconds(),
	})
}

// SeedReference đẩy dữ liệu tham chiếu lên MongoDB và/hoặc Meilisearch
func (ac *AdminController) SeedReference(c *gin.Context) {
	var req requests.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}
	if !req.Mongo && !req.Index {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Cần chọn mongo hoặc index")
		return
	}

	res, err := ac.referenceService.Seed(c.Request.Context(), req.Mongo, req.Index)
	if eris.Is(err, services.ErrIndexUnavailable) {
		abortWithError(c, http.StatusServiceUnavailable, "INDEX_UNAVAILABLE", "Chưa cấu hình Meilisearch")
		return
	}
	if err != nil {
		ac.logger.Error("Lỗi seed dữ liệu tham chiếu", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "SEED_ERROR", "Lỗi seed: "+err.Error())
		return
	}

	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success: true,
		Message: "Seed dữ liệu tham chiếu thành công",
		Data:    res,
	})
}

// GetStats lấy thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy stats", zap.Error(err))
		abortWithError(c, http.StatusInternalServerError, "STATS_ERROR", "Lỗi lấy stats: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}
