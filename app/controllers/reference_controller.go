package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/app/requests"
	"github.com/listing-cleaner/app/responses"
	"github.com/listing-cleaner/app/services"
	"github.com/listing-cleaner/internal/search"
	"github.com/listing-cleaner/internal/standardizer"
)

// ReferenceController controller tra cứu dữ liệu hành chính
type ReferenceController struct {
	referenceService *services.ReferenceService
	logger           *zap.Logger
}

// NewReferenceController tạo mới ReferenceController
func NewReferenceController(referenceService *services.ReferenceService, logger *zap.Logger) *ReferenceController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceController{referenceService: referenceService, logger: logger}
}

// Standardize chuẩn hóa tỉnh, quận/huyện, phường/xã về tên chính thức
func (rc *ReferenceController) Standardize(c *gin.Context) {
	var req requests.StandardizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}
	if req.Province == nil && req.District == nil && req.Ward == nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Cần ít nhất một trong province, district, ward")
		return
	}

	c.JSON(http.StatusOK, rc.referenceService.Standardize(standardizer.Location{
		Province:     req.Province,
		District:     req.District,
		Ward:         req.Ward,
		ShortAddress: req.ShortAddress,
	}))
}

// Search tìm đơn vị hành chính theo tên
func (rc *ReferenceController) Search(c *gin.Context) {
	var q requests.SearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", "Query không hợp lệ: "+err.Error())
		return
	}
	level, ok := parseLevelParam(q.Level)
	if !ok {
		abortWithError(c, http.StatusBadRequest, "INVALID_LEVEL", "level phải là province, district, ward hoặc 2, 3, 4")
		return
	}

	units, err := rc.referenceService.Search(c.Request.Context(), search.SearchRequest{
		Query:      q.Query,
		Level:      level,
		ParentCode: q.ParentCode,
		Limit:      q.Limit,
	})
	if err != nil {
		rc.logger.Error("Lỗi tìm kiếm dữ liệu tham chiếu", zap.String("query", q.Query), zap.Error(err))
		abortWithError(c, http.StatusBadGateway, "SEARCH_ERROR", "Lỗi tìm kiếm: "+eris.Cause(err).Error())
		return
	}

	c.JSON(http.StatusOK, responses.SearchResponse{
		Query:   q.Query,
		Level:   level,
		Results: units,
		Total:   len(units),
	})
}

// Stats thống kê dữ liệu tham chiếu
func (rc *ReferenceController) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, rc.referenceService.Stats(c.Request.Context()))
}

// parseLevelParam nhận tên cấp hoặc số 2-4; chuỗi rỗng là mọi cấp
func parseLevelParam(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	if n, err := strconv.Atoi(raw); err == nil {
		if n >= models.LevelProvince && n <= models.LevelWard {
			return n, true
		}
		return 0, false
	}
	level := models.ParseLevel(raw)
	return level, level != 0
}
