package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/normalizer"
	"github.com/listing-cleaner/internal/search"
	"github.com/listing-cleaner/internal/standardizer"
)

// CollectionAdminUnits collection chứa dữ liệu hành chính tham chiếu
const CollectionAdminUnits = "admin_units"

const mongoSeedBatchSize = 1000

// ErrIndexUnavailable chưa cấu hình Meilisearch
var ErrIndexUnavailable = eris.New("reference search index is not configured")

// StandardizeResult kết quả chuẩn hóa bộ địa chỉ kèm cách khớp từng cấp
type StandardizeResult struct {
	Province standardizer.Result   `json:"province"`
	District standardizer.Result   `json:"district"`
	Ward     standardizer.Result   `json:"ward"`
	Location standardizer.Location `json:"location"`
}

// ReferenceStats thống kê dữ liệu tham chiếu
type ReferenceStats struct {
	Version        string         `json:"version"`
	Units          map[string]int `json:"units"`
	IndexName      string         `json:"index_name,omitempty"`
	IndexDocuments int64          `json:"index_documents,omitempty"`
	MongoUnits     int64          `json:"mongo_units,omitempty"`
}

// SeedResult kết quả đẩy dữ liệu tham chiếu
type SeedResult struct {
	MongoUnits       int   `json:"mongo_units"`
	IndexDocuments   int   `json:"index_documents"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// ReferenceService tra cứu và quản lý dữ liệu hành chính. index và db có thể nil.
type ReferenceService struct {
	std    *standardizer.Standardizer
	index  *search.ReferenceIndex
	db     *mongo.Database
	logger *zap.Logger
}

// NewReferenceService tạo mới ReferenceService
func NewReferenceService(std *standardizer.Standardizer, index *search.ReferenceIndex, db *mongo.Database, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReferenceService{std: std, index: index, db: db, logger: logger}
}

// Standardize chuẩn hóa tỉnh, quận/huyện, phường/xã
func (rs *ReferenceService) Standardize(loc standardizer.Location) StandardizeResult {
	out := StandardizeResult{
		Province: rs.std.Province(loc.Province),
		District: rs.std.District(loc.Province, loc.District),
		Ward:     rs.std.Ward(loc.Province, loc.District, loc.Ward, loc.ShortAddress),
	}
	out.Location = standardizer.Location{
		Province:     out.Province.Name,
		District:     out.District.Name,
		Ward:         out.Ward.Name,
		ShortAddress: loc.ShortAddress,
	}
	// tỉnh không khớp thì giữ nguyên input
	if out.Location.Province == nil {
		out.Location.Province = loc.Province
	}
	return out
}

// Search tra cứu đơn vị hành chính qua Meilisearch; không có index thì tìm trong bộ nhớ
func (rs *ReferenceService) Search(ctx context.Context, req search.SearchRequest) ([]models.AdminUnit, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, eris.New("search query is empty")
	}
	if rs.index != nil {
		return rs.index.Search(ctx, req)
	}
	return rs.localSearch(req), nil
}

// localSearch so khớp chuỗi con trên tên không dấu; kết quả khớp đầu tên đứng trước
func (rs *ReferenceService) localSearch(req search.SearchRequest) []models.AdminUnit {
	query := normalizer.ToASCII(normalizer.FoldKey(req.Query))
	limit := req.Limit
	if limit <= 0 {
		limit = 20
	}

	type hit struct {
		unit models.AdminUnit
		pos  int
	}
	var hits []hit
	for _, u := range rs.std.Reference().Units() {
		if req.Level > 0 && u.Level != req.Level {
			continue
		}
		if req.Level > 0 && req.ParentCode != "" && u.ParentCode != req.ParentCode {
			continue
		}
		names := append([]string{u.Name}, u.Aliases...)
		best := -1
		for _, n := range names {
			if pos := strings.Index(normalizer.ToASCII(normalizer.FoldKey(n)), query); pos >= 0 && (best < 0 || pos < best) {
				best = pos
			}
		}
		if best >= 0 {
			hits = append(hits, hit{unit: u, pos: best})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		if hits[i].pos != hits[j].pos {
			return hits[i].pos < hits[j].pos
		}
		return hits[i].unit.Level < hits[j].unit.Level
	})

	out := make([]models.AdminUnit, 0, min(len(hits), limit))
	for i := 0; i < len(hits) && i < limit; i++ {
		out = append(out, hits[i].unit)
	}
	return out
}

// Stats thống kê dữ liệu tham chiếu, index và MongoDB
func (rs *ReferenceService) Stats(ctx context.Context) ReferenceStats {
	stats := ReferenceStats{Version: rs.std.Version(), Units: rs.std.Stats()}
	if rs.index != nil {
		stats.IndexName = rs.index.IndexName()
		n, err := rs.index.Stats()
		if err != nil {
			rs.logger.Warn("Không lấy được thống kê index", zap.Error(err))
		}
		stats.IndexDocuments = n
	}
	if rs.db != nil {
		n, err := rs.db.Collection(CollectionAdminUnits).EstimatedDocumentCount(ctx)
		if err != nil {
			rs.logger.Warn("Không đếm được admin_units", zap.Error(err))
		}
		stats.MongoUnits = n
	}
	return stats
}

// RebuildIndex cấu hình lại index Meilisearch và nạp toàn bộ dữ liệu tham chiếu
func (rs *ReferenceService) RebuildIndex(ctx context.Context) (int, error) {
	if rs.index == nil {
		return 0, ErrIndexUnavailable
	}
	if err := rs.index.Configure(); err != nil {
		return 0, err
	}
	return rs.index.Seed(rs.std.Reference().Units())
}

// SeedMongo ghi dữ liệu tham chiếu vào collection admin_units (upsert theo level + code)
func (rs *ReferenceService) SeedMongo(ctx context.Context) (int, error) {
	if rs.db == nil {
		return 0, eris.New("mongo database is not configured")
	}
	collection := rs.db.Collection(CollectionAdminUnits)
	_, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "level", Value: 1}, {Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "parent_code", Value: 1}}},
		{Keys: bson.D{{Key: "normalized_name", Value: 1}}},
	})
	if err != nil {
		return 0, eris.Wrap(err, "create admin_units indexes")
	}

	units := rs.std.Reference().Units()
	now := time.Now()
	written := 0
	for i := 0; i < len(units); i += mongoSeedBatchSize {
		end := min(i+mongoSeedBatchSize, len(units))
		writes := make([]mongo.WriteModel, 0, end-i)
		for _, u := range units[i:end] {
			u.ID = primitive.NilObjectID
			u.UpdatedAt = now
			if u.CreatedAt.IsZero() {
				u.CreatedAt = now
			}
			writes = append(writes, mongo.NewReplaceOneModel().
				SetFilter(bson.M{"level": u.Level, "code": u.Code}).
				SetReplacement(u).
				SetUpsert(true))
		}
		if _, err := collection.BulkWrite(ctx, writes, options.BulkWrite().SetOrdered(false)); err != nil {
			return written, eris.Wrapf(err, "write admin units %d-%d", i, end)
		}
		written += len(writes)
	}

	rs.logger.Info("Admin units seeded", zap.Int("units", written))
	return written, nil
}

// Seed đẩy dữ liệu tham chiếu lên MongoDB và/hoặc Meilisearch
func (rs *ReferenceService) Seed(ctx context.Context, toMongo, toIndex bool) (*SeedResult, error) {
	start := time.Now()
	res := &SeedResult{}
	var err error
	if toMongo {
		if res.MongoUnits, err = rs.SeedMongo(ctx); err != nil {
			return nil, err
		}
	}
	if toIndex {
		if res.IndexDocuments, err = rs.RebuildIndex(ctx); err != nil {
			return nil, err
		}
	}
	res.ProcessingTimeMs = time.Since(start).Milliseconds()
	return res, nil
}
