// Package search đưa dữ liệu hành chính tham chiếu lên Meilisearch để tra cứu gần đúng
package search

import (
	"context"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/normalizer"
)

const (
	defaultIndexName = "admin_units"
	defaultLimit     = 20
	maxLimit         = 100
	seedBatchSize    = 1000
)

// Config cấu hình kết nối Meilisearch
type Config struct {
	Host      string
	APIKey    string
	IndexName string
	Timeout   time.Duration
}

// ReferenceIndex index Meilisearch chứa tỉnh, quận/huyện, phường/xã
type ReferenceIndex struct {
	client    meilisearch.ServiceManager
	logger    *zap.Logger
	indexName string
	timeout   time.Duration
}

// NewReferenceIndex tạo mới ReferenceIndex và kiểm tra kết nối
func NewReferenceIndex(cfg Config, logger *zap.Logger) (*ReferenceIndex, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.IndexName == "" {
		cfg.IndexName = defaultIndexName
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, eris.Wrapf(err, "connect meilisearch %s", cfg.Host)
	}

	return &ReferenceIndex{
		client:    client,
		logger:    logger,
		indexName: cfg.IndexName,
		timeout:   cfg.Timeout,
	}, nil
}

// IndexName tên index đang dùng
func (ri *ReferenceIndex) IndexName() string {
	return ri.indexName
}

// Configure cấu hình thuộc tính tìm kiếm, lọc và từ đồng nghĩa của index
func (ri *ReferenceIndex) Configure() error {
	index := ri.client.Index(ri.indexName)

	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"name", "normalized_name", "aliases"},
		FilterableAttributes: []string{"code", "level", "parent_code", "status"},
		SortableAttributes:   []string{"level", "code"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		Synonyms: map[string][]string{
			"tp":  {"thanh pho"},
			"hcm": {"ho chi minh", "sai gon"},
			"q":   {"quan"},
			"h":   {"huyen"},
			"p":   {"phuong"},
			"tx":  {"thi xa"},
			"tt":  {"thi tran"},
		},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  3,
				TwoTypos: 7,
			},
		},
	})
	if err != nil {
		return eris.Wrap(err, "update index settings")
	}

	ri.logger.Info("Reference index configured",
		zap.String("index", ri.indexName),
		zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Seed thay toàn bộ document của index bằng dữ liệu tham chiếu, theo lô 1000 document
func (ri *ReferenceIndex) Seed(units []models.AdminUnit) (int, error) {
	if len(units) == 0 {
		return 0, eris.New("no administrative units to seed")
	}

	index := ri.client.Index(ri.indexName)
	if _, err := index.DeleteAllDocuments(); err != nil {
		return 0, eris.Wrap(err, "clear reference index")
	}

	documents := make([]map[string]interface{}, 0, len(units))
	for _, u := range units {
		if u.Code == "" || u.Name == "" {
			continue
		}
		documents = append(documents, toDocument(u))
	}

	for i := 0; i < len(documents); i += seedBatchSize {
		end := min(i+seedBatchSize, len(documents))
		task, err := index.AddDocuments(documents[i:end], "id")
		if err != nil {
			return i, eris.Wrapf(err, "add documents %d-%d", i, end)
		}
		ri.logger.Debug("Seeded document batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}

	ri.logger.Info("Reference index seeded", zap.Int("documents", len(documents)))
	return len(documents), nil
}

// SearchRequest truy vấn tra cứu đơn vị hành chính
type SearchRequest struct {
	Query      string
	Level      int    // 0 = mọi cấp
	ParentCode string // chỉ dùng khi Level > 0
	Limit      int
}

// Search tra cứu gần đúng theo tên (có dấu hoặc không dấu)
func (ri *ReferenceIndex) Search(ctx context.Context, req SearchRequest) ([]models.AdminUnit, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, eris.New("search query is empty")
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	limit = min(limit, maxLimit)

	ctx, cancel := context.WithTimeout(ctx, ri.timeout)
	defer cancel()

	searchReq := &meilisearch.SearchRequest{
		Limit: int64(limit),
	}
	if req.Level > 0 {
		searchReq.Filter = FilterLevelParent(req.Level, req.ParentCode)
	}

	result, err := ri.client.Index(ri.indexName).SearchWithContext(ctx, normalizer.ToASCII(query), searchReq)
	if err != nil {
		return nil, eris.Wrapf(err, "search reference index for %q", query)
	}
	return parseHits(result.Hits), nil
}

// Stats số document hiện có trong index
func (ri *ReferenceIndex) Stats() (int64, error) {
	stats, err := ri.client.Index(ri.indexName).GetStats()
	if err != nil {
		return 0, eris.Wrap(err, "get index stats")
	}
	return stats.NumberOfDocuments, nil
}
