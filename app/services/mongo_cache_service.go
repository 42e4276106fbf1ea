package services

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/models"
)

// CollectionListingCache collection lưu kết quả làm sạch
const CollectionListingCache = "listing_cache"

// MongoCacheService persistent cache service sử dụng MongoDB + LRU in-memory
type MongoCacheService struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.CleanCache]
	ttl        time.Duration
	logger     *zap.Logger

	// Metrics
	l1Hits    atomic.Int64
	mongoHits atomic.Int64
	totalMiss atomic.Int64
}

var _ ICacheService = (*MongoCacheService)(nil)

// NewMongoCacheService tạo mới MongoCacheService. ttl > 0 tạo TTL index trên created_at.
func NewMongoCacheService(db *mongo.Database, l1Size int, ttl time.Duration, logger *zap.Logger) (*MongoCacheService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if l1Size <= 0 {
		l1Size = 10000
	}
	l1Cache, err := lru.New[string, *models.CleanCache](l1Size)
	if err != nil {
		return nil, eris.Wrap(err, "create l1 cache")
	}

	collection := db.Collection(CollectionListingCache)

	createdAt := options.Index()
	if ttl > 0 {
		createdAt.SetExpireAfterSeconds(int32(ttl.Seconds()))
	}
	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "rules_version", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: 1}}, Options: createdAt},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho listing_cache", zap.Error(err))
	}

	return &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		ttl:        ttl,
		logger:     logger,
	}, nil
}

// Get lấy bản ghi từ cache (L1 → MongoDB)
func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.CleanCache, bool, error) {
	if entry, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		return entry, true, nil
	}

	var entry models.CleanCache
	err := mcs.collection.FindOne(ctx, bson.M{"fingerprint": key}).Decode(&entry)
	if err == mongo.ErrNoDocuments {
		mcs.totalMiss.Add(1)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "query listing cache")
	}
	mcs.mongoHits.Add(1)

	_, err = mcs.collection.UpdateOne(ctx, bson.M{"_id": entry.ID}, bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	})
	if err != nil {
		mcs.logger.Warn("Lỗi update access stats", zap.Error(err))
	}
	entry.UpdateAccess()

	mcs.l1Cache.Add(key, &entry)
	mcs.logger.Debug("MongoDB cache hit", zap.String("fingerprint", key))
	return &entry, true, nil
}

// Set lưu bản ghi vào cache (L1 + MongoDB)
func (mcs *MongoCacheService) Set(ctx context.Context, key string, entry *models.CleanCache) error {
	if entry == nil {
		return eris.New("cache entry is nil")
	}
	mcs.l1Cache.Add(key, entry)

	doc := *entry
	doc.ID = primitive.NilObjectID
	doc.Fingerprint = key
	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"fingerprint": key}, doc, opts); err != nil {
		return eris.Wrapf(err, "upsert listing cache %s", key)
	}
	return nil
}

// Delete xóa bản ghi khỏi cache
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"fingerprint": key}); err != nil {
		return eris.Wrap(err, "delete listing cache")
	}
	return nil
}

// Clear xóa tất cả cache
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()
	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return eris.Wrap(err, "clear listing cache")
	}
	mcs.l1Hits.Store(0)
	mcs.mongoHits.Store(0)
	mcs.totalMiss.Store(0)
	return nil
}

// InvalidateByRulesVersion xóa các bản ghi có rules_version khác phiên bản hiện tại
func (mcs *MongoCacheService) InvalidateByRulesVersion(ctx context.Context, rulesVersion string) error {
	mcs.l1Cache.Purge()

	result, err := mcs.collection.DeleteMany(ctx, bson.M{"rules_version": bson.M{"$ne": rulesVersion}})
	if err != nil {
		return eris.Wrap(err, "invalidate listing cache")
	}
	mcs.logger.Info("Đã invalidate cache",
		zap.String("rules_version", rulesVersion),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

// GetStats lấy thống kê cache
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	count, err := mcs.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "count listing cache")
	}
	hits := mcs.l1Hits.Load() + mcs.mongoHits.Load()
	return newCacheStats(hits, mcs.totalMiss.Load(), count), nil
}

// Exists kiểm tra key có tồn tại không
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}
	count, err := mcs.collection.CountDocuments(ctx, bson.M{"fingerprint": key}, options.Count().SetLimit(1))
	if err != nil {
		return false, eris.Wrap(err, "check listing cache")
	}
	return count > 0, nil
}

// GetTTL thời gian còn lại trước khi TTL index xóa bản ghi
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	if mcs.ttl <= 0 {
		return 0, nil
	}
	entry, found, err := mcs.Get(ctx, key)
	if err != nil || !found {
		return 0, err
	}
	return max(mcs.ttl-time.Since(entry.CreatedAt), 0), nil
}

// Close MongoDB connection được quản lý bởi caller
func (mcs *MongoCacheService) Close() error {
	return nil
}

// GetL1Stats lấy thống kê L1 cache
func (mcs *MongoCacheService) GetL1Stats() map[string]interface{} {
	return map[string]interface{}{
		"l1_size":    mcs.l1Cache.Len(),
		"l1_hits":    mcs.l1Hits.Load(),
		"mongo_hits": mcs.mongoHits.Load(),
		"total_miss": mcs.totalMiss.Load(),
	}
}

// WarmUp nạp các bản ghi được truy cập nhiều nhất vào L1
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return eris.Wrap(err, "warm up listing cache")
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.CleanCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Lỗi decode cache entry trong warm up", zap.Error(err))
			continue
		}
		mcs.l1Cache.Add(entry.Fingerprint, &entry)
		count++
	}
	if err := cursor.Err(); err != nil {
		return eris.Wrap(err, "iterate listing cache")
	}

	mcs.logger.Info("Cache warm up hoàn thành",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return nil
}
