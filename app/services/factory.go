package services

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/internal/extractor"
	"github.com/listing-cleaner/internal/features"
	"github.com/listing-cleaner/internal/matcher"
	"github.com/listing-cleaner/internal/pipeline"
	"github.com/listing-cleaner/internal/standardizer"
)

// ReferenceSource nguồn dữ liệu tham chiếu theo cấu hình; db chỉ cần khi source = mongo
func ReferenceSource(cfg config.ReferenceCfg, db *mongo.Database) (standardizer.Source, error) {
	switch cfg.Source {
	case config.ReferenceJSON:
		return standardizer.JSONSource{Path: cfg.Path}, nil
	case config.ReferenceSQL:
		return standardizer.SQLSource{
			Driver:    cfg.Driver,
			DSN:       cfg.DSN,
			Scripts:   cfg.Scripts,
			SkipWards: cfg.SkipWards,
		}, nil
	case config.ReferenceMongo:
		if db == nil {
			return nil, eris.New("reference source mongo requires a mongo connection")
		}
		collection := cfg.Collection
		if collection == "" {
			collection = CollectionAdminUnits
		}
		return standardizer.MongoSource{Collection: db.Collection(collection)}, nil
	}
	return nil, eris.Errorf("unknown reference source %q", cfg.Source)
}

// NewStandardizer load dữ liệu tham chiếu và tạo Standardizer theo cấu hình
func NewStandardizer(ctx context.Context, cfg config.CleanerCfg, src standardizer.Source, logger *zap.Logger) (*standardizer.Standardizer, error) {
	return standardizer.New(ctx, src, logger,
		standardizer.WithThresholds(cfg.Matching.DistrictThreshold, cfg.Matching.WardThreshold),
		standardizer.WithMemoSize(cfg.Matching.MemoSize))
}

// NewRunner dựng extractor, engineer và runner. std có thể nil; withFeatures = false bỏ qua
// bước tính đặc trưng (giai đoạn clean của luồng hai bước).
func NewRunner(cfg config.CleanerCfg, std *standardizer.Standardizer, withFeatures bool, logger *zap.Logger) (*pipeline.Runner, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules, err := matcher.LoadRules(matcher.WithNegationWindow(cfg.Matching.NegationWindow))
	if err != nil {
		return nil, err
	}

	var opts []extractor.Option
	if cfg.Fallback.Policy == config.FallbackRandom {
		opts = append(opts, extractor.WithDistanceFallback(
			extractor.NewRandomFallback(cfg.Fallback.Seed, cfg.Fallback.Min, cfg.Fallback.Max)))
		logger.Warn("Random distance fallback enabled",
			zap.Int64("seed", cfg.Fallback.Seed),
			zap.Float64("min", cfg.Fallback.Min),
			zap.Float64("max", cfg.Fallback.Max))
	}

	var eng *features.Engineer
	if withFeatures {
		eng = features.NewEngineer(
			features.WithLandDiscount(cfg.Features.LandDiscount),
			features.WithEstimateFactor(cfg.Features.EstimateFactor))
	}

	processor := pipeline.NewProcessor(extractor.NewExtractor(rules, logger, opts...), std, eng, logger)
	return pipeline.NewRunner(processor, cfg.Workers, logger), nil
}

// ConnectMongo kết nối MongoDB và ping kiểm tra
func ConnectMongo(ctx context.Context, uri, database string, logger *zap.Logger) (*mongo.Client, *mongo.Database, error) {
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, nil, eris.Wrap(err, "connect mongodb")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, nil, eris.Wrap(err, "ping mongodb")
	}

	if database == "" && clientOpts.Auth != nil {
		database = clientOpts.Auth.AuthSource
	}
	if database == "" {
		database = "listing_cleaner"
	}
	logger.Info("Connected to MongoDB", zap.String("database", database))
	return client, client.Database(database), nil
}

// NewCache tạo cache theo chế độ cấu hình; mode none trả về nil
func NewCache(cfg config.CacheCfg, redisURL string, db *mongo.Database, logger *zap.Logger) (ICacheService, error) {
	switch cfg.Mode {
	case config.CacheNone:
		return nil, nil
	case config.CacheMemory:
		return NewCacheService(cfg.MemorySize, cfg.TTL), nil
	case config.CacheRedis:
		redisCache, err := NewRedisCacheService(redisURL, cfg.TTL, logger)
		if err != nil {
			return nil, err
		}
		return redisCache, nil
	case config.CacheMongo, config.CacheHybrid:
		if db == nil {
			return nil, eris.Errorf("cache mode %s requires a mongo connection", cfg.Mode)
		}
		mongoCache, err := NewMongoCacheService(db, cfg.L1Size, cfg.TTL, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Mode == config.CacheMongo {
			return mongoCache, nil
		}
		redisCache, err := NewRedisCacheService(redisURL, cfg.TTL, logger)
		if err != nil {
			return nil, err
		}
		return NewHybridCacheService(redisCache, mongoCache, logger), nil
	}
	return nil, eris.Errorf("unknown cache mode %q", cfg.Mode)
}
