// Package bootstrap dựng các thành phần dùng chung cho cmd/api và cmd/worker từ cấu hình
package bootstrap

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/app/services"
	"github.com/listing-cleaner/internal/search"
	"github.com/listing-cleaner/internal/standardizer"
)

const connectTimeout = 10 * time.Second

// Deps các kết nối và thành phần đã khởi tạo. Mongo và Index có thể nil.
type Deps struct {
	Logger       *zap.Logger
	MongoClient  *mongo.Client
	Mongo        *mongo.Database
	Index        *search.ReferenceIndex
	Standardizer *standardizer.Standardizer
}

// Options chọn các kết nối cần mở thêm ngoài những gì cấu hình bắt buộc
type Options struct {
	Mongo bool
	Meili bool
}

// Init đọc .env, config/app.yaml, file cấu hình pipeline và khởi tạo logger.
// cleanerPath rỗng dùng app.cleaner_config.
func Init(cleanerPath string) (*zap.Logger, error) {
	config.LoadDotEnv()
	if err := config.LoadViper(); err != nil {
		return nil, err
	}
	if cleanerPath == "" {
		cleanerPath = viper.GetString("app.cleaner_config")
	}
	if err := config.Load(cleanerPath); err != nil {
		return nil, err
	}
	return config.InitLogger(viper.GetString("app.env"), viper.GetString("log.level"))
}

// NeedsMongo MongoDB bắt buộc khi dữ liệu tham chiếu hoặc cache nằm trên MongoDB
func NeedsMongo(cfg config.CleanerCfg) bool {
	return cfg.Reference.Source == config.ReferenceMongo ||
		cfg.Cache.Mode == config.CacheMongo ||
		cfg.Cache.Mode == config.CacheHybrid
}

// Build mở kết nối và nạp dữ liệu tham chiếu
func Build(ctx context.Context, cfg config.CleanerCfg, opts Options, logger *zap.Logger) (*Deps, error) {
	d := &Deps{Logger: logger}

	if opts.Mongo || viper.GetBool("mongo.enabled") || NeedsMongo(cfg) {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		client, db, err := services.ConnectMongo(cctx, viper.GetString("mongo.url"), viper.GetString("mongo.database"), logger)
		cancel()
		if err != nil {
			return nil, err
		}
		d.MongoClient, d.Mongo = client, db
	}

	if opts.Meili || viper.GetBool("meilisearch.enabled") {
		index, err := search.NewReferenceIndex(search.Config{
			Host:      viper.GetString("meilisearch.url"),
			APIKey:    viper.GetString("meilisearch.master_key"),
			IndexName: viper.GetString("meilisearch.index"),
			Timeout:   30 * time.Second,
		}, logger)
		if err != nil {
			d.Close(ctx)
			return nil, err
		}
		d.Index = index
	}

	src, err := services.ReferenceSource(cfg.Reference, d.Mongo)
	if err != nil {
		d.Close(ctx)
		return nil, err
	}
	std, err := services.NewStandardizer(ctx, cfg, src, logger)
	if err != nil {
		d.Close(ctx)
		return nil, eris.Wrap(err, "load reference data")
	}
	d.Standardizer = std
	return d, nil
}

// Close đóng kết nối MongoDB nếu có
func (d *Deps) Close(ctx context.Context) {
	if d.MongoClient == nil {
		return
	}
	if err := d.MongoClient.Disconnect(ctx); err != nil {
		d.Logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
	}
}
