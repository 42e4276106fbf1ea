package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoadDotEnv nạp biến môi trường từ .env nếu có; thiếu file không phải lỗi
func LoadDotEnv(paths ...string) bool {
	return godotenv.Load(paths...) == nil
}

// LoadViper load cấu hình hạ tầng (cổng, kết nối MongoDB/Redis/Meilisearch) từ config/app.yaml và env vars.
// Key lồng nhau đọc được từ env dạng MONGO_URL, MEILISEARCH_MASTER_KEY.
func LoadViper() error {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	// Set defaults
	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.cleaner_config", "config/cleaner.yaml")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("mongo.url", "mongodb://localhost:27017/listing_cleaner")
	viper.SetDefault("mongo.database", "listing_cleaner")
	viper.SetDefault("mongo.enabled", false)
	viper.SetDefault("redis.url", "redis://localhost:6379/0")
	viper.SetDefault("meilisearch.url", "http://localhost:7700")
	viper.SetDefault("meilisearch.master_key", "")
	viper.SetDefault("meilisearch.index", "admin_units")
	viper.SetDefault("meilisearch.enabled", false)

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return eris.Wrap(err, "read config/app.yaml")
	}
	return nil
}

// InitLogger khởi tạo structured logger: production config khi env = "production",
// ngược lại development config
func InitLogger(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, eris.Wrap(err, "parse log level")
		}
		cfg.Level.SetLevel(lvl)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, eris.Wrap(err, "build logger")
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
