package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Chính sách ước lượng khoảng cách khi tin đăng không có tín hiệu
const (
	FallbackNone   = "none"
	FallbackRandom = "random"
)

// Nguồn dữ liệu hành chính tham chiếu
const (
	ReferenceJSON  = "json"
	ReferenceSQL   = "sql"
	ReferenceMongo = "mongo"
)

// Chế độ cache kết quả làm sạch
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
	CacheMongo  = "mongo"
	CacheHybrid = "hybrid"
)

type MatchingCfg struct {
	DistrictThreshold int `yaml:"district_threshold" json:"district_threshold"`
	WardThreshold     int `yaml:"ward_threshold" json:"ward_threshold"`
	MemoSize          int `yaml:"memo_size" json:"memo_size"`
	NegationWindow    int `yaml:"negation_window" json:"negation_window"`
}

type FallbackCfg struct {
	Policy string  `yaml:"policy" json:"policy"`
	Seed   int64   `yaml:"seed" json:"seed"`
	Min    float64 `yaml:"min" json:"min"`
	Max    float64 `yaml:"max" json:"max"`
}

type FeaturesCfg struct {
	LandDiscount   float64 `yaml:"land_discount" json:"land_discount"`
	EstimateFactor float64 `yaml:"estimate_factor" json:"estimate_factor"`
}

type ReferenceCfg struct {
	Source     string   `yaml:"source" json:"source"`
	Path       string   `yaml:"path" json:"path"`
	Driver     string   `yaml:"driver" json:"driver"`
	DSN        string   `yaml:"dsn" json:"-"`
	Scripts    []string `yaml:"scripts" json:"scripts"`
	SkipWards  bool     `yaml:"skip_wards" json:"skip_wards"`
	Collection string   `yaml:"collection" json:"collection"`
}

type CacheCfg struct {
	Mode       string        `yaml:"mode" json:"mode"`
	TTL        time.Duration `yaml:"ttl" json:"ttl"`
	MemorySize int           `yaml:"memory_size" json:"memory_size"`
	L1Size     int           `yaml:"l1_size" json:"l1_size"`
}

type ServerCfg struct {
	RateLimit      float64       `yaml:"rate_limit" json:"rate_limit"` // request/giây mỗi IP, 0 = tắt
	Burst          int           `yaml:"burst" json:"burst"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxBatch       int           `yaml:"max_batch" json:"max_batch"`
}

// CleanerCfg tham số của pipeline làm sạch, đọc từ config/cleaner.yaml
type CleanerCfg struct {
	Workers   int          `yaml:"workers" json:"workers"`
	Matching  MatchingCfg  `yaml:"matching" json:"matching"`
	Fallback  FallbackCfg  `yaml:"distance_fallback" json:"distance_fallback"`
	Features  FeaturesCfg  `yaml:"features" json:"features"`
	Reference ReferenceCfg `yaml:"reference" json:"reference"`
	Cache     CacheCfg     `yaml:"cache" json:"cache"`
	Server    ServerCfg    `yaml:"server" json:"server"`
}

var C = Defaults()

// Defaults giá trị mặc định khi file cấu hình bỏ trống
func Defaults() CleanerCfg {
	return CleanerCfg{
		Matching: MatchingCfg{
			DistrictThreshold: 66,
			WardThreshold:     66,
			MemoSize:          8192,
		},
		Fallback: FallbackCfg{Policy: FallbackNone, Min: 20, Max: 200},
		Features: FeaturesCfg{LandDiscount: 1.0, EstimateFactor: 0.98},
		Reference: ReferenceCfg{
			Source:     ReferenceJSON,
			Path:       "data/reference.json",
			Collection: "admin_units",
		},
		Cache: CacheCfg{Mode: CacheMemory, TTL: 24 * time.Hour, MemorySize: 10000, L1Size: 10000},
		Server: ServerCfg{
			RateLimit:      20,
			Burst:          40,
			RequestTimeout: 1500 * time.Millisecond,
			MaxBatch:       1000,
		},
	}
}

func Load(path string) error {
	cfg := Defaults()
	b, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read config %s", path)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return eris.Wrapf(err, "parse config %s", path)
	}
	// ENV overrides
	if v := strings.TrimSpace(os.Getenv("DISTANCE_FALLBACK")); v != "" {
		cfg.Fallback.Policy = strings.ToLower(v)
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Workers = n
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	C = cfg
	return nil
}

// Validate kiểm tra các giá trị liệt kê
func (c CleanerCfg) Validate() error {
	switch c.Fallback.Policy {
	case FallbackNone, FallbackRandom:
	default:
		return eris.Errorf("unknown distance fallback policy %q", c.Fallback.Policy)
	}
	switch c.Reference.Source {
	case ReferenceJSON, ReferenceSQL, ReferenceMongo:
	default:
		return eris.Errorf("unknown reference source %q", c.Reference.Source)
	}
	switch c.Cache.Mode {
	case CacheNone, CacheMemory, CacheRedis, CacheMongo, CacheHybrid:
	default:
		return eris.Errorf("unknown cache mode %q", c.Cache.Mode)
	}
	if c.Matching.DistrictThreshold < 0 || c.Matching.DistrictThreshold > 100 ||
		c.Matching.WardThreshold < 0 || c.Matching.WardThreshold > 100 {
		return eris.New("fuzzy thresholds must be within [0, 100]")
	}
	return nil
}

func RequestTimeout() time.Duration {
	if C.Server.RequestTimeout > 0 {
		return C.Server.RequestTimeout
	}
	return 1500 * time.Millisecond
}
