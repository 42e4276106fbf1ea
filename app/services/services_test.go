package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-cleaner/app/config"
	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/pipeline"
	"github.com/listing-cleaner/internal/search"
	"github.com/listing-cleaner/internal/standardizer"
)

const (
	referenceFixture = "../../internal/standardizer/testdata/reference.json"
	listingsFixture  = "../../internal/pipeline/testdata/listings.jsonl"
)

func newTestStandardizer(t *testing.T) *standardizer.Standardizer {
	t.Helper()
	std, err := NewStandardizer(context.Background(), config.Defaults(),
		standardizer.JSONSource{Path: referenceFixture}, nil)
	require.NoError(t, err)
	return std
}

func newTestListingService(t *testing.T, cache ICacheService) *ListingService {
	t.Helper()
	runner, err := NewRunner(config.Defaults(), newTestStandardizer(t), true, nil)
	require.NoError(t, err)
	return NewListingService(runner, cache, nil)
}

func readListings(t *testing.T) []models.RawListing {
	t.Helper()
	listings, err := pipeline.ReadListings(listingsFixture)
	require.NoError(t, err)
	return listings
}

func TestCacheService(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(10, time.Hour)

	entry := models.NewCleanCache(models.CleanResult{Fingerprint: "k1", Status: models.StatusCleaned}, "v1")
	require.NoError(t, cs.Set(ctx, "k1", entry))
	assert.Error(t, cs.Set(ctx, "k2", nil))

	got, found, err := cs.Get(ctx, "k1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v1", got.RulesVersion)

	_, found, _ = cs.Get(ctx, "missing")
	assert.False(t, found)

	ttl, err := cs.GetTTL(ctx, "k1")
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	stats, err := cs.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMiss)
	assert.Equal(t, 0.5, stats.HitRate)
	assert.Equal(t, int64(1), stats.TotalItems)

	require.NoError(t, cs.Set(ctx, "k3", models.NewCleanCache(models.CleanResult{}, "v2")))
	require.NoError(t, cs.InvalidateByRulesVersion(ctx, "v2"))
	exists, _ := cs.Exists(ctx, "k1")
	assert.False(t, exists)
	exists, _ = cs.Exists(ctx, "k3")
	assert.True(t, exists)

	require.NoError(t, cs.Clear(ctx))
	assert.Equal(t, 0, cs.Size())
}

func TestCacheService_Expiry(t *testing.T) {
	ctx := context.Background()
	cs := NewCacheService(10, 20*time.Millisecond)
	require.NoError(t, cs.Set(ctx, "k", models.NewCleanCache(models.CleanResult{}, "v")))

	assert.Eventually(t, func() bool {
		_, found, _ := cs.Get(ctx, "k")
		return !found
	}, time.Second, 10*time.Millisecond)
}

func TestHybridCacheService(t *testing.T) {
	ctx := context.Background()
	l1 := NewCacheService(10, time.Hour)
	l2 := NewCacheService(10, time.Hour)
	hybrid := NewHybridCacheService(l1, l2, nil)

	entry := models.NewCleanCache(models.CleanResult{Fingerprint: "k"}, "v")
	require.NoError(t, hybrid.Set(ctx, "k", entry))
	assert.Equal(t, 1, l1.Size())
	assert.Equal(t, 1, l2.Size())

	require.NoError(t, l1.Delete(ctx, "k"))
	got, found, err := hybrid.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "v", got.RulesVersion)

	// bản ghi từ L2 được đồng bộ ngược lên L1
	assert.Eventually(t, func() bool { return l1.Size() == 1 }, time.Second, 10*time.Millisecond)

	exists, err := hybrid.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	stats, err := hybrid.GetStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalItems)

	require.NoError(t, hybrid.Clear(ctx))
	assert.Equal(t, 0, l1.Size())
	assert.Equal(t, 0, l2.Size())
	assert.NoError(t, hybrid.Close())
}

func TestListingService_Clean(t *testing.T) {
	ctx := context.Background()
	listings := readListings(t)

	t.Run("Cache miss then hit", func(t *testing.T) {
		cache := NewCacheService(100, time.Hour)
		ls := newTestListingService(t, cache)

		first, err := ls.Clean(ctx, listings[1], true)
		require.NoError(t, err)
		assert.False(t, first.CacheHit)
		assert.Equal(t, models.StatusCleaned, first.Result.Status)
		assert.Equal(t, "Quận 3", first.Result.Row.District)
		require.NotNil(t, first.Result.Features)

		second, err := ls.Clean(ctx, listings[1], true)
		require.NoError(t, err)
		assert.True(t, second.CacheHit)
		assert.Equal(t, first.Result.Fingerprint, second.Result.Fingerprint)
		assert.Equal(t, ls.Version(), second.Version)
	})

	t.Run("Same URL with new content is recomputed", func(t *testing.T) {
		cache := NewCacheService(100, time.Hour)
		ls := newTestListingService(t, cache)
		listing := func(price string) models.RawListing {
			return models.RawListing{
				URL:         "https://example.vn/dang-lai",
				Description: "Nhà ngõ 3m, 4 tầng",
				MainInfo:    []models.MainInfoItem{{Title: "Mức giá", Value: price}, {Title: "Diện tích", Value: "40 m²"}},
			}
		}

		first, err := ls.Clean(ctx, listing("3 tỷ"), true)
		require.NoError(t, err)
		require.NotNil(t, first.Result.Row.Price)
		assert.Equal(t, models.Decimal(3e9), *first.Result.Row.Price)

		second, err := ls.Clean(ctx, listing("5 tỷ"), true)
		require.NoError(t, err)
		assert.False(t, second.CacheHit)
		require.NotNil(t, second.Result.Row.Price)
		assert.Equal(t, models.Decimal(5e9), *second.Result.Row.Price)
		assert.NotEqual(t, first.Result.Fingerprint, second.Result.Fingerprint)

		again, err := ls.Clean(ctx, listing("5 tỷ"), true)
		require.NoError(t, err)
		assert.True(t, again.CacheHit)
		assert.Equal(t, 2, cache.Size())
	})

	t.Run("Cache disabled", func(t *testing.T) {
		cache := NewCacheService(100, time.Hour)
		ls := newTestListingService(t, cache)

		_, err := ls.Clean(ctx, listings[0], false)
		require.NoError(t, err)
		assert.Equal(t, 0, cache.Size())
	})

	t.Run("Stale rules version is recomputed", func(t *testing.T) {
		cache := NewCacheService(100, time.Hour)
		ls := newTestListingService(t, cache)
		key := CacheKey(listings[0])
		stale := models.NewCleanCache(models.CleanResult{Fingerprint: key, URL: "stale"}, "old")
		require.NoError(t, cache.Set(ctx, key, stale))

		out, err := ls.Clean(ctx, listings[0], true)
		require.NoError(t, err)
		assert.False(t, out.CacheHit)
		assert.Equal(t, listings[0].URL, out.Result.URL)

		entry, found, _ := cache.Get(ctx, key)
		require.True(t, found)
		assert.Equal(t, ls.Version(), entry.RulesVersion)
	})

	t.Run("Missing URL", func(t *testing.T) {
		ls := newTestListingService(t, nil)
		_, err := ls.Clean(ctx, models.RawListing{Title: "Bán nhà"}, true)
		assert.ErrorIs(t, err, ErrMissingURL)
	})
}

func TestListingService_InvalidateCache(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(100, time.Hour)
	ls := newTestListingService(t, cache)

	require.NoError(t, cache.Set(ctx, "old", models.NewCleanCache(models.CleanResult{}, "old")))
	require.NoError(t, cache.Set(ctx, "current", models.NewCleanCache(models.CleanResult{}, ls.Version())))

	version, err := ls.InvalidateCache(ctx)
	require.NoError(t, err)
	assert.Equal(t, ls.Version(), version)
	assert.Equal(t, 1, cache.Size())

	require.NoError(t, ls.ClearCache(ctx))
	assert.Equal(t, 0, cache.Size())
}

func TestListingService_Batch(t *testing.T) {
	ctx := context.Background()
	cache := NewCacheService(100, time.Hour)
	ls := newTestListingService(t, cache)

	results, sum, err := ls.Batch(ctx, readListings(t), true)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 3, sum.Cleaned)
	assert.Equal(t, 3, cache.Size())

	stats, err := ls.CacheStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalItems)
}

func TestListingService_BatchJob(t *testing.T) {
	ls := newTestListingService(t, nil)

	job := ls.StartBatchJob(readListings(t), false)
	assert.Equal(t, 5, job.Total)
	assert.Regexp(t, `^job_`, job.ID)

	assert.Eventually(t, func() bool {
		j, err := ls.GetJob(job.ID)
		return err == nil && j.Status == JobStatusDone
	}, 5*time.Second, 10*time.Millisecond)

	results, err := ls.GetJobResults(job.ID)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	done, err := ls.GetJob(job.ID)
	require.NoError(t, err)
	require.NotNil(t, done.Summary)
	assert.Equal(t, 2, done.Summary.Dropped)

	_, err = ls.GetJob("job_missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
	_, err = ls.GetJobResults("job_missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestReferenceService_Standardize(t *testing.T) {
	rs := NewReferenceService(newTestStandardizer(t), nil, nil, nil)

	out := rs.Standardize(standardizer.Location{
		Province:     models.StrPtr("Hà Nội"),
		District:     models.StrPtr("Hai Ba Trung"),
		ShortAddress: models.StrPtr("Phường Bạch Mai, Hai Bà Trưng"),
	})
	require.NotNil(t, out.Location.Province)
	assert.Equal(t, "Thành phố Hà Nội", *out.Location.Province)
	require.NotNil(t, out.Location.District)
	assert.Equal(t, "Quận Hai Bà Trưng", *out.Location.District)
	assert.Equal(t, standardizer.MatchStrategyFuzzy, out.District.Strategy)
	assert.Equal(t, "007", out.District.Code)
	require.NotNil(t, out.Location.Ward)
	assert.Equal(t, "Phường Bạch Mai", *out.Location.Ward)

	unknown := rs.Standardize(standardizer.Location{Province: models.StrPtr("Atlantis")})
	assert.Nil(t, unknown.Province.Name)
	require.NotNil(t, unknown.Location.Province)
	assert.Equal(t, "Atlantis", *unknown.Location.Province)
	assert.Nil(t, unknown.Location.District)
}

func TestReferenceService_LocalSearch(t *testing.T) {
	ctx := context.Background()
	rs := NewReferenceService(newTestStandardizer(t), nil, nil, nil)

	units, err := rs.Search(ctx, search.SearchRequest{Query: "Ba Đình"})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "Quận Ba Đình", units[0].Name)

	units, err = rs.Search(ctx, search.SearchRequest{Query: "sai gon", Level: models.LevelProvince})
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "79", units[0].Code)

	units, err = rs.Search(ctx, search.SearchRequest{Query: "phường", Level: models.LevelWard, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, units, 2)

	units, err = rs.Search(ctx, search.SearchRequest{Query: "phường", Level: models.LevelWard, ParentCode: "001"})
	require.NoError(t, err)
	assert.Len(t, units, 2)

	_, err = rs.Search(ctx, search.SearchRequest{Query: "  "})
	assert.Error(t, err)
}

func TestReferenceService_StatsAndSeedErrors(t *testing.T) {
	ctx := context.Background()
	rs := NewReferenceService(newTestStandardizer(t), nil, nil, nil)

	stats := rs.Stats(ctx)
	assert.Contains(t, stats.Version, "sha256:")
	assert.Equal(t, 5, stats.Units[models.LevelName(models.LevelProvince)])
	assert.Empty(t, stats.IndexName)

	_, err := rs.RebuildIndex(ctx)
	assert.ErrorIs(t, err, ErrIndexUnavailable)
	_, err = rs.SeedMongo(ctx)
	assert.Error(t, err)

	res, err := rs.Seed(ctx, false, false)
	require.NoError(t, err)
	assert.Zero(t, res.MongoUnits)
}

func TestAdminService_GetSystemStats(t *testing.T) {
	std := newTestStandardizer(t)
	runner, err := NewRunner(config.Defaults(), std, true, nil)
	require.NoError(t, err)
	ls := NewListingService(runner, NewCacheService(10, time.Hour), nil)
	as := NewAdminService(ls, NewReferenceService(std, nil, nil, nil), nil, nil)

	stats, err := as.GetSystemStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ls.Version(), stats.Version)
	require.NotNil(t, stats.Cache)
	assert.Nil(t, stats.DatabaseStats)
	assert.Contains(t, stats.MemoryUsage, "alloc_mb")
}

func TestFactory(t *testing.T) {
	t.Run("Reference sources", func(t *testing.T) {
		src, err := ReferenceSource(config.ReferenceCfg{Source: config.ReferenceJSON, Path: "x.json"}, nil)
		require.NoError(t, err)
		assert.IsType(t, standardizer.JSONSource{}, src)

		src, err = ReferenceSource(config.ReferenceCfg{Source: config.ReferenceSQL, Scripts: []string{"a.sql"}}, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"a.sql"}, src.(standardizer.SQLSource).Scripts)

		_, err = ReferenceSource(config.ReferenceCfg{Source: config.ReferenceMongo}, nil)
		assert.Error(t, err)
		_, err = ReferenceSource(config.ReferenceCfg{Source: "csv"}, nil)
		assert.Error(t, err)
	})

	t.Run("Cache modes", func(t *testing.T) {
		cache, err := NewCache(config.CacheCfg{Mode: config.CacheNone}, "", nil, nil)
		require.NoError(t, err)
		assert.Nil(t, cache)

		cache, err = NewCache(config.CacheCfg{Mode: config.CacheMemory, MemorySize: 5}, "", nil, nil)
		require.NoError(t, err)
		assert.IsType(t, &CacheService{}, cache)

		_, err = NewCache(config.CacheCfg{Mode: config.CacheHybrid}, "", nil, nil)
		assert.Error(t, err)
		_, err = NewCache(config.CacheCfg{Mode: config.CacheRedis}, "not-a-url", nil, nil)
		assert.Error(t, err)
	})

	t.Run("Random distance fallback", func(t *testing.T) {
		cfg := config.Defaults()
		cfg.Fallback = config.FallbackCfg{Policy: config.FallbackRandom, Seed: 1, Min: 20, Max: 200}
		runner, err := NewRunner(cfg, nil, false, nil)
		require.NoError(t, err)

		res := runner.Processor().Clean(models.RawListing{URL: "https://example.vn/x", Description: "Nhà trong ngõ"})
		assert.True(t, res.HasFlag(models.FlagImputedDistance))
		assert.Nil(t, res.Features)

		runner, err = NewRunner(config.Defaults(), nil, false, nil)
		require.NoError(t, err)
		res = runner.Processor().Clean(models.RawListing{URL: "https://example.vn/x", Description: "Nhà trong ngõ"})
		assert.False(t, res.HasFlag(models.FlagImputedDistance))
	})
}
