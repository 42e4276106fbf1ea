package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/extractor"
	"github.com/listing-cleaner/internal/features"
	"github.com/listing-cleaner/internal/matcher"
	"github.com/listing-cleaner/internal/standardizer"
)

const fixtureListings = "testdata/listings.jsonl"

func newTestProcessor(t *testing.T, withStandardizer bool, eng *features.Engineer) *Processor {
	t.Helper()
	rules, err := matcher.LoadRules()
	require.NoError(t, err)

	var std *standardizer.Standardizer
	if withStandardizer {
		src := standardizer.JSONSource{Path: "../standardizer/testdata/reference.json"}
		std, err = standardizer.New(context.Background(), src, nil)
		require.NoError(t, err)
	}
	return NewProcessor(extractor.NewExtractor(rules, nil), std, eng, nil)
}

func readFixture(t *testing.T) []models.RawListing {
	t.Helper()
	listings, err := ReadListings(fixtureListings)
	require.NoError(t, err)
	require.Len(t, listings, 5)
	return listings
}

func TestFilterMixed(t *testing.T) {
	listings := append(readFixture(t),
		models.RawListing{URL: "https://example.vn/ban-6", Title: "Bán 3 căn liền kề Gia Lâm"},
		models.RawListing{URL: "https://example.vn/ban-7", Title: "Chủ cần bán nhiều lô đất nền"},
		models.RawListing{Title: "Không có URL"},
		models.RawListing{URL: "https://example.vn/ban-9", Title: "Bán căn nhà 3 tầng, có thể cho thuê"},
	)

	kept, dropped := FilterMixed(listings)

	var urls []string
	for _, l := range kept {
		urls = append(urls, l.URL)
	}
	assert.Equal(t, []string{
		"https://example.vn/ban-nha-1",
		"https://example.vn/ban-nha-2",
		"https://example.vn/ban-nha-5",
		"https://example.vn/ban-9",
	}, urls)

	reasons := map[int]string{}
	for _, d := range dropped {
		reasons[d.Index] = d.Reason
	}
	assert.Equal(t, map[int]string{
		2: ReasonDuplicateURL,
		3: ReasonRental,
		5: ReasonMultiUnit,
		6: ReasonMultiUnit,
		7: ReasonMissingURL,
	}, reasons)
}

func TestReadListings(t *testing.T) {
	t.Run("JSON lines", func(t *testing.T) {
		listings := readFixture(t)
		assert.Equal(t, "https://example.vn/ban-nha-2", listings[1].URL)
		require.Len(t, listings[1].MainInfo, 2)
		assert.Equal(t, "40 m²", listings[1].MainInfo[1].Value)
		assert.Equal(t, []string{"Bán nhà riêng", "Hà Nội", "Hai Bà Trưng", "Nhà riêng tại Phường Bạch Mai"}, listings[0].AddressParts)
	})

	t.Run("JSON array", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "listings.json")
		data := `[{"url": "https://example.vn/a", "title": "Bán nhà", "latitude": "21.0285", "longitude": 105.8542}]`
		require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

		listings, err := ReadListings(path)
		require.NoError(t, err)
		require.Len(t, listings, 1)
		require.NotNil(t, listings[0].Latitude)
		assert.Equal(t, 21.0285, *listings[0].Latitude)
	})

	t.Run("CSV export", func(t *testing.T) {
		listings, err := ReadListings("testdata/listings.csv")
		require.NoError(t, err)
		require.Len(t, listings, 2)

		first := listings[0]
		assert.Equal(t, "Bán nhà Quận 3", first.Title)
		require.Len(t, first.MainInfo, 1)
		assert.Equal(t, "3 tỷ 500 triệu", first.MainInfo[0].Value)
		assert.Equal(t, []string{"https://img.example.vn/1.jpg", "https://img.example.vn/2.jpg"}, first.ImageURLs)

		assert.Empty(t, listings[1].Title)
		assert.Nil(t, listings[1].MainInfo)
	})

	t.Run("Malformed JSON line", func(t *testing.T) {
		_, err := DecodeListings([]byte("{\"url\": \"a\"}\n{broken"))
		assert.Error(t, err)
	})

	t.Run("Unsupported format", func(t *testing.T) {
		_, err := ReadListings("listings.parquet")
		assert.Error(t, err)
	})
}

func TestProcessor_Clean(t *testing.T) {
	listings := readFixture(t)

	t.Run("Standardized street-front house", func(t *testing.T) {
		p := newTestProcessor(t, true, nil)
		res := p.Clean(listings[0])

		assert.Equal(t, models.StatusCleaned, res.Status)
		assert.Equal(t, "Thành phố Hà Nội", res.Row.Province)
		assert.Equal(t, "Quận Hai Bà Trưng", res.Row.District)
		assert.Equal(t, "Phường Bạch Mai", res.Row.Ward)
		require.NotNil(t, res.Row.FacadeWidth)
		assert.Equal(t, models.Decimal(4), *res.Row.FacadeWidth)
		assert.ElementsMatch(t, []string{models.FlagMissingPrice, models.FlagMissingArea}, res.Flags)
		assert.Nil(t, res.Features)
		assert.Empty(t, res.Row.BusinessAdvantage)
		assert.Contains(t, res.Fingerprint, "sha256:")
	})

	t.Run("Unmatched district", func(t *testing.T) {
		p := newTestProcessor(t, true, nil)
		res := p.Clean(listings[4])

		assert.Equal(t, "Thành phố Hà Nội", res.Row.Province)
		assert.Empty(t, res.Row.District)
		assert.True(t, res.HasFlag(models.FlagUnmatchedDistrict))
		assert.False(t, res.HasFlag(models.FlagUnmatchedWard))
	})

	t.Run("Without standardizer", func(t *testing.T) {
		p := newTestProcessor(t, false, nil)
		res := p.Clean(listings[0])

		assert.Equal(t, "Hà Nội", res.Row.Province)
		assert.Equal(t, "Hai Bà Trưng", res.Row.District)
	})

	t.Run("Engineered features", func(t *testing.T) {
		p := newTestProcessor(t, true, features.NewEngineer())
		res := p.Clean(listings[1])

		require.NotNil(t, res.Features)
		require.NotNil(t, res.Row.LandUnitPrice)
		assert.InDelta(t, 8.55e7, float64(*res.Row.LandUnitPrice), 0.01)
		assert.Equal(t, models.AdvantagePoor, res.Row.BusinessAdvantage)
	})

	t.Run("Panic becomes dropped row", func(t *testing.T) {
		p := NewProcessor(extractor.NewExtractor(nil, nil), nil, nil, nil)
		res := p.Clean(listings[0])

		assert.Equal(t, models.StatusDropped, res.Status)
		assert.Contains(t, res.Reason, "extraction failed")
	})
}

func TestRunner_PreservesOrder(t *testing.T) {
	p := newTestProcessor(t, false, nil)
	r := NewRunner(p, 4, nil)

	listings := make([]models.RawListing, 50)
	for i := range listings {
		listings[i] = models.RawListing{
			URL:         fmt.Sprintf("https://example.vn/tin-%d", i),
			Description: fmt.Sprintf("Nhà %d tầng, ngõ 3m", i%5+1),
		}
	}

	results, sum, err := r.Clean(context.Background(), listings)
	require.NoError(t, err)
	require.Len(t, results, 50)
	for i, res := range results {
		assert.Equal(t, listings[i].URL, res.URL)
	}
	assert.Equal(t, 50, sum.Cleaned)
	assert.Equal(t, 1.0, sum.NullRates["Thông tin liên hệ"])
	assert.Equal(t, 0.0, sum.NullRates["Tình trạng giao dịch"])
}

func TestRunner_SeededFallbackIsReproducible(t *testing.T) {
	rules, err := matcher.LoadRules()
	require.NoError(t, err)

	listings := make([]models.RawListing, 200)
	for i := range listings {
		listings[i] = models.RawListing{
			URL:         fmt.Sprintf("https://example.vn/ngo-%d", i),
			Description: "Nhà trong ngõ",
		}
	}

	run := func() []models.CleanResult {
		ex := extractor.NewExtractor(rules, nil, extractor.WithDistanceFallback(extractor.NewRandomFallback(42, 20, 200)))
		results, _, err := NewRunner(NewProcessor(ex, nil, nil, nil), 8, nil).Clean(context.Background(), listings)
		require.NoError(t, err)
		require.Len(t, results, len(listings))
		return results
	}

	first, second := run(), run()
	for i := range first {
		require.NotNil(t, first[i].Row.DistanceToRoad)
		require.NotNil(t, second[i].Row.DistanceToRoad)
		assert.Equal(t, *first[i].Row.DistanceToRoad, *second[i].Row.DistanceToRoad, listings[i].URL)
		assert.True(t, first[i].HasFlag(models.FlagImputedDistance))
	}
}

func TestListingFingerprint(t *testing.T) {
	lat := 21.01
	base := models.RawListing{
		URL:          "https://example.vn/tin-1",
		Title:        "Bán nhà",
		MainInfo:     []models.MainInfoItem{{Title: "Mức giá", Value: "3 tỷ"}},
		OtherInfo:    map[string]string{"Số tầng": "4", "Hướng nhà": "Đông"},
		AddressParts: []string{"Bán nhà", "Hà Nội"},
		Latitude:     &lat,
	}
	fp := ListingFingerprint(base)
	assert.Contains(t, fp, "sha256:")

	same := base
	same.OtherInfo = map[string]string{"Hướng nhà": "Đông", "Số tầng": "4"}
	assert.Equal(t, fp, ListingFingerprint(same))

	lat2 := 21.02
	tests := []struct {
		name   string
		modify func(l *models.RawListing)
	}{
		{"Price", func(l *models.RawListing) { l.MainInfo = []models.MainInfoItem{{Title: "Mức giá", Value: "5 tỷ"}} }},
		{"Description", func(l *models.RawListing) { l.Description = "Ngõ 3m" }},
		{"Diacritics", func(l *models.RawListing) { l.Title = "Ban nha" }},
		{"Other info", func(l *models.RawListing) { l.OtherInfo = map[string]string{"Số tầng": "5"} }},
		{"Coordinates", func(l *models.RawListing) { l.Latitude = &lat2 }},
		{"Address parts", func(l *models.RawListing) { l.AddressParts = []string{"Bán nhà Hà Nội"} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := base
			tt.modify(&l)
			assert.NotEqual(t, fp, ListingFingerprint(l))
		})
	}
}

func TestProcessor_Version(t *testing.T) {
	rules, err := matcher.LoadRules()
	require.NoError(t, err)
	newProcessor := func(f extractor.DistanceFallback, eng *features.Engineer) *Processor {
		return NewProcessor(extractor.NewExtractor(rules, nil, extractor.WithDistanceFallback(f)), nil, eng, nil)
	}

	base := newProcessor(extractor.NoFallback{}, features.NewEngineer())
	assert.Equal(t, base.Version(), newProcessor(extractor.NoFallback{}, features.NewEngineer()).Version())

	tests := []struct {
		name  string
		other *Processor
	}{
		{"Random fallback", newProcessor(extractor.NewRandomFallback(1, 20, 200), features.NewEngineer())},
		{"Different seed", newProcessor(extractor.NewRandomFallback(2, 20, 200), features.NewEngineer())},
		{"Land discount", newProcessor(extractor.NoFallback{}, features.NewEngineer(features.WithLandDiscount(0.9)))},
		{"Estimate factor", newProcessor(extractor.NoFallback{}, features.NewEngineer(features.WithEstimateFactor(0.95)))},
		{"Without engineer", newProcessor(extractor.NoFallback{}, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, base.Version(), tt.other.Version())
		})
	}
	assert.NotEqual(t, tests[0].other.Version(), tests[1].other.Version())
}

func TestRunner_Cancelled(t *testing.T) {
	r := NewRunner(newTestProcessor(t, false, nil), 2, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := r.Clean(ctx, readFixture(t))
	assert.Error(t, err)
}

func TestRunner_TwoStageFlow(t *testing.T) {
	dir := t.TempDir()
	cleaned := filepath.Join(dir, "cleaned.csv")
	final := filepath.Join(dir, "final.xlsx")

	r := NewRunner(newTestProcessor(t, true, nil), 2, nil)

	sum, err := r.CleanFile(context.Background(), fixtureListings, cleaned)
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Total)
	assert.Equal(t, 3, sum.Cleaned)
	assert.Equal(t, 2, sum.Dropped)
	assert.Equal(t, map[string]int{ReasonDuplicateURL: 1, ReasonRental: 1}, sum.Filtered)

	rows, err := ReadRows(cleaned)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "https://example.vn/ban-nha-2", rows[1].Source)
	assert.Nil(t, rows[1].LandUnitPrice)
	assert.Empty(t, rows[1].BusinessAdvantage)

	require.NoError(t, r.FeatureFile(context.Background(), cleaned, final))

	rows, err = ReadRows(final)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	first := rows[0]
	assert.Equal(t, "Quận Hai Bà Trưng", first.District)
	assert.Equal(t, models.AdvantageGood, first.BusinessAdvantage)
	assert.Nil(t, first.LandUnitPrice)

	second := rows[1]
	assert.Equal(t, "Thành phố Hồ Chí Minh", second.Province)
	assert.Equal(t, "Quận 3", second.District)
	assert.Equal(t, "Phường Võ Thị Sáu", second.Ward)
	require.NotNil(t, second.Price)
	assert.InDelta(t, 3.5e9, float64(*second.Price), 0.5)
	require.NotNil(t, second.EstimatedPrice)
	assert.InDelta(t, 3.43e9, float64(*second.EstimatedPrice), 0.5)
	require.NotNil(t, second.LandUnitPrice)
	assert.InDelta(t, 8.55e7, float64(*second.LandUnitPrice), 0.5)
	require.NotNil(t, second.AlleyWidth)
	assert.Equal(t, models.Decimal(5), *second.AlleyWidth)
	require.NotNil(t, second.NumFloors)
	assert.Equal(t, 1, *second.NumFloors)
	assert.Equal(t, models.AdvantagePoor, second.BusinessAdvantage)
	assert.Equal(t, models.TransactionStatusListed, second.TransactionStatus)
}

func TestWriteRows_CSVHeader(t *testing.T) {
	data, err := MarshalCSV(nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Tỉnh/Thành phố,Thành phố/Quận/Huyện/Thị xã,Xã/Phường/Thị trấn")

	assert.Error(t, WriteRows(filepath.Join(t.TempDir(), "out.json"), nil))
}
