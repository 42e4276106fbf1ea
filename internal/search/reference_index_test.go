package search

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-cleaner/app/models"
)

func TestFilters(t *testing.T) {
	assert.Equal(t, "", FilterLevel(0))
	assert.Equal(t, "level = 3", FilterLevel(models.LevelDistrict))
	assert.Equal(t, "level = 3", FilterLevelParent(models.LevelDistrict, ""))
	assert.Equal(t, `level = 4 AND parent_code = "760"`, FilterLevelParent(models.LevelWard, "760"))
}

func TestToDocument(t *testing.T) {
	doc := toDocument(models.AdminUnit{
		Code:       "760",
		ParentCode: "79",
		Level:      models.LevelDistrict,
		Name:       "Quận 1",
		Aliases:    []string{" Q1 ", ""},
	})

	assert.Equal(t, "3-760", doc["id"])
	assert.Equal(t, "quan 1", doc["normalized_name"])
	assert.Equal(t, "district", doc["level_name"])
	assert.Equal(t, []string{"Q1"}, doc["aliases"])
}

func TestParseHits(t *testing.T) {
	hits := []interface{}{
		map[string]interface{}{
			"code":            "26740",
			"parent_code":     "760",
			"level":           float64(models.LevelWard),
			"name":            "Phường Bến Nghé",
			"normalized_name": "phuong ben nghe",
			"aliases":         []interface{}{"Bến Nghé"},
		},
		map[string]interface{}{"code": "x"},
		"not a document",
	}

	units := parseHits(hits)
	require.Len(t, units, 1)
	assert.Equal(t, "26740", units[0].Code)
	assert.Equal(t, "760", units[0].ParentCode)
	assert.Equal(t, models.LevelWard, units[0].Level)
	assert.Equal(t, []string{"Bến Nghé"}, units[0].Aliases)
}

// Cần Meilisearch thật: MEILI_HOST=http://localhost:7700 go test ./internal/search
func TestReferenceIndex_Integration(t *testing.T) {
	host := os.Getenv("MEILI_HOST")
	if host == "" {
		t.Skip("MEILI_HOST not set")
	}

	ri, err := NewReferenceIndex(Config{
		Host:      host,
		APIKey:    os.Getenv("MEILI_MASTER_KEY"),
		IndexName: "admin_units_test",
		Timeout:   10 * time.Second,
	}, nil)
	require.NoError(t, err)
	require.NoError(t, ri.Configure())

	n, err := ri.Seed([]models.AdminUnit{
		{Code: "79", Level: models.LevelProvince, Name: "Thành phố Hồ Chí Minh"},
		{Code: "760", ParentCode: "79", Level: models.LevelDistrict, Name: "Quận 1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ri.Search(context.Background(), SearchRequest{})
	assert.Error(t, err)
}
