package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-cleaner/app/models"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }
func i(v int) *int         { return &v }

func TestLocationTier(t *testing.T) {
	tests := []struct {
		name     string
		distance *float64
		alley    *float64
		expected *string
	}{
		{"Missing distance", nil, f(5), nil},
		{"On main road", f(0), nil, s(models.TierVT1)},
		{"Missing alley", f(40), nil, nil},
		{"Wide alley", f(40), f(3.5), s(models.TierVT2)},
		{"Medium alley lower bound", f(40), f(2), s(models.TierVT3)},
		{"Medium alley", f(40), f(3.4), s(models.TierVT3)},
		{"Narrow alley", f(40), f(1.9), s(models.TierVT4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LocationTier(tt.distance, tt.alley))
		})
	}
}

func TestBusinessAdvantage(t *testing.T) {
	tests := []struct {
		name     string
		attrs    models.ExtractedAttributes
		expected string
	}{
		{"VT1 urban", models.ExtractedAttributes{District: s("Quận Ba Đình"), DistanceToMainRoad: f(0)}, models.AdvantageGood},
		{"VT2 urban", models.ExtractedAttributes{District: s("Quận 1"), DistanceToMainRoad: f(20), AlleyWidth: f(4)}, models.AdvantageGood},
		{"VT1 rural", models.ExtractedAttributes{District: s("Huyện Gia Lâm"), DistanceToMainRoad: f(0)}, models.AdvantageFair},
		{"VT1 city-level district counts as rural", models.ExtractedAttributes{District: s("Thành phố Thủ Đức"), DistanceToMainRoad: f(0)}, models.AdvantageFair},
		{"VT2 rural", models.ExtractedAttributes{District: s("Huyện Gia Lâm"), DistanceToMainRoad: f(20), AlleyWidth: f(4)}, models.AdvantageAverage},
		{"VT3 urban", models.ExtractedAttributes{District: s("Quận 3"), DistanceToMainRoad: f(20), AlleyWidth: f(2.5)}, models.AdvantageAverage},
		{"VT4", models.ExtractedAttributes{District: s("Quận 3"), DistanceToMainRoad: f(20), AlleyWidth: f(1.2)}, models.AdvantagePoor},
		{"Missing district", models.ExtractedAttributes{DistanceToMainRoad: f(0)}, models.AdvantagePoor},
		{"Undeterminable tier", models.ExtractedAttributes{District: s("Quận 1")}, models.AdvantagePoor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BusinessAdvantage(tt.attrs))
		})
	}
}

func TestLandUnitPrice(t *testing.T) {
	base := models.ExtractedAttributes{
		Price:            f(5e9),
		LandArea:         f(50),
		NumFloors:        i(4),
		ConstructionCost: f(6e6),
		RemainingQuality: f(0.75),
	}

	t.Run("Price minus building value", func(t *testing.T) {
		got := NewEngineer().LandUnitPrice(base)
		require.NotNil(t, got)
		assert.InDelta(t, 8.2e7, *got, 0.01)
	})

	t.Run("Discount applied", func(t *testing.T) {
		got := NewEngineer(WithLandDiscount(0.98)).LandUnitPrice(base)
		require.NotNil(t, got)
		assert.InDelta(t, 8.036e7, *got, 0.01)
	})

	t.Run("Building worth more than price", func(t *testing.T) {
		a := base
		a.Price = f(1e9)
		a.ConstructionCost = f(12e6)
		a.RemainingQuality = f(1)
		got := NewEngineer(WithLandDiscount(0.98)).LandUnitPrice(a)
		require.NotNil(t, got)
		assert.InDelta(t, 2e7, *got, 0.01)
	})

	t.Run("Missing inputs", func(t *testing.T) {
		e := NewEngineer()
		for _, mutate := range []func(a *models.ExtractedAttributes){
			func(a *models.ExtractedAttributes) { a.Price = nil },
			func(a *models.ExtractedAttributes) { a.LandArea = nil },
			func(a *models.ExtractedAttributes) { a.LandArea = f(0) },
			func(a *models.ExtractedAttributes) { a.NumFloors = nil },
			func(a *models.ExtractedAttributes) { a.ConstructionCost = nil },
			func(a *models.ExtractedAttributes) { a.RemainingQuality = nil },
		} {
			a := base
			mutate(&a)
			assert.Nil(t, e.LandUnitPrice(a))
		}
	})
}

func TestEngineer(t *testing.T) {
	a := models.ExtractedAttributes{
		District:           s("Quận Hai Bà Trưng"),
		Price:              f(3.2e9),
		LandArea:           f(40),
		NumFloors:          i(3),
		ConstructionCost:   f(6e6),
		RemainingQuality:   f(0.5),
		AlleyWidth:         f(5),
		DistanceToMainRoad: f(30),
	}

	got := NewEngineer().Engineer(a)

	require.NotNil(t, got.EstimatedPrice)
	assert.InDelta(t, 3.136e9, *got.EstimatedPrice, 1)
	assert.Equal(t, s(models.TierVT2), got.LocationTier)
	assert.Equal(t, models.AdvantageGood, got.BusinessAdvantage)
	require.NotNil(t, got.FloorArea)
	assert.Equal(t, 120.0, *got.FloorArea)
	require.NotNil(t, got.LandUnitPrice)
	assert.InDelta(t, 7.1e7, *got.LandUnitPrice, 0.01)

	empty := NewEngineer().Engineer(models.ExtractedAttributes{})
	assert.Nil(t, empty.EstimatedPrice)
	assert.Nil(t, empty.LocationTier)
	assert.Equal(t, models.AdvantagePoor, empty.BusinessAdvantage)
	assert.Nil(t, empty.LandUnitPrice)
	assert.Nil(t, empty.FloorArea)
}
