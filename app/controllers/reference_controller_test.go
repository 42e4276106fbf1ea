package controllers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listing-cleaner/app/models"
)

func TestParseLevelParam(t *testing.T) {
	testCases := []struct {
		raw   string
		level int
		ok    bool
	}{
		{"", 0, true},
		{"province", models.LevelProvince, true},
		{" ward ", models.LevelWard, true},
		{"3", models.LevelDistrict, true},
		{"4", models.LevelWard, true},
		{"1", 0, false},
		{"hamlet", 0, false},
	}
	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			level, ok := parseLevelParam(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.level, level)
		})
	}
}
