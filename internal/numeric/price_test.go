package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected float64
		ok       bool
	}{
		{"Billion decimal comma", "3,2 tỷ", 3.2e9, true},
		{"Billion no space", "12tỷ", 12e9, true},
		{"Compound", "3 tỷ 500 triệu", 3.5e9, true},
		{"Million", "850 triệu", 850e6, true},
		{"Million short", "850 tr", 850e6, true},
		{"Thousand", "500 nghìn", 500e3, true},
		{"Plain VND", "3.200.000.000", 3.2e9, true},
		{"Negotiable", "Thỏa thuận", 0, false},
		{"Old tone negotiable", "thoả thuận", 0, false},
		{"Contact", "Liên hệ", 0, false},
		{"Per area", "85 triệu/m²", 0, false},
		{"Per area m2", "85 triệu/m2", 0, false},
		{"Empty", "", 0, false},
		{"No number", "tỷ", 0, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			v, ok := ParsePrice(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, v, 1)
			}
		})
	}
}

func TestParseUnitPrice(t *testing.T) {
	v, ok := ParseUnitPrice("85 triệu/m²")
	assert.True(t, ok)
	assert.InDelta(t, 85e6, v, 1)

	v, ok = ParseUnitPrice("120,5 tr / m2")
	assert.True(t, ok)
	assert.InDelta(t, 120.5e6, v, 1)

	_, ok = ParseUnitPrice("3 tỷ")
	assert.False(t, ok)
}
