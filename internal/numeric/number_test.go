package numeric

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumber(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"3,5", 3.5, true},
		{"1.234", 1234, true},
		{"1.234,56 m²", 1234.56, true},
		{"Diện tích 52,3 m²", 52.3, true},
		{"50m.", 50, true},
		{"4,", 4, true},
		{"1,2,3", 0, false},
		{"không có số", 0, false},
		{"", 0, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			v, ok := ParseNumber(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, v, 1e-9)
			}
		})
	}
}

func TestParseWidth(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected float64
		ok       bool
	}{
		{"5,5m", 5.5, true},
		{"4.5 m", 4.5, true},
		{"1,234", 1234, true},
		{"1.234", 1.23, true},
		{"1.234,5", 1234.5, true},
		{"25,5", 255, true},
		{"3", 3, true},
		{"m", 0, false},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			v, ok := ParseWidth(tc.input)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.InDelta(t, tc.expected, v, 1e-9)
			}
		})
	}
}

// "<a>,<b>" ≤ 20 luôn được đọc là số thập phân
func TestParseNumber_DecimalCommaRoundTrip(t *testing.T) {
	for a := 0; a <= 19; a++ {
		for _, b := range []int{1, 5, 25, 75} {
			text := formatVN(a, b)
			want := float64(a) + float64(b)/math.Pow(10, float64(digits(b)))

			v, ok := ParseNumber(text)
			assert.True(t, ok, text)
			assert.InDelta(t, want, v, 1e-9, text)

			w, ok := ParseWidth(text)
			assert.True(t, ok, text)
			assert.InDelta(t, want, w, 1e-9, text)
		}
	}
}

func TestParseDistance(t *testing.T) {
	v, ok := ParseDistance("0,5", "km")
	assert.True(t, ok)
	assert.Equal(t, 500.0, v)

	v, ok = ParseDistance("50", "")
	assert.True(t, ok)
	assert.Equal(t, 50.0, v)

	_, ok = ParseDistance("", "m")
	assert.False(t, ok)
}

func formatVN(a, b int) string {
	return strconv.Itoa(a) + "," + strconv.Itoa(b)
}

func digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

func FuzzParseNumber(f *testing.F) {
	f.Add("3,5")
	f.Add("1.234,56 m²")
	f.Add("")
	f.Add("...,,,")
	f.Add("\xff\xfe")
	f.Add("99999999999999999999999999999999999999999")

	f.Fuzz(func(t *testing.T, text string) {
		a, okA := ParseNumber(text)
		b, okB := ParseNumber(text)
		if okA != okB || a != b {
			t.Errorf("non-deterministic: %v/%v vs %v/%v", a, okA, b, okB)
		}
		if okA && (a < 0 || math.IsNaN(a)) {
			t.Errorf("invalid value %v for %q", a, text)
		}
		_, _ = ParseWidth(text)
		_, _ = ParsePrice(text)
	})
}
