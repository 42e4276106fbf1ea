package normalizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripDiacritics(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"Hồ Chí Minh", "Ho Chi Minh"},
		{"Đà Nẵng", "Da Nang"},
		{"Bà Rịa - Vũng Tàu", "Ba Ria - Vung Tau"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, StripDiacritics(tc.input))
		})
	}
}

func TestCanonical_KeepsLineBreaks(t *testing.T) {
	assert.Equal(t, "nhà đẹp\nsổ đỏ", Canonical("Nhà   đẹp \r\n\n Sổ đỏ "))
}

func TestCanonical_OldToneMarks(t *testing.T) {
	assert.Equal(t, "thỏa thuận", Canonical("Thoả  Thuận"))
	assert.Equal(t, "hòa bình", Canonical("HOÀ BÌNH"))
	assert.Equal(t, "thúy", Canonical("thuý"))
}

func TestFoldKey(t *testing.T) {
	assert.Equal(t, "tp hồ chí minh", FoldKey("TP. Hồ Chí Minh"))
	assert.Equal(t, "bà rịa vũng tàu", FoldKey("Bà Rịa - Vũng Tàu"))
}

func TestStripContacts(t *testing.T) {
	n := NewTextNormalizer()

	testCases := []struct {
		name       string
		input      string
		notContain []string
		contain    []string
	}{
		{
			name:       "Phone with spaces",
			input:      "Nhà đẹp, gọi 0912 345 678 để xem nhà",
			notContain: []string{"0912", "345 678"},
			contain:    []string{"Nhà đẹp", "để xem nhà"},
		},
		{
			name:       "Masked phone",
			input:      "Liên hệ chủ nhà 0983 456 *** ngay",
			notContain: []string{"***"},
			contain:    []string{"ngay"},
		},
		{
			name:       "Email and zalo",
			input:      "Nhà 4 tầng. zalo: anh Minh. Email ban.nha@gmail.com",
			notContain: []string{"anh Minh", "gmail"},
			contain:    []string{"Nhà 4 tầng"},
		},
		{
			name:     "Price digits are kept",
			input:    "Giá 1.000.000.000 đồng",
			contain:  []string{"1.000.000.000"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out := n.StripContacts(tc.input)
			for _, s := range tc.notContain {
				assert.NotContains(t, out, s)
			}
			for _, s := range tc.contain {
				assert.Contains(t, out, s)
			}
			t.Logf("Input: %s → %s", tc.input, out)
		})
	}
}

func TestNormalize_Combined(t *testing.T) {
	n := NewTextNormalizer()
	text := n.Normalize("BÁN NHÀ  Mặt Phố", "Nhà mới xây, LH: 0912345678")

	assert.Equal(t, "bán nhà mặt phố", text.Title)
	assert.True(t, strings.HasPrefix(text.Combined, "bán nhà mặt phố\nnhà mới xây"))
	assert.NotContains(t, text.Combined, "0912345678")
}

func TestFingerprint_Stable(t *testing.T) {
	a := Fingerprint("https://batdongsan.com.vn/ban-nha-rieng/pr1")
	b := Fingerprint("https://batdongsan.com.vn/ban-nha-rieng/pr1")
	c := Fingerprint("https://batdongsan.com.vn/ban-nha-rieng/pr2")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.True(t, strings.HasPrefix(a, "sha256:"))
}
