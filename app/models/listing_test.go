package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawListing_UnmarshalJSON(t *testing.T) {
	t.Run("Structured fields", func(t *testing.T) {
		data := `{
			"url": "https://example.vn/ban-nha-1",
			"title": "Bán nhà mặt phố",
			"address_parts": ["Bán nhà", "Hà Nội", "Ba Đình", "Nhà tại phường Kim Mã"],
			"main_info": [{"title": "Mức giá", "value": "3,2 tỷ"}, {"title": "Diện tích", "value": "52 m²", "ext": "4 x 13"}],
			"other_info": {"Số tầng": 4, "Mặt tiền": "4 m"},
			"latitude": 21.03,
			"longitude": 105.82,
			"image_urls": ["a.jpg", "b.jpg"]
		}`
		var l RawListing
		require.NoError(t, json.Unmarshal([]byte(data), &l))

		assert.Equal(t, "https://example.vn/ban-nha-1", l.URL)
		assert.Len(t, l.AddressParts, 4)
		v, ok := l.MainInfoValue("Mức giá")
		assert.True(t, ok)
		assert.Equal(t, "3,2 tỷ", v)
		ext, ok := l.MainInfoExt("Diện tích")
		assert.True(t, ok)
		assert.Equal(t, "4 x 13", ext)
		floors, ok := l.OtherInfoValue("Số tầng")
		assert.True(t, ok)
		assert.Equal(t, "4", floors)
		require.NotNil(t, l.Latitude)
		assert.Equal(t, 21.03, *l.Latitude)
		assert.Equal(t, []string{"a.jpg", "b.jpg"}, l.ImageURLs)
	})

	t.Run("JSON-encoded string fields", func(t *testing.T) {
		data := `{
			"url": "u",
			"main_info": "[{\"title\": \"Mức giá\", \"value\": \"850 triệu\"}]",
			"other_info": "{\"Đường vào\": \"3 m\"}",
			"address_parts": "[\"Bán nhà\", \"Hồ Chí Minh\"]",
			"image_urls": "['x.jpg', 'y.jpg']",
			"latitude": "10.77",
			"longitude": "106.7"
		}`
		var l RawListing
		require.NoError(t, json.Unmarshal([]byte(data), &l))

		v, ok := l.MainInfoValue("Mức giá")
		assert.True(t, ok)
		assert.Equal(t, "850 triệu", v)
		alley, _ := l.OtherInfoValue("Đường vào")
		assert.Equal(t, "3 m", alley)
		assert.Equal(t, []string{"Bán nhà", "Hồ Chí Minh"}, l.AddressParts)
		assert.Equal(t, []string{"x.jpg", "y.jpg"}, l.ImageURLs)
		require.NotNil(t, l.Longitude)
		assert.Equal(t, 106.7, *l.Longitude)
	})

	t.Run("Malformed fields degrade to empty", func(t *testing.T) {
		data := `{"url": "u", "main_info": "not json", "other_info": [1, 2], "latitude": true}`
		var l RawListing
		require.NoError(t, json.Unmarshal([]byte(data), &l))
		assert.Nil(t, l.MainInfo)
		assert.Nil(t, l.OtherInfo)
		assert.Nil(t, l.Latitude)
	})

	t.Run("Coordinates outside Vietnam are dropped", func(t *testing.T) {
		data := `{"url": "u", "latitude": 48.85, "longitude": 2.35}`
		var l RawListing
		require.NoError(t, json.Unmarshal([]byte(data), &l))
		assert.Nil(t, l.Latitude)
		assert.Nil(t, l.Longitude)
	})
}

func TestListingRecord_Listing(t *testing.T) {
	rec := ListingRecord{
		URL:       " u ",
		MainInfo:  `[{"title": "Diện tích", "value": "60 m²"}]`,
		OtherInfo: `{"Mặt tiền": "5 m"}`,
		ImageURLs: "['a.jpg']",
		Latitude:  "21.0",
		Longitude: "105.8",
	}
	l := rec.Listing()

	assert.Equal(t, "u", l.URL)
	v, ok := l.MainInfoValue("Diện tích")
	assert.True(t, ok)
	assert.Equal(t, "60 m²", v)
	w, _ := l.OtherInfoValue("Mặt tiền")
	assert.Equal(t, "5 m", w)
	assert.Equal(t, []string{"a.jpg"}, l.ImageURLs)
	assert.NotNil(t, l.Latitude)
}

func TestOutputRow_RoundTrip(t *testing.T) {
	attrs := ExtractedAttributes{
		Province:      StrPtr("Thành phố Hà Nội"),
		URL:           StrPtr("u"),
		Price:         FloatPtr(3.2e9),
		NumFloors:     IntPtr(4),
		LandShape:     StrPtr(DefaultLandShape),
		OtherFeatures: []string{"sổ đỏ chính chủ", "gần chợ"},
		ImageURLs:     []string{"a.jpg"},
	}
	row := NewOutputRow(attrs, nil)

	assert.Equal(t, TransactionStatusListed, row.TransactionStatus)
	assert.Equal(t, UnitPriceTypePerM2, row.UnitPriceType)
	assert.Equal(t, LandUsePurposeResidence, row.LandUsePurpose)
	assert.Equal(t, "sổ đỏ chính chủ | gần chợ", row.OtherFeatures)
	assert.Len(t, row.Values(), len(OutputColumns))

	back := row.Attributes()
	assert.Equal(t, attrs.OtherFeatures, back.OtherFeatures)
	assert.Equal(t, attrs.ImageURLs, back.ImageURLs)
	assert.Equal(t, 3.2e9, *back.Price)
	assert.Nil(t, back.LandArea)
}

func TestDecimal_MarshalCSV(t *testing.T) {
	price := Decimal(3.2e9)
	b, err := price.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "3200000000", string(b))

	var missing *Decimal
	b, err = missing.MarshalCSV()
	require.NoError(t, err)
	assert.Empty(t, b)

	var d Decimal
	require.NoError(t, d.UnmarshalCSV([]byte("52.5")))
	assert.Equal(t, Decimal(52.5), d)
	assert.Error(t, d.UnmarshalCSV([]byte("abc")))
}
