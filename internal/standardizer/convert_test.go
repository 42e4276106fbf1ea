package standardizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listing-cleaner/app/models"
)

const flatFixture = `[
  {"id": 1, "unit_level": 1, "code": "01", "name": "Thành phố Hà Nội", "key_word": "Hà Nội"},
  {"id": 2, "unit_level": 2, "parent_id": 1, "code": "001", "name": "Quận Ba Đình", "key_word": "ba đình"},
  {"id": 3, "unit_level": 2, "parent_id": 1, "name": "Thị xã Sơn Tây"},
  {"id": 4, "unit_level": 3, "parent_id": 2, "code": "00001", "name": "Phường Phúc Xá"},
  {"id": 5, "unit_level": 3, "parent_id": 99, "name": "Phường Mồ Côi"},
  {"id": 6, "unit_level": 7, "name": "Ấp Lạ"},
  {"id": 7, "unit_level": 1, "name": "  "}
]`

func TestConvertFlat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "address.json")
	require.NoError(t, os.WriteFile(path, []byte(flatFixture), 0o644))

	items, err := ReadFlatFile(path)
	require.NoError(t, err)
	require.Len(t, items, 7)

	ref, stats := ConvertFlat(items)
	assert.Equal(t, ConvertStats{Provinces: 1, Districts: 2, Wards: 1, Orphans: 1, Skipped: 2}, stats)

	require.Len(t, ref.Provinces, 1)
	hn := ref.Provinces[0]
	assert.Equal(t, "01", hn.Code)
	assert.Equal(t, models.LevelProvince, hn.Level)
	assert.Equal(t, "Thành phố", hn.Type)
	assert.Equal(t, []string{"Hà Nội"}, hn.Aliases)

	require.Len(t, ref.Districts, 2)
	assert.Equal(t, "01", ref.Districts[0].ParentCode)
	assert.Equal(t, "Quận", ref.Districts[0].Type)
	assert.Nil(t, ref.Districts[0].Aliases, "key_word trùng tên không thành alias")
	assert.Equal(t, "3", ref.Districts[1].Code, "thiếu code thì dùng id")
	assert.Equal(t, "Thị xã", ref.Districts[1].Type)

	require.Len(t, ref.Wards, 1)
	assert.Equal(t, "001", ref.Wards[0].ParentCode)
	assert.Equal(t, "Phường", ref.Wards[0].Type)
}

func TestReference_WriteFileRoundTrip(t *testing.T) {
	ref, _ := ConvertFlat([]FlatUnit{
		{ID: 1, UnitLevel: 1, Code: "79", Name: "Thành phố Hồ Chí Minh", KeyWord: "Sài Gòn"},
		{ID: 2, UnitLevel: 2, ParentID: 1, Code: "760", Name: "Quận 1"},
	})
	path := filepath.Join(t.TempDir(), "reference.json")
	require.NoError(t, ref.WriteFile(path))

	s, err := New(context.Background(), JSONSource{Path: path}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Thành phố Hồ Chí Minh", *s.StandardizeProvince(str("sài gòn")))
	assert.Equal(t, "Quận 1", *s.StandardizeDistrict(str("Hồ Chí Minh"), str("Q.1")))
}
