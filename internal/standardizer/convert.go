package standardizer

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/normalizer"
)

// FlatUnit bản ghi của danh mục hành chính dạng phẳng: unit_level 1 = tỉnh, 2 = quận/huyện,
// 3 = phường/xã; parent_id trỏ tới id của cấp trên.
type FlatUnit struct {
	ID        int    `json:"id"`
	ParentID  int    `json:"parent_id"`
	UnitLevel int    `json:"unit_level"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	KeyWord   string `json:"key_word"`
}

// ConvertStats số bản ghi theo cấp và số bản ghi bị bỏ
type ConvertStats struct {
	Provinces int `json:"provinces"`
	Districts int `json:"districts"`
	Wards     int `json:"wards"`
	Orphans   int `json:"orphans"` // không tìm thấy cấp cha
	Skipped   int `json:"skipped"` // unit_level lạ hoặc thiếu tên
}

// ReadFlatFile đọc danh mục phẳng (mảng JSON) từ file
func ReadFlatFile(path string) ([]FlatUnit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read flat reference %s", path)
	}
	var items []FlatUnit
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, eris.Wrapf(err, "parse flat reference %s", path)
	}
	return items, nil
}

// ConvertFlat dựng Reference từ danh mục phẳng. Mã đơn vị lấy từ code, thiếu thì từ id;
// key_word được giữ làm alias.
func ConvertFlat(items []FlatUnit) (*Reference, ConvertStats) {
	var stats ConvertStats
	codes := make(map[int]string, len(items))
	levels := make(map[int]int, len(items))
	for _, it := range items {
		code := strings.TrimSpace(it.Code)
		if code == "" {
			code = strconv.Itoa(it.ID)
		}
		codes[it.ID] = code
		levels[it.ID] = it.UnitLevel
	}

	ref := &Reference{}
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" || it.UnitLevel < 1 || it.UnitLevel > 3 {
			stats.Skipped++
			continue
		}
		u := models.AdminUnit{
			Code:           codes[it.ID],
			Level:          it.UnitLevel + 1,
			Name:           name,
			NormalizedName: normalizer.ToASCII(name),
			Status:         models.UnitStatusActive,
			Aliases:        flatAliases(name, it.KeyWord),
		}
		if it.UnitLevel > 1 {
			if levels[it.ParentID] != it.UnitLevel-1 {
				stats.Orphans++
				continue
			}
			u.ParentCode = codes[it.ParentID]
		}

		switch u.Level {
		case models.LevelProvince:
			u.Type = unitType(name, provincePrefixes)
			ref.Provinces = append(ref.Provinces, u)
			stats.Provinces++
		case models.LevelDistrict:
			u.Type = unitType(name, districtPrefixes)
			ref.Districts = append(ref.Districts, u)
			stats.Districts++
		default:
			u.Type = unitType(name, wardPrefixes)
			ref.Wards = append(ref.Wards, u)
			stats.Wards++
		}
	}
	return ref, stats
}

// WriteFile ghi Reference ra file JSON mà JSONSource đọc được
func (r *Reference) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return eris.Wrap(err, "encode reference")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return eris.Wrapf(err, "write reference %s", path)
	}
	return nil
}

// unitType tiền tố hành chính đầy đủ của tên ("Quận", "Thị xã"), rỗng nếu không có
func unitType(name string, prefixes []string) string {
	key := normalizer.FoldKey(name)
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) && len(strings.TrimSpace(p)) > 2 {
			words, fields := len(strings.Fields(p)), strings.Fields(name)
			if len(fields) <= words {
				return ""
			}
			return strings.Join(fields[:words], " ")
		}
	}
	return ""
}

// flatAliases key_word (nếu khác tên) làm alias
func flatAliases(name, keyWord string) []string {
	keyWord = strings.TrimSpace(keyWord)
	if keyWord == "" || normalizer.FoldKey(keyWord) == normalizer.FoldKey(name) {
		return nil
	}
	return []string{keyWord}
}
