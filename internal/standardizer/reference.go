package standardizer

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/normalizer"
)

// Source nạp dữ liệu hành chính tham chiếu (JSON, SQL, MongoDB)
type Source interface {
	Load(ctx context.Context) (*Reference, error)
}

// Reference là cây hành chính tỉnh → quận/huyện → phường/xã
type Reference struct {
	Provinces []models.AdminUnit `json:"provinces"`
	Districts []models.AdminUnit `json:"districts"`
	Wards     []models.AdminUnit `json:"wards"`
}

// Tiền tố hành chính theo cấp, dạng đã qua normalizer.FoldKey. Tiền tố dài đứng trước.
var (
	provincePrefixes = []string{"thành phố ", "tỉnh ", "tp "}
	districtPrefixes = []string{"thành phố ", "thị xã ", "quận ", "huyện ", "tp ", "tx ", "q ", "h "}
	wardPrefixes     = []string{"thị trấn ", "phường ", "xã ", "tt ", "p ", "x "}

	// input đã có tiền tố này được coi là tên chuẩn
	canonicalDistrictPrefixes = []string{"thành phố", "quận", "huyện", "thị xã"}
)

// stripPrefix bỏ một tiền tố hành chính ở đầu khóa đã fold
func stripPrefix(key string, prefixes []string) string {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) && len(key) > len(p) {
			return strings.TrimSpace(key[len(p):])
		}
	}
	return key
}

// lookupKey khóa tra cứu: fold + bỏ tiền tố ("Thành phố Hồ Chí Minh" → "hồ chí minh")
func lookupKey(name string, prefixes []string) string {
	return stripPrefix(normalizer.FoldKey(name), prefixes)
}

// Units toàn bộ đơn vị theo thứ tự tỉnh, quận, phường (dùng cho seed index)
func (r *Reference) Units() []models.AdminUnit {
	out := make([]models.AdminUnit, 0, len(r.Provinces)+len(r.Districts)+len(r.Wards))
	out = append(out, r.Provinces...)
	out = append(out, r.Districts...)
	return append(out, r.Wards...)
}

// Version dấu vân tay của dữ liệu tham chiếu, dùng để vô hiệu cache khi dữ liệu đổi
func (r *Reference) Version() string {
	parts := make([]string, 0, len(r.Provinces)+len(r.Districts)+len(r.Wards))
	for _, u := range r.Units() {
		parts = append(parts, u.Code+"="+u.Name)
	}
	return normalizer.Fingerprint(parts...)
}

// normalize gán level, tên không dấu và loại bỏ bản ghi rỗng
func (r *Reference) normalize() {
	r.Provinces = normalizeUnits(r.Provinces, models.LevelProvince)
	r.Districts = normalizeUnits(r.Districts, models.LevelDistrict)
	r.Wards = normalizeUnits(r.Wards, models.LevelWard)
}

func normalizeUnits(units []models.AdminUnit, level int) []models.AdminUnit {
	out := units[:0]
	for _, u := range units {
		u.Name = strings.TrimSpace(u.Name)
		if u.Name == "" {
			continue
		}
		u.Level = level
		if u.NormalizedName == "" {
			u.NormalizedName = normalizer.ToASCII(u.Name)
		}
		out = append(out, u)
	}
	return out
}

// validate dữ liệu tham chiếu phải có ít nhất một tỉnh
func (r *Reference) validate() error {
	if r == nil || len(r.Provinces) == 0 {
		return eris.New("reference has no provinces")
	}
	return nil
}

// split chia danh sách đơn vị hỗn hợp theo level
func split(units []models.AdminUnit) *Reference {
	ref := &Reference{}
	for _, u := range units {
		switch u.Level {
		case models.LevelProvince:
			ref.Provinces = append(ref.Provinces, u)
		case models.LevelDistrict:
			ref.Districts = append(ref.Districts, u)
		case models.LevelWard:
			ref.Wards = append(ref.Wards, u)
		}
	}
	return ref
}
