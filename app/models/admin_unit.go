package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUnit đại diện cho đơn vị hành chính (tỉnh, quận/huyện, phường/xã)
type AdminUnit struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Code           string             `bson:"code" json:"code"`                                   // Mã đơn vị hành chính
	ParentCode     string             `bson:"parent_code,omitempty" json:"parent_code,omitempty"` // Mã đơn vị cha
	Level          int                `bson:"level" json:"level"`                                 // 2=province, 3=district, 4=ward
	Name           string             `bson:"name" json:"name"`                                   // Tên đầy đủ, có tiền tố ("Quận Ba Đình")
	NormalizedName string             `bson:"normalized_name" json:"normalized_name"`             // Tên không dấu, lowercase
	Type           string             `bson:"type,omitempty" json:"type,omitempty"`               // Tiền tố hành chính (Quận, Huyện, Phường...)
	Status         string             `bson:"status,omitempty" json:"status,omitempty"`           // active / merged
	Aliases        []string           `bson:"aliases,omitempty" json:"aliases,omitempty"`         // Các tên gọi khác
	CreatedAt      time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt      time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// Level constants
const (
	LevelProvince = 2
	LevelDistrict = 3
	LevelWard     = 4
)

// Status constants
const (
	UnitStatusActive = "active"
	UnitStatusMerged = "merged"
)

// IsValidLevel kiểm tra level có hợp lệ không
func (au *AdminUnit) IsValidLevel() bool {
	return au.Level >= LevelProvince && au.Level <= LevelWard
}

// IsActive đơn vị còn hiệu lực (status trống được coi là active)
func (au *AdminUnit) IsActive() bool {
	return au.Status == "" || strings.EqualFold(au.Status, UnitStatusActive)
}

// LevelName trả về tên cấp hành chính dùng cho index tìm kiếm
func LevelName(level int) string {
	switch level {
	case LevelProvince:
		return "province"
	case LevelDistrict:
		return "district"
	case LevelWard:
		return "ward"
	}
	return ""
}

// ParseLevel đổi tên cấp ("province", "district", "ward") sang hằng số, 0 nếu không hợp lệ
func ParseLevel(name string) int {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "province", "tinh", "tỉnh":
		return LevelProvince
	case "district", "huyen", "huyện", "quan", "quận":
		return LevelDistrict
	case "ward", "xa", "xã", "phuong", "phường":
		return LevelWard
	}
	return 0
}
