package search

import (
	"fmt"
	"strings"

	"github.com/listing-cleaner/app/models"
	"github.com/listing-cleaner/internal/normalizer"
)

// FilterLevelParent tạo filter theo cấp và mã đơn vị cha
func FilterLevelParent(level int, parentCode string) string {
	if parentCode == "" {
		return FilterLevel(level)
	}
	return fmt.Sprintf("level = %d AND parent_code = %q", level, parentCode)
}

// FilterLevel tạo filter theo cấp; level 0 là không lọc
func FilterLevel(level int) string {
	if level == 0 {
		return ""
	}
	return fmt.Sprintf("level = %d", level)
}

// DocumentID khóa chính của document: mã hành chính chỉ duy nhất trong cùng cấp
func DocumentID(u models.AdminUnit) string {
	return fmt.Sprintf("%d-%s", u.Level, u.Code)
}

// toDocument chuyển đơn vị hành chính sang document Meilisearch
func toDocument(u models.AdminUnit) map[string]interface{} {
	normalized := u.NormalizedName
	if normalized == "" {
		normalized = normalizer.ToASCII(u.Name)
	}
	aliases := make([]string, 0, len(u.Aliases))
	for _, a := range u.Aliases {
		if a = strings.TrimSpace(a); a != "" {
			aliases = append(aliases, a)
		}
	}
	return map[string]interface{}{
		"id":              DocumentID(u),
		"code":            u.Code,
		"parent_code":     u.ParentCode,
		"level":           u.Level,
		"level_name":      models.LevelName(u.Level),
		"name":            u.Name,
		"normalized_name": normalized,
		"status":          u.Status,
		"aliases":         aliases,
	}
}

// parseHits đọc các hit trả về thành AdminUnit
func parseHits(hits []interface{}) []models.AdminUnit {
	units := make([]models.AdminUnit, 0, len(hits))
	for _, hit := range hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}

		unit := models.AdminUnit{}
		if code, ok := hitMap["code"].(string); ok {
			unit.Code = code
		}
		if parent, ok := hitMap["parent_code"].(string); ok {
			unit.ParentCode = parent
		}
		if name, ok := hitMap["name"].(string); ok {
			unit.Name = name
		}
		if normalizedName, ok := hitMap["normalized_name"].(string); ok {
			unit.NormalizedName = normalizedName
		}
		if status, ok := hitMap["status"].(string); ok {
			unit.Status = status
		}
		if level, ok := hitMap["level"].(float64); ok {
			unit.Level = int(level)
		}
		if aliasesSlice, ok := hitMap["aliases"].([]interface{}); ok {
			for _, alias := range aliasesSlice {
				if aliasStr, ok := alias.(string); ok {
					unit.Aliases = append(unit.Aliases, aliasStr)
				}
			}
		}
		if unit.Name == "" {
			continue
		}
		units = append(units, unit)
	}
	return units
}
