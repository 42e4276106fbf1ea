package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"

	"github.com/listing-cleaner/app/models"
)

// ListingFingerprint khóa nội dung của tin đăng: URL cùng mọi trường ảnh hưởng tới kết quả
// làm sạch. Tin đăng lại cùng URL nhưng đổi giá hay mô tả cho khóa khác.
func ListingFingerprint(l models.RawListing) string {
	h := sha256.New()
	write := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0x1F})
	}
	coord := func(v *float64) string {
		if v == nil {
			return "-"
		}
		return strconv.FormatFloat(*v, 'g', -1, 64)
	}

	write(l.URL)
	write(l.Title)
	write(l.Description)
	write(l.ShortAddress)
	for _, p := range l.AddressParts {
		write(p)
	}
	h.Write([]byte{0x1E})
	for _, it := range l.MainInfo {
		write(it.Title)
		write(it.Value)
		write(it.Ext)
	}
	h.Write([]byte{0x1E})
	keys := make([]string, 0, len(l.OtherInfo))
	for k := range l.OtherInfo {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		write(k)
		write(l.OtherInfo[k])
	}
	h.Write([]byte{0x1E})
	write(coord(l.Latitude))
	write(coord(l.Longitude))
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}
