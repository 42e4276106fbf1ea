package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
)

// vietnamBounds khung tọa độ lãnh thổ đất liền và đảo ven bờ (lon, lat)
var vietnamBounds = geom.NewBounds(geom.XY).Set(102.1, 8.1, 109.5, 23.4)

// pyListItem phần tử trong list kiểu Python: ['a', "b"]
var pyListItem = regexp.MustCompile(`'([^']*)'|"([^"]*)"`)

// MainInfoItem một dòng trong khối thông tin chính của tin đăng
type MainInfoItem struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Ext   string `json:"ext,omitempty"`
}

// RawListing tin đăng thô từ bộ thu thập. Chỉ URL là bắt buộc.
type RawListing struct {
	URL          string            `json:"url"`
	Title        string            `json:"title,omitempty"`
	Description  string            `json:"description,omitempty"`
	ShortAddress string            `json:"short_address,omitempty"`
	AddressParts []string          `json:"address_parts,omitempty"` // breadcrumb: [loại tin, tỉnh, quận, "... tại phường X"]
	MainInfo     []MainInfoItem    `json:"main_info,omitempty"`
	OtherInfo    map[string]string `json:"other_info,omitempty"`
	Latitude     *float64          `json:"latitude,omitempty"`
	Longitude    *float64          `json:"longitude,omitempty"`
	ImageURLs    []string          `json:"image_urls,omitempty"`
}

// rawListingJSON các trường linh hoạt được giữ dạng thô để decode từng trường
type rawListingJSON struct {
	URL          string          `json:"url"`
	Title        json.RawMessage `json:"title"`
	Description  json.RawMessage `json:"description"`
	ShortAddress json.RawMessage `json:"short_address"`
	AddressParts json.RawMessage `json:"address_parts"`
	MainInfo     json.RawMessage `json:"main_info"`
	OtherInfo    json.RawMessage `json:"other_info"`
	Latitude     json.RawMessage `json:"latitude"`
	Longitude    json.RawMessage `json:"longitude"`
	ImageURLs    json.RawMessage `json:"image_urls"`
}

// UnmarshalJSON decode mềm: trường hỏng trở thành rỗng thay vì làm hỏng cả bản ghi.
// Trường là chuỗi JSON lồng (xuất từ CSV) được decode tại chỗ.
func (l *RawListing) UnmarshalJSON(data []byte) error {
	var raw rawListingJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*l = RawListing{
		URL:          strings.TrimSpace(raw.URL),
		Title:        decodeText(raw.Title),
		Description:  decodeText(raw.Description),
		ShortAddress: decodeText(raw.ShortAddress),
		AddressParts: decodeStrings(raw.AddressParts),
		MainInfo:     decodeMainInfo(raw.MainInfo),
		OtherInfo:    decodeOtherInfo(raw.OtherInfo),
		ImageURLs:    decodeStrings(raw.ImageURLs),
	}
	l.SetCoordinates(decodeFloat(raw.Latitude), decodeFloat(raw.Longitude))
	return nil
}

// SetCoordinates gán tọa độ; cặp tọa độ nằm ngoài lãnh thổ bị coi là hỏng (nil)
func (l *RawListing) SetCoordinates(lat, lon *float64) {
	l.Latitude, l.Longitude = nil, nil
	if lat == nil || lon == nil {
		return
	}
	if !vietnamBounds.OverlapsPoint(geom.XY, geom.Coord{*lon, *lat}) {
		return
	}
	l.Latitude, l.Longitude = lat, lon
}

// MainInfoValue trả về value của dòng main_info có title tương ứng
func (l *RawListing) MainInfoValue(title string) (string, bool) {
	for _, it := range l.MainInfo {
		if strings.EqualFold(strings.TrimSpace(it.Title), title) && strings.TrimSpace(it.Value) != "" {
			return strings.TrimSpace(it.Value), true
		}
	}
	return "", false
}

// MainInfoExt trả về ext của dòng main_info có title tương ứng
func (l *RawListing) MainInfoExt(title string) (string, bool) {
	for _, it := range l.MainInfo {
		if strings.EqualFold(strings.TrimSpace(it.Title), title) && strings.TrimSpace(it.Ext) != "" {
			return strings.TrimSpace(it.Ext), true
		}
	}
	return "", false
}

// OtherInfoValue trả về giá trị other_info theo nhãn
func (l *RawListing) OtherInfoValue(label string) (string, bool) {
	v, ok := l.OtherInfo[label]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// ListingRecord một dòng CSV xuất từ bộ thu thập: các trường cấu trúc là chuỗi JSON
type ListingRecord struct {
	URL          string `csv:"url"`
	Title        string `csv:"title,omitempty"`
	Description  string `csv:"description,omitempty"`
	ShortAddress string `csv:"short_address,omitempty"`
	AddressParts string `csv:"address_parts,omitempty"`
	MainInfo     string `csv:"main_info,omitempty"`
	OtherInfo    string `csv:"other_info,omitempty"`
	Latitude     string `csv:"latitude,omitempty"`
	Longitude    string `csv:"longitude,omitempty"`
	ImageURLs    string `csv:"image_urls,omitempty"`
}

// Listing chuyển dòng CSV thành RawListing với cùng quy tắc decode mềm
func (r ListingRecord) Listing() RawListing {
	l := RawListing{
		URL:          strings.TrimSpace(r.URL),
		Title:        r.Title,
		Description:  r.Description,
		ShortAddress: r.ShortAddress,
		AddressParts: stringsFromText(r.AddressParts),
		MainInfo:     decodeMainInfo(quote(r.MainInfo)),
		OtherInfo:    decodeOtherInfo(quote(r.OtherInfo)),
		ImageURLs:    stringsFromText(r.ImageURLs),
	}
	l.SetCoordinates(floatFromText(r.Latitude), floatFromText(r.Longitude))
	return l
}

func quote(s string) json.RawMessage {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	b, _ := json.Marshal(s)
	return b
}

// unwrapString nếu raw là chuỗi JSON thì trả về nội dung chuỗi
func unwrapString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) > 0 && raw[0] == '"' && json.Unmarshal(raw, &s) == nil {
		return s, true
	}
	return "", false
}

// unwrap decode chuỗi JSON lồng: "\"[{...}]\"" → [{...}]
func unwrap(raw json.RawMessage) json.RawMessage {
	if s, ok := unwrapString(raw); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		return json.RawMessage(s)
	}
	return raw
}

func isNull(raw json.RawMessage) bool {
	t := strings.TrimSpace(string(raw))
	return t == "" || t == "null"
}

func decodeText(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	if s, ok := unwrapString(raw); ok {
		return s
	}
	return strings.Trim(string(raw), `"`)
}

func decodeStrings(raw json.RawMessage) []string {
	if isNull(raw) {
		return nil
	}
	if s, ok := unwrapString(raw); ok {
		return stringsFromText(s)
	}
	var list []any
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil
	}
	return compactStrings(list)
}

// stringsFromText đọc list từ chuỗi: JSON array, list kiểu Python, hoặc một giá trị đơn
func stringsFromText(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" || s == "[]" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var list []any
		if err := json.Unmarshal([]byte(s), &list); err == nil {
			return compactStrings(list)
		}
		var out []string
		for _, m := range pyListItem.FindAllStringSubmatch(s, -1) {
			v := strings.TrimSpace(m[1] + m[2])
			if v != "" {
				out = append(out, v)
			}
		}
		return out
	}
	return []string{s}
}

func compactStrings(list []any) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v == nil {
			continue
		}
		s := strings.TrimSpace(fmt.Sprint(v))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func decodeMainInfo(raw json.RawMessage) []MainInfoItem {
	raw = unwrap(raw)
	if isNull(raw) {
		return nil
	}
	var items []map[string]any
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]MainInfoItem, 0, len(items))
	for _, it := range items {
		out = append(out, MainInfoItem{
			Title: anyString(it["title"]),
			Value: anyString(it["value"]),
			Ext:   anyString(it["ext"]),
		})
	}
	return out
}

func decodeOtherInfo(raw json.RawMessage) map[string]string {
	raw = unwrap(raw)
	if isNull(raw) {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if s := anyString(v); s != "" {
			out[strings.TrimSpace(k)] = s
		}
	}
	return out
}

func anyString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

func decodeFloat(raw json.RawMessage) *float64 {
	if isNull(raw) {
		return nil
	}
	if s, ok := unwrapString(raw); ok {
		return floatFromText(s)
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil
	}
	return &f
}

func floatFromText(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
