package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Hằng số cột đầu ra
const (
	TransactionStatusListed = "Rao bán"
	UnitPriceTypePerM2      = "đ/m2"
	LandUsePurposeResidence = "Đất ở"
	FeatureSeparator        = " | "
)

// Decimal số thực ghi ra CSV dạng thập phân thường ("3200000000", không dùng số mũ)
type Decimal float64

// MarshalCSV implements csvutil.Marshaler; nil ghi ra ô trống
func (d *Decimal) MarshalCSV() ([]byte, error) {
	if d == nil {
		return nil, nil
	}
	return []byte(strconv.FormatFloat(float64(*d), 'f', -1, 64)), nil
}

// UnmarshalCSV implements csvutil.Unmarshaler
func (d *Decimal) UnmarshalCSV(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*d = Decimal(v)
	return nil
}

// OutputRow dòng kết quả với thứ tự cột cố định
type OutputRow struct {
	Province          string   `csv:"Tỉnh/Thành phố"`
	District          string   `csv:"Thành phố/Quận/Huyện/Thị xã"`
	Ward              string   `csv:"Xã/Phường/Thị trấn"`
	Street            string   `csv:"Đường phố"`
	AddressDetail     string   `csv:"Chi tiết"`
	Source            string   `csv:"Nguồn thông tin"`
	TransactionStatus string   `csv:"Tình trạng giao dịch"`
	PublishedDate     string   `csv:"Thời điểm giao dịch/rao bán"`
	Contact           string   `csv:"Thông tin liên hệ"`
	Price             *Decimal `csv:"Giá rao bán/giao dịch"`
	EstimatedPrice    *Decimal `csv:"Giá ước tính"`
	UnitPriceType     string   `csv:"Loại đơn giá"`
	LandUnitPrice     *Decimal `csv:"Đơn giá đất"`
	BusinessAdvantage string   `csv:"Lợi thế kinh doanh"`
	NumFloors         *int     `csv:"Số tầng công trình"`
	FloorArea         *Decimal `csv:"Tổng diện tích sàn"`
	ConstructionCost  *Decimal `csv:"Đơn giá xây dựng"`
	BuildYear         string   `csv:"Năm xây dựng"`
	RemainingQuality  *Decimal `csv:"Chất lượng còn lại"`
	LandArea          *Decimal `csv:"Diện tích đất (m2)"`
	FacadeWidth       *Decimal `csv:"Kích thước mặt tiền (m)"`
	LandLength        *Decimal `csv:"Kích thước chiều dài (m)"`
	FacadeCount       *int     `csv:"Số mặt tiền tiếp giáp"`
	LandShape         string   `csv:"Hình dạng"`
	AlleyWidth        *Decimal `csv:"Độ rộng ngõ/ngách nhỏ nhất (m)"`
	DistanceToRoad    *Decimal `csv:"Khoảng cách tới trục đường chính (m)"`
	LandUsePurpose    string   `csv:"Mục đích sử dụng đất"`
	OtherFeatures     string   `csv:"Yếu tố khác"`
	Latitude          *Decimal `csv:"Tọa độ (vĩ độ)"`
	Longitude         *Decimal `csv:"Tọa độ (kinh độ)"`
	ImageURLs         string   `csv:"Hình ảnh của bài đăng"`
}

// OutputColumns tên cột theo đúng thứ tự của OutputRow
var OutputColumns = []string{
	"Tỉnh/Thành phố",
	"Thành phố/Quận/Huyện/Thị xã",
	"Xã/Phường/Thị trấn",
	"Đường phố",
	"Chi tiết",
	"Nguồn thông tin",
	"Tình trạng giao dịch",
	"Thời điểm giao dịch/rao bán",
	"Thông tin liên hệ",
	"Giá rao bán/giao dịch",
	"Giá ước tính",
	"Loại đơn giá",
	"Đơn giá đất",
	"Lợi thế kinh doanh",
	"Số tầng công trình",
	"Tổng diện tích sàn",
	"Đơn giá xây dựng",
	"Năm xây dựng",
	"Chất lượng còn lại",
	"Diện tích đất (m2)",
	"Kích thước mặt tiền (m)",
	"Kích thước chiều dài (m)",
	"Số mặt tiền tiếp giáp",
	"Hình dạng",
	"Độ rộng ngõ/ngách nhỏ nhất (m)",
	"Khoảng cách tới trục đường chính (m)",
	"Mục đích sử dụng đất",
	"Yếu tố khác",
	"Tọa độ (vĩ độ)",
	"Tọa độ (kinh độ)",
	"Hình ảnh của bài đăng",
}

func dec(v *float64) *Decimal {
	if v == nil {
		return nil
	}
	d := Decimal(*v)
	return &d
}

func undec(d *Decimal) *float64 {
	if d == nil {
		return nil
	}
	v := float64(*d)
	return &v
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewOutputRow dựng dòng kết quả từ thuộc tính; feats nil để trống các cột đặc trưng
func NewOutputRow(a ExtractedAttributes, feats *EngineeredFeatures) OutputRow {
	row := OutputRow{
		Province:          deref(a.Province),
		District:          deref(a.District),
		Ward:              deref(a.Ward),
		Street:            deref(a.Street),
		AddressDetail:     deref(a.AddressDetail),
		Source:            deref(a.URL),
		TransactionStatus: TransactionStatusListed,
		PublishedDate:     deref(a.PublishedDate),
		Price:             dec(a.Price),
		UnitPriceType:     UnitPriceTypePerM2,
		NumFloors:         a.NumFloors,
		FloorArea:         dec(a.FloorArea),
		ConstructionCost:  dec(a.ConstructionCost),
		RemainingQuality:  dec(a.RemainingQuality),
		LandArea:          dec(a.LandArea),
		FacadeWidth:       dec(a.FacadeWidth),
		LandLength:        dec(a.LandLength),
		FacadeCount:       a.FacadeCount,
		LandShape:         deref(a.LandShape),
		AlleyWidth:        dec(a.AlleyWidth),
		DistanceToRoad:    dec(a.DistanceToMainRoad),
		LandUsePurpose:    LandUsePurposeResidence,
		OtherFeatures:     strings.Join(a.OtherFeatures, FeatureSeparator),
		Latitude:          dec(a.Latitude),
		Longitude:         dec(a.Longitude),
	}
	if len(a.ImageURLs) > 0 {
		b, _ := json.Marshal(a.ImageURLs)
		row.ImageURLs = string(b)
	}
	if feats != nil {
		row.ApplyFeatures(*feats)
	}
	return row
}

// ApplyFeatures ghi các cột đặc trưng định giá
func (r *OutputRow) ApplyFeatures(f EngineeredFeatures) {
	r.EstimatedPrice = dec(f.EstimatedPrice)
	r.LandUnitPrice = dec(f.LandUnitPrice)
	r.BusinessAdvantage = f.BusinessAdvantage
	if f.FloorArea != nil {
		r.FloorArea = dec(f.FloorArea)
	}
}

// Attributes dựng lại thuộc tính từ dòng đã làm sạch (giai đoạn feature đọc lại file clean)
func (r *OutputRow) Attributes() ExtractedAttributes {
	a := ExtractedAttributes{
		Province:           StrPtr(r.Province),
		District:           StrPtr(r.District),
		Ward:               StrPtr(r.Ward),
		Street:             StrPtr(r.Street),
		AddressDetail:      StrPtr(r.AddressDetail),
		URL:                StrPtr(r.Source),
		PublishedDate:      StrPtr(r.PublishedDate),
		Price:              undec(r.Price),
		LandArea:           undec(r.LandArea),
		FacadeWidth:        undec(r.FacadeWidth),
		LandLength:         undec(r.LandLength),
		NumFloors:          r.NumFloors,
		FacadeCount:        r.FacadeCount,
		LandShape:          StrPtr(r.LandShape),
		AlleyWidth:         undec(r.AlleyWidth),
		DistanceToMainRoad: undec(r.DistanceToRoad),
		FloorArea:          undec(r.FloorArea),
		RemainingQuality:   undec(r.RemainingQuality),
		ConstructionCost:   undec(r.ConstructionCost),
		Latitude:           undec(r.Latitude),
		Longitude:          undec(r.Longitude),
	}
	if r.OtherFeatures != "" {
		a.OtherFeatures = strings.Split(r.OtherFeatures, FeatureSeparator)
	}
	if r.ImageURLs != "" {
		if err := json.Unmarshal([]byte(r.ImageURLs), &a.ImageURLs); err != nil {
			a.ImageURLs = []string{r.ImageURLs}
		}
	}
	return a
}

// Values trả về giá trị các cột theo thứ tự OutputColumns: nil, string, int hoặc float64
func (r *OutputRow) Values() []any {
	num := func(d *Decimal) any {
		if d == nil {
			return nil
		}
		return float64(*d)
	}
	integer := func(i *int) any {
		if i == nil {
			return nil
		}
		return *i
	}
	return []any{
		r.Province,
		r.District,
		r.Ward,
		r.Street,
		r.AddressDetail,
		r.Source,
		r.TransactionStatus,
		r.PublishedDate,
		r.Contact,
		num(r.Price),
		num(r.EstimatedPrice),
		r.UnitPriceType,
		num(r.LandUnitPrice),
		r.BusinessAdvantage,
		integer(r.NumFloors),
		num(r.FloorArea),
		num(r.ConstructionCost),
		r.BuildYear,
		num(r.RemainingQuality),
		num(r.LandArea),
		num(r.FacadeWidth),
		num(r.LandLength),
		integer(r.FacadeCount),
		r.LandShape,
		num(r.AlleyWidth),
		num(r.DistanceToRoad),
		r.LandUsePurpose,
		r.OtherFeatures,
		num(r.Latitude),
		num(r.Longitude),
		r.ImageURLs,
	}
}
