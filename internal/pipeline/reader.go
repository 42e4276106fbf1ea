package pipeline

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/listing-cleaner/app/models"
)

// Định dạng file được hỗ trợ
const (
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
	FormatCSV   = "csv"
	FormatXLSX  = "xlsx"
)

// maxLineSize giới hạn một dòng JSONL (mô tả tin đăng có thể rất dài)
const maxLineSize = 16 << 20

// FormatOf suy ra định dạng từ phần mở rộng của file
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", eris.Errorf("unsupported file format: %s", path)
}

// ReadListings đọc tin đăng thô từ JSON (mảng hoặc JSON Lines), CSV hoặc XLSX xuất từ bộ thu thập
func ReadListings(path string) ([]models.RawListing, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatJSON, FormatJSONL:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, eris.Wrapf(err, "read listings %s", path)
		}
		return DecodeListings(data)
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open listings %s", path)
		}
		defer f.Close()
		return decodeListingRecords(csv.NewReader(f))
	default:
		rows, err := readXLSX(path)
		if err != nil {
			return nil, err
		}
		return decodeListingRecords(&sliceReader{rows: rows})
	}
}

// DecodeListings decode mảng JSON hoặc JSON Lines
func DecodeListings(data []byte) ([]models.RawListing, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var listings []models.RawListing
		if err := json.Unmarshal(trimmed, &listings); err != nil {
			return nil, eris.Wrap(err, "decode listing array")
		}
		return listings, nil
	}

	var listings []models.RawListing
	sc := bufio.NewScanner(bytes.NewReader(trimmed))
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 {
			continue
		}
		var l models.RawListing
		if err := json.Unmarshal(b, &l); err != nil {
			return nil, eris.Wrapf(err, "decode listing at line %d", line)
		}
		listings = append(listings, l)
	}
	if err := sc.Err(); err != nil {
		return nil, eris.Wrap(err, "scan json lines")
	}
	return listings, nil
}

func decodeListingRecords(r csvutil.Reader) ([]models.RawListing, error) {
	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "read listing header")
	}

	var listings []models.RawListing
	for {
		var rec models.ListingRecord
		if err := dec.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return nil, eris.Wrapf(err, "decode listing row %d", len(listings)+1)
		}
		listings = append(listings, rec.Listing())
	}
	return listings, nil
}

// ReadRows đọc lại file kết quả đã làm sạch (CSV hoặc XLSX) cho giai đoạn tính đặc trưng
func ReadRows(path string) ([]models.OutputRow, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}

	var r csvutil.Reader
	switch format {
	case FormatCSV:
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrapf(err, "open cleaned rows %s", path)
		}
		defer f.Close()
		r = csv.NewReader(f)
	case FormatXLSX:
		rows, err := readXLSX(path)
		if err != nil {
			return nil, err
		}
		r = &sliceReader{rows: rows}
	default:
		return nil, eris.Errorf("cleaned rows must be csv or xlsx: %s", path)
	}

	dec, err := csvutil.NewDecoder(r)
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "read cleaned header")
	}
	var rows []models.OutputRow
	for {
		var row models.OutputRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				break
			}
			return nil, eris.Wrapf(err, "decode cleaned row %d", len(rows)+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readXLSX đọc sheet đầu tiên thành các dòng chuỗi
func readXLSX(path string) ([][]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "xlsx: open file %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("xlsx: %s has no sheets", path)
	}

	var rows [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		cells := make([]string, len(row.Cells))
		for j, cell := range row.Cells {
			cells[j] = cell.String()
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// sliceReader cho phép csvutil.Decoder đọc các dòng đã có trong bộ nhớ (từ XLSX)
type sliceReader struct {
	rows [][]string
	pos  int
}

// Read implements csvutil.Reader
func (r *sliceReader) Read() ([]string, error) {
	if r.pos >= len(r.rows) {
		return nil, io.EOF
	}
	row := r.rows[r.pos]
	r.pos++
	if r.pos > 1 && len(r.rows[0]) > len(row) {
		// ô trống cuối dòng không được lưu trong XLSX
		padded := make([]string, len(r.rows[0]))
		copy(padded, row)
		row = padded
	}
	return row, nil
}
