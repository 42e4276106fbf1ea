package pipeline

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/listing-cleaner/app/models"
)

// sheetName tên sheet kết quả
const sheetName = "listings"

// WriteRows ghi kết quả theo định dạng suy ra từ phần mở rộng (csv hoặc xlsx)
func WriteRows(path string, rows []models.OutputRow) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		if err := EncodeCSV(f, rows); err != nil {
			f.Close()
			return err
		}
		return eris.Wrapf(f.Close(), "close %s", path)
	case FormatXLSX:
		return writeXLSX(path, rows)
	}
	return eris.Errorf("output must be csv or xlsx: %s", path)
}

// EncodeCSV ghi header theo models.OutputColumns rồi từng dòng
func EncodeCSV(w io.Writer, rows []models.OutputRow) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)
	if err := enc.EncodeHeader(models.OutputRow{}); err != nil {
		return eris.Wrap(err, "encode csv header")
	}
	for i := range rows {
		if err := enc.Encode(rows[i]); err != nil {
			return eris.Wrapf(err, "encode csv row %d", i+1)
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "flush csv")
}

// MarshalCSV trả về nội dung CSV của các dòng (dùng cho API)
func MarshalCSV(rows []models.OutputRow) ([]byte, error) {
	var buf bytes.Buffer
	if err := EncodeCSV(&buf, rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeXLSX(path string, rows []models.OutputRow) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrap(err, "xlsx: add sheet")
	}

	header := sheet.AddRow()
	for _, col := range models.OutputColumns {
		header.AddCell().SetString(col)
	}
	for i := range rows {
		row := sheet.AddRow()
		for _, v := range rows[i].Values() {
			cell := row.AddCell()
			switch val := v.(type) {
			case string:
				cell.SetString(val)
			case int:
				cell.SetInt(val)
			case float64:
				cell.SetFloat(val)
			}
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "xlsx: save %s", path)
	}
	return nil
}
