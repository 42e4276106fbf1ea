package standardizer

import (
	"context"
	"database/sql"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/listing-cleaner/app/models"
)

// Driver SQL được hỗ trợ
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// Bảng dữ liệu hành chính; file dump chỉ chứa câu INSERT nên bảng được tạo trước
const createTablesSQL = `
CREATE TABLE IF NOT EXISTS provinces (name TEXT, code TEXT, status TEXT);
CREATE TABLE IF NOT EXISTS districts (name TEXT, code TEXT, province_code TEXT, status TEXT);
CREATE TABLE IF NOT EXISTS wards (name TEXT, code TEXT, district_code TEXT, status TEXT);
`

// SQLSource đọc dữ liệu tham chiếu qua database/sql.
// Với sqlite, DSN mặc định ":memory:" và Scripts là các file dump INSERT được chạy trước khi đọc.
// Với pgx, bảng provinces/districts/wards đã có sẵn trong database.
type SQLSource struct {
	Driver    string
	DSN       string
	Scripts   []string
	SkipWards bool
}

// Load implements Source
func (s SQLSource) Load(ctx context.Context) (*Reference, error) {
	driver, dsn := s.Driver, s.DSN
	if driver == "" {
		driver = DriverSQLite
	}
	if driver == DriverSQLite && dsn == "" {
		dsn = ":memory:"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s database", driver)
	}
	defer db.Close()
	// database in-memory chỉ tồn tại trong một connection
	db.SetMaxOpenConns(1)

	if driver == DriverSQLite {
		if _, err := db.ExecContext(ctx, createTablesSQL); err != nil {
			return nil, eris.Wrap(err, "create reference tables")
		}
		for _, path := range s.Scripts {
			if err := execScript(ctx, db, path); err != nil {
				return nil, err
			}
		}
	}

	ref := &Reference{}
	if ref.Provinces, err = queryUnits(ctx, db, `SELECT name, code, '' AS parent, status FROM provinces`, models.LevelProvince); err != nil {
		return nil, eris.Wrap(err, "query provinces")
	}
	if ref.Districts, err = queryUnits(ctx, db, `SELECT name, code, province_code, status FROM districts`, models.LevelDistrict); err != nil {
		return nil, eris.Wrap(err, "query districts")
	}
	if !s.SkipWards {
		if ref.Wards, err = queryUnits(ctx, db, `SELECT name, code, district_code, status FROM wards`, models.LevelWard); err != nil {
			return nil, eris.Wrap(err, "query wards")
		}
	}
	return ref, nil
}

// execScript chạy một file dump. Dump MySQL escape dấu nháy bằng \' nên được đổi sang ''.
func execScript(ctx context.Context, db *sql.DB, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return eris.Wrapf(err, "read sql dump %s", path)
	}
	script := strings.ReplaceAll(string(data), `\'`, `''`)
	if _, err := db.ExecContext(ctx, script); err != nil {
		return eris.Wrapf(err, "execute sql dump %s", path)
	}
	return nil
}

func queryUnits(ctx context.Context, db *sql.DB, query string, level int) ([]models.AdminUnit, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var units []models.AdminUnit
	for rows.Next() {
		var name, code, parent, status sql.NullString
		if err := rows.Scan(&name, &code, &parent, &status); err != nil {
			return nil, err
		}
		units = append(units, models.AdminUnit{
			Code:       code.String,
			ParentCode: parent.String,
			Level:      level,
			Name:       name.String,
			Status:     status.String,
		})
	}
	return units, rows.Err()
}
