package persist

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/relacore/relacore/internal/errors"
	"github.com/relacore/relacore/pkg/relation"
	"github.com/relacore/relacore/pkg/types"
)

// ExportSQLite materializes a table into a SQLite database file, creating
// (or replacing) a SQL table named after the relation and bulk-inserting all
// rows in one transaction.
func ExportSQLite(t *relation.Table, dbPath string) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "sqlite open failed", err)
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, t.Name())); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "sqlite drop failed", err)
	}
	if _, err := db.Exec(createTableSQL(t)); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "sqlite create failed", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "sqlite begin failed", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(t.Schema())), ",")
	stmt, err := tx.Prepare(fmt.Sprintf(`INSERT INTO %q VALUES (%s)`, t.Name(), placeholders))
	if err != nil {
		tx.Rollback()
		return errors.NewStorageError(errors.CodeUploadFailed, "sqlite prepare failed", err)
	}
	defer stmt.Close()

	for i := 0; i < t.Size(); i++ {
		row := t.Row(i)
		args := make([]interface{}, len(row))
		for j, v := range row {
			args[j] = sqliteArg(v)
		}
		if _, err := stmt.Exec(args...); err != nil {
			tx.Rollback()
			return errors.NewStorageError(errors.CodeUploadFailed, "sqlite insert failed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewStorageError(errors.CodeUploadFailed, "sqlite commit failed", err)
	}
	return nil
}

// createTableSQL maps the relation's schema and domain onto SQLite column
// declarations, declaring the primary key when the table has one.
func createTableSQL(t *relation.Table) string {
	schema := t.Schema()
	domain := t.Domain()

	cols := make([]string, len(schema))
	for i, a := range schema {
		cols[i] = fmt.Sprintf("%q %s", a, sqliteType(domain[i]))
	}

	if key := t.Key(); len(key) > 0 {
		quoted := make([]string, len(key))
		for i, a := range key {
			quoted[i] = fmt.Sprintf("%q", a)
		}
		cols = append(cols, "PRIMARY KEY ("+strings.Join(quoted, ", ")+")")
	}
	return fmt.Sprintf(`CREATE TABLE %q (%s)`, t.Name(), strings.Join(cols, ", "))
}

func sqliteType(tag types.Type) string {
	switch tag {
	case types.Double:
		return "REAL"
	case types.Integer, types.Long:
		return "INTEGER"
	case types.TimeStamp:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// sqliteArg converts a value to a driver-friendly argument; missing
// sentinels become SQL NULL.
func sqliteArg(v types.Value) interface{} {
	if v.Missing() {
		return nil
	}
	switch x := v.(type) {
	case types.DoubleVal:
		return float64(x)
	case types.IntVal:
		return int64(x)
	case types.LongVal:
		return int64(x)
	case types.TimeVal:
		return time.Time(x)
	default:
		return v.String()
	}
}
