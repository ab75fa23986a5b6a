package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"filmorate/internal/domain"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Код ошибки PostgreSQL foreign_key_violation
const pgForeignKeyViolation = "23503"

// withTx выполняет fn в транзакции. Любая ошибка fn откатывает транзакцию.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// isForeignKeyViolation распознает нарушение внешнего ключа в PostgreSQL и SQLite.
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pgForeignKeyViolation
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		if liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
			return true
		}
		// без расширенных кодов остается только базовый SQLITE_CONSTRAINT
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT &&
			strings.Contains(liteErr.Error(), "FOREIGN KEY")
	}
	return false
}

// dbDate колонка DATE. PostgreSQL отдает time.Time, SQLite в зависимости
// от содержимого time.Time или строку, поэтому принимаем оба варианта.
type dbDate struct {
	time.Time
}

func (d *dbDate) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		d.Time = time.Time{}
		return nil
	case time.Time:
		d.Time = time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
		return nil
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported date value %T", src)
	}
}

func (d *dbDate) parse(s string) error {
	if len(s) > len(domain.DateLayout) {
		s = s[:len(domain.DateLayout)]
	}
	t, err := time.Parse(domain.DateLayout, s)
	if err != nil {
		return fmt.Errorf("failed to parse date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// Value пишет дату строкой YYYY-MM-DD, одинаково понятной обоим движкам.
func (d dbDate) Value() (driver.Value, error) {
	return d.Format(domain.DateLayout), nil
}

// exists проверяет наличие строки с данным ID. table и column только константы пакета.
func exists(ctx context.Context, q sqlx.ExtContext, table, column string, id int64) (bool, error) {
	var count int
	query := q.Rebind(fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, table, column))
	if err := sqlx.GetContext(ctx, q, &count, query, id); err != nil {
		return false, fmt.Errorf("failed to check %s existence: %w", table, err)
	}
	return count > 0, nil
}
