package database

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Dialect captures what differs between the SQL backends so stores hold one
// implementation instead of branching on the driver at every call site.
// Queries are written with PostgreSQL $N placeholders and passed through Rebind.
type Dialect interface {
	// Name is the config value (DB_DRIVER) and the migrations subdirectory.
	Name() string
	// DriverName is the database/sql driver registered by the import.
	DriverName() string
	Rebind(query string) string
	// ILike is the case-insensitive LIKE operator.
	ILike() string
	IsUniqueViolation(err error) bool
	// TimeArg encodes a timestamp for a query argument.
	TimeArg(t time.Time) any
	// DateArg encodes a calendar date (no time of day) for a query argument.
	DateArg(t time.Time) any
}

// DialectFor returns the dialect for a DB_DRIVER value.
func DialectFor(name string) (Dialect, error) {
	switch name {
	case "postgres":
		return Postgres{}, nil
	case "sqlite":
		return SQLite{}, nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", name)
	}
}

// Postgres is served by pgx through its database/sql adapter.
type Postgres struct{}

func (Postgres) Name() string               { return "postgres" }
func (Postgres) DriverName() string         { return "pgx" }
func (Postgres) Rebind(query string) string { return query }
func (Postgres) ILike() string              { return "ILIKE" }
func (Postgres) TimeArg(t time.Time) any    { return t.UTC() }
func (Postgres) DateArg(t time.Time) any    { return t.UTC().Format(time.DateOnly) }

func (Postgres) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

// SQLite is served by the pure Go modernc driver. Timestamps are stored as fixed-width
// UTC text so lexical order matches time order.
type SQLite struct{}

// sqliteTimeLayout is RFC 3339 with a fixed nine-digit fraction.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite" }
func (SQLite) ILike() string      { return "LIKE" }

// Rebind turns $N into ?N, which SQLite binds positionally.
func (SQLite) Rebind(query string) string {
	return strings.ReplaceAll(query, "$", "?")
}

func (SQLite) TimeArg(t time.Time) any { return t.UTC().Format(sqliteTimeLayout) }
func (SQLite) DateArg(t time.Time) any { return t.UTC().Format(time.DateOnly) }

func (SQLite) IsUniqueViolation(err error) bool {
	var sqlErr *sqlite.Error
	if errors.As(err, &sqlErr) {
		code := sqlErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return true
		}
	}
	// Without extended result codes only the message tells UNIQUE apart from CHECK.
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// ScanTime converts a scanned timestamp or date column into time.Time.
// pgx yields time.Time; SQLite yields the text written by TimeArg or DateArg.
func ScanTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), nil
	case string:
		return parseTimeText(t)
	case []byte:
		return parseTimeText(string(t))
	default:
		return time.Time{}, fmt.Errorf("unsupported time column type %T", v)
	}
}

// ScanNullTime is ScanTime for nullable columns; nil maps to nil.
func ScanNullTime(v any) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}
	t, err := ScanTime(v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseTimeText(s string) (time.Time, error) {
	for _, layout := range []string{sqliteTimeLayout, time.RFC3339Nano, time.DateOnly, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}
