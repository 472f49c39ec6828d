package database

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, "pgx", d.DriverName())

	d, err = DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.DriverName())

	_, err = DialectFor("memory")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := `SELECT id FROM agents WHERE sa_id_no = $1 OR passport_no = $2 LIMIT $10`
	assert.Equal(t, q, Postgres{}.Rebind(q))
	assert.Equal(t, `SELECT id FROM agents WHERE sa_id_no = ?1 OR passport_no = ?2 LIMIT ?10`, SQLite{}.Rebind(q))
}

func TestPostgresUniqueViolation(t *testing.T) {
	assert.True(t, Postgres{}.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, Postgres{}.IsUniqueViolation(&pgconn.PgError{Code: "23514"}))
	assert.False(t, Postgres{}.IsUniqueViolation(errors.New("23505")))
}

func TestScanTime(t *testing.T) {
	ts := time.Date(2024, 5, 6, 7, 8, 9, 120000000, time.UTC)

	got, err := ScanTime(SQLite{}.TimeArg(ts))
	require.NoError(t, err)
	assert.True(t, ts.Equal(got))

	got, err = ScanTime([]byte("1980-01-01"))
	require.NoError(t, err)
	assert.Equal(t, time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = ScanTime(ts.In(time.FixedZone("SAST", 2*3600)))
	require.NoError(t, err)
	assert.Equal(t, time.UTC, got.Location())

	_, err = ScanTime(42)
	assert.Error(t, err)

	null, err := ScanNullTime(nil)
	require.NoError(t, err)
	assert.Nil(t, null)
}

func TestSQLiteTimeArgSortsLexically(t *testing.T) {
	a := SQLite{}.TimeArg(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).(string)
	b := SQLite{}.TimeArg(time.Date(2024, 1, 1, 0, 0, 0, 500, time.UTC)).(string)
	assert.Less(t, a, b)
}

func TestSQLiteUniqueViolation_MessageFallback(t *testing.T) {
	assert.True(t, SQLite{}.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: agents.sa_id_no (2067)")))
	assert.False(t, SQLite{}.IsUniqueViolation(errors.New("CHECK constraint failed")))
	assert.False(t, SQLite{}.IsUniqueViolation(nil))
}
