package repositories

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/giovaniif/instrument-closet/domain/category"
	"github.com/giovaniif/instrument-closet/domain/instrument"
	"github.com/giovaniif/instrument-closet/domain/reservation"
	"github.com/giovaniif/instrument-closet/domain/user"
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

//go:embed migrations/*/*.sql
var migrationsFS embed.FS

// SQL backs every repository with one database/sql handle. Queries are
// written with ? placeholders and rebound for Postgres.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	tracer  trace.Tracer
}

func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	return &SQL{db: db, dialect: dialect, tracer: otel.Tracer("instrument-closet/sql")}
}

// OpenSQL opens Postgres through lib/pq or a SQLite file through modernc.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQL, error) {
	var db *sql.DB
	var err error
	switch dialect {
	case Postgres:
		db, err = sql.Open("postgres", dsn)
	case SQLite:
		db, err = sql.Open("sqlite", sqliteDSN(dsn))
		if err == nil {
			db.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unknown sql dialect %q", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}
	return NewSQL(db, dialect), nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

func (s *SQL) DB() *sql.DB { return s.db }

func (s *SQL) Dialect() Dialect { return s.dialect }

func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *SQL) Close() error { return s.db.Close() }

func (s *SQL) Instruments() *InstrumentSQL   { return &InstrumentSQL{s} }
func (s *SQL) Reservations() *ReservationSQL { return &ReservationSQL{s} }
func (s *SQL) Categories() *CategorySQL      { return &CategorySQL{s} }
func (s *SQL) Users() *UserSQL               { return &UserSQL{s} }

// Migrate applies the embedded migrations for the dialect in file-name order.
// Applied versions are recorded so reruns are no-ops.
func (s *SQL) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY)`); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	dir := "migrations/" + string(s.dialect)
	entries, err := migrationsFS.ReadDir(dir)
	if err != nil {
		return err
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)

	for _, name := range files {
		var applied int
		if err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM schema_migrations WHERE version = ?`), name).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied > 0 {
			continue
		}
		body, err := migrationsFS.ReadFile(dir + "/" + name)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "applying migration", "dialect", s.dialect, "file", name)
		if err := s.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(body)); err != nil {
				return err
			}
			_, err := tx.ExecContext(ctx, s.rebind(`INSERT INTO schema_migrations (version) VALUES (?)`), name)
			return err
		}); err != nil {
			return fmt.Errorf("migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// rebind turns ? placeholders into $1..$n for Postgres.
func (s *SQL) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQL) start(ctx context.Context, operation string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "sql "+operation, trace.WithAttributes(
		attribute.String("db.system", string(s.dialect)),
		attribute.String("db.operation", operation),
	))
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		// the low byte is the primary result code whether or not extended codes are on
		return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(sqliteErr.Error(), "UNIQUE")
	}
	return false
}

var (
	_ instrument.Repository  = (*InstrumentSQL)(nil)
	_ reservation.Repository = (*ReservationSQL)(nil)
	_ category.Repository    = (*CategorySQL)(nil)
	_ user.Repository        = (*UserSQL)(nil)
)
