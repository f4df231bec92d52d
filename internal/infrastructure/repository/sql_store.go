package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huandu/go-sqlbuilder"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"archie-shopify-sync/internal/infrastructure/repository/migrations"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// SQLStore owns the connection pool for the synced entities and run history
type SQLStore struct {
	db     *sqlx.DB
	flavor sqlbuilder.Flavor
	driver string
	dsn    string
	logger zerolog.Logger
}

// OpenSQLStore connects to postgres or sqlite. For sqlite the DSN is a file
// path; busy timeout and foreign keys are enabled on it.
func OpenSQLStore(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*SQLStore, error) {
	var flavor sqlbuilder.Flavor
	switch driver {
	case DriverPostgres:
		flavor = sqlbuilder.PostgreSQL
	case DriverSQLite:
		flavor = sqlbuilder.SQLite
		dsn = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == DriverSQLite {
		// a single writer avoids SQLITE_BUSY between concurrent runs
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logger.Info().Str("driver", driver).Msg("Connected to database")
	return &SQLStore{db: db, flavor: flavor, driver: driver, dsn: dsn, logger: logger}, nil
}

func sqliteDSN(path string) string {
	if strings.Contains(path, "_pragma=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// DB exposes the pool for health checks
func (s *SQLStore) DB() *sqlx.DB {
	return s.db
}

// Driver returns the driver name the store was opened with
func (s *SQLStore) Driver() string {
	return s.driver
}

// Close closes the pool
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// Migrate applies all pending up migrations. It runs on its own connection
// because closing the migrate instance closes the database it was given.
func (s *SQLStore) Migrate() error {
	src, err := iofs.New(migrations.FS, s.driver)
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	conn, err := sql.Open(s.driver, s.dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}

	var driver database.Driver
	switch s.driver {
	case DriverPostgres:
		driver, err = migratepostgres.WithInstance(conn, &migratepostgres.Config{})
	case DriverSQLite:
		driver, err = migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	}
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, s.driver, driver)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	m.Log = migrationLogger{logger: s.logger}
	defer m.Close()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			s.logger.Info().Msg("Database schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read migration version: %w", err)
	}
	s.logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("Migrations applied")
	return nil
}

type migrationLogger struct {
	logger zerolog.Logger
}

func (l migrationLogger) Printf(format string, v ...any) {
	l.logger.Debug().Msgf(strings.TrimSpace(format), v...)
}

func (l migrationLogger) Verbose() bool {
	return false
}

// Shops returns the shop profile repository
func (s *SQLStore) Shops() *SQLShopRepository {
	return &SQLShopRepository{db: s.db, flavor: s.flavor}
}

// Products returns the product and variant repository
func (s *SQLStore) Products() *SQLProductRepository {
	return &SQLProductRepository{db: s.db, flavor: s.flavor}
}

// Customers returns the customer repository
func (s *SQLStore) Customers() *SQLCustomerRepository {
	return &SQLCustomerRepository{db: s.db, flavor: s.flavor}
}

// Orders returns the order and line item repository
func (s *SQLStore) Orders() *SQLOrderRepository {
	return &SQLOrderRepository{db: s.db, flavor: s.flavor}
}

// SyncRuns returns the run history repository
func (s *SQLStore) SyncRuns() *SQLSyncRunRepository {
	return &SQLSyncRunRepository{db: s.db, flavor: s.flavor}
}

// Lookup returns the natural key lookup used by the relationship resolver
func (s *SQLStore) Lookup() *SQLNaturalKeyLookup {
	return &SQLNaturalKeyLookup{db: s.db, flavor: s.flavor}
}

// querier is satisfied by both *sqlx.DB and *sqlx.Tx
type querier interface {
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// insertReturningID inserts one row and returns its generated id
func insertReturningID(ctx context.Context, q querier, flavor sqlbuilder.Flavor, table string, cols []string, values []interface{}) (int64, error) {
	ib := flavor.NewInsertBuilder()
	ib.InsertInto(table)
	ib.Cols(cols...)
	ib.Values(values...)
	ib.SQL("RETURNING id")

	query, args := ib.Build()
	var id int64
	if err := q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// updateByID overwrites every column except created_at on the row with id
func updateByID(ctx context.Context, q querier, flavor sqlbuilder.Flavor, table string, id int64, cols []string, values []interface{}) error {
	ub := flavor.NewUpdateBuilder()
	ub.Update(table)
	assignments := make([]string, 0, len(cols))
	for i, col := range cols {
		if col == "created_at" {
			continue
		}
		assignments = append(assignments, ub.Assign(col, values[i]))
	}
	ub.Set(assignments...)
	ub.Where(ub.Equal("id", id))

	query, args := ub.Build()
	res, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s row %d not found", table, id)
	}
	return nil
}

func withID(cols []string) []string {
	return append([]string{"id"}, cols...)
}
