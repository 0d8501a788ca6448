package database

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite3"
)

//go:embed schema.sql
var schema string

type Config struct {
	Driver          string
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// NewDatabase opens and pings a pool for the configured driver.
func NewDatabase(cfg *Config) (*sqlx.DB, error) {
	driverName, dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	return db, nil
}

// DSN returns the database/sql driver name and connection string for cfg.
func DSN(cfg *Config) (string, string, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return "pgx", fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode), nil
	case DriverMySQL:
		return "mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName), nil
	case DriverSQLite:
		// _txlock=immediate takes the write lock at BEGIN, which is how sqlite serializes
		// writers in place of row-level locks.
		return "sqlite3", cfg.Path + "?_journal_mode=WAL&_busy_timeout=5000&_txlock=immediate&_foreign_keys=on", nil
	default:
		return "", "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// ForUpdate returns the pessimistic row-lock suffix for the connection's dialect.
// sqlite has no row locks; its immediate transactions already hold the database write lock.
func ForUpdate(q sqlx.ExtContext) string {
	if q.DriverName() == "sqlite3" {
		return ""
	}
	return " FOR UPDATE"
}

// Migrate applies the embedded schema. Every statement is idempotent.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
