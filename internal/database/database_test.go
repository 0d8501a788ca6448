package database

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		cfg        Config
		wantDriver string
		wantPart   string
		wantErr    bool
	}{
		{Config{Driver: DriverPostgres, Host: "db", Port: "5432", DBName: "rims", SSLMode: "disable"}, "pgx", "dbname=rims", false},
		{Config{Driver: DriverMySQL, Host: "db", Port: "3306", User: "u", Password: "p", DBName: "rims"}, "mysql", "u:p@tcp(db:3306)/rims?parseTime=true", false},
		{Config{Driver: DriverSQLite, Path: "/tmp/x.db"}, "sqlite3", "_txlock=immediate", false},
		{Config{Driver: "oracle"}, "", "", true},
	}
	for _, tt := range tests {
		driver, dsn, err := DSN(&tt.cfg)
		if (err != nil) != tt.wantErr {
			t.Fatalf("DSN(%s) err = %v", tt.cfg.Driver, err)
		}
		if driver != tt.wantDriver || !strings.Contains(dsn, tt.wantPart) {
			t.Errorf("DSN(%s) = %s %s", tt.cfg.Driver, driver, dsn)
		}
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	db, err := NewDatabase(&Config{Driver: DriverSQLite, Path: filepath.Join(t.TempDir(), "m.db")})
	if err != nil {
		t.Fatalf("NewDatabase: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := Migrate(ctx, db); err != nil {
			t.Fatalf("Migrate #%d: %v", i+1, err)
		}
	}
	if got := ForUpdate(db); got != "" {
		t.Errorf("ForUpdate on sqlite = %q, want empty", got)
	}
}
