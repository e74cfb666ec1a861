package database

import (
	"strings"
	"testing"
)

func TestConfigDSN(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5432", User: "spac", Password: "pw", DBName: "spacos", SSLMode: "require"}
	want := "host=db port=5432 user=spac password=pw dbname=spacos sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

func TestConfigMigrationURLEscapesPassword(t *testing.T) {
	cfg := &Config{Host: "db", Port: "5432", User: "spac", Password: "p@ss/word", DBName: "spacos", SSLMode: "disable"}
	got := cfg.MigrationURL()
	if !strings.HasPrefix(got, "postgres://spac:") {
		t.Fatalf("unexpected scheme/user in %q", got)
	}
	if strings.Contains(got, "p@ss/word") {
		t.Errorf("password was not escaped: %q", got)
	}
	if !strings.HasSuffix(got, "@db:5432/spacos?sslmode=disable") {
		t.Errorf("unexpected host/path/query in %q", got)
	}
}
