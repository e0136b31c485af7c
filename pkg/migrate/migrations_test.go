package migrate_test

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/hangout-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func assertContains(t *testing.T, content string, checks []string) {
	t.Helper()
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestVoucherMigrationContainsConstraints(t *testing.T) {
	assertContains(t, readMigration(t, "create_vouchers"), []string{
		"CREATE TABLE IF NOT EXISTS vouchers",
		"FOREIGN KEY (business_id) REFERENCES businesses(id) ON DELETE CASCADE",
		"CHECK (quantity >= 0)",
		"CHECK (percent > 0 AND percent <= 100)",
		"ux_vouchers_voucher_code",
		"DROP TABLE IF EXISTS vouchers",
	})
}

func TestAccountVoucherMigrationEnforcesOneGrantPerPair(t *testing.T) {
	assertContains(t, readMigration(t, "create_account_vouchers"), []string{
		"CREATE TABLE IF NOT EXISTS account_vouchers",
		"CONSTRAINT ux_account_vouchers_account_voucher UNIQUE (account_id, voucher_id)",
		"FOREIGN KEY (voucher_id) REFERENCES vouchers(id) ON DELETE CASCADE",
		"DROP TABLE IF EXISTS account_vouchers",
	})
}

func TestEventMigrationIndexesUpcomingLookups(t *testing.T) {
	assertContains(t, readMigration(t, "create_events"), []string{
		"CREATE TABLE IF NOT EXISTS events",
		"CREATE TABLE IF NOT EXISTS event_images",
		"idx_events_active_start ON events (active, start_date)",
		"FOREIGN KEY (event_id) REFERENCES events(id) ON DELETE CASCADE",
	})
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("ValidateDir: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20260101000000_init.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing down section error")
	}
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Voucher Index!")
	if err != nil {
		t.Fatalf("CreateSQLMigration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_voucher_index.sql") {
		t.Fatalf("unexpected path %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestEmbeddedMigrationsMatchDisk(t *testing.T) {
	if err := migrate.ValidateFS(migrate.Embedded()); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
	embedded, err := fs.Glob(migrate.Embedded(), "*.sql")
	if err != nil {
		t.Fatalf("glob embedded: %v", err)
	}
	onDisk, err := filepath.Glob(filepath.Join("migrations", "*.sql"))
	if err != nil {
		t.Fatalf("glob disk: %v", err)
	}
	if len(embedded) != len(onDisk) {
		t.Fatalf("embedded %d files, disk has %d", len(embedded), len(onDisk))
	}
}

func TestParseVersion(t *testing.T) {
	if v, err := migrate.ParseVersion("20260301120500"); err != nil || v != 20260301120500 {
		t.Fatalf("unexpected parse result %d %v", v, err)
	}
	for _, bad := range []string{"", "2026", "2026030112050x"} {
		if _, err := migrate.ParseVersion(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestSanitizeName(t *testing.T) {
	if got := migrate.SanitizeName("  Add -- Event Tags "); got != "add_event_tags" {
		t.Fatalf("unexpected sanitized name %q", got)
	}
	if _, err := migrate.CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for name without usable characters")
	}
}

func TestValidateDirRejectsEmptyDir(t *testing.T) {
	if err := migrate.ValidateDir(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without migrations")
	}
}
