package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/angelmondragon/salonbook-backend/pkg/migrate"
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

func TestAppointmentsMigrationGuardsSlots(t *testing.T) {
	content := readMigration(t, "create_appointments")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS appointments",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_active_slot",
		"WHERE status <> 'cancelled';",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_appointments_active_plan_session",
		"session_number IS NULL OR (plan_id IS NOT NULL AND session_number >= 1)",
		"extras jsonb NOT NULL DEFAULT '{}'::jsonb",
		"DROP TABLE IF EXISTS appointments",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
	if strings.Contains(content, "REFERENCES plans") {
		t.Errorf("appointments must not cascade from plans")
	}
}

func TestPlansMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_plans")
	for _, sub := range []string{
		"CHECK (total_sessions >= 1)",
		"CHECK (completed_sessions BETWEEN 0 AND total_sessions)",
		"DROP TABLE IF EXISTS plans",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestValidateDirAcceptsRepoMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Partner Bio!", now)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "20260301123000_add_partner_bio.sql"), path)
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "Add Partner Bio!", now)
	require.Error(t, err)

	_, err = migrate.CreateSQLMigration(dir, "!!!", now)
	require.Error(t, err)
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestApplySQLiteSchemaIsRepeatable(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_schema?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, migrate.ApplySQLiteSchema(conn))
	require.NoError(t, migrate.ApplySQLiteSchema(conn))

	var count int64
	require.NoError(t, conn.Raw("SELECT count(*) FROM sqlite_master WHERE type = 'index' AND name = 'ux_appointments_active_slot'").Scan(&count).Error)
	require.Equal(t, int64(1), count)
}
