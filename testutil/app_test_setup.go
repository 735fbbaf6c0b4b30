package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"sms-relay/app"
	"sms-relay/config"
	"sms-relay/internal/store"
	"sms-relay/pkg/db"

	"github.com/labstack/echo/v4"
)

// SetupAppTest brings up a MySQL container, migrates the schema, and wires the
// app globals against it. Skips when Docker is unavailable.
func SetupAppTest(t *testing.T) (context.Context, func()) {
	t.Helper()
	if !dockerAvailable() {
		t.Skip("skipping: docker not available (required for testcontainers)")
	}
	ctx := context.Background()

	// change to repo root so db/db.sql resolves regardless of the package dir
	wd, _ := os.Getwd()
	repoRoot, ok := findRepoRoot(wd)
	if !ok {
		t.Fatalf("cannot find repo root from wd=%s", wd)
	}
	if err := os.Chdir(repoRoot); err != nil {
		t.Fatalf("chdir repo root: %v", err)
	}
	cleanupChdir := func() { _ = os.Chdir(wd) }

	// base env defaults
	_ = os.Setenv("LISTEN_ADDR", ":0")
	_ = os.Setenv("STORE_DRIVER", "mysql")
	_ = os.Setenv("DB_USER_NAME", "relay_user")
	_ = os.Setenv("DB_PASSWORD", "relay_pass")
	_ = os.Setenv("DB_NAME", "sms_relay")
	_ = os.Setenv("TWILIO_ACCOUNT_SID", "ACtest")
	_ = os.Setenv("TWILIO_AUTH_TOKEN", "token")
	_ = os.Setenv("TWILIO_PHONE_NUMBER", "+15550000000")

	mysqlC, host, port := MySQL(ctx, t)

	_ = os.Setenv("DB_HOST", host)
	_ = os.Setenv("DB_PORT", fmt.Sprintf("%d", port))
	config.Init()

	var err error
	app.DB, err = db.ConnectDB(db.Config{
		Username: config.DBUsername,
		Password: config.DBPassword,
		Host:     config.DBHost,
		Port:     config.DBPort,
		DBName:   config.DBName,
	})
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	if err := db.MigrateFromFile(app.DB, "db/db.sql"); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	app.Logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	app.Echo = echo.New()
	app.Store = store.NewMySQL(app.DB)

	cleanup := func() {
		_ = app.DB.Close()
		_ = mysqlC.Terminate(ctx)
		cleanupChdir()
	}

	return ctx, cleanup
}

func ResetSubscribers(ctx context.Context, t *testing.T) {
	t.Helper()
	if _, err := app.DB.ExecContext(ctx, "DELETE FROM subscribers"); err != nil {
		t.Fatalf("truncate subscribers: %v", err)
	}
}

func dockerAvailable() bool {
	c, err := net.DialTimeout("unix", "/var/run/docker.sock", 300*time.Millisecond)
	if err != nil {
		return false
	}
	_ = c.Close()
	return true
}

func findRepoRoot(start string) (string, bool) {
	dir := start
	for i := 0; i < 12; i++ {
		goMod := filepath.Join(dir, "go.mod")
		dbSQL := filepath.Join(dir, "db", "db.sql")
		if _, err := os.Stat(goMod); err == nil {
			if _, err := os.Stat(dbSQL); err == nil {
				return dir, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}
