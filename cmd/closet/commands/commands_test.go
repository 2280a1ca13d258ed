package commands

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/giovaniif/instrument-closet/infra/repositories"
)

func run(t *testing.T, env map[string]string, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(func(k string) string { return env[k] })
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestInstant(t *testing.T) {
	out, err := run(t, nil, "instant", "2021-01-01T09:30:00", "America/New_York")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if strings.TrimSpace(out) != "1609511400" {
		t.Fatalf("expected 1609511400, got %q", out)
	}
}

func TestInstant_BadZone(t *testing.T) {
	if _, err := run(t, nil, "instant", "2021-01-01T09:30:00", "Mars/Olympus"); err == nil {
		t.Fatalf("expected unsupported zone error")
	}
}

func TestMigrate_MemoryStore(t *testing.T) {
	_, err := run(t, map[string]string{"LOG_LEVEL": "error"}, "migrate")
	if err == nil || !strings.Contains(err.Error(), "nothing to migrate") {
		t.Fatalf("expected memory store error, got %v", err)
	}
}

func TestMigrateAndAddUser_SQLite(t *testing.T) {
	env := map[string]string{
		"STORE_DRIVER": "sqlite",
		"SQLITE_PATH":  filepath.Join(t.TempDir(), "closet.db"),
		"BCRYPT_COST":  "4",
		"LOG_LEVEL":    "error",
	}
	out, err := run(t, env, "migrate")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(out, "migrations applied (sqlite)") {
		t.Fatalf("unexpected output %q", out)
	}

	out, err = run(t, env, "adduser", "root", "password", "--admin", "--email", "root@closet.test")
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !strings.Contains(out, "created user root") || !strings.Contains(out, "admin true") {
		t.Fatalf("unexpected output %q", out)
	}

	store, err := repositories.OpenSQL(context.Background(), repositories.SQLite, env["SQLITE_PATH"])
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	u, err := store.Users().GetByUsername(context.Background(), "root")
	if err != nil || !u.IsAdmin {
		t.Fatalf("expected stored admin, got %+v, %v", u, err)
	}

	if _, err := run(t, env, "adduser", "root", "password"); err == nil {
		t.Fatalf("expected duplicate username error")
	}
}
