package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mmynk/fairshare/internal/ledger"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.SQLitePath == "" {
		t.Error("expected a default sqlite path")
	}
	if cfg.Auth.JWTSecret != "" {
		t.Error("auth should default to disabled")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
server:
  port: 9000
database:
  sqlite_path: /tmp/test.db
auth:
  jwt_secret: topsecret
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORT", "9001")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("port = %d, want env override 9001", cfg.Server.Port)
	}
	if cfg.Database.SQLitePath != "/tmp/test.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
	if cfg.Auth.JWTSecret != "topsecret" {
		t.Errorf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
}

func TestDemoSeedApply(t *testing.T) {
	l := ledger.New()
	DemoSeed().Apply(l)

	if got := len(l.UserKeys()); got != 3 {
		t.Errorf("user count = %d, want 3", got)
	}
	if got := len(l.GroupKeys()); got != 4 {
		t.Errorf("group count = %d, want 4", got)
	}
	fairshare := l.FairShare()
	if fairshare == nil || !fairshare.IsFairShare() {
		t.Fatal("demo seed must include the reserve group")
	}
	if got := l.Group("apples").Member("alice").Balance; got != 100 {
		t.Errorf("alice apples balance = %d, want 100", got)
	}
	if e := l.Group("apples").Exchange(); e.GroupCoinReserve != 100_000 || e.ReserveCurrencyReserve != 100_000 {
		t.Errorf("default reserves = (%d, %d), want 100000 each", e.GroupCoinReserve, e.ReserveCurrencyReserve)
	}
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	body := `
users:
  - name: Dave
groups:
  - name: Durians
    fee: 5
    people:
      dave: 42
    group_coin_reserve: 1000
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	seed, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	l := ledger.New()
	seed.Apply(l)
	g := l.Group("durians")
	if g == nil {
		t.Fatal("group not seeded")
	}
	if g.Member("dave").Balance != 42 {
		t.Errorf("dave balance = %d, want 42", g.Member("dave").Balance)
	}
	// Reserve currency side defaults to the coin side when omitted.
	if e := g.Exchange(); e.GroupCoinReserve != 1000 || e.ReserveCurrencyReserve != 1000 {
		t.Errorf("reserves = (%d, %d), want (1000, 1000)", e.GroupCoinReserve, e.ReserveCurrencyReserve)
	}
}
