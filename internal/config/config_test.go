// ABOUTME: Tests for rehab configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, backend selection, and path expansion.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/harperreed/rehab/internal/ledger"
)

// isolate points config at a temp dir and clears REHAB_* overrides.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	for _, name := range []string{
		"REHAB_BACKEND", "REHAB_DATA_DIR", "REHAB_CHARM_HOST", "REHAB_IDENTITY",
		"REHAB_AUTO_SYNC", "REHAB_LOG_LEVEL", "REHAB_TIMEOUT",
	} {
		t.Setenv(name, "")
	}
	return tmpDir
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "charm" {
		t.Errorf("GetBackend() = %q, want %q", got, "charm")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "badger"}
	if got := cfg.GetBackend(); got != "badger" {
		t.Errorf("GetBackend() = %q, want %q", got, "badger")
	}
}

func TestGetDataDirDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/xdg/data")
	cfg := &Config{}
	if got := cfg.GetDataDir(); got != "/xdg/data/rehab" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/xdg/data/rehab")
	}
}

func TestGetDataDirExpandsTilde(t *testing.T) {
	home, _ := os.UserHomeDir()

	cfg := &Config{DataDir: "~/rehab-data"}
	want := filepath.Join(home, "rehab-data")
	if got := cfg.GetDataDir(); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/rehab", filepath.Join(home, "data/rehab")},
		{"data/rehab", "data/rehab"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaults(t *testing.T) {
	t.Setenv("USER", "pat")
	cfg := &Config{}

	if got := cfg.GetCharmHost(); got != ledger.DefaultCharmHost {
		t.Errorf("GetCharmHost() = %q", got)
	}
	if got := cfg.GetIdentity(); got != "pat" {
		t.Errorf("GetIdentity() = %q, want pat", got)
	}
	if !cfg.GetAutoSync() {
		t.Error("GetAutoSync() should default to true")
	}
	if d, err := cfg.GetTimeout(); err != nil || d != 30*time.Second {
		t.Errorf("GetTimeout() = %v, %v", d, err)
	}
	if lvl, err := cfg.GetLogLevel(); err != nil || lvl != log.WarnLevel {
		t.Errorf("GetLogLevel() = %v, %v", lvl, err)
	}
}

func TestGetTimeoutInvalid(t *testing.T) {
	for _, v := range []string{"soon", "-1s"} {
		cfg := &Config{Timeout: v}
		if _, err := cfg.GetTimeout(); err == nil {
			t.Errorf("GetTimeout(%q) expected error", v)
		}
	}
}

func TestGetLogLevel(t *testing.T) {
	tests := map[string]log.Level{
		"debug": log.DebugLevel,
		"INFO":  log.InfoLevel,
		"warn":  log.WarnLevel,
		"error": log.ErrorLevel,
	}
	for name, want := range tests {
		cfg := &Config{LogLevel: name}
		got, err := cfg.GetLogLevel()
		if err != nil || got != want {
			t.Errorf("GetLogLevel(%q) = %v, %v; want %v", name, got, err, want)
		}
	}

	cfg := &Config{LogLevel: "loud"}
	if _, err := cfg.GetLogLevel(); err == nil {
		t.Error("Expected error for unknown level")
	}
	if _, err := cfg.NewLogger(); err == nil {
		t.Error("NewLogger should reject unknown level")
	}
}

func TestValidate(t *testing.T) {
	if err := (&Config{}).Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
	if err := (&Config{Backend: "markdown"}).Validate(); err == nil {
		t.Error("Expected error for unknown backend")
	}
	if err := (&Config{Timeout: "x"}).Validate(); err == nil {
		t.Error("Expected error for bad timeout")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" {
		t.Errorf("Expected empty Backend, got %q", cfg.Backend)
	}
	if cfg.DataDir != "" {
		t.Errorf("Expected empty DataDir, got %q", cfg.DataDir)
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	off := false
	cfg := &Config{
		Backend:  "sqlite",
		DataDir:  "/tmp/rehab-data",
		AutoSync: &off,
		Timeout:  "5s",
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Backend != "sqlite" {
		t.Errorf("Backend mismatch: got %q", loaded.Backend)
	}
	if loaded.DataDir != "/tmp/rehab-data" {
		t.Errorf("DataDir mismatch: got %q", loaded.DataDir)
	}
	if loaded.GetAutoSync() {
		t.Error("AutoSync should round-trip as false")
	}
}

func TestLoadAppliesEnv(t *testing.T) {
	isolate(t)

	if err := (&Config{Backend: "sqlite", LogLevel: "info"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	t.Setenv("REHAB_BACKEND", "badger")
	t.Setenv("REHAB_IDENTITY", "clinic-7")
	t.Setenv("REHAB_AUTO_SYNC", "false")
	t.Setenv("REHAB_TIMEOUT", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "badger" {
		t.Errorf("Backend = %q, want env override badger", cfg.Backend)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want file value info", cfg.LogLevel)
	}
	if cfg.GetIdentity() != "clinic-7" {
		t.Errorf("Identity = %q", cfg.GetIdentity())
	}
	if cfg.GetAutoSync() {
		t.Error("AutoSync should be false from env")
	}
	if d, _ := cfg.GetTimeout(); d != 2*time.Second {
		t.Errorf("Timeout = %v", d)
	}
}

func TestLoadBadEnvBool(t *testing.T) {
	isolate(t)
	t.Setenv("REHAB_AUTO_SYNC", "sometimes")

	if _, err := Load(); err == nil {
		t.Error("Expected error for unparsable REHAB_AUTO_SYNC")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := isolate(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	if err := (&Config{Backend: "sqlite"}).Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "rehab")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := isolate(t)

	configDir := filepath.Join(tmpDir, "rehab")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := isolate(t)

	want := filepath.Join(tmpDir, "rehab", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{Backend: "sqlite", DataDir: tmpDir}
	store, err := cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore() for sqlite failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "rehab.db")); os.IsNotExist(err) {
		t.Error("Expected rehab.db to be created")
	}
}

func TestOpenStoreBadger(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := &Config{Backend: "badger", DataDir: tmpDir}
	store, err := cfg.OpenStore()
	if err != nil {
		t.Fatalf("OpenStore() for badger failed: %v", err)
	}
	defer store.Close()

	if _, ok := store.(*ledger.BadgerStore); !ok {
		t.Errorf("Expected *ledger.BadgerStore, got %T", store)
	}
}

func TestOpenStoreMemory(t *testing.T) {
	store, err := (&Config{Backend: "memory"}).OpenStore()
	if err != nil {
		t.Fatalf("OpenStore() for memory failed: %v", err)
	}
	if _, ok := store.(*ledger.MemoryStore); !ok {
		t.Errorf("Expected *ledger.MemoryStore, got %T", store)
	}
}

func TestOpenStoreInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: "/tmp"}
	if _, err := cfg.OpenStore(); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestIdentitySourceStatic(t *testing.T) {
	cfg := &Config{Identity: "therapist"}
	src := cfg.IdentitySource(ledger.NewMemoryStore())

	id, err := src.Identity(t.Context())
	if err != nil || id != "therapist" {
		t.Errorf("Identity() = %q, %v", id, err)
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
