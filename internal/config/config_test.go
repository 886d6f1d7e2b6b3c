package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validCfg returns a fully-valid Config for mutation testing.
func validCfg() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend: BackendFile,
			Dir:     "/tmp/thoughtboard",
			Key:     DefaultStorageKey,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		API:     APIConfig{ListenAddr: ":8080"},
	}
}

func TestValidate_ValidConfigPasses(t *testing.T) {
	cfg := validCfg()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid config should pass, got: %v", err)
	}
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validCfg()
	cfg.Storage.Backend = "redis"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "storage.backend") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_EmptyDir(t *testing.T) {
	for _, backend := range []string{BackendFile, BackendSQLite} {
		cfg := validCfg()
		cfg.Storage.Backend = backend
		cfg.Storage.Dir = ""
		if err := cfg.Validate(); err == nil {
			t.Fatalf("expected error for empty storage.dir with %s backend", backend)
		}
	}
}

func TestValidate_MemoryBackendNeedsNoDir(t *testing.T) {
	cfg := validCfg()
	cfg.Storage.Backend = BackendMemory
	cfg.Storage.Dir = ""
	if err := cfg.Validate(); err != nil {
		t.Fatalf("memory backend should not need a dir, got: %v", err)
	}
}

func TestValidate_EmptyKey(t *testing.T) {
	cfg := validCfg()
	cfg.Storage.Key = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for empty storage.key")
	}
	if !strings.Contains(err.Error(), "storage.key") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_BadLogFormat(t *testing.T) {
	cfg := validCfg()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for logging.format = xml")
	}
}

func TestValidate_EmptyListenAddr(t *testing.T) {
	cfg := validCfg()
	cfg.API.ListenAddr = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for empty api.listen_addr")
	}
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if want := filepath.Join(home, ".thoughtboard", "data"); cfg.Storage.Dir != want {
		t.Errorf("dir = %q, want %q", cfg.Storage.Dir, want)
	}
	if cfg.Storage.Key != DefaultStorageKey {
		t.Errorf("key = %q, want %q", cfg.Storage.Key, DefaultStorageKey)
	}
	if !cfg.Metrics.Enabled {
		t.Error("metrics should be enabled by default")
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	t.Chdir(dir)

	yaml := "storage:\n  backend: sqlite\n  dir: /var/lib/tb\nlogging:\n  level: debug\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("THOUGHTBOARD_API_LISTEN_ADDR", "127.0.0.1:9000")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Storage.Backend != BackendSQLite {
		t.Errorf("backend = %q, want sqlite", cfg.Storage.Backend)
	}
	if got := cfg.Storage.SQLitePath(); got != "/var/lib/tb/thoughtboard.db" {
		t.Errorf("sqlite path = %q", got)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.API.ListenAddr != "127.0.0.1:9000" {
		t.Errorf("listen addr = %q, want env override", cfg.API.ListenAddr)
	}
}

func TestLoad_InvalidBackendFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("THOUGHTBOARD_STORAGE_BACKEND", "redis")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid backend from env")
	}
}

func TestAPIConfig_StringMasksToken(t *testing.T) {
	s := APIConfig{ListenAddr: ":8080", AuthToken: "supersecrettoken"}.String()
	if strings.Contains(s, "supersecrettoken") {
		t.Fatalf("token leaked: %s", s)
	}
	if !strings.Contains(s, "supe****oken") {
		t.Fatalf("unexpected mask: %s", s)
	}
}
