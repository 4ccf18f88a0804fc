package aurelia

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

const testConfigFile = `
hostname: 127.0.0.1
max_connections: 10

log_level: debug

database:
  host: dbhost
  port: 5432
  name: aurelia
  username: user
  password: secret
  sslmode: disable
`

func TestLoadConfig(t *testing.T) {
	// The config state is global, so start each test from a clean slate.
	viper.Reset()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(testConfigFile), 0644); err != nil {
		t.Fatalf("error writing test config: %v", err)
	}

	if err := LoadConfig(dir); err != nil {
		t.Fatalf("LoadConfig() returned an unexpected error: %v", err)
	}

	want := "host=dbhost port=5432 dbname=aurelia user=user password=secret sslmode=disable"
	if got := DatabaseURL(); got != want {
		t.Errorf("DatabaseURL() = %q, want %q", got, want)
	}

	if err := InitLogger(); err != nil {
		t.Fatalf("InitLogger() returned an unexpected error: %v", err)
	}
	if Log == nil {
		t.Fatal("expected the global logger to be initialized")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	viper.Reset()

	if err := LoadConfig(t.TempDir()); err == nil {
		t.Error("expected an error when no config file exists in the search path")
	}
}
