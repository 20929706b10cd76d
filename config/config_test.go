// config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.Server.Port)
	}
	if cfg.Uploads.ChunkTTL != time.Hour {
		t.Fatalf("expected chunk ttl 1h, got %v", cfg.Uploads.ChunkTTL)
	}
	if len(cfg.AuditLog.Types) != len(DefaultLogTypes) {
		t.Fatalf("expected %d default log types, got %v", len(DefaultLogTypes), cfg.AuditLog.Types)
	}
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`server:
  port: "9000"
mongo:
  uri: mongodb://file-host:27017
  dbName: fromfile
auditLog:
  ttl: 48h
  levels: [ERROR]
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MONGO_URI", "mongodb://env-host:27017")
	t.Setenv("BACKEND_API_KEY", "backend-key")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Server.Port != "9000" {
		t.Fatalf("expected port from file, got %q", cfg.Server.Port)
	}
	if cfg.Mongo.URI != "mongodb://env-host:27017" {
		t.Fatalf("expected env override for mongo uri, got %q", cfg.Mongo.URI)
	}
	if cfg.Mongo.DBName != "fromfile" {
		t.Fatalf("expected db name from file, got %q", cfg.Mongo.DBName)
	}
	if cfg.AuditLog.TTL != 48*time.Hour {
		t.Fatalf("expected audit ttl 48h, got %v", cfg.AuditLog.TTL)
	}
	if len(cfg.AuditLog.Levels) != 1 || cfg.AuditLog.Levels[0] != "ERROR" {
		t.Fatalf("expected levels [ERROR], got %v", cfg.AuditLog.Levels)
	}
	if cfg.Backend.APIKey != "backend-key" {
		t.Fatalf("expected backend api key from env, got %q", cfg.Backend.APIKey)
	}
}
