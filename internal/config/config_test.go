package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr == "" || cfg.Server.BasePath != "/api" {
		t.Fatalf("defaults = %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadReadsWorkspaceFile(t *testing.T) {
	workspace := t.TempDir()
	raw := []byte("server:\n  addr: 0.0.0.0:9000\nauth:\n  jwt_secret: s3cret\n")
	if err := os.WriteFile(filepath.Join(workspace, "teamboard.yml"), raw, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(workspace)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Addr != "0.0.0.0:9000" {
		t.Fatalf("addr = %q", cfg.Server.Addr)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Fatalf("jwt secret = %q", cfg.Auth.JWTSecret)
	}
	// unset fields keep their defaults
	if cfg.Auth.TokenTTLHour != 24 {
		t.Fatalf("ttl = %d", cfg.Auth.TokenTTLHour)
	}
	if cfg.Workspace != workspace {
		t.Fatalf("workspace = %q", cfg.Workspace)
	}
}

func TestFromYAMLRejectsMissingSecret(t *testing.T) {
	if _, err := FromYAML([]byte("auth:\n  jwt_secret: \"\"\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestFromYAMLRejectsGarbage(t *testing.T) {
	if _, err := FromYAML([]byte("server: [not a map")); err == nil {
		t.Fatal("expected parse error")
	}
}
