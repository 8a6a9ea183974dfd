package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
lookup:
  base_url: http://lookup.local
  timeout: 2s
onboarding:
  draft_ttl: 24h
  max_document_size: 1048576
cleanup:
  document_validity: 2160h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Lookup.BaseURL != "http://lookup.local" {
		t.Fatalf("unexpected lookup base url: %s", cfg.Lookup.BaseURL)
	}
	if cfg.Lookup.Timeout != 2*time.Second {
		t.Fatalf("unexpected lookup timeout: %s", cfg.Lookup.Timeout)
	}
	if cfg.Onboarding.DraftTTL != 24*time.Hour {
		t.Fatalf("unexpected draft ttl: %s", cfg.Onboarding.DraftTTL)
	}
	if cfg.Onboarding.MaxDocumentSize != 1<<20 {
		t.Fatalf("unexpected max document size: %d", cfg.Onboarding.MaxDocumentSize)
	}
	if cfg.Cleanup.DocumentValidity != 2160*time.Hour {
		t.Fatalf("unexpected document validity: %s", cfg.Cleanup.DocumentValidity)
	}

	// untouched keys keep their defaults
	if cfg.Postgres.DSN != Default().Postgres.DSN {
		t.Fatalf("unexpected postgres dsn: %s", cfg.Postgres.DSN)
	}
	if cfg.Onboarding.StatusCacheTTL != time.Minute {
		t.Fatalf("unexpected status cache ttl: %s", cfg.Onboarding.StatusCacheTTL)
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("POSTGRES_DSN", "postgres://env:env@db:5432/env")
	t.Setenv("LOOKUP_API_KEY", "token-from-env")
	t.Setenv("ONBOARDING_DRAFT_TTL", "1h")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Postgres.DSN != "postgres://env:env@db:5432/env" {
		t.Fatalf("postgres dsn env override not applied: %s", cfg.Postgres.DSN)
	}
	if cfg.Lookup.APIKey != "token-from-env" {
		t.Fatalf("lookup api key env override not applied")
	}
	if cfg.Onboarding.DraftTTL != time.Hour {
		t.Fatalf("draft ttl env override not applied: %s", cfg.Onboarding.DraftTTL)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("redis db env override not applied: %d", cfg.Redis.DB)
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	clearConfigEnv(t)

	t.Setenv("ONBOARDING_DRAFT_TTL", "not-a-duration")

	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for malformed duration override")
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"APP_ENV", "HTTP_ADDR", "HTTP_READ_TIMEOUT", "HTTP_WRITE_TIMEOUT", "HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL", "POSTGRES_DSN", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "S3_BUCKET", "S3_USE_SSL",
		"JWT_SECRET", "JWT_ACCESS_TTL",
		"LOOKUP_BASE_URL", "LOOKUP_API_KEY", "LOOKUP_TIMEOUT",
		"ONBOARDING_DRAFT_TTL", "ONBOARDING_STATUS_CACHE_TTL", "ONBOARDING_MAX_DOCUMENT_SIZE",
		"CLEANUP_INTERVAL", "CLEANUP_DOCUMENT_VALIDITY",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
