package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")
	t.Setenv("SESSION_SECRET", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Errorf("SessionTTL = %v, want 168h", cfg.SessionTTL)
	}
	if cfg.CookieName != "session_token" {
		t.Errorf("CookieName = %q", cfg.CookieName)
	}
	if cfg.ReleaseSlotOnCancel {
		t.Error("ReleaseSlotOnCancel should default to false")
	}
	if cfg.SessionSecret == "" {
		t.Error("development config should fall back to a session secret")
	}
	if !strings.Contains(cfg.Database.DSN, "@tcp(localhost:3306)/clinic") {
		t.Errorf("unexpected mysql DSN %q", cfg.Database.DSN)
	}
}

func TestLoadConfigPostgresDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USERNAME", "clinic")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Database.Port != "5432" {
		t.Errorf("Port = %q, want 5432", cfg.Database.Port)
	}
	for _, part := range []string{"host=db", "user=clinic", "port=5432", "sslmode=disable"} {
		if !strings.Contains(cfg.Database.DSN, part) {
			t.Errorf("DSN %q missing %q", cfg.Database.DSN, part)
		}
	}
}

func TestLoadConfigRedisSessions(t *testing.T) {
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("REDIS_ADDR", "")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis sessions should be off without REDIS_ADDR")
	}

	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("REDIS_DB", "2")
	cfg, err = LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.DB != 2 || cfg.Redis.Prefix != "clinic:session" {
		t.Errorf("unexpected redis config %+v", cfg.Redis)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"bad ttl", map[string]string{"SESSION_TTL_HOURS": "soon"}},
		{"zero ttl", map[string]string{"SESSION_TTL_HOURS": "0"}},
		{"bad redis db", map[string]string{"REDIS_DB": "first"}},
		{"bad release flag", map[string]string{"RELEASE_SLOT_ON_CANCEL": "maybe"}},
		{"production without secret", map[string]string{"ENVIRONMENT": "production", "SESSION_SECRET": ""}},
		{"zero burst", map[string]string{"RATE_LIMIT_BURST": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DB_DRIVER", "memory")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}
