package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "API_BASE_URL", "API_TIMEOUT", "CACHE_TTL", "DATABASE_DSN", "APP_LANG", "APP_CURRENCY", "DEV", "MIGRATIONS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s", cfg.Server.Port)
	}
	if cfg.API.BaseURL != "http://localhost:8000" || cfg.API.Timeout != 20*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.Database.DSN != "sqlite:reports.db" {
		t.Errorf("dsn = %s", cfg.Database.DSN)
	}
	if cfg.Locale.Currency != "THB" || cfg.Locale.Lang != "th" {
		t.Errorf("locale = %+v", cfg.Locale)
	}
	if !cfg.App.Dev || !cfg.App.Migrations {
		t.Errorf("app = %+v", cfg.App)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_BASE_URL", "https://erp.example.com/")
	t.Setenv("API_TIMEOUT", "45")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-number")
	t.Setenv("DEV", "no")
	cfg := Load()
	if cfg.Server.Port != "9090" || cfg.Server.ReadTimeout != 15 {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.API.BaseURL != "https://erp.example.com" || cfg.API.Timeout != 45*time.Second {
		t.Errorf("api = %+v", cfg.API)
	}
	if cfg.Cache.TTL != 30*time.Second {
		t.Errorf("ttl = %v", cfg.Cache.TTL)
	}
	if cfg.App.Dev {
		t.Error("DEV=no should disable dev mode")
	}
}

func TestLocation(t *testing.T) {
	if (LocaleConfig{Timezone: "Nowhere/City"}).Location() != time.Local {
		t.Error("unknown zone should fall back to local")
	}
	if loc := (LocaleConfig{Timezone: "UTC"}).Location(); loc.String() != "UTC" {
		t.Errorf("loc = %v", loc)
	}
}
