package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"database": map[string]any{
			"maxOpenConns": 10,
			"autoMigrate":  true,
		},
		"auth": map[string]any{
			"redirectUrl": "/",
		},
		"gateway": map[string]any{
			"customCssPath": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "DATABASE_MAXOPENCONNS", want: "database.maxOpenConns"},
		{envKey: "DATABASE_AUTOMIGRATE", want: "database.autoMigrate"},
		{envKey: "AUTH_REDIRECTURL", want: "auth.redirectUrl"},
		{envKey: "GATEWAY_CUSTOMCSSPATH", want: "gateway.customCssPath"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if cfg.HTTP.Address != "127.0.0.1" {
		t.Fatalf("default address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.Port != 8080 {
		t.Fatalf("default port = %d", cfg.HTTP.Port)
	}
	if cfg.Auth.RedirectURL != "/" {
		t.Fatalf("default redirect url = %q", cfg.Auth.RedirectURL)
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("default driver = %q", cfg.Database.Driver)
	}
	if len(cfg.Gateway.ExemptPaths) != 3 {
		t.Fatalf("default exempt paths = %v", cfg.Gateway.ExemptPaths)
	}
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	if err := validate(cfg); err == nil {
		t.Fatal("expected error for missing upstream url")
	}

	cfg.Upstream.URL = "http://127.0.0.1:3000"
	if err := validate(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg.Database.Driver = "oracle"
	if err := validate(cfg); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestApplyEnvAliases(t *testing.T) {
	t.Setenv("SHARP_ADDRESS", "0.0.0.0")
	t.Setenv("SHARP_PORT", "9999")
	t.Setenv("SHARP_UPSTREAM", "http://127.0.0.1:4000")
	t.Setenv("SHARP_DATABASE_URL", "gateway.db")

	cfg := &Config{}
	applyEnvAliases(cfg)

	if cfg.HTTP.Address != "0.0.0.0" {
		t.Fatalf("address = %q", cfg.HTTP.Address)
	}
	if cfg.HTTP.Port != 9999 {
		t.Fatalf("port = %d", cfg.HTTP.Port)
	}
	if cfg.Upstream.URL != "http://127.0.0.1:4000" {
		t.Fatalf("upstream = %q", cfg.Upstream.URL)
	}
	if cfg.Database.DSN != "gateway.db" {
		t.Fatalf("dsn = %q", cfg.Database.DSN)
	}
}
