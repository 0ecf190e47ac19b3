package config

import (
	"strings"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8000" {
		t.Errorf("expected default port 8000, got %q", cfg.Port)
	}
	if cfg.Env != "development" || !cfg.IsDev() {
		t.Errorf("expected development env, got %q", cfg.Env)
	}
	if cfg.CasesDir != "cases" {
		t.Errorf("expected default cases dir, got %q", cfg.CasesDir)
	}
	if cfg.AuthMode != "none" {
		t.Errorf("expected open auth mode, got %q", cfg.AuthMode)
	}
	if cfg.DBMaxConns != 20 || cfg.DBMinConns != 5 {
		t.Errorf("unexpected pool defaults: max=%d min=%d", cfg.DBMaxConns, cfg.DBMinConns)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CASES_DIR", "/data/cases")
	t.Setenv("RESULT_SEED", "42")
	t.Setenv("OPENROUTER_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Errorf("PORT override ignored: %q", cfg.Port)
	}
	if cfg.CasesDir != "/data/cases" {
		t.Errorf("CASES_DIR override ignored: %q", cfg.CasesDir)
	}
	if cfg.ResultSeed != 42 {
		t.Errorf("RESULT_SEED override ignored: %d", cfg.ResultSeed)
	}
	if !cfg.HasLLM() {
		t.Error("expected HasLLM with api key set")
	}
}

func TestLoad_CORSOriginsSplit(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "http://a.example,http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("CORS origins not split: %v", cfg.CORSOrigins)
	}
}

func TestHasDatabase(t *testing.T) {
	cfg := &Config{}
	if cfg.HasDatabase() {
		t.Error("no url should mean no database")
	}
	cfg.DatabaseURL = "postgres://localhost/vp"
	if !cfg.HasDatabase() {
		t.Error("url set should mean database configured")
	}
}

func TestValidate(t *testing.T) {
	key := strings.Repeat("k", 32)
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"open mode", Config{AuthMode: "none"}, false},
		{"jwt with key", Config{AuthMode: "jwt", JWTSigningKey: key}, false},
		{"jwt without key", Config{AuthMode: "jwt"}, true},
		{"short key", Config{AuthMode: "jwt", JWTSigningKey: "short"}, true},
		{"unknown mode", Config{AuthMode: "oauth"}, true},
		{"inverted pool bounds", Config{AuthMode: "none", DBMaxConns: 2, DBMinConns: 5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
