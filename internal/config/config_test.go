package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig_MissingPlatformWallet(t *testing.T) {
	clearEnv()
	os.Setenv("MINTFORGE_SOLANA_RPC_URL", "https://api.devnet.solana.com")
	defer clearEnv()

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error when platform wallet is missing, got nil")
	}
	if !contains(err.Error(), "platform_wallet") {
		t.Errorf("expected error about platform_wallet, got: %v", err)
	}
}

func TestLoadConfig_InvalidPlatformWallet(t *testing.T) {
	clearEnv()
	os.Setenv("MINTFORGE_PLATFORM_WALLET", "not-a-base58-address!")
	defer clearEnv()

	_, err := Load("")
	if err == nil {
		t.Fatal("expected error for malformed platform wallet, got nil")
	}
	if !contains(err.Error(), "not a valid address") {
		t.Errorf("expected address validation error, got: %v", err)
	}
}

func TestLoadConfig_ValidMinimal(t *testing.T) {
	clearEnv()
	os.Setenv("MINTFORGE_PLATFORM_WALLET", "So11111111111111111111111111111111111111112")
	defer clearEnv()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error with valid config, got: %v", err)
	}

	// Check defaults were applied
	if cfg.Server.Address != ":8080" {
		t.Errorf("expected default address :8080, got %s", cfg.Server.Address)
	}
	if cfg.Server.RoutePrefix != "/api" {
		t.Errorf("expected default route prefix /api, got %s", cfg.Server.RoutePrefix)
	}
	if cfg.Payments.SessionTTL.Duration != 30*time.Minute {
		t.Errorf("expected default session TTL 30m, got %v", cfg.Payments.SessionTTL.Duration)
	}
	if cfg.Payments.AmountTolerance != 5000 {
		t.Errorf("expected default tolerance 5000 lamports, got %d", cfg.Payments.AmountTolerance)
	}
	if cfg.Payments.AuditLogCapacity != 500 {
		t.Errorf("expected default audit capacity 500, got %d", cfg.Payments.AuditLogCapacity)
	}
	if cfg.Payments.RecentTokensCapacity != 50 {
		t.Errorf("expected default recent tokens capacity 50, got %d", cfg.Payments.RecentTokensCapacity)
	}
	if len(cfg.Packages) != 3 {
		t.Errorf("expected 3 default packages, got %d", len(cfg.Packages))
	}
	if cfg.Packages["pro"].Lamports != 450_000_000 {
		t.Errorf("expected pro package 450000000 lamports, got %d", cfg.Packages["pro"].Lamports)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearEnv()
	os.Setenv("MINTFORGE_PLATFORM_WALLET", "So11111111111111111111111111111111111111112")
	os.Setenv("MINTFORGE_SERVER_ADDRESS", ":9090")
	os.Setenv("MINTFORGE_SESSION_TTL", "10m")
	os.Setenv("MINTFORGE_AMOUNT_TOLERANCE_LAMPORTS", "10000")
	os.Setenv("MINTFORGE_ROUTE_PREFIX", "v1/")
	defer clearEnv()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":9090" {
		t.Errorf("expected :9090, got %s", cfg.Server.Address)
	}
	if cfg.Payments.SessionTTL.Duration != 10*time.Minute {
		t.Errorf("expected 10m TTL, got %v", cfg.Payments.SessionTTL.Duration)
	}
	if cfg.Payments.AmountTolerance != 10000 {
		t.Errorf("expected tolerance 10000, got %d", cfg.Payments.AmountTolerance)
	}
	if cfg.Server.RoutePrefix != "/v1" {
		t.Errorf("expected normalized /v1, got %s", cfg.Server.RoutePrefix)
	}
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	clearEnv()
	defer clearEnv()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  address: ":3001"
solana:
  network: mainnet-beta
  rpc_url: https://api.mainnet-beta.solana.com
  platform_wallet: So11111111111111111111111111111111111111112
payments:
  session_ttl: 45m
  amount_tolerance_lamports: 7500
packages:
  starter:
    label: Starter Launch
    lamports: 250000000
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Address != ":3001" {
		t.Errorf("expected :3001, got %s", cfg.Server.Address)
	}
	if cfg.Payments.SessionTTL.Duration != 45*time.Minute {
		t.Errorf("expected 45m TTL, got %v", cfg.Payments.SessionTTL.Duration)
	}
	if cfg.Payments.AmountTolerance != 7500 {
		t.Errorf("expected tolerance 7500, got %d", cfg.Payments.AmountTolerance)
	}
	if len(cfg.Packages) != 1 {
		t.Errorf("expected yaml packages to replace defaults, got %d entries", len(cfg.Packages))
	}
}

func TestLoadConfig_RejectsNonPositivePackage(t *testing.T) {
	clearEnv()
	defer clearEnv()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
solana:
  platform_wallet: So11111111111111111111111111111111111111112
packages:
  freebie:
    label: Free
    lamports: 0
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for zero-lamport package")
	}
	if !contains(err.Error(), "lamports must be positive") {
		t.Errorf("expected lamports validation error, got: %v", err)
	}
}

func TestLoadConfig_CommitmentNormalized(t *testing.T) {
	clearEnv()
	os.Setenv("MINTFORGE_PLATFORM_WALLET", "So11111111111111111111111111111111111111112")
	os.Setenv("MINTFORGE_SOLANA_COMMITMENT", "bogus")
	defer clearEnv()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Solana.Commitment != "confirmed" {
		t.Errorf("expected fallback to confirmed, got %s", cfg.Solana.Commitment)
	}
}

func TestNormalizeRoutePrefix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"api", "/api"},
		{"/api", "/api"},
		{"/api/", "/api"},
		{"  /api/  ", "/api"},
		{"mintforge", "/mintforge"},
		{"/v1/forge", "/v1/forge"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := normalizeRoutePrefix(tt.input)
			if got != tt.want {
				t.Errorf("normalizeRoutePrefix(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// Test helpers

func clearEnv() {
	envVars := []string{
		"MINTFORGE_SERVER_ADDRESS", "MINTFORGE_ROUTE_PREFIX",
		"MINTFORGE_ADMIN_METRICS_API_KEY", "MINTFORGE_ADMIN_LOGS_API_KEY",
		"MINTFORGE_CORS_ALLOWED_ORIGINS",
		"MINTFORGE_LOG_LEVEL", "MINTFORGE_LOG_FORMAT", "MINTFORGE_ENVIRONMENT",
		"MINTFORGE_SOLANA_NETWORK", "MINTFORGE_SOLANA_RPC_URL",
		"MINTFORGE_SOLANA_COMMITMENT", "MINTFORGE_PLATFORM_WALLET",
		"MINTFORGE_SESSION_TTL", "MINTFORGE_AMOUNT_TOLERANCE_LAMPORTS",
		"MINTFORGE_AUDIT_LOG_CAPACITY", "MINTFORGE_RECENT_TOKENS_CAPACITY",
		"MINTFORGE_IDEMPOTENCY_TTL",
	}
	for _, key := range envVars {
		os.Unsetenv(key)
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
