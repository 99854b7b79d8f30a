package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over YAML configuration.
// All env vars use MINTFORGE_ prefix for namespace isolation.
func (c *Config) applyEnvOverrides() {
	// Server config
	setIfEnv(&c.Server.Address, "MINTFORGE_SERVER_ADDRESS")
	setIfEnv(&c.Server.RoutePrefix, "MINTFORGE_ROUTE_PREFIX")
	setIfEnv(&c.Server.AdminMetricsAPIKey, "MINTFORGE_ADMIN_METRICS_API_KEY")
	setIfEnv(&c.Server.AdminLogsAPIKey, "MINTFORGE_ADMIN_LOGS_API_KEY")
	if v := os.Getenv("MINTFORGE_CORS_ALLOWED_ORIGINS"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.Server.CORSAllowedOrigins = origins
	}

	// Normalize route prefix: ensure it starts with / and doesn't end with /
	if c.Server.RoutePrefix != "" {
		c.Server.RoutePrefix = normalizeRoutePrefix(c.Server.RoutePrefix)
	}

	// Logging config
	setIfEnv(&c.Logging.Level, "MINTFORGE_LOG_LEVEL")
	setIfEnv(&c.Logging.Format, "MINTFORGE_LOG_FORMAT")
	setIfEnv(&c.Logging.Environment, "MINTFORGE_ENVIRONMENT")

	// Solana config
	setIfEnv(&c.Solana.Network, "MINTFORGE_SOLANA_NETWORK")
	setIfEnv(&c.Solana.RPCURL, "MINTFORGE_SOLANA_RPC_URL")
	setIfEnv(&c.Solana.Commitment, "MINTFORGE_SOLANA_COMMITMENT")
	setIfEnv(&c.Solana.PlatformWallet, "MINTFORGE_PLATFORM_WALLET")

	// Payments config
	setDurationIfEnv(&c.Payments.SessionTTL, "MINTFORGE_SESSION_TTL")
	setInt64IfEnv(&c.Payments.AmountTolerance, "MINTFORGE_AMOUNT_TOLERANCE_LAMPORTS")
	setIntIfEnv(&c.Payments.AuditLogCapacity, "MINTFORGE_AUDIT_LOG_CAPACITY")
	setIntIfEnv(&c.Payments.RecentTokensCapacity, "MINTFORGE_RECENT_TOKENS_CAPACITY")
	setDurationIfEnv(&c.Payments.IdempotencyTTL, "MINTFORGE_IDEMPOTENCY_TTL")

	// Rate limit config
	setBoolIfEnv(&c.RateLimit.GlobalEnabled, "MINTFORGE_RATE_LIMIT_GLOBAL_ENABLED")
	setIntIfEnv(&c.RateLimit.GlobalLimit, "MINTFORGE_RATE_LIMIT_GLOBAL_LIMIT")
	setDurationIfEnv(&c.RateLimit.GlobalWindow, "MINTFORGE_RATE_LIMIT_GLOBAL_WINDOW")
	setBoolIfEnv(&c.RateLimit.PerWalletEnabled, "MINTFORGE_RATE_LIMIT_PER_WALLET_ENABLED")
	setIntIfEnv(&c.RateLimit.PerWalletLimit, "MINTFORGE_RATE_LIMIT_PER_WALLET_LIMIT")
	setDurationIfEnv(&c.RateLimit.PerWalletWindow, "MINTFORGE_RATE_LIMIT_PER_WALLET_WINDOW")
	setBoolIfEnv(&c.RateLimit.PerIPEnabled, "MINTFORGE_RATE_LIMIT_PER_IP_ENABLED")
	setIntIfEnv(&c.RateLimit.PerIPLimit, "MINTFORGE_RATE_LIMIT_PER_IP_LIMIT")
	setDurationIfEnv(&c.RateLimit.PerIPWindow, "MINTFORGE_RATE_LIMIT_PER_IP_WINDOW")

	// API key config
	setBoolIfEnv(&c.APIKey.Enabled, "MINTFORGE_API_KEY_ENABLED")
	// Load API keys (MINTFORGE_API_KEY_<NAME>=<tier>)
	for _, env := range os.Environ() {
		if !strings.HasPrefix(env, "MINTFORGE_API_KEY_") {
			continue
		}
		parts := strings.SplitN(env, "=", 2)
		if len(parts) != 2 {
			continue
		}
		name := strings.TrimPrefix(parts[0], "MINTFORGE_API_KEY_")
		if name == "ENABLED" {
			continue
		}
		if c.APIKey.Keys == nil {
			c.APIKey.Keys = make(map[string]string)
		}
		// MINTFORGE_API_KEY_LAUNCHPAD_ABC123=partner -> key: "launchpad_abc123", tier: "partner"
		c.APIKey.Keys[strings.ToLower(name)] = strings.TrimSpace(parts[1])
	}

	// Circuit breaker config
	setBoolIfEnv(&c.CircuitBreaker.Enabled, "MINTFORGE_CIRCUIT_BREAKER_ENABLED")
}

// setIfEnv sets a string pointer to the environment variable value if it exists.
func setIfEnv(target *string, key string) {
	if val := os.Getenv(key); val != "" {
		*target = val
	}
}

// setBoolIfEnv sets a boolean pointer from an environment variable.
// Accepts "1", "true", "TRUE", "True" as true values.
func setBoolIfEnv(target *bool, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v == "1" || strings.EqualFold(v, "true")
	}
}

// setIntIfEnv sets an int pointer from an environment variable.
func setIntIfEnv(target *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*target = n
		}
	}
}

// setInt64IfEnv sets an int64 pointer from an environment variable.
func setInt64IfEnv(target *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = n
		}
	}
}

// setDurationIfEnv sets a Duration pointer from an environment variable.
// Uses time.ParseDuration to parse values like "5m", "120s", "1h30m".
func setDurationIfEnv(target *Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			*target = Duration{Duration: dur}
		}
	}
}

// normalizeRoutePrefix ensures the prefix starts with / and doesn't end with /.
// Examples: "api" -> "/api", "/api/" -> "/api", "mintforge" -> "/mintforge"
func normalizeRoutePrefix(prefix string) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return ""
	}
	// Ensure it starts with /
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	// Ensure it doesn't end with /
	prefix = strings.TrimSuffix(prefix, "/")
	return prefix
}
