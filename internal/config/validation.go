package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// finalize applies defaults and validates the configuration.
func (c *Config) finalize() error {
	// Apply defaults
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Environment == "" {
		c.Logging.Environment = "production"
	}
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Server.RoutePrefix == "" {
		c.Server.RoutePrefix = "/api"
	}

	if c.Payments.SessionTTL.Duration <= 0 {
		c.Payments.SessionTTL = Duration{Duration: 30 * time.Minute}
	}
	if c.Payments.AmountTolerance < 0 {
		c.Payments.AmountTolerance = 5000
	}
	if c.Payments.AuditLogCapacity <= 0 {
		c.Payments.AuditLogCapacity = 500
	}
	if c.Payments.RecentTokensCapacity <= 0 {
		c.Payments.RecentTokensCapacity = 50
	}
	if c.Payments.IdempotencyTTL.Duration <= 0 {
		c.Payments.IdempotencyTTL = Duration{Duration: 24 * time.Hour}
	}

	if c.Solana.Commitment == "" {
		c.Solana.Commitment = string(rpc.CommitmentConfirmed)
	}
	switch strings.ToLower(c.Solana.Commitment) {
	case "processed", "confirmed", "finalized", "finalised":
	default:
		c.Solana.Commitment = string(rpc.CommitmentConfirmed)
	}

	return c.validate()
}

// validate checks that required configuration fields are set correctly.
func (c *Config) validate() error {
	var errs []string

	if c.Solana.RPCURL == "" {
		errs = append(errs, "solana.rpc_url is required")
	}

	if c.Solana.PlatformWallet == "" {
		errs = append(errs, "solana.platform_wallet is required")
	} else if _, err := solana.PublicKeyFromBase58(c.Solana.PlatformWallet); err != nil {
		errs = append(errs, fmt.Sprintf("solana.platform_wallet is not a valid address: %v", err))
	}

	if len(c.Packages) == 0 {
		errs = append(errs, "packages must define at least one package")
	}
	for id, pkg := range c.Packages {
		if pkg.Lamports <= 0 {
			errs = append(errs, fmt.Sprintf("packages.%s.lamports must be positive", id))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}
