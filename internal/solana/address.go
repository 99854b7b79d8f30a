package solana

import (
	"fmt"

	solanago "github.com/gagliardetto/solana-go"
)

// ValidateAddress parses a base58-encoded Solana address.
// Returns the decoded public key so callers can compare keys rather than
// raw strings.
func ValidateAddress(addr string) (solanago.PublicKey, error) {
	if addr == "" {
		return solanago.PublicKey{}, fmt.Errorf("address is empty")
	}
	key, err := solanago.PublicKeyFromBase58(addr)
	if err != nil {
		return solanago.PublicKey{}, fmt.Errorf("invalid solana address %q: %w", addr, err)
	}
	return key, nil
}

// IsValidAddress reports whether addr is a well-formed base58 Solana address.
func IsValidAddress(addr string) bool {
	_, err := ValidateAddress(addr)
	return err == nil
}
