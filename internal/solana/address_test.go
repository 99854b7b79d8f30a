package solana

import "testing"

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		addr    string
		wantErr bool
	}{
		{
			name: "system program address",
			addr: "11111111111111111111111111111111",
		},
		{
			name: "wrapped SOL mint",
			addr: "So11111111111111111111111111111111111111112",
		},
		{
			name:    "empty",
			addr:    "",
			wantErr: true,
		},
		{
			name:    "invalid base58 characters",
			addr:    "not-a-base58-address!",
			wantErr: true,
		},
		{
			name:    "too short",
			addr:    "abc",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateAddress(tt.addr)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateAddress(%q) expected error, got nil", tt.addr)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateAddress(%q) unexpected error: %v", tt.addr, err)
			}
		})
	}
}

func TestIsValidAddress(t *testing.T) {
	if !IsValidAddress("So11111111111111111111111111111111111111112") {
		t.Error("expected wrapped SOL mint to be valid")
	}
	if IsValidAddress("") {
		t.Error("expected empty address to be invalid")
	}
}
