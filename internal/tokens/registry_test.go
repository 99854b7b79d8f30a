package tokens

import (
	"strconv"
	"testing"
)

func TestRegistry_AddAssignsIdentity(t *testing.T) {
	reg := NewRegistry(50)

	stored := reg.Add(Token{
		Mint:      "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Name:      "Forge Coin",
		Symbol:    "FORGE",
		Decimals:  9,
		Supply:    1_000_000,
		Creator:   "11111111111111111111111111111111",
		Signature: "sig-1",
		PackageID: "starter",
	})

	if stored.ID == "" {
		t.Error("expected assigned token id")
	}
	if stored.CreatedAt.IsZero() {
		t.Error("expected assigned creation time")
	}
	if stored.Name != "Forge Coin" || stored.PackageID != "starter" {
		t.Errorf("unexpected token: %+v", stored)
	}
}

func TestRegistry_NewestFirstEviction(t *testing.T) {
	reg := NewRegistry(50)

	for i := 0; i < 60; i++ {
		reg.Add(Token{Mint: "mint-" + strconv.Itoa(i)})
	}

	if reg.Len() != 50 {
		t.Fatalf("expected registry capped at 50, got %d", reg.Len())
	}

	recent := reg.Recent(0)
	if recent[0].Mint != "mint-59" {
		t.Errorf("expected newest token first, got %s", recent[0].Mint)
	}
	if recent[49].Mint != "mint-10" {
		t.Errorf("expected oldest surviving token mint-10, got %s", recent[49].Mint)
	}
}

func TestRegistry_RecentLimit(t *testing.T) {
	reg := NewRegistry(50)
	for i := 0; i < 30; i++ {
		reg.Add(Token{Mint: "mint-" + strconv.Itoa(i)})
	}

	if got := len(reg.Recent(20)); got != 20 {
		t.Errorf("Recent(20): expected 20, got %d", got)
	}
	if got := len(reg.Recent(100)); got != 30 {
		t.Errorf("Recent(100): expected 30, got %d", got)
	}
}

func TestRegistry_RecentReturnsCopy(t *testing.T) {
	reg := NewRegistry(50)
	reg.Add(Token{Mint: "original"})

	list := reg.Recent(0)
	list[0].Mint = "mutated"

	again := reg.Recent(0)
	if again[0].Mint != "original" {
		t.Error("Recent should return a copy, not the internal slice")
	}
}
