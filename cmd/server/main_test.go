package main

import (
	"context"
	"path/filepath"
	"testing"

	"saboaria/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakSecret(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "short"})
	if err == nil {
		t.Fatalf("expected weak security config to be rejected")
	}
}

func TestValidateSecurityConfigAcceptsStrongSecret(t *testing.T) {
	err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef"})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestOpenSlotFallsBackToFile(t *testing.T) {
	cfg := config.Config{SnapshotPath: filepath.Join(t.TempDir(), "snapshot.json")}

	slot, name, err := openSlot(context.Background(), cfg)
	if err != nil {
		t.Fatalf("open slot failed: %v", err)
	}
	defer slot.Close()

	if name == "" {
		t.Fatalf("slot name must be reported")
	}
	if err := slot.Ping(context.Background()); err != nil {
		t.Fatalf("file slot ping failed: %v", err)
	}
}
