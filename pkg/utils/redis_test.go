package utils

import (
	"context"
	"testing"
	"time"
)

func TestLoginAttemptScriptCompiles(t *testing.T) {
	// Compile-time smoke test: the script should be initialized.
	if loginAttemptScript == nil {
		t.Fatalf("expected script to be initialized")
	}
}

func TestAllowLoginAttempt_ValidatesArgs(t *testing.T) {
	if _, err := AllowLoginAttempt(context.Background(), nil, "k", 5, time.Minute); err == nil {
		t.Fatalf("expected error for nil client")
	}
}

func TestResetLoginAttempts_ValidatesArgs(t *testing.T) {
	if err := ResetLoginAttempts(context.Background(), nil, "k"); err == nil {
		t.Fatalf("expected error for nil client")
	}
}
