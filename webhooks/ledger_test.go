package webhooks

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLedger_ReclaimsExpiredLease(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	ledger := NewMemoryLedger()
	ledger.Now = fixedClock(&now)

	first, claimed, err := ledger.Claim(context.Background(), "stripe", "delivery-1", nil, 30*time.Second)
	if err != nil || !claimed {
		t.Fatalf("expected fresh claim, got claimed=%v err=%v", claimed, err)
	}

	// A crashed worker never completes; the lease still blocks until expiry.
	if _, claimed, _ = ledger.Claim(context.Background(), "stripe", "delivery-1", nil, 30*time.Second); claimed {
		t.Fatalf("expected in-flight delivery to stay claimed")
	}

	now = now.Add(time.Minute)
	second, claimed, err := ledger.Claim(context.Background(), "stripe", "delivery-1", nil, 30*time.Second)
	if err != nil || !claimed {
		t.Fatalf("expected reclaim after lease expiry, got claimed=%v err=%v", claimed, err)
	}
	if second.ClaimID == first.ClaimID {
		t.Fatalf("expected reclaim to mint a fresh claim id")
	}
	if second.Attempts != 2 {
		t.Fatalf("expected attempts to increment on reclaim, got %d", second.Attempts)
	}
}

func TestMemoryLedger_CompleteRejectsUnknownClaim(t *testing.T) {
	ledger := NewMemoryLedger()
	if err := ledger.Complete(context.Background(), "missing"); err == nil {
		t.Fatalf("expected error for unknown claim id")
	}
}

func TestMemoryLedger_RequiresGatewayAndDeliveryID(t *testing.T) {
	ledger := NewMemoryLedger()
	if _, _, err := ledger.Claim(context.Background(), "", "delivery-1", nil, time.Second); err == nil {
		t.Fatalf("expected error for missing gateway")
	}
	if _, _, err := ledger.Claim(context.Background(), "stripe", "  ", nil, time.Second); err == nil {
		t.Fatalf("expected error for missing delivery id")
	}
}
