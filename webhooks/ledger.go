package webhooks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DeliveryStatusProcessing = "processing"
	DeliveryStatusProcessed  = "processed"
	DeliveryStatusRetryReady = "retry_ready"
	DeliveryStatusDead       = "dead"
)

// DeliveryRecord tracks one gateway delivery through the dedupe ledger.
type DeliveryRecord struct {
	ID            string
	ClaimID       string
	Gateway       string
	DeliveryID    string
	Status        string
	Attempts      int
	NextAttemptAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DeliveryLedger claims deliveries for exclusive processing and records
// their terminal state. Claiming an already processed delivery reports
// claimed=false so the caller can acknowledge without reprocessing.
type DeliveryLedger interface {
	Claim(ctx context.Context, gateway, deliveryID string, payload []byte, lease time.Duration) (DeliveryRecord, bool, error)
	Get(ctx context.Context, gateway, deliveryID string) (DeliveryRecord, error)
	Complete(ctx context.Context, claimID string) error
	Fail(ctx context.Context, claimID string, cause error, nextAttemptAt time.Time, maxAttempts int) error
}

type ledgerEntry struct {
	record       DeliveryRecord
	payload      []byte
	leaseExpires time.Time
}

// MemoryLedger is an in-process DeliveryLedger keyed by gateway plus
// delivery id. It suits single-instance deployments; a multi-instance
// deployment would back the same interface with shared storage.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]*ledgerEntry
	Now     func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		entries: map[string]*ledgerEntry{},
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

func ledgerKey(gateway, deliveryID string) string {
	return strings.TrimSpace(gateway) + "\x00" + strings.TrimSpace(deliveryID)
}

func (l *MemoryLedger) now() time.Time {
	if l != nil && l.Now != nil {
		return l.Now().UTC()
	}
	return time.Now().UTC()
}

func (l *MemoryLedger) Claim(
	_ context.Context,
	gateway string,
	deliveryID string,
	payload []byte,
	lease time.Duration,
) (DeliveryRecord, bool, error) {
	if l == nil {
		return DeliveryRecord{}, false, fmt.Errorf("webhooks: ledger is not configured")
	}
	gateway = strings.TrimSpace(gateway)
	deliveryID = strings.TrimSpace(deliveryID)
	if gateway == "" || deliveryID == "" {
		return DeliveryRecord{}, false, fmt.Errorf("webhooks: gateway and delivery id are required")
	}
	if lease <= 0 {
		lease = 30 * time.Second
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	entry, ok := l.entries[ledgerKey(gateway, deliveryID)]
	if !ok {
		record := DeliveryRecord{
			ID:         uuid.NewString(),
			ClaimID:    uuid.NewString(),
			Gateway:    gateway,
			DeliveryID: deliveryID,
			Status:     DeliveryStatusProcessing,
			Attempts:   1,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		l.entries[ledgerKey(gateway, deliveryID)] = &ledgerEntry{
			record:       record,
			payload:      append([]byte(nil), payload...),
			leaseExpires: now.Add(lease),
		}
		return record, true, nil
	}

	switch entry.record.Status {
	case DeliveryStatusProcessed, DeliveryStatusDead:
		return entry.record, false, nil
	case DeliveryStatusProcessing:
		if now.Before(entry.leaseExpires) {
			return entry.record, false, nil
		}
	case DeliveryStatusRetryReady:
		if entry.record.NextAttemptAt != nil && now.Before(*entry.record.NextAttemptAt) {
			return entry.record, false, nil
		}
	}

	// Expired lease or due retry: hand out a fresh claim.
	entry.record.ClaimID = uuid.NewString()
	entry.record.Status = DeliveryStatusProcessing
	entry.record.Attempts++
	entry.record.NextAttemptAt = nil
	entry.record.UpdatedAt = now
	entry.leaseExpires = now.Add(lease)
	return entry.record, true, nil
}

func (l *MemoryLedger) Get(_ context.Context, gateway, deliveryID string) (DeliveryRecord, error) {
	if l == nil {
		return DeliveryRecord{}, fmt.Errorf("webhooks: ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[ledgerKey(gateway, deliveryID)]
	if !ok {
		return DeliveryRecord{}, fmt.Errorf("webhooks: delivery not found for gateway %q delivery %q", gateway, deliveryID)
	}
	return entry.record, nil
}

func (l *MemoryLedger) Complete(_ context.Context, claimID string) error {
	if l == nil {
		return fmt.Errorf("webhooks: ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.findByClaim(claimID)
	if entry == nil {
		return fmt.Errorf("webhooks: no delivery holds claim %q", claimID)
	}
	entry.record.Status = DeliveryStatusProcessed
	entry.record.NextAttemptAt = nil
	entry.record.UpdatedAt = l.now()
	entry.payload = nil
	return nil
}

func (l *MemoryLedger) Fail(
	_ context.Context,
	claimID string,
	_ error,
	nextAttemptAt time.Time,
	maxAttempts int,
) error {
	if l == nil {
		return fmt.Errorf("webhooks: ledger is not configured")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	entry := l.findByClaim(claimID)
	if entry == nil {
		return fmt.Errorf("webhooks: no delivery holds claim %q", claimID)
	}
	now := l.now()
	if maxAttempts > 0 && entry.record.Attempts >= maxAttempts {
		entry.record.Status = DeliveryStatusDead
		entry.record.NextAttemptAt = nil
	} else {
		next := nextAttemptAt.UTC()
		entry.record.Status = DeliveryStatusRetryReady
		entry.record.NextAttemptAt = &next
	}
	entry.record.UpdatedAt = now
	return nil
}

func (l *MemoryLedger) findByClaim(claimID string) *ledgerEntry {
	claimID = strings.TrimSpace(claimID)
	if claimID == "" {
		return nil
	}
	for _, entry := range l.entries {
		if entry.record.ClaimID == claimID {
			return entry
		}
	}
	return nil
}

var _ DeliveryLedger = (*MemoryLedger)(nil)
