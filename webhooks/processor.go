// Package webhooks turns raw gateway deliveries into data-layer writes. A
// Processor claims each delivery in a ledger so duplicate deliveries from an
// at-least-once gateway acknowledge without touching the backend twice, then
// dispatches the decoded event envelope into the data client.
package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-paybridge/core"
)

// Delivery is one inbound gateway request.
type Delivery struct {
	// Gateway names the origin stream, e.g. "stripe". Required.
	Gateway string
	// DeliveryID identifies this delivery for dedupe. When empty the
	// processor's extractor derives it from headers or the envelope.
	DeliveryID string
	Headers    map[string]string
	// Body is the raw event envelope: {"type": ..., "data": {"object": ...}}.
	Body []byte
}

// Result reports how a delivery was settled.
type Result struct {
	Accepted   bool
	StatusCode int
	Deduped    bool
	EventType  string
	DeliveryID string
}

// Dispatcher receives normalized events. The facade Client and every backend
// adapter satisfy it.
type Dispatcher interface {
	HandleWebhook(ctx context.Context, event core.WebhookEvent) error
}

// DeliveryIDExtractor resolves the dedupe key for a delivery.
type DeliveryIDExtractor func(delivery Delivery) (string, error)

type RetryPolicy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialRetryPolicy doubles the delay per attempt up to Max.
type ExponentialRetryPolicy struct {
	Initial time.Duration
	Max     time.Duration
}

func (p ExponentialRetryPolicy) NextDelay(attempt int) time.Duration {
	initial := p.Initial
	if initial <= 0 {
		initial = time.Second
	}
	maximum := p.Max
	if maximum <= 0 {
		maximum = 30 * time.Second
	}
	delay := initial
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maximum {
			return maximum
		}
	}
	if delay > maximum {
		return maximum
	}
	return delay
}

// Processor claims, dispatches, and settles gateway deliveries.
type Processor struct {
	Ledger      DeliveryLedger
	Dispatcher  Dispatcher
	ExtractID   DeliveryIDExtractor
	RetryPolicy RetryPolicy
	Logger      core.Logger
	ClaimLease  time.Duration
	MaxAttempts int
	Now         func() time.Time
}

func NewProcessor(ledger DeliveryLedger, dispatcher Dispatcher) *Processor {
	return &Processor{
		Ledger:      ledger,
		Dispatcher:  dispatcher,
		ExtractID:   DefaultDeliveryIDExtractor,
		RetryPolicy: ExponentialRetryPolicy{},
		Logger:      glog.Nop(),
		ClaimLease:  30 * time.Second,
		MaxAttempts: 8,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Process settles one delivery. Duplicate deliveries acknowledge with
// Deduped=true and never reach the dispatcher. Dispatch failures park the
// delivery for retry; malformed envelopes settle immediately since replaying
// them cannot succeed.
func (p *Processor) Process(ctx context.Context, delivery Delivery) (Result, error) {
	if p == nil || p.Dispatcher == nil || p.Ledger == nil {
		return Result{}, fmt.Errorf("webhooks: processor requires dispatcher and ledger")
	}

	gateway := strings.TrimSpace(delivery.Gateway)
	if gateway == "" {
		return Result{}, fmt.Errorf("webhooks: gateway is required")
	}

	extractor := p.ExtractID
	if extractor == nil {
		extractor = DefaultDeliveryIDExtractor
	}
	deliveryID, err := extractor(delivery)
	if err != nil {
		return Result{}, err
	}

	claim, claimed, err := p.Ledger.Claim(ctx, gateway, deliveryID, delivery.Body, p.claimLease())
	if err != nil {
		return Result{}, err
	}
	if !claimed {
		p.logger().Info("duplicate delivery acknowledged", "gateway", gateway, "delivery_id", deliveryID, "status", claim.Status)
		return Result{
			Accepted:   true,
			StatusCode: http.StatusOK,
			Deduped:    true,
			DeliveryID: deliveryID,
		}, nil
	}

	var event core.WebhookEvent
	if decodeErr := json.Unmarshal(delivery.Body, &event); decodeErr != nil || strings.TrimSpace(event.Type) == "" {
		// A malformed envelope never gets better on retry.
		if markErr := p.Ledger.Complete(ctx, claim.ClaimID); markErr != nil {
			return Result{}, markErr
		}
		if decodeErr == nil {
			decodeErr = fmt.Errorf("webhooks: event envelope has no type")
		}
		return Result{
			Accepted:   false,
			StatusCode: http.StatusBadRequest,
			DeliveryID: deliveryID,
		}, fmt.Errorf("webhooks: decode delivery %q from %s: %w", deliveryID, gateway, decodeErr)
	}

	if err := p.Dispatcher.HandleWebhook(ctx, event); err != nil {
		nextAttemptAt := p.now().Add(p.retryPolicy().NextDelay(claim.Attempts))
		_ = p.Ledger.Fail(ctx, claim.ClaimID, err, nextAttemptAt, p.maxAttempts())
		p.logger().Error("delivery dispatch failed", "gateway", gateway, "delivery_id", deliveryID, "event_type", event.Type, "error", err)
		return Result{
			Accepted:   false,
			StatusCode: http.StatusInternalServerError,
			EventType:  event.Type,
			DeliveryID: deliveryID,
		}, err
	}

	if err := p.Ledger.Complete(ctx, claim.ClaimID); err != nil {
		return Result{}, err
	}
	p.logger().Info("delivery processed", "gateway", gateway, "delivery_id", deliveryID, "event_type", event.Type)
	return Result{
		Accepted:   true,
		StatusCode: http.StatusOK,
		EventType:  event.Type,
		DeliveryID: deliveryID,
	}, nil
}

// DefaultDeliveryIDExtractor prefers the explicit id, then common dedupe
// headers, then the envelope's own "id" field.
func DefaultDeliveryIDExtractor(delivery Delivery) (string, error) {
	if id := strings.TrimSpace(delivery.DeliveryID); id != "" {
		return id, nil
	}
	for _, key := range []string{"x-delivery-id", "webhook-id", "x-request-id"} {
		if value := headerValue(delivery.Headers, key); value != "" {
			return value, nil
		}
	}
	var envelope struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(delivery.Body, &envelope); err == nil {
		if id := strings.TrimSpace(envelope.ID); id != "" {
			return id, nil
		}
	}
	return "", fmt.Errorf("webhooks: delivery id is required for dedupe")
}

func (p *Processor) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *Processor) retryPolicy() RetryPolicy {
	if p != nil && p.RetryPolicy != nil {
		return p.RetryPolicy
	}
	return ExponentialRetryPolicy{}
}

func (p *Processor) claimLease() time.Duration {
	if p != nil && p.ClaimLease > 0 {
		return p.ClaimLease
	}
	return 30 * time.Second
}

func (p *Processor) maxAttempts() int {
	if p != nil && p.MaxAttempts > 0 {
		return p.MaxAttempts
	}
	return 8
}

func (p *Processor) logger() core.Logger {
	if p != nil && p.Logger != nil {
		return p.Logger
	}
	return glog.Nop()
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
