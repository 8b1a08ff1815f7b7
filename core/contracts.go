package core

import (
	"context"
	"encoding/json"
	"time"

	glog "github.com/goliatone/go-logger/glog"
)

// DataClient is the capability contract every backend adapter implements.
// Single-row reads return (nil, nil) when nothing matches; errors carry one
// of the taxonomy text codes from errors.go. All methods are synchronous and
// thread ctx through to the underlying engine or transport.
type DataClient interface {
	// GetUser returns the current authenticated user, or nil when the
	// backend has no notion of one (the embedded backend leaves identity
	// resolution to callers holding a session token).
	GetUser(ctx context.Context) (*User, error)
	CreateUser(ctx context.Context, in CreateUserInput) (*User, error)
	UpdateUser(ctx context.Context, userID string, in UpdateUserInput) (*User, error)

	GetCustomer(ctx context.Context, userID string) (*Customer, error)
	CreateCustomer(ctx context.Context, in CreateCustomerInput) (*Customer, error)
	UpdateCustomer(ctx context.Context, userID string, in UpdateCustomerInput) (*Customer, error)

	// GetProducts returns active products with their active prices nested,
	// ordered by the metadata "index" key and then by nested unit amount.
	GetProducts(ctx context.Context) ([]Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	CreateProduct(ctx context.Context, in CreateProductInput) (*Product, error)
	UpdateProduct(ctx context.Context, productID string, in UpdateProductInput) (*Product, error)
	DeleteProduct(ctx context.Context, productID string) error

	GetPrices(ctx context.Context) ([]Price, error)
	GetPrice(ctx context.Context, priceID string) (*Price, error)
	CreatePrice(ctx context.Context, in CreatePriceInput) (*Price, error)
	UpdatePrice(ctx context.Context, priceID string, in UpdatePriceInput) (*Price, error)
	DeletePrice(ctx context.Context, priceID string) error

	// GetSubscription returns the user's subscription in a status counted as
	// active, with price and that price's product nested.
	GetSubscription(ctx context.Context, userID string) (*Subscription, error)
	GetSubscriptions(ctx context.Context) ([]Subscription, error)
	CreateSubscription(ctx context.Context, in CreateSubscriptionInput) (*Subscription, error)
	UpdateSubscription(ctx context.Context, subscriptionID string, in UpdateSubscriptionInput) (*Subscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID string) error

	SignUp(ctx context.Context, email, password string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
	SignOut(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error

	HandleWebhook(ctx context.Context, event WebhookEvent) error
}

// WebhookEvent is the generic event envelope dispatched into adapters. The
// object payload stays raw until the receiving adapter decodes it into the
// entity input matching the event type.
type WebhookEvent struct {
	Type string           `json:"type"`
	Data WebhookEventData `json:"data"`
}

type WebhookEventData struct {
	Object json.RawMessage `json:"object"`
}

// Webhook event types routed by the embedded adapter. Gateway-specific event
// streams are normalized to these by the webhooks package before dispatch.
const (
	WebhookProductCreated      = "product.created"
	WebhookProductUpdated      = "product.updated"
	WebhookPriceCreated        = "price.created"
	WebhookPriceUpdated        = "price.updated"
	WebhookSubscriptionCreated = "customer.subscription.created"
	WebhookSubscriptionUpdated = "customer.subscription.updated"
)

// TransportRequest describes one remote call for a transport adapter.
type TransportRequest struct {
	Method               string
	URL                  string
	Headers              map[string]string
	Query                map[string]string
	Body                 []byte
	Timeout              time.Duration
	MaxResponseBodyBytes int64
}

type TransportResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
	Duration   time.Duration
}

// TransportAdapter executes remote requests for the supabase adapter.
type TransportAdapter interface {
	Kind() string
	Do(ctx context.Context, req TransportRequest) (TransportResponse, error)
}

type Logger = glog.Logger

type LoggerProvider = glog.LoggerProvider

type FieldsLogger = glog.FieldsLogger
