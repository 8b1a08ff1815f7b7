package core

import (
	"strings"
	"time"
)

// User is the account record shared by both backends. BillingAddress and
// PaymentMethod are opaque structured blobs; a nil map means the column is
// NULL, never an empty object.
type User struct {
	ID             string
	Email          string
	FullName       *string
	AvatarURL      *string
	BillingAddress map[string]any
	PaymentMethod  map[string]any
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Customer binds a user to its external payment-gateway customer ids. The
// customer id is the owning user id.
type Customer struct {
	ID                 string
	StripeCustomerID   *string
	RazorpayCustomerID *string
	CreatedAt          time.Time
}

type Product struct {
	ID          string
	Active      bool
	Name        string
	Description *string
	Image       *string
	Metadata    map[string]any
	// Prices is populated by nested reads (GetProducts, GetProduct); it is
	// never written through the product operations.
	Prices    []Price
	CreatedAt time.Time
	UpdatedAt time.Time
}

type PriceType string

const (
	PriceTypeOneTime   PriceType = "one_time"
	PriceTypeRecurring PriceType = "recurring"
)

type PriceInterval string

const (
	PriceIntervalDay   PriceInterval = "day"
	PriceIntervalWeek  PriceInterval = "week"
	PriceIntervalMonth PriceInterval = "month"
	PriceIntervalYear  PriceInterval = "year"
)

type Price struct {
	ID              string
	ProductID       string
	Active          bool
	Description     *string
	UnitAmount      int64
	Currency        string
	Type            PriceType
	Interval        *PriceInterval
	IntervalCount   *int
	TrialPeriodDays *int
	Metadata        map[string]any
	// Product is populated by nested reads (GetPrice, GetSubscription).
	Product   *Product
	CreatedAt time.Time
}

type SubscriptionStatus string

const (
	SubscriptionStatusTrialing          SubscriptionStatus = "trialing"
	SubscriptionStatusActive            SubscriptionStatus = "active"
	SubscriptionStatusCanceled          SubscriptionStatus = "canceled"
	SubscriptionStatusIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionStatusIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionStatusPastDue           SubscriptionStatus = "past_due"
	SubscriptionStatusUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionStatusPaused            SubscriptionStatus = "paused"
)

func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionStatusTrialing,
		SubscriptionStatusActive,
		SubscriptionStatusCanceled,
		SubscriptionStatusIncomplete,
		SubscriptionStatusIncompleteExpired,
		SubscriptionStatusPastDue,
		SubscriptionStatusUnpaid,
		SubscriptionStatusPaused:
		return true
	}
	return false
}

// ConsideredActive reports whether a subscription in this status counts as
// "the" active subscription for a user.
func (s SubscriptionStatus) ConsideredActive() bool {
	return s == SubscriptionStatusTrialing || s == SubscriptionStatusActive
}

type Subscription struct {
	ID                 string
	UserID             string
	Status             SubscriptionStatus
	Metadata           map[string]any
	PriceID            string
	Quantity           *int
	CancelAtPeriodEnd  bool
	Created            time.Time
	CurrentPeriodStart time.Time
	CurrentPeriodEnd   time.Time
	EndedAt            *time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
	// Price (and transitively Price.Product) is populated by nested reads.
	Price *Price
}

// Session is an embedded-backend auth session. The remote backend keeps its
// sessions server side and never materializes this record locally.
type Session struct {
	ID           string
	UserID       string
	AccessToken  string
	RefreshToken *string
	ExpiresAt    time.Time
	CreatedAt    time.Time
}

// SessionTTL is the fixed lifetime of an embedded-backend session.
const SessionTTL = 7 * 24 * time.Hour

// AuthResult is the uniform sign-up/sign-in response shape.
type AuthResult struct {
	User    *User
	Session *Session
}

type CreateUserInput struct {
	ID             string
	Email          string
	FullName       *string
	AvatarURL      *string
	BillingAddress map[string]any
	PaymentMethod  map[string]any
}

func (in CreateUserInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return NewValidationError("user id is required")
	}
	if strings.TrimSpace(in.Email) == "" {
		return NewValidationError("user email is required")
	}
	return nil
}

// UpdateUserInput carries partial updates; a nil field is left unchanged.
type UpdateUserInput struct {
	FullName       *string
	AvatarURL      *string
	BillingAddress map[string]any
	PaymentMethod  map[string]any
}

type CreateCustomerInput struct {
	ID                 string
	StripeCustomerID   *string
	RazorpayCustomerID *string
}

func (in CreateCustomerInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return NewValidationError("customer id is required")
	}
	return nil
}

type UpdateCustomerInput struct {
	StripeCustomerID   *string
	RazorpayCustomerID *string
}

type CreateProductInput struct {
	ID          string
	Active      *bool
	Name        string
	Description *string
	Image       *string
	Metadata    map[string]any
}

func (in CreateProductInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return NewValidationError("product id is required")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewValidationError("product name is required")
	}
	return nil
}

type UpdateProductInput struct {
	Active      *bool
	Name        *string
	Description *string
	Image       *string
	Metadata    map[string]any
}

type CreatePriceInput struct {
	ID              string
	ProductID       string
	Active          *bool
	Description     *string
	UnitAmount      int64
	Currency        string
	Type            PriceType
	Interval        *PriceInterval
	IntervalCount   *int
	TrialPeriodDays *int
	Metadata        map[string]any
}

func (in CreatePriceInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return NewValidationError("price id is required")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return NewValidationError("price product id is required")
	}
	if in.Type != "" && in.Type != PriceTypeOneTime && in.Type != PriceTypeRecurring {
		return NewValidationError("price type must be one_time or recurring")
	}
	return nil
}

type UpdatePriceInput struct {
	Active          *bool
	Description     *string
	UnitAmount      *int64
	Currency        *string
	Type            *PriceType
	Interval        *PriceInterval
	IntervalCount   *int
	TrialPeriodDays *int
	Metadata        map[string]any
}

type CreateSubscriptionInput struct {
	ID                 string
	UserID             string
	Status             SubscriptionStatus
	Metadata           map[string]any
	PriceID            string
	Quantity           *int
	CancelAtPeriodEnd  *bool
	Created            *time.Time
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	EndedAt            *time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
}

func (in CreateSubscriptionInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return NewValidationError("subscription id is required")
	}
	if strings.TrimSpace(in.UserID) == "" {
		return NewValidationError("subscription user id is required")
	}
	if in.Status != "" && !in.Status.Valid() {
		return NewValidationError("subscription status is not a known status")
	}
	return nil
}

type UpdateSubscriptionInput struct {
	Status             *SubscriptionStatus
	Metadata           map[string]any
	Quantity           *int
	CancelAtPeriodEnd  *bool
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	EndedAt            *time.Time
	CancelAt           *time.Time
	CanceledAt         *time.Time
	TrialStart         *time.Time
	TrialEnd           *time.Time
}
