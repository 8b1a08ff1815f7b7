package sqlstore

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"
)

type userRecord struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID             string    `bun:"id,pk"`
	Email          string    `bun:"email,notnull"`
	FullName       *string   `bun:"full_name"`
	AvatarURL      *string   `bun:"avatar_url"`
	BillingAddress *string   `bun:"billing_address"`
	PaymentMethod  *string   `bun:"payment_method"`
	CreatedAt      time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt      time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type customerRecord struct {
	bun.BaseModel `bun:"table:customers,alias:c"`

	ID                 string    `bun:"id,pk"`
	StripeCustomerID   *string   `bun:"stripe_customer_id"`
	RazorpayCustomerID *string   `bun:"razorpay_customer_id"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type productRecord struct {
	bun.BaseModel `bun:"table:products,alias:p"`

	ID          string    `bun:"id,pk"`
	Active      bool      `bun:"active"`
	Name        string    `bun:"name,notnull"`
	Description *string   `bun:"description"`
	Image       *string   `bun:"image"`
	Metadata    *string   `bun:"metadata"`
	CreatedAt   time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
	UpdatedAt   time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp"`
}

type priceRecord struct {
	bun.BaseModel `bun:"table:prices,alias:pr"`

	ID              string    `bun:"id,pk"`
	ProductID       string    `bun:"product_id"`
	Active          bool      `bun:"active"`
	Description     *string   `bun:"description"`
	UnitAmount      int64     `bun:"unit_amount"`
	Currency        string    `bun:"currency"`
	Type            *string   `bun:"type"`
	Interval        *string   `bun:"interval"`
	IntervalCount   *int      `bun:"interval_count"`
	TrialPeriodDays *int      `bun:"trial_period_days"`
	Metadata        *string   `bun:"metadata"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

type subscriptionRecord struct {
	bun.BaseModel `bun:"table:subscriptions,alias:s"`

	ID                 string     `bun:"id,pk"`
	UserID             string     `bun:"user_id,notnull"`
	Status             *string    `bun:"status"`
	Metadata           *string    `bun:"metadata"`
	PriceID            string     `bun:"price_id"`
	Quantity           *int       `bun:"quantity"`
	CancelAtPeriodEnd  bool       `bun:"cancel_at_period_end"`
	Created            time.Time  `bun:"created,nullzero,notnull,default:current_timestamp"`
	CurrentPeriodStart time.Time  `bun:"current_period_start,nullzero,notnull,default:current_timestamp"`
	CurrentPeriodEnd   time.Time  `bun:"current_period_end,nullzero,notnull,default:current_timestamp"`
	EndedAt            *time.Time `bun:"ended_at"`
	CancelAt           *time.Time `bun:"cancel_at"`
	CanceledAt         *time.Time `bun:"canceled_at"`
	TrialStart         *time.Time `bun:"trial_start"`
	TrialEnd           *time.Time `bun:"trial_end"`
}

type sessionRecord struct {
	bun.BaseModel `bun:"table:auth_sessions,alias:sess"`

	ID           string    `bun:"id,pk"`
	UserID       string    `bun:"user_id,notnull"`
	AccessToken  string    `bun:"access_token,notnull"`
	RefreshToken *string   `bun:"refresh_token"`
	ExpiresAt    time.Time `bun:"expires_at,notnull"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// marshalBlob serializes an opaque structured blob to its canonical JSON text
// form. A nil map stays a NULL column.
func marshalBlob(blob map[string]any) (*string, error) {
	if blob == nil {
		return nil, nil
	}
	encoded, err := json.Marshal(blob)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: marshal blob: %w", err)
	}
	text := string(encoded)
	return &text, nil
}

// unmarshalBlob parses a JSON text column. A NULL column reads back as nil,
// never as an empty map.
func unmarshalBlob(text *string) (map[string]any, error) {
	if text == nil || *text == "" {
		return nil, nil
	}
	var blob map[string]any
	if err := json.Unmarshal([]byte(*text), &blob); err != nil {
		return nil, fmt.Errorf("sqlstore: unmarshal blob: %w", err)
	}
	return blob, nil
}
