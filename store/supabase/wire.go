package supastore

import (
	"time"

	"github.com/goliatone/go-paybridge/core"
)

// Wire shapes mirror the remote rows. Timestamps decode as pointers so rows
// from older schema revisions that lack a column still parse.

type userWire struct {
	ID             string         `json:"id"`
	Email          string         `json:"email"`
	FullName       *string        `json:"full_name"`
	AvatarURL      *string        `json:"avatar_url"`
	BillingAddress map[string]any `json:"billing_address"`
	PaymentMethod  map[string]any `json:"payment_method"`
	CreatedAt      *time.Time     `json:"created_at"`
	UpdatedAt      *time.Time     `json:"updated_at"`
}

type customerWire struct {
	ID                 string     `json:"id"`
	StripeCustomerID   *string    `json:"stripe_customer_id"`
	RazorpayCustomerID *string    `json:"razorpay_customer_id"`
	CreatedAt          *time.Time `json:"created_at"`
}

type productWire struct {
	ID          string         `json:"id"`
	Active      bool           `json:"active"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Image       *string        `json:"image"`
	Metadata    map[string]any `json:"metadata"`
	Prices      []priceWire    `json:"prices"`
	CreatedAt   *time.Time     `json:"created_at"`
	UpdatedAt   *time.Time     `json:"updated_at"`
}

type priceWire struct {
	ID              string         `json:"id"`
	ProductID       string         `json:"product_id"`
	Active          bool           `json:"active"`
	Description     *string        `json:"description"`
	UnitAmount      int64          `json:"unit_amount"`
	Currency        string         `json:"currency"`
	Type            string         `json:"type"`
	Interval        *string        `json:"interval"`
	IntervalCount   *int           `json:"interval_count"`
	TrialPeriodDays *int           `json:"trial_period_days"`
	Metadata        map[string]any `json:"metadata"`
	Product         *productWire   `json:"products"`
	CreatedAt       *time.Time     `json:"created_at"`
}

type subscriptionWire struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	Status             string         `json:"status"`
	Metadata           map[string]any `json:"metadata"`
	PriceID            string         `json:"price_id"`
	Quantity           *int           `json:"quantity"`
	CancelAtPeriodEnd  bool           `json:"cancel_at_period_end"`
	Created            *time.Time     `json:"created"`
	CurrentPeriodStart *time.Time     `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time     `json:"current_period_end"`
	EndedAt            *time.Time     `json:"ended_at"`
	CancelAt           *time.Time     `json:"cancel_at"`
	CanceledAt         *time.Time     `json:"canceled_at"`
	TrialStart         *time.Time     `json:"trial_start"`
	TrialEnd           *time.Time     `json:"trial_end"`
	Price              *priceWire     `json:"prices"`
}

func (w *userWire) toDomain() *core.User {
	if w == nil {
		return nil
	}
	return &core.User{
		ID:             w.ID,
		Email:          w.Email,
		FullName:       w.FullName,
		AvatarURL:      w.AvatarURL,
		BillingAddress: w.BillingAddress,
		PaymentMethod:  w.PaymentMethod,
		CreatedAt:      timeValue(w.CreatedAt),
		UpdatedAt:      timeValue(w.UpdatedAt),
	}
}

func (w *customerWire) toDomain() *core.Customer {
	if w == nil {
		return nil
	}
	return &core.Customer{
		ID:                 w.ID,
		StripeCustomerID:   w.StripeCustomerID,
		RazorpayCustomerID: w.RazorpayCustomerID,
		CreatedAt:          timeValue(w.CreatedAt),
	}
}

func (w *productWire) toDomain() *core.Product {
	if w == nil {
		return nil
	}
	product := &core.Product{
		ID:          w.ID,
		Active:      w.Active,
		Name:        w.Name,
		Description: w.Description,
		Image:       w.Image,
		Metadata:    w.Metadata,
		CreatedAt:   timeValue(w.CreatedAt),
		UpdatedAt:   timeValue(w.UpdatedAt),
	}
	for _, price := range w.Prices {
		converted := price.toDomain()
		if converted != nil {
			product.Prices = append(product.Prices, *converted)
		}
	}
	return product
}

func (w *priceWire) toDomain() *core.Price {
	if w == nil {
		return nil
	}
	price := &core.Price{
		ID:              w.ID,
		ProductID:       w.ProductID,
		Active:          w.Active,
		Description:     w.Description,
		UnitAmount:      w.UnitAmount,
		Currency:        w.Currency,
		Type:            core.PriceType(w.Type),
		IntervalCount:   w.IntervalCount,
		TrialPeriodDays: w.TrialPeriodDays,
		Metadata:        w.Metadata,
		CreatedAt:       timeValue(w.CreatedAt),
	}
	if w.Interval != nil {
		interval := core.PriceInterval(*w.Interval)
		price.Interval = &interval
	}
	if w.Product != nil {
		price.Product = w.Product.toDomain()
	}
	return price
}

func (w *subscriptionWire) toDomain() *core.Subscription {
	if w == nil {
		return nil
	}
	subscription := &core.Subscription{
		ID:                 w.ID,
		UserID:             w.UserID,
		Status:             core.SubscriptionStatus(w.Status),
		Metadata:           w.Metadata,
		PriceID:            w.PriceID,
		Quantity:           w.Quantity,
		CancelAtPeriodEnd:  w.CancelAtPeriodEnd,
		Created:            timeValue(w.Created),
		CurrentPeriodStart: timeValue(w.CurrentPeriodStart),
		CurrentPeriodEnd:   timeValue(w.CurrentPeriodEnd),
		EndedAt:            w.EndedAt,
		CancelAt:           w.CancelAt,
		CanceledAt:         w.CanceledAt,
		TrialStart:         w.TrialStart,
		TrialEnd:           w.TrialEnd,
	}
	if w.Price != nil {
		subscription.Price = w.Price.toDomain()
	}
	return subscription
}

func timeValue(value *time.Time) time.Time {
	if value == nil {
		return time.Time{}
	}
	return *value
}

// Payload builders emit only the columns the caller set so partial updates
// never null out sibling columns.

func userCreatePayload(in core.CreateUserInput) map[string]any {
	payload := map[string]any{
		"id":    in.ID,
		"email": in.Email,
	}
	if in.FullName != nil {
		payload["full_name"] = *in.FullName
	}
	if in.AvatarURL != nil {
		payload["avatar_url"] = *in.AvatarURL
	}
	if in.BillingAddress != nil {
		payload["billing_address"] = in.BillingAddress
	}
	if in.PaymentMethod != nil {
		payload["payment_method"] = in.PaymentMethod
	}
	return payload
}

func userUpdatePayload(in core.UpdateUserInput) map[string]any {
	payload := map[string]any{}
	if in.FullName != nil {
		payload["full_name"] = *in.FullName
	}
	if in.AvatarURL != nil {
		payload["avatar_url"] = *in.AvatarURL
	}
	if in.BillingAddress != nil {
		payload["billing_address"] = in.BillingAddress
	}
	if in.PaymentMethod != nil {
		payload["payment_method"] = in.PaymentMethod
	}
	return payload
}

func customerCreatePayload(in core.CreateCustomerInput) map[string]any {
	payload := map[string]any{
		"id": in.ID,
	}
	if in.StripeCustomerID != nil {
		payload["stripe_customer_id"] = *in.StripeCustomerID
	}
	if in.RazorpayCustomerID != nil {
		payload["razorpay_customer_id"] = *in.RazorpayCustomerID
	}
	return payload
}

func customerUpdatePayload(in core.UpdateCustomerInput) map[string]any {
	payload := map[string]any{}
	if in.StripeCustomerID != nil {
		payload["stripe_customer_id"] = *in.StripeCustomerID
	}
	if in.RazorpayCustomerID != nil {
		payload["razorpay_customer_id"] = *in.RazorpayCustomerID
	}
	return payload
}

func productCreatePayload(in core.CreateProductInput) map[string]any {
	payload := map[string]any{
		"id":   in.ID,
		"name": in.Name,
	}
	if in.Active != nil {
		payload["active"] = *in.Active
	} else {
		payload["active"] = true
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.Image != nil {
		payload["image"] = *in.Image
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}
	return payload
}

func productUpdatePayload(in core.UpdateProductInput) map[string]any {
	payload := map[string]any{}
	if in.Active != nil {
		payload["active"] = *in.Active
	}
	if in.Name != nil {
		payload["name"] = *in.Name
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.Image != nil {
		payload["image"] = *in.Image
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}
	return payload
}

func priceCreatePayload(in core.CreatePriceInput) map[string]any {
	payload := map[string]any{
		"id":          in.ID,
		"product_id":  in.ProductID,
		"unit_amount": in.UnitAmount,
		"currency":    in.Currency,
	}
	if in.Active != nil {
		payload["active"] = *in.Active
	} else {
		payload["active"] = true
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.Type != "" {
		payload["type"] = string(in.Type)
	}
	if in.Interval != nil {
		payload["interval"] = string(*in.Interval)
	}
	if in.IntervalCount != nil {
		payload["interval_count"] = *in.IntervalCount
	}
	if in.TrialPeriodDays != nil {
		payload["trial_period_days"] = *in.TrialPeriodDays
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}
	return payload
}

func priceUpdatePayload(in core.UpdatePriceInput) map[string]any {
	payload := map[string]any{}
	if in.Active != nil {
		payload["active"] = *in.Active
	}
	if in.Description != nil {
		payload["description"] = *in.Description
	}
	if in.UnitAmount != nil {
		payload["unit_amount"] = *in.UnitAmount
	}
	if in.Currency != nil {
		payload["currency"] = *in.Currency
	}
	if in.Type != nil {
		payload["type"] = string(*in.Type)
	}
	if in.Interval != nil {
		payload["interval"] = string(*in.Interval)
	}
	if in.IntervalCount != nil {
		payload["interval_count"] = *in.IntervalCount
	}
	if in.TrialPeriodDays != nil {
		payload["trial_period_days"] = *in.TrialPeriodDays
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}
	return payload
}

func subscriptionCreatePayload(in core.CreateSubscriptionInput) map[string]any {
	payload := map[string]any{
		"id":       in.ID,
		"user_id":  in.UserID,
		"price_id": in.PriceID,
	}
	if in.Status != "" {
		payload["status"] = string(in.Status)
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}
	if in.Quantity != nil {
		payload["quantity"] = *in.Quantity
	}
	if in.CancelAtPeriodEnd != nil {
		payload["cancel_at_period_end"] = *in.CancelAtPeriodEnd
	}
	for column, value := range map[string]*time.Time{
		"created":              in.Created,
		"current_period_start": in.CurrentPeriodStart,
		"current_period_end":   in.CurrentPeriodEnd,
		"ended_at":             in.EndedAt,
		"cancel_at":            in.CancelAt,
		"canceled_at":          in.CanceledAt,
		"trial_start":          in.TrialStart,
		"trial_end":            in.TrialEnd,
	} {
		if value != nil {
			payload[column] = value.UTC()
		}
	}
	return payload
}

func subscriptionUpdatePayload(in core.UpdateSubscriptionInput) map[string]any {
	payload := map[string]any{}
	if in.Status != nil {
		payload["status"] = string(*in.Status)
	}
	if in.Metadata != nil {
		payload["metadata"] = in.Metadata
	}
	if in.Quantity != nil {
		payload["quantity"] = *in.Quantity
	}
	if in.CancelAtPeriodEnd != nil {
		payload["cancel_at_period_end"] = *in.CancelAtPeriodEnd
	}
	for column, value := range map[string]*time.Time{
		"current_period_start": in.CurrentPeriodStart,
		"current_period_end":   in.CurrentPeriodEnd,
		"ended_at":             in.EndedAt,
		"cancel_at":            in.CancelAt,
		"canceled_at":          in.CanceledAt,
		"trial_start":          in.TrialStart,
		"trial_end":            in.TrialEnd,
	} {
		if value != nil {
			payload[column] = value.UTC()
		}
	}
	return payload
}
