package sqlstore

import (
	"time"

	"github.com/goliatone/go-paybridge/core"
)

func newUserRecord(in core.CreateUserInput, now time.Time) (*userRecord, error) {
	billing, err := marshalBlob(in.BillingAddress)
	if err != nil {
		return nil, err
	}
	payment, err := marshalBlob(in.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &userRecord{
		ID:             in.ID,
		Email:          in.Email,
		FullName:       copyString(in.FullName),
		AvatarURL:      copyString(in.AvatarURL),
		BillingAddress: billing,
		PaymentMethod:  payment,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (r *userRecord) toDomain() (*core.User, error) {
	if r == nil {
		return nil, nil
	}
	billing, err := unmarshalBlob(r.BillingAddress)
	if err != nil {
		return nil, err
	}
	payment, err := unmarshalBlob(r.PaymentMethod)
	if err != nil {
		return nil, err
	}
	return &core.User{
		ID:             r.ID,
		Email:          r.Email,
		FullName:       copyString(r.FullName),
		AvatarURL:      copyString(r.AvatarURL),
		BillingAddress: billing,
		PaymentMethod:  payment,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}, nil
}

func newCustomerRecord(in core.CreateCustomerInput, now time.Time) *customerRecord {
	return &customerRecord{
		ID:                 in.ID,
		StripeCustomerID:   copyString(in.StripeCustomerID),
		RazorpayCustomerID: copyString(in.RazorpayCustomerID),
		CreatedAt:          now,
	}
}

func (r *customerRecord) toDomain() *core.Customer {
	if r == nil {
		return nil
	}
	return &core.Customer{
		ID:                 r.ID,
		StripeCustomerID:   copyString(r.StripeCustomerID),
		RazorpayCustomerID: copyString(r.RazorpayCustomerID),
		CreatedAt:          r.CreatedAt,
	}
}

func newProductRecord(in core.CreateProductInput, now time.Time) (*productRecord, error) {
	metadata, err := marshalBlob(in.Metadata)
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	return &productRecord{
		ID:          in.ID,
		Active:      active,
		Name:        in.Name,
		Description: copyString(in.Description),
		Image:       copyString(in.Image),
		Metadata:    metadata,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (r *productRecord) toDomain() (*core.Product, error) {
	if r == nil {
		return nil, nil
	}
	metadata, err := unmarshalBlob(r.Metadata)
	if err != nil {
		return nil, err
	}
	return &core.Product{
		ID:          r.ID,
		Active:      r.Active,
		Name:        r.Name,
		Description: copyString(r.Description),
		Image:       copyString(r.Image),
		Metadata:    metadata,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

func newPriceRecord(in core.CreatePriceInput, now time.Time) (*priceRecord, error) {
	metadata, err := marshalBlob(in.Metadata)
	if err != nil {
		return nil, err
	}
	active := true
	if in.Active != nil {
		active = *in.Active
	}
	record := &priceRecord{
		ID:              in.ID,
		ProductID:       in.ProductID,
		Active:          active,
		Description:     copyString(in.Description),
		UnitAmount:      in.UnitAmount,
		Currency:        in.Currency,
		IntervalCount:   copyInt(in.IntervalCount),
		TrialPeriodDays: copyInt(in.TrialPeriodDays),
		Metadata:        metadata,
		CreatedAt:       now,
	}
	// Unset enums store as NULL, never ''; the schema CHECK rejects ''.
	if in.Type != "" {
		priceType := string(in.Type)
		record.Type = &priceType
	}
	if in.Interval != nil {
		interval := string(*in.Interval)
		record.Interval = &interval
	}
	return record, nil
}

func (r *priceRecord) toDomain() (*core.Price, error) {
	if r == nil {
		return nil, nil
	}
	metadata, err := unmarshalBlob(r.Metadata)
	if err != nil {
		return nil, err
	}
	price := &core.Price{
		ID:              r.ID,
		ProductID:       r.ProductID,
		Active:          r.Active,
		Description:     copyString(r.Description),
		UnitAmount:      r.UnitAmount,
		Currency:        r.Currency,
		Type:            core.PriceType(stringValue(r.Type)),
		IntervalCount:   copyInt(r.IntervalCount),
		TrialPeriodDays: copyInt(r.TrialPeriodDays),
		Metadata:        metadata,
		CreatedAt:       r.CreatedAt,
	}
	if r.Interval != nil {
		interval := core.PriceInterval(*r.Interval)
		price.Interval = &interval
	}
	return price, nil
}

func newSubscriptionRecord(in core.CreateSubscriptionInput, now time.Time) (*subscriptionRecord, error) {
	metadata, err := marshalBlob(in.Metadata)
	if err != nil {
		return nil, err
	}
	record := &subscriptionRecord{
		ID:                 in.ID,
		UserID:             in.UserID,
		Metadata:           metadata,
		PriceID:            in.PriceID,
		Quantity:           copyInt(in.Quantity),
		Created:            now,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now,
		EndedAt:            copyTime(in.EndedAt),
		CancelAt:           copyTime(in.CancelAt),
		CanceledAt:         copyTime(in.CanceledAt),
		TrialStart:         copyTime(in.TrialStart),
		TrialEnd:           copyTime(in.TrialEnd),
	}
	if in.Status != "" {
		status := string(in.Status)
		record.Status = &status
	}
	if in.CancelAtPeriodEnd != nil {
		record.CancelAtPeriodEnd = *in.CancelAtPeriodEnd
	}
	if in.Created != nil {
		record.Created = *in.Created
	}
	if in.CurrentPeriodStart != nil {
		record.CurrentPeriodStart = *in.CurrentPeriodStart
	}
	if in.CurrentPeriodEnd != nil {
		record.CurrentPeriodEnd = *in.CurrentPeriodEnd
	}
	return record, nil
}

func (r *subscriptionRecord) toDomain() (*core.Subscription, error) {
	if r == nil {
		return nil, nil
	}
	metadata, err := unmarshalBlob(r.Metadata)
	if err != nil {
		return nil, err
	}
	return &core.Subscription{
		ID:                 r.ID,
		UserID:             r.UserID,
		Status:             core.SubscriptionStatus(stringValue(r.Status)),
		Metadata:           metadata,
		PriceID:            r.PriceID,
		Quantity:           copyInt(r.Quantity),
		CancelAtPeriodEnd:  r.CancelAtPeriodEnd,
		Created:            r.Created,
		CurrentPeriodStart: r.CurrentPeriodStart,
		CurrentPeriodEnd:   r.CurrentPeriodEnd,
		EndedAt:            copyTime(r.EndedAt),
		CancelAt:           copyTime(r.CancelAt),
		CanceledAt:         copyTime(r.CanceledAt),
		TrialStart:         copyTime(r.TrialStart),
		TrialEnd:           copyTime(r.TrialEnd),
	}, nil
}

func (r *sessionRecord) toDomain() *core.Session {
	if r == nil {
		return nil
	}
	return &core.Session{
		ID:           r.ID,
		UserID:       r.UserID,
		AccessToken:  r.AccessToken,
		RefreshToken: copyString(r.RefreshToken),
		ExpiresAt:    r.ExpiresAt,
		CreatedAt:    r.CreatedAt,
	}
}

func copyString(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func copyInt(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func copyTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
