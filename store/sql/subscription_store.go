package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-paybridge/core"
)

type SubscriptionStore struct {
	db   *bun.DB
	repo repository.Repository[*subscriptionRecord]
}

func NewSubscriptionStore(db *bun.DB) (*SubscriptionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*subscriptionRecord](db, subscriptionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid subscription repository wiring: %w", err)
		}
	}
	return &SubscriptionStore{db: db, repo: repo}, nil
}

func (s *SubscriptionStore) Create(ctx context.Context, in core.CreateSubscriptionInput) (*core.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	record, err := newSubscriptionRecord(in, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("user_id = EXCLUDED.user_id").
		Set("status = EXCLUDED.status").
		Set("metadata = EXCLUDED.metadata").
		Set("price_id = EXCLUDED.price_id").
		Set("quantity = EXCLUDED.quantity").
		Set("cancel_at_period_end = EXCLUDED.cancel_at_period_end").
		Set("current_period_start = EXCLUDED.current_period_start").
		Set("current_period_end = EXCLUDED.current_period_end").
		Set("ended_at = EXCLUDED.ended_at").
		Set("cancel_at = EXCLUDED.cancel_at").
		Set("canceled_at = EXCLUDED.canceled_at").
		Set("trial_start = EXCLUDED.trial_start").
		Set("trial_end = EXCLUDED.trial_end").
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, record.ID)
}

func (s *SubscriptionStore) Get(ctx context.Context, id string) (*core.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	record := &subscriptionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(id)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record.toDomain()
}

// activeSubscriptionRow flattens the explicit three-table join used by
// GetActiveForUser. The engine has no nested-fetch sugar, so the nested
// subscription, price, and product shape is reassembled from aliased columns.
type activeSubscriptionRow struct {
	ID                 string     `bun:"id"`
	UserID             string     `bun:"user_id"`
	Status             string     `bun:"status"`
	Metadata           *string    `bun:"metadata"`
	PriceID            string     `bun:"price_id"`
	Quantity           *int       `bun:"quantity"`
	CancelAtPeriodEnd  bool       `bun:"cancel_at_period_end"`
	Created            time.Time  `bun:"created"`
	CurrentPeriodStart time.Time  `bun:"current_period_start"`
	CurrentPeriodEnd   time.Time  `bun:"current_period_end"`
	EndedAt            *time.Time `bun:"ended_at"`
	CancelAt           *time.Time `bun:"cancel_at"`
	CanceledAt         *time.Time `bun:"canceled_at"`
	TrialStart         *time.Time `bun:"trial_start"`
	TrialEnd           *time.Time `bun:"trial_end"`

	PriceProductID       *string    `bun:"price_product_id"`
	PriceActive          *bool      `bun:"price_active"`
	PriceDescription     *string    `bun:"price_description"`
	PriceUnitAmount      *int64     `bun:"price_unit_amount"`
	PriceCurrency        *string    `bun:"price_currency"`
	PriceType            *string    `bun:"price_type"`
	PriceInterval        *string    `bun:"price_interval"`
	PriceIntervalCount   *int       `bun:"price_interval_count"`
	PriceTrialPeriodDays *int       `bun:"price_trial_period_days"`
	PriceMetadata        *string    `bun:"price_metadata"`
	PriceCreatedAt       *time.Time `bun:"price_created_at"`

	ProductActive      *bool      `bun:"product_active"`
	ProductName        *string    `bun:"product_name"`
	ProductDescription *string    `bun:"product_description"`
	ProductImage       *string    `bun:"product_image"`
	ProductMetadata    *string    `bun:"product_metadata"`
	ProductCreatedAt   *time.Time `bun:"product_created_at"`
	ProductUpdatedAt   *time.Time `bun:"product_updated_at"`
}

// GetActiveForUser returns the user's subscription in a trialing or active
// status with its price and that price's product nested.
func (s *SubscriptionStore) GetActiveForUser(ctx context.Context, userID string) (*core.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	row := &activeSubscriptionRow{}
	err := s.db.NewSelect().
		ColumnExpr("s.*").
		ColumnExpr("pr.product_id AS price_product_id").
		ColumnExpr("pr.active AS price_active").
		ColumnExpr("pr.description AS price_description").
		ColumnExpr("pr.unit_amount AS price_unit_amount").
		ColumnExpr("pr.currency AS price_currency").
		ColumnExpr("pr.type AS price_type").
		ColumnExpr("pr.interval AS price_interval").
		ColumnExpr("pr.interval_count AS price_interval_count").
		ColumnExpr("pr.trial_period_days AS price_trial_period_days").
		ColumnExpr("pr.metadata AS price_metadata").
		ColumnExpr("pr.created_at AS price_created_at").
		ColumnExpr("p.active AS product_active").
		ColumnExpr("p.name AS product_name").
		ColumnExpr("p.description AS product_description").
		ColumnExpr("p.image AS product_image").
		ColumnExpr("p.metadata AS product_metadata").
		ColumnExpr("p.created_at AS product_created_at").
		ColumnExpr("p.updated_at AS product_updated_at").
		TableExpr("subscriptions AS s").
		Join("LEFT JOIN prices AS pr ON s.price_id = pr.id").
		Join("LEFT JOIN products AS p ON pr.product_id = p.id").
		Where("s.user_id = ?", strings.TrimSpace(userID)).
		Where("s.status IN (?)", bun.In([]string{
			string(core.SubscriptionStatusTrialing),
			string(core.SubscriptionStatusActive),
		})).
		Limit(1).
		Scan(ctx, row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return row.toDomain()
}

func (row *activeSubscriptionRow) toDomain() (*core.Subscription, error) {
	metadata, err := unmarshalBlob(row.Metadata)
	if err != nil {
		return nil, err
	}
	price, err := row.nestedPrice()
	if err != nil {
		return nil, err
	}
	return &core.Subscription{
		ID:                 row.ID,
		UserID:             row.UserID,
		Status:             core.SubscriptionStatus(row.Status),
		Metadata:           metadata,
		PriceID:            row.PriceID,
		Quantity:           copyInt(row.Quantity),
		CancelAtPeriodEnd:  row.CancelAtPeriodEnd,
		Created:            row.Created,
		CurrentPeriodStart: row.CurrentPeriodStart,
		CurrentPeriodEnd:   row.CurrentPeriodEnd,
		EndedAt:            copyTime(row.EndedAt),
		CancelAt:           copyTime(row.CancelAt),
		CanceledAt:         copyTime(row.CanceledAt),
		TrialStart:         copyTime(row.TrialStart),
		TrialEnd:           copyTime(row.TrialEnd),
		Price:              price,
	}, nil
}

func (row *activeSubscriptionRow) nestedPrice() (*core.Price, error) {
	// A dangling price_id with no matching price row leaves every joined
	// column NULL, in which case there is nothing to nest.
	if row == nil || strings.TrimSpace(row.PriceID) == "" || row.PriceUnitAmount == nil {
		return nil, nil
	}
	priceMetadata, err := unmarshalBlob(row.PriceMetadata)
	if err != nil {
		return nil, err
	}
	price := &core.Price{
		ID:              row.PriceID,
		Currency:        stringValue(row.PriceCurrency),
		Metadata:        priceMetadata,
		IntervalCount:   copyInt(row.PriceIntervalCount),
		TrialPeriodDays: copyInt(row.PriceTrialPeriodDays),
		Description:     copyString(row.PriceDescription),
	}
	if row.PriceProductID != nil {
		price.ProductID = *row.PriceProductID
	}
	if row.PriceActive != nil {
		price.Active = *row.PriceActive
	}
	if row.PriceUnitAmount != nil {
		price.UnitAmount = *row.PriceUnitAmount
	}
	if row.PriceType != nil {
		price.Type = core.PriceType(*row.PriceType)
	}
	if row.PriceInterval != nil {
		interval := core.PriceInterval(*row.PriceInterval)
		price.Interval = &interval
	}
	if row.PriceCreatedAt != nil {
		price.CreatedAt = *row.PriceCreatedAt
	}

	if price.ProductID != "" {
		productMetadata, metaErr := unmarshalBlob(row.ProductMetadata)
		if metaErr != nil {
			return nil, metaErr
		}
		product := &core.Product{
			ID:          price.ProductID,
			Name:        stringValue(row.ProductName),
			Description: copyString(row.ProductDescription),
			Image:       copyString(row.ProductImage),
			Metadata:    productMetadata,
		}
		if row.ProductActive != nil {
			product.Active = *row.ProductActive
		}
		if row.ProductCreatedAt != nil {
			product.CreatedAt = *row.ProductCreatedAt
		}
		if row.ProductUpdatedAt != nil {
			product.UpdatedAt = *row.ProductUpdatedAt
		}
		price.Product = product
	}
	return price, nil
}

func (s *SubscriptionStore) List(ctx context.Context) ([]core.Subscription, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("created ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.Subscription, 0, len(records))
	for _, record := range records {
		subscription, convErr := record.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, *subscription)
	}
	return out, nil
}

func (s *SubscriptionStore) Update(ctx context.Context, id string, in core.UpdateSubscriptionInput) (*core.Subscription, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: subscription store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.NewValidationError("subscription id is required")
	}
	record := &subscriptionRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, core.NewValidationError("subscription status is not a known status")
		}
		status := string(*in.Status)
		record.Status = &status
	}
	if in.Metadata != nil {
		metadata, marshalErr := marshalBlob(in.Metadata)
		if marshalErr != nil {
			return nil, marshalErr
		}
		record.Metadata = metadata
	}
	if in.Quantity != nil {
		record.Quantity = copyInt(in.Quantity)
	}
	if in.CancelAtPeriodEnd != nil {
		record.CancelAtPeriodEnd = *in.CancelAtPeriodEnd
	}
	if in.CurrentPeriodStart != nil {
		record.CurrentPeriodStart = *in.CurrentPeriodStart
	}
	if in.CurrentPeriodEnd != nil {
		record.CurrentPeriodEnd = *in.CurrentPeriodEnd
	}
	if in.EndedAt != nil {
		record.EndedAt = copyTime(in.EndedAt)
	}
	if in.CancelAt != nil {
		record.CancelAt = copyTime(in.CancelAt)
	}
	if in.CanceledAt != nil {
		record.CanceledAt = copyTime(in.CanceledAt)
	}
	if in.TrialStart != nil {
		record.TrialStart = copyTime(in.TrialStart)
	}
	if in.TrialEnd != nil {
		record.TrialEnd = copyTime(in.TrialEnd)
	}

	if _, err := s.db.NewUpdate().
		Model(record).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SubscriptionStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: subscription store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*subscriptionRecord)(nil)).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	return err
}

func stringValue(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
