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

type CustomerStore struct {
	db   *bun.DB
	repo repository.Repository[*customerRecord]
}

func NewCustomerStore(db *bun.DB) (*CustomerStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*customerRecord](db, customerHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid customer repository wiring: %w", err)
		}
	}
	return &CustomerStore{db: db, repo: repo}, nil
}

func (s *CustomerStore) Create(ctx context.Context, in core.CreateCustomerInput) (*core.Customer, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: customer store is not configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	record := newCustomerRecord(in, time.Now().UTC())
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("stripe_customer_id = EXCLUDED.stripe_customer_id").
		Set("razorpay_customer_id = EXCLUDED.razorpay_customer_id").
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, record.ID)
}

func (s *CustomerStore) Get(ctx context.Context, userID string) (*core.Customer, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: customer store is not configured")
	}
	record := &customerRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", strings.TrimSpace(userID)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *CustomerStore) Update(ctx context.Context, userID string, in core.UpdateCustomerInput) (*core.Customer, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: customer store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, core.NewValidationError("customer id is required")
	}
	record := &customerRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", userID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if in.StripeCustomerID != nil {
		record.StripeCustomerID = copyString(in.StripeCustomerID)
	}
	if in.RazorpayCustomerID != nil {
		record.RazorpayCustomerID = copyString(in.RazorpayCustomerID)
	}

	if _, err := s.db.NewUpdate().
		Model(record).
		Where("id = ?", userID).
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
