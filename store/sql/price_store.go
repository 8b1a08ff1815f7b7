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

type PriceStore struct {
	db    *bun.DB
	repo  repository.Repository[*priceRecord]
	retry core.RetryPolicy
}

func NewPriceStore(db *bun.DB) (*PriceStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*priceRecord](db, priceHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid price repository wiring: %w", err)
		}
	}
	return &PriceStore{db: db, repo: repo, retry: core.DefaultRetryPolicy()}, nil
}

// Create upserts by id and runs under the referential-integrity retry policy:
// a price frequently arrives moments after the product it references, inside
// the engine's consistency window for the foreign key.
func (s *PriceStore) Create(ctx context.Context, in core.CreatePriceInput) (*core.Price, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: price store is not configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	record, err := newPriceRecord(in, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	err = s.retry.Run(ctx, func(ctx context.Context) error {
		_, execErr := s.db.NewInsert().
			Model(record).
			On("CONFLICT (id) DO UPDATE").
			Set("product_id = EXCLUDED.product_id").
			Set("active = EXCLUDED.active").
			Set("description = EXCLUDED.description").
			Set("unit_amount = EXCLUDED.unit_amount").
			Set("currency = EXCLUDED.currency").
			Set("type = EXCLUDED.type").
			Set("interval = EXCLUDED.interval").
			Set("interval_count = EXCLUDED.interval_count").
			Set("trial_period_days = EXCLUDED.trial_period_days").
			Set("metadata = EXCLUDED.metadata").
			Exec(ctx)
		return execErr
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, record.ID)
}

func (s *PriceStore) Get(ctx context.Context, id string) (*core.Price, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: price store is not configured")
	}
	record := &priceRecord{}
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

func (s *PriceStore) ListActive(ctx context.Context) ([]core.Price, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: price store is not configured")
	}
	var records []*priceRecord
	err := s.db.NewSelect().
		Model(&records).
		Where("?TableAlias.active = ?", true).
		Order("unit_amount ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]core.Price, 0, len(records))
	for _, record := range records {
		price, convErr := record.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, *price)
	}
	return out, nil
}

func (s *PriceStore) Update(ctx context.Context, id string, in core.UpdatePriceInput) (*core.Price, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: price store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.NewValidationError("price id is required")
	}
	record := &priceRecord{}
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

	if in.Active != nil {
		record.Active = *in.Active
	}
	if in.Description != nil {
		record.Description = copyString(in.Description)
	}
	if in.UnitAmount != nil {
		record.UnitAmount = *in.UnitAmount
	}
	if in.Currency != nil {
		record.Currency = *in.Currency
	}
	if in.Type != nil {
		priceType := string(*in.Type)
		record.Type = &priceType
	}
	if in.Interval != nil {
		interval := string(*in.Interval)
		record.Interval = &interval
	}
	if in.IntervalCount != nil {
		record.IntervalCount = copyInt(in.IntervalCount)
	}
	if in.TrialPeriodDays != nil {
		record.TrialPeriodDays = copyInt(in.TrialPeriodDays)
	}
	if in.Metadata != nil {
		metadata, marshalErr := marshalBlob(in.Metadata)
		if marshalErr != nil {
			return nil, marshalErr
		}
		record.Metadata = metadata
	}

	if _, err := s.db.NewUpdate().
		Model(record).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *PriceStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: price store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*priceRecord)(nil)).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	return err
}
