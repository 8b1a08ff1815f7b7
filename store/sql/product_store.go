package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-paybridge/core"
)

type ProductStore struct {
	db   *bun.DB
	repo repository.Repository[*productRecord]
}

func NewProductStore(db *bun.DB) (*ProductStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*productRecord](db, productHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid product repository wiring: %w", err)
		}
	}
	return &ProductStore{db: db, repo: repo}, nil
}

// Create is an upsert keyed by id so gateway webhook replays converge on the
// latest payload instead of failing on the primary key.
func (s *ProductStore) Create(ctx context.Context, in core.CreateProductInput) (*core.Product, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: product store is not configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	record, err := newProductRecord(in, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("active = EXCLUDED.active").
		Set("name = EXCLUDED.name").
		Set("description = EXCLUDED.description").
		Set("image = EXCLUDED.image").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, record.ID)
}

func (s *ProductStore) Get(ctx context.Context, id string) (*core.Product, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: product store is not configured")
	}
	record := &productRecord{}
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

// ListActiveWithPrices reassembles the nested product→prices shape the remote
// backend returns natively: active products ordered by the metadata "index"
// key, each carrying its active prices ordered by unit amount.
func (s *ProductStore) ListActiveWithPrices(ctx context.Context) ([]core.Product, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: product store is not configured")
	}

	var productRecords []*productRecord
	err := s.db.NewSelect().
		Model(&productRecords).
		Where("?TableAlias.active = ?", true).
		OrderExpr("json_extract(?TableAlias.metadata, '$.index')").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(productRecords) == 0 {
		return []core.Product{}, nil
	}

	productIDs := make([]string, 0, len(productRecords))
	for _, record := range productRecords {
		productIDs = append(productIDs, record.ID)
	}

	var priceRecords []*priceRecord
	err = s.db.NewSelect().
		Model(&priceRecords).
		Where("?TableAlias.active = ?", true).
		Where("?TableAlias.product_id IN (?)", bun.In(productIDs)).
		Order("unit_amount ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	pricesByProduct := make(map[string][]core.Price, len(productRecords))
	for _, record := range priceRecords {
		price, convErr := record.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		pricesByProduct[record.ProductID] = append(pricesByProduct[record.ProductID], *price)
	}

	out := make([]core.Product, 0, len(productRecords))
	for _, record := range productRecords {
		product, convErr := record.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		prices := pricesByProduct[record.ID]
		sort.SliceStable(prices, func(i, j int) bool {
			return prices[i].UnitAmount < prices[j].UnitAmount
		})
		product.Prices = prices
		out = append(out, *product)
	}
	return out, nil
}

func (s *ProductStore) Update(ctx context.Context, id string, in core.UpdateProductInput) (*core.Product, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: product store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.NewValidationError("product id is required")
	}
	record := &productRecord{}
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
	if in.Name != nil {
		record.Name = *in.Name
	}
	if in.Description != nil {
		record.Description = copyString(in.Description)
	}
	if in.Image != nil {
		record.Image = copyString(in.Image)
	}
	if in.Metadata != nil {
		metadata, marshalErr := marshalBlob(in.Metadata)
		if marshalErr != nil {
			return nil, marshalErr
		}
		record.Metadata = metadata
	}
	record.UpdatedAt = time.Now().UTC()

	if _, err := s.db.NewUpdate().
		Model(record).
		Where("id = ?", id).
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes at most one row; a missing id is a no-op.
func (s *ProductStore) Delete(ctx context.Context, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("sqlstore: product store is not configured")
	}
	_, err := s.db.NewDelete().
		Model((*productRecord)(nil)).
		Where("id = ?", strings.TrimSpace(id)).
		Exec(ctx)
	return err
}
