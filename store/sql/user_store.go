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

type UserStore struct {
	db   *bun.DB
	repo repository.Repository[*userRecord]
}

func NewUserStore(db *bun.DB) (*UserStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*userRecord](db, userHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid user repository wiring: %w", err)
		}
	}
	return &UserStore{db: db, repo: repo}, nil
}

func (s *UserStore) Create(ctx context.Context, in core.CreateUserInput) (*core.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	record, err := newUserRecord(in, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if _, err := s.db.NewInsert().
		Model(record).
		On("CONFLICT (id) DO UPDATE").
		Set("email = EXCLUDED.email").
		Set("full_name = EXCLUDED.full_name").
		Set("avatar_url = EXCLUDED.avatar_url").
		Set("billing_address = EXCLUDED.billing_address").
		Set("payment_method = EXCLUDED.payment_method").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx); err != nil {
		return nil, err
	}
	return s.Get(ctx, record.ID)
}

func (s *UserStore) Get(ctx context.Context, id string) (*core.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	record := &userRecord{}
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

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	record := &userRecord{}
	err := s.db.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
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

func (s *UserStore) Update(ctx context.Context, id string, in core.UpdateUserInput) (*core.User, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, core.NewValidationError("user id is required")
	}
	record := &userRecord{}
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

	if in.FullName != nil {
		record.FullName = copyString(in.FullName)
	}
	if in.AvatarURL != nil {
		record.AvatarURL = copyString(in.AvatarURL)
	}
	if in.BillingAddress != nil {
		billing, marshalErr := marshalBlob(in.BillingAddress)
		if marshalErr != nil {
			return nil, marshalErr
		}
		record.BillingAddress = billing
	}
	if in.PaymentMethod != nil {
		payment, marshalErr := marshalBlob(in.PaymentMethod)
		if marshalErr != nil {
			return nil, marshalErr
		}
		record.PaymentMethod = payment
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

// List is used by administrative tooling; normal call paths read one user at
// a time.
func (s *UserStore) List(ctx context.Context) ([]core.User, error) {
	if s == nil || s.repo == nil {
		return nil, fmt.Errorf("sqlstore: user store is not configured")
	}
	records, _, err := s.repo.List(ctx, repository.OrderBy("created_at ASC"))
	if err != nil {
		return nil, err
	}
	out := make([]core.User, 0, len(records))
	for _, record := range records {
		user, convErr := record.toDomain()
		if convErr != nil {
			return nil, convErr
		}
		out = append(out, *user)
	}
	return out, nil
}
