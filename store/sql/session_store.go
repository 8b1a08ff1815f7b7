package sqlstore

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"

	"github.com/goliatone/go-paybridge/core"
)

// SessionStore owns the auth_sessions table. Sessions are minted locally,
// no external identity service is consulted.
type SessionStore struct {
	db   *bun.DB
	repo repository.Repository[*sessionRecord]
}

func NewSessionStore(db *bun.DB) (*SessionStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*sessionRecord](db, sessionHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid session repository wiring: %w", err)
		}
	}
	return &SessionStore{db: db, repo: repo}, nil
}

// CreateForUser mints a session for the given user: a deterministic session
// id derived from the user id and the current clock, an access token derived
// from the session id, and a fixed seven-day expiry.
func (s *SessionStore) CreateForUser(ctx context.Context, userID string, now time.Time) (*core.Session, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: session store is not configured")
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, core.NewValidationError("user id is required")
	}
	sessionID := deriveIdentityToken(userID, now)
	record := &sessionRecord{
		ID:          sessionID,
		UserID:      userID,
		AccessToken: hashHex(sessionID),
		ExpiresAt:   now.Add(core.SessionTTL),
		CreatedAt:   now,
	}
	if _, err := s.db.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record.toDomain(), nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*core.Session, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("sqlstore: session store is not configured")
	}
	record := &sessionRecord{}
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
	return record.toDomain(), nil
}

// DeleteExpired prunes sessions whose expiry has passed. It is maintenance
// only, nothing in the sign-in path depends on it.
func (s *SessionStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: session store is not configured")
	}
	result, err := s.db.NewDelete().
		Model((*sessionRecord)(nil)).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, nil
	}
	return affected, nil
}

// deriveIdentityToken produces the hex sha256 of seed+timestamp, the scheme
// used for both user ids (seeded by email) and session ids (seeded by the
// user id).
func deriveIdentityToken(seed string, now time.Time) string {
	return hashHex(seed + strconv.FormatInt(now.UnixMilli(), 10))
}

func hashHex(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
