package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"
	persistence "github.com/goliatone/go-persistence-bun"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	paybridgemigrations "github.com/goliatone/go-paybridge/migrations"

	"github.com/goliatone/go-paybridge/core"
)

// Adapter is the embedded-engine backend. It owns the six-table schema,
// applies it idempotently on construction, and serves the full data contract
// from a single sqlite file.
type Adapter struct {
	cfg     core.SQLiteConfig
	client  *persistence.Client
	factory *RepositoryFactory
	logger  core.Logger

	now func() time.Time
}

var _ core.DataClient = (*Adapter)(nil)

type Option func(*Adapter)

func WithLogger(logger core.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithClock overrides the adapter clock. Identity derivation hashes the
// current time, tests pin it.
func WithClock(now func() time.Time) Option {
	return func(a *Adapter) {
		if now != nil {
			a.now = now
		}
	}
}

// New opens the sqlite file named by cfg, applies the embedded schema, and
// returns a ready adapter. Schema application is a no-op when the tables
// already exist.
func New(ctx context.Context, cfg core.SQLiteConfig, options ...Option) (*Adapter, error) {
	path := strings.TrimSpace(cfg.FilePath)
	if path == "" {
		return nil, core.NewConfigValidationError(core.ProviderSQLite, "sqlite.file_path")
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on", path)
	sqlDB, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, core.WrapBackendError(err, "sqlstore: open sqlite database")
	}
	sqlDB.SetMaxOpenConns(1)

	client, err := persistence.New(persistenceConfig{
		driver: "sqlite3",
		server: dsn,
	}, sqlDB, sqlitedialect.New())
	if err != nil {
		_ = sqlDB.Close()
		return nil, core.WrapBackendError(err, "sqlstore: build persistence client")
	}

	adapter, err := NewFromPersistence(ctx, cfg, client, options...)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return adapter, nil
}

// NewFromPersistence wires the adapter over an existing persistence client.
// The caller keeps ownership of the client's lifecycle only until this
// returns, Close on the adapter closes the client.
func NewFromPersistence(ctx context.Context, cfg core.SQLiteConfig, client *persistence.Client, options ...Option) (*Adapter, error) {
	if client == nil {
		return nil, fmt.Errorf("sqlstore: persistence client is required")
	}

	if _, err := paybridgemigrations.Register(ctx, func(_ context.Context, dialect string, _ string, fsys fs.FS) error {
		if dialect != paybridgemigrations.DialectSQLite {
			return nil
		}
		client.RegisterSQLMigrations(fsys)
		return nil
	}); err != nil {
		return nil, core.WrapBackendError(err, "sqlstore: register migrations")
	}
	if err := client.Migrate(ctx); err != nil {
		return nil, core.WrapBackendError(err, "sqlstore: apply migrations")
	}

	factory, err := NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return nil, err
	}

	adapter := &Adapter{
		cfg:     cfg,
		client:  client,
		factory: factory,
		logger:  glog.Nop(),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		if option != nil {
			option(adapter)
		}
	}
	return adapter, nil
}

func (a *Adapter) Close() error {
	if a == nil || a.client == nil {
		return nil
	}
	return a.client.Close()
}

// GetUser returns nil: the embedded backend has no request-scoped identity,
// callers resolve users from the session they hold.
func (a *Adapter) GetUser(ctx context.Context) (*core.User, error) {
	return nil, nil
}

func (a *Adapter) CreateUser(ctx context.Context, in core.CreateUserInput) (*core.User, error) {
	return a.factory.UserStore().Create(ctx, in)
}

func (a *Adapter) UpdateUser(ctx context.Context, userID string, in core.UpdateUserInput) (*core.User, error) {
	return a.factory.UserStore().Update(ctx, userID, in)
}

func (a *Adapter) GetCustomer(ctx context.Context, userID string) (*core.Customer, error) {
	return a.factory.CustomerStore().Get(ctx, userID)
}

func (a *Adapter) CreateCustomer(ctx context.Context, in core.CreateCustomerInput) (*core.Customer, error) {
	return a.factory.CustomerStore().Create(ctx, in)
}

func (a *Adapter) UpdateCustomer(ctx context.Context, userID string, in core.UpdateCustomerInput) (*core.Customer, error) {
	return a.factory.CustomerStore().Update(ctx, userID, in)
}

func (a *Adapter) GetProducts(ctx context.Context) ([]core.Product, error) {
	return a.factory.ProductStore().ListActiveWithPrices(ctx)
}

func (a *Adapter) GetProduct(ctx context.Context, productID string) (*core.Product, error) {
	return a.factory.ProductStore().Get(ctx, productID)
}

func (a *Adapter) CreateProduct(ctx context.Context, in core.CreateProductInput) (*core.Product, error) {
	return a.factory.ProductStore().Create(ctx, in)
}

func (a *Adapter) UpdateProduct(ctx context.Context, productID string, in core.UpdateProductInput) (*core.Product, error) {
	return a.factory.ProductStore().Update(ctx, productID, in)
}

func (a *Adapter) DeleteProduct(ctx context.Context, productID string) error {
	return a.factory.ProductStore().Delete(ctx, productID)
}

func (a *Adapter) GetPrices(ctx context.Context) ([]core.Price, error) {
	return a.factory.PriceStore().ListActive(ctx)
}

func (a *Adapter) GetPrice(ctx context.Context, priceID string) (*core.Price, error) {
	return a.factory.PriceStore().Get(ctx, priceID)
}

func (a *Adapter) CreatePrice(ctx context.Context, in core.CreatePriceInput) (*core.Price, error) {
	return a.factory.PriceStore().Create(ctx, in)
}

func (a *Adapter) UpdatePrice(ctx context.Context, priceID string, in core.UpdatePriceInput) (*core.Price, error) {
	return a.factory.PriceStore().Update(ctx, priceID, in)
}

func (a *Adapter) DeletePrice(ctx context.Context, priceID string) error {
	return a.factory.PriceStore().Delete(ctx, priceID)
}

func (a *Adapter) GetSubscription(ctx context.Context, userID string) (*core.Subscription, error) {
	return a.factory.SubscriptionStore().GetActiveForUser(ctx, userID)
}

func (a *Adapter) GetSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	return a.factory.SubscriptionStore().List(ctx)
}

func (a *Adapter) CreateSubscription(ctx context.Context, in core.CreateSubscriptionInput) (*core.Subscription, error) {
	return a.factory.SubscriptionStore().Create(ctx, in)
}

func (a *Adapter) UpdateSubscription(ctx context.Context, subscriptionID string, in core.UpdateSubscriptionInput) (*core.Subscription, error) {
	return a.factory.SubscriptionStore().Update(ctx, subscriptionID, in)
}

func (a *Adapter) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	return a.factory.SubscriptionStore().Delete(ctx, subscriptionID)
}

// SignUp mints a user id from the email and the current clock, stores the
// user, and opens a seven-day session. The password is accepted but not
// stored, this identity model carries no credential verification.
func (a *Adapter) SignUp(ctx context.Context, email, password string) (*core.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, core.NewValidationError("email is required")
	}
	now := a.now()
	user, err := a.factory.UserStore().Create(ctx, core.CreateUserInput{
		ID:    deriveIdentityToken(email, now),
		Email: email,
	})
	if err != nil {
		return nil, err
	}
	session, err := a.factory.SessionStore().CreateForUser(ctx, user.ID, now)
	if err != nil {
		return nil, err
	}
	return &core.AuthResult{User: user, Session: session}, nil
}

// SignIn looks the user up by email and opens a fresh session. An unknown
// email is a not-found failure, not a nil result.
func (a *Adapter) SignIn(ctx context.Context, email, password string) (*core.AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, core.NewValidationError("email is required")
	}
	user, err := a.factory.UserStore().GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, core.NewNotFoundError("core: user not found")
	}
	session, err := a.factory.SessionStore().CreateForUser(ctx, user.ID, a.now())
	if err != nil {
		return nil, err
	}
	return &core.AuthResult{User: user, Session: session}, nil
}

// SignOut succeeds without touching session state. Stored sessions simply
// age out at their expiry.
func (a *Adapter) SignOut(ctx context.Context) error {
	return nil
}

// ResetPassword acknowledges the request. There is no credential to reset
// and no mail channel to notify.
func (a *Adapter) ResetPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return core.NewValidationError("email is required")
	}
	a.logger.Info("password reset acknowledged", "email", email)
	return nil
}

// HandleWebhook routes catalog and subscription events into the matching
// upsert. Unhandled event types are logged and dropped.
func (a *Adapter) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	switch event.Type {
	case core.WebhookProductCreated, core.WebhookProductUpdated:
		in, err := decodeProductPayload(event.Data.Object)
		if err != nil {
			return err
		}
		_, err = a.CreateProduct(ctx, in)
		return err
	case core.WebhookPriceCreated, core.WebhookPriceUpdated:
		in, err := decodePricePayload(event.Data.Object)
		if err != nil {
			return err
		}
		_, err = a.CreatePrice(ctx, in)
		return err
	case core.WebhookSubscriptionCreated, core.WebhookSubscriptionUpdated:
		in, err := decodeSubscriptionPayload(event.Data.Object)
		if err != nil {
			return err
		}
		_, err = a.CreateSubscription(ctx, in)
		return err
	default:
		a.logger.Info("unhandled webhook event", "type", event.Type)
		return nil
	}
}

// WebhookEvent aliases the core envelope so tests and callers in this
// package read naturally.
type WebhookEvent = core.WebhookEvent

type productPayload struct {
	ID          string         `json:"id"`
	Active      *bool          `json:"active"`
	Name        string         `json:"name"`
	Description *string        `json:"description"`
	Image       *string        `json:"image"`
	Metadata    map[string]any `json:"metadata"`
}

type pricePayload struct {
	ID              string         `json:"id"`
	ProductID       string         `json:"product_id"`
	Active          *bool          `json:"active"`
	Description     *string        `json:"description"`
	UnitAmount      int64          `json:"unit_amount"`
	Currency        string         `json:"currency"`
	Type            string         `json:"type"`
	Interval        *string        `json:"interval"`
	IntervalCount   *int           `json:"interval_count"`
	TrialPeriodDays *int           `json:"trial_period_days"`
	Metadata        map[string]any `json:"metadata"`
}

type subscriptionPayload struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"user_id"`
	Status             string         `json:"status"`
	Metadata           map[string]any `json:"metadata"`
	PriceID            string         `json:"price_id"`
	Quantity           *int           `json:"quantity"`
	CancelAtPeriodEnd  *bool          `json:"cancel_at_period_end"`
	Created            *time.Time     `json:"created"`
	CurrentPeriodStart *time.Time     `json:"current_period_start"`
	CurrentPeriodEnd   *time.Time     `json:"current_period_end"`
	EndedAt            *time.Time     `json:"ended_at"`
	CancelAt           *time.Time     `json:"cancel_at"`
	CanceledAt         *time.Time     `json:"canceled_at"`
	TrialStart         *time.Time     `json:"trial_start"`
	TrialEnd           *time.Time     `json:"trial_end"`
}

func decodeProductPayload(raw json.RawMessage) (core.CreateProductInput, error) {
	var payload productPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.CreateProductInput{}, core.NewValidationError("product webhook payload is not valid JSON")
	}
	return core.CreateProductInput{
		ID:          payload.ID,
		Active:      payload.Active,
		Name:        payload.Name,
		Description: payload.Description,
		Image:       payload.Image,
		Metadata:    payload.Metadata,
	}, nil
}

func decodePricePayload(raw json.RawMessage) (core.CreatePriceInput, error) {
	var payload pricePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.CreatePriceInput{}, core.NewValidationError("price webhook payload is not valid JSON")
	}
	in := core.CreatePriceInput{
		ID:              payload.ID,
		ProductID:       payload.ProductID,
		Active:          payload.Active,
		Description:     payload.Description,
		UnitAmount:      payload.UnitAmount,
		Currency:        payload.Currency,
		Type:            core.PriceType(payload.Type),
		IntervalCount:   payload.IntervalCount,
		TrialPeriodDays: payload.TrialPeriodDays,
		Metadata:        payload.Metadata,
	}
	if payload.Interval != nil {
		interval := core.PriceInterval(*payload.Interval)
		in.Interval = &interval
	}
	return in, nil
}

func decodeSubscriptionPayload(raw json.RawMessage) (core.CreateSubscriptionInput, error) {
	var payload subscriptionPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return core.CreateSubscriptionInput{}, core.NewValidationError("subscription webhook payload is not valid JSON")
	}
	return core.CreateSubscriptionInput{
		ID:                 payload.ID,
		UserID:             payload.UserID,
		Status:             core.SubscriptionStatus(payload.Status),
		Metadata:           payload.Metadata,
		PriceID:            payload.PriceID,
		Quantity:           payload.Quantity,
		CancelAtPeriodEnd:  payload.CancelAtPeriodEnd,
		Created:            payload.Created,
		CurrentPeriodStart: payload.CurrentPeriodStart,
		CurrentPeriodEnd:   payload.CurrentPeriodEnd,
		EndedAt:            payload.EndedAt,
		CancelAt:           payload.CancelAt,
		CanceledAt:         payload.CanceledAt,
		TrialStart:         payload.TrialStart,
		TrialEnd:           payload.TrialEnd,
	}, nil
}

// persistenceConfig satisfies the persistence client's config contract for a
// locally-opened sqlite handle.
type persistenceConfig struct {
	driver string
	server string
}

func (c persistenceConfig) GetDebug() bool {
	return false
}

func (c persistenceConfig) GetDriver() string {
	return c.driver
}

func (c persistenceConfig) GetServer() string {
	return c.server
}

func (c persistenceConfig) GetPingTimeout() time.Duration {
	return 5 * time.Second
}

func (c persistenceConfig) GetOtelIdentifier() string {
	return "go-paybridge"
}
