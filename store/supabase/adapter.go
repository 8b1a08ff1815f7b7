// Package supastore is the remote backend. CRUD compiles to PostgREST
// requests with server-side relational embedding, identity delegates to the
// remote auth subsystem. The adapter keeps no local state beyond config and
// the transport it executes through.
package supastore

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-paybridge/core"
	"github.com/goliatone/go-paybridge/transport"
)

const (
	tableUsers         = "users"
	tableCustomers     = "customers"
	tableProducts      = "products"
	tablePrices        = "prices"
	tableSubscriptions = "subscriptions"
)

type Adapter struct {
	cfg       core.SupabaseConfig
	transport core.TransportAdapter
	logger    core.Logger

	restURL string
	authURL string
}

var _ core.DataClient = (*Adapter)(nil)

type Option func(*Adapter)

func WithTransport(adapter core.TransportAdapter) Option {
	return func(a *Adapter) {
		if adapter != nil {
			a.transport = adapter
		}
	}
}

func WithLogger(logger core.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func New(cfg core.SupabaseConfig, options ...Option) (*Adapter, error) {
	missing := []string{}
	if strings.TrimSpace(cfg.URL) == "" {
		missing = append(missing, "supabase.url")
	}
	if strings.TrimSpace(cfg.AnonKey) == "" {
		missing = append(missing, "supabase.anon_key")
	}
	if len(missing) > 0 {
		return nil, core.NewConfigValidationError(core.ProviderSupabase, missing...)
	}

	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	adapter := &Adapter{
		cfg:       cfg,
		transport: transport.NewRESTAdapter(nil),
		logger:    glog.Nop(),
		restURL:   base + "/rest/v1",
		authURL:   base + "/auth/v1",
	}
	for _, option := range options {
		if option != nil {
			option(adapter)
		}
	}
	return adapter, nil
}

// dataKey prefers the service role key so server-side writes bypass row
// level security the way the original admin client did.
func (a *Adapter) dataKey() string {
	if strings.TrimSpace(a.cfg.ServiceRoleKey) != "" {
		return a.cfg.ServiceRoleKey
	}
	return a.cfg.AnonKey
}

func (a *Adapter) execute(ctx context.Context, req core.TransportRequest, key string) (core.TransportResponse, error) {
	if req.Headers == nil {
		req.Headers = map[string]string{}
	}
	req.Headers["apikey"] = key
	req.Headers["Authorization"] = "Bearer " + key
	return a.transport.Do(ctx, req)
}

func (a *Adapter) from(table string) *QueryBuilder {
	return newQueryBuilder(a.restURL, table)
}

func statusOK(code int) bool {
	return code >= 200 && code < 300
}

func decodeSingle[T any](operation string, res core.TransportResponse, tolerateNoRows bool) (*T, error) {
	if !statusOK(res.StatusCode) {
		if tolerateNoRows && isNoRows(res.StatusCode, res.Body) {
			return nil, nil
		}
		return nil, wrapRemoteFailure(operation, res.StatusCode, res.Body)
	}
	trimmed := strings.TrimSpace(string(res.Body))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	var decoded T
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		return nil, core.WrapBackendError(err, "supastore: decode "+operation+" response")
	}
	return &decoded, nil
}

func decodeMany[T any](operation string, res core.TransportResponse) ([]T, error) {
	if !statusOK(res.StatusCode) {
		return nil, wrapRemoteFailure(operation, res.StatusCode, res.Body)
	}
	if strings.TrimSpace(string(res.Body)) == "" {
		return []T{}, nil
	}
	var decoded []T
	if err := json.Unmarshal(res.Body, &decoded); err != nil {
		return nil, core.WrapBackendError(err, "supastore: decode "+operation+" response")
	}
	return decoded, nil
}

// GetUser resolves the caller the remote auth subsystem knows about. Without
// a user-scoped token the remote reports an auth failure, surfaced as nil.
func (a *Adapter) GetUser(ctx context.Context) (*core.User, error) {
	res, err := a.execute(ctx, core.TransportRequest{
		Method: http.MethodGet,
		URL:    a.authURL + "/user",
	}, a.cfg.AnonKey)
	if err != nil {
		return nil, err
	}
	if res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden {
		return nil, nil
	}
	wire, err := decodeSingle[userWire]("get user", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) CreateUser(ctx context.Context, in core.CreateUserInput) (*core.User, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := a.from(tableUsers).Select("*").Upsert().Single().BuildInsert(userCreatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[userWire]("create user", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) UpdateUser(ctx context.Context, userID string, in core.UpdateUserInput) (*core.User, error) {
	req, err := a.from(tableUsers).Select("*").Eq("id", userID).Single().BuildUpdate(userUpdatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[userWire]("update user", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) GetCustomer(ctx context.Context, userID string) (*core.Customer, error) {
	req := a.from(tableCustomers).Select("*").Eq("id", userID).Single().BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[customerWire]("get customer", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) CreateCustomer(ctx context.Context, in core.CreateCustomerInput) (*core.Customer, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := a.from(tableCustomers).Select("*").Upsert().Single().BuildInsert(customerCreatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[customerWire]("create customer", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) UpdateCustomer(ctx context.Context, userID string, in core.UpdateCustomerInput) (*core.Customer, error) {
	req, err := a.from(tableCustomers).Select("*").Eq("id", userID).Single().BuildUpdate(customerUpdatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[customerWire]("update customer", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

// GetProducts fetches active products with their active prices embedded,
// ordered by the metadata index key and then by embedded unit amount.
func (a *Adapter) GetProducts(ctx context.Context) ([]core.Product, error) {
	req := a.from(tableProducts).
		Select("*, prices(*)").
		Eq("active", true).
		Eq("prices.active", true).
		Order("metadata->index").
		OrderReferenced(tablePrices, "unit_amount").
		BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wires, err := decodeMany[productWire]("get products", res)
	if err != nil {
		return nil, err
	}
	products := make([]core.Product, 0, len(wires))
	for i := range wires {
		products = append(products, *wires[i].toDomain())
	}
	return products, nil
}

func (a *Adapter) GetProduct(ctx context.Context, productID string) (*core.Product, error) {
	req := a.from(tableProducts).Select("*, prices(*)").Eq("id", productID).Single().BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[productWire]("get product", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) CreateProduct(ctx context.Context, in core.CreateProductInput) (*core.Product, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := a.from(tableProducts).Select("*").Upsert().Single().BuildInsert(productCreatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[productWire]("create product", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) UpdateProduct(ctx context.Context, productID string, in core.UpdateProductInput) (*core.Product, error) {
	req, err := a.from(tableProducts).Select("*").Eq("id", productID).Single().BuildUpdate(productUpdatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[productWire]("update product", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) DeleteProduct(ctx context.Context, productID string) error {
	req := a.from(tableProducts).Eq("id", productID).BuildDelete()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return err
	}
	if !statusOK(res.StatusCode) {
		return wrapRemoteFailure("delete product", res.StatusCode, res.Body)
	}
	return nil
}

func (a *Adapter) GetPrices(ctx context.Context) ([]core.Price, error) {
	req := a.from(tablePrices).Select("*, products(*)").Eq("active", true).BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wires, err := decodeMany[priceWire]("get prices", res)
	if err != nil {
		return nil, err
	}
	prices := make([]core.Price, 0, len(wires))
	for i := range wires {
		prices = append(prices, *wires[i].toDomain())
	}
	return prices, nil
}

func (a *Adapter) GetPrice(ctx context.Context, priceID string) (*core.Price, error) {
	req := a.from(tablePrices).Select("*, products(*)").Eq("id", priceID).Single().BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[priceWire]("get price", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) CreatePrice(ctx context.Context, in core.CreatePriceInput) (*core.Price, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := a.from(tablePrices).Select("*").Upsert().Single().BuildInsert(priceCreatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[priceWire]("create price", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) UpdatePrice(ctx context.Context, priceID string, in core.UpdatePriceInput) (*core.Price, error) {
	req, err := a.from(tablePrices).Select("*").Eq("id", priceID).Single().BuildUpdate(priceUpdatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[priceWire]("update price", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) DeletePrice(ctx context.Context, priceID string) error {
	req := a.from(tablePrices).Eq("id", priceID).BuildDelete()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return err
	}
	if !statusOK(res.StatusCode) {
		return wrapRemoteFailure("delete price", res.StatusCode, res.Body)
	}
	return nil
}

// GetSubscription fetches the user's trialing or active subscription with
// price and product embedded two levels deep. Zero matches is nil, not an
// error.
func (a *Adapter) GetSubscription(ctx context.Context, userID string) (*core.Subscription, error) {
	req := a.from(tableSubscriptions).
		Select("*, prices(*, products(*))").
		Eq("user_id", userID).
		In("status", string(core.SubscriptionStatusTrialing), string(core.SubscriptionStatusActive)).
		MaybeSingle().
		BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[subscriptionWire]("get subscription", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) GetSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	req := a.from(tableSubscriptions).Select("*, prices(*, products(*))").BuildGet()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wires, err := decodeMany[subscriptionWire]("get subscriptions", res)
	if err != nil {
		return nil, err
	}
	subscriptions := make([]core.Subscription, 0, len(wires))
	for i := range wires {
		subscriptions = append(subscriptions, *wires[i].toDomain())
	}
	return subscriptions, nil
}

func (a *Adapter) CreateSubscription(ctx context.Context, in core.CreateSubscriptionInput) (*core.Subscription, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := a.from(tableSubscriptions).Select("*").Upsert().Single().BuildInsert(subscriptionCreatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[subscriptionWire]("create subscription", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) UpdateSubscription(ctx context.Context, subscriptionID string, in core.UpdateSubscriptionInput) (*core.Subscription, error) {
	req, err := a.from(tableSubscriptions).Select("*").Eq("id", subscriptionID).Single().BuildUpdate(subscriptionUpdatePayload(in))
	if err != nil {
		return nil, err
	}
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[subscriptionWire]("update subscription", res, true)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toDomain(), nil
}

func (a *Adapter) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	req := a.from(tableSubscriptions).Eq("id", subscriptionID).BuildDelete()
	res, err := a.execute(ctx, req, a.dataKey())
	if err != nil {
		return err
	}
	if !statusOK(res.StatusCode) {
		return wrapRemoteFailure("delete subscription", res.StatusCode, res.Body)
	}
	return nil
}

// authWire tolerates both token and bare-user envelopes: sign-up with email
// confirmation pending returns the user alone, sign-in returns tokens plus
// the user.
type authWire struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	ExpiresAt    int64     `json:"expires_at"`
	User         *userWire `json:"user"`

	// Bare user envelope fields.
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (w *authWire) toResult() *core.AuthResult {
	if w == nil {
		return nil
	}
	result := &core.AuthResult{}
	if w.User != nil {
		result.User = w.User.toDomain()
	} else if w.ID != "" {
		result.User = &core.User{ID: w.ID, Email: w.Email}
	}
	if w.AccessToken != "" {
		session := &core.Session{
			AccessToken: w.AccessToken,
		}
		if w.RefreshToken != "" {
			refresh := w.RefreshToken
			session.RefreshToken = &refresh
		}
		if result.User != nil {
			session.UserID = result.User.ID
		}
		switch {
		case w.ExpiresAt > 0:
			session.ExpiresAt = time.Unix(w.ExpiresAt, 0).UTC()
		case w.ExpiresIn > 0:
			session.ExpiresAt = time.Now().UTC().Add(time.Duration(w.ExpiresIn) * time.Second)
		}
		result.Session = session
	}
	return result
}

func (a *Adapter) authRequest(ctx context.Context, path string, query map[string]string, payload map[string]any) (core.TransportResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return core.TransportResponse{}, core.NewValidationError("encode auth payload: " + err.Error())
	}
	return a.execute(ctx, core.TransportRequest{
		Method:  http.MethodPost,
		URL:     a.authURL + path,
		Headers: map[string]string{"Content-Type": "application/json"},
		Query:   query,
		Body:    body,
	}, a.cfg.AnonKey)
}

func (a *Adapter) SignUp(ctx context.Context, email, password string) (*core.AuthResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, core.NewValidationError("email is required")
	}
	res, err := a.authRequest(ctx, "/signup", nil, map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[authWire]("sign up", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toResult(), nil
}

func (a *Adapter) SignIn(ctx context.Context, email, password string) (*core.AuthResult, error) {
	if strings.TrimSpace(email) == "" {
		return nil, core.NewValidationError("email is required")
	}
	res, err := a.authRequest(ctx, "/token", map[string]string{"grant_type": "password"}, map[string]any{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	wire, err := decodeSingle[authWire]("sign in", res, false)
	if err != nil || wire == nil {
		return nil, err
	}
	return wire.toResult(), nil
}

func (a *Adapter) SignOut(ctx context.Context) error {
	res, err := a.authRequest(ctx, "/logout", nil, map[string]any{})
	if err != nil {
		return err
	}
	if !statusOK(res.StatusCode) {
		return wrapRemoteFailure("sign out", res.StatusCode, res.Body)
	}
	return nil
}

func (a *Adapter) ResetPassword(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return core.NewValidationError("email is required")
	}
	res, err := a.authRequest(ctx, "/recover", nil, map[string]any{"email": email})
	if err != nil {
		return err
	}
	if !statusOK(res.StatusCode) {
		return wrapRemoteFailure("reset password", res.StatusCode, res.Body)
	}
	return nil
}

// HandleWebhook only records the event. Gateway deliveries for the remote
// provider are processed by server-side functions, not by this client.
func (a *Adapter) HandleWebhook(ctx context.Context, event core.WebhookEvent) error {
	a.logger.Info("webhook event received", "type", event.Type)
	return nil
}
