// Package paybridge exposes one client over interchangeable storage
// backends: an embedded sqlite engine or a remote PostgREST service. Callers
// hold a Client, never a backend.
package paybridge

import (
	"context"

	"github.com/goliatone/go-paybridge/command"
	"github.com/goliatone/go-paybridge/core"
	"github.com/goliatone/go-paybridge/query"
)

// Commands bundles the mutating go-command handlers bound to this client.
type Commands struct {
	UpsertUser         *command.UpsertUserCommand
	UpdateUser         *command.UpdateUserCommand
	UpsertCustomer     *command.UpsertCustomerCommand
	UpsertProduct      *command.UpsertProductCommand
	DeleteProduct      *command.DeleteProductCommand
	UpsertPrice        *command.UpsertPriceCommand
	DeletePrice        *command.DeletePriceCommand
	UpsertSubscription *command.UpsertSubscriptionCommand
	DeleteSubscription *command.DeleteSubscriptionCommand
	DispatchWebhook    *command.DispatchWebhookCommand
}

// Queries bundles the read handlers bound to this client.
type Queries struct {
	GetCustomer       *query.GetCustomerQuery
	GetProduct        *query.GetProductQuery
	ListProducts      *query.ListProductsQuery
	GetPrice          *query.GetPriceQuery
	ListPrices        *query.ListPricesQuery
	GetSubscription   *query.GetSubscriptionQuery
	ListSubscriptions *query.ListSubscriptionsQuery
}

// Client is the provider-agnostic facade. Every operation delegates to the
// backend adapter selected at construction; the facade adds no behavior of
// its own.
type Client struct {
	cfg  core.Config
	data core.DataClient

	commands Commands
	queries  Queries
}

func NewClient(cfg core.Config, data core.DataClient) (*Client, error) {
	if data == nil {
		return nil, core.NewValidationError("data client is required")
	}
	client := &Client{cfg: cfg, data: data}
	client.commands = Commands{
		UpsertUser:         command.NewUpsertUserCommand(data),
		UpdateUser:         command.NewUpdateUserCommand(data),
		UpsertCustomer:     command.NewUpsertCustomerCommand(data),
		UpsertProduct:      command.NewUpsertProductCommand(data),
		DeleteProduct:      command.NewDeleteProductCommand(data),
		UpsertPrice:        command.NewUpsertPriceCommand(data),
		DeletePrice:        command.NewDeletePriceCommand(data),
		UpsertSubscription: command.NewUpsertSubscriptionCommand(data),
		DeleteSubscription: command.NewDeleteSubscriptionCommand(data),
		DispatchWebhook:    command.NewDispatchWebhookCommand(data),
	}
	client.queries = Queries{
		GetCustomer:       query.NewGetCustomerQuery(data),
		GetProduct:        query.NewGetProductQuery(data),
		ListProducts:      query.NewListProductsQuery(data),
		GetPrice:          query.NewGetPriceQuery(data),
		ListPrices:        query.NewListPricesQuery(data),
		GetSubscription:   query.NewGetSubscriptionQuery(data),
		ListSubscriptions: query.NewListSubscriptionsQuery(data),
	}
	return client, nil
}

func (c *Client) Provider() core.Provider {
	if c == nil {
		return ""
	}
	return c.cfg.Provider
}

func (c *Client) Config() core.Config {
	if c == nil {
		return core.Config{}
	}
	return c.cfg
}

// UnderlyingClient exposes the backend adapter for advanced operations.
func (c *Client) UnderlyingClient() core.DataClient {
	if c == nil {
		return nil
	}
	return c.data
}

func (c *Client) Commands() Commands {
	if c == nil {
		return Commands{}
	}
	return c.commands
}

func (c *Client) Queries() Queries {
	if c == nil {
		return Queries{}
	}
	return c.queries
}

func (c *Client) GetUser(ctx context.Context) (*core.User, error) {
	return c.data.GetUser(ctx)
}

func (c *Client) CreateUser(ctx context.Context, in core.CreateUserInput) (*core.User, error) {
	return c.data.CreateUser(ctx, in)
}

func (c *Client) UpdateUser(ctx context.Context, userID string, in core.UpdateUserInput) (*core.User, error) {
	return c.data.UpdateUser(ctx, userID, in)
}

func (c *Client) GetCustomer(ctx context.Context, userID string) (*core.Customer, error) {
	return c.data.GetCustomer(ctx, userID)
}

func (c *Client) CreateCustomer(ctx context.Context, in core.CreateCustomerInput) (*core.Customer, error) {
	return c.data.CreateCustomer(ctx, in)
}

func (c *Client) UpdateCustomer(ctx context.Context, userID string, in core.UpdateCustomerInput) (*core.Customer, error) {
	return c.data.UpdateCustomer(ctx, userID, in)
}

func (c *Client) GetProducts(ctx context.Context) ([]core.Product, error) {
	return c.data.GetProducts(ctx)
}

func (c *Client) GetProduct(ctx context.Context, productID string) (*core.Product, error) {
	return c.data.GetProduct(ctx, productID)
}

func (c *Client) CreateProduct(ctx context.Context, in core.CreateProductInput) (*core.Product, error) {
	return c.data.CreateProduct(ctx, in)
}

func (c *Client) UpdateProduct(ctx context.Context, productID string, in core.UpdateProductInput) (*core.Product, error) {
	return c.data.UpdateProduct(ctx, productID, in)
}

func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.data.DeleteProduct(ctx, productID)
}

func (c *Client) GetPrices(ctx context.Context) ([]core.Price, error) {
	return c.data.GetPrices(ctx)
}

func (c *Client) GetPrice(ctx context.Context, priceID string) (*core.Price, error) {
	return c.data.GetPrice(ctx, priceID)
}

func (c *Client) CreatePrice(ctx context.Context, in core.CreatePriceInput) (*core.Price, error) {
	return c.data.CreatePrice(ctx, in)
}

func (c *Client) UpdatePrice(ctx context.Context, priceID string, in core.UpdatePriceInput) (*core.Price, error) {
	return c.data.UpdatePrice(ctx, priceID, in)
}

func (c *Client) DeletePrice(ctx context.Context, priceID string) error {
	return c.data.DeletePrice(ctx, priceID)
}

func (c *Client) GetSubscription(ctx context.Context, userID string) (*core.Subscription, error) {
	return c.data.GetSubscription(ctx, userID)
}

func (c *Client) GetSubscriptions(ctx context.Context) ([]core.Subscription, error) {
	return c.data.GetSubscriptions(ctx)
}

func (c *Client) CreateSubscription(ctx context.Context, in core.CreateSubscriptionInput) (*core.Subscription, error) {
	return c.data.CreateSubscription(ctx, in)
}

func (c *Client) UpdateSubscription(ctx context.Context, subscriptionID string, in core.UpdateSubscriptionInput) (*core.Subscription, error) {
	return c.data.UpdateSubscription(ctx, subscriptionID, in)
}

func (c *Client) DeleteSubscription(ctx context.Context, subscriptionID string) error {
	return c.data.DeleteSubscription(ctx, subscriptionID)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*core.AuthResult, error) {
	return c.data.SignUp(ctx, email, password)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*core.AuthResult, error) {
	return c.data.SignIn(ctx, email, password)
}

func (c *Client) SignOut(ctx context.Context) error {
	return c.data.SignOut(ctx)
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	return c.data.ResetPassword(ctx, email)
}

func (c *Client) HandleWebhook(ctx context.Context, event core.WebhookEvent) error {
	return c.data.HandleWebhook(ctx, event)
}

var _ core.DataClient = (*Client)(nil)
