// Package command wraps the mutating half of the data contract in
// go-command handlers so callers can route writes through a dispatcher.
package command

import (
	"context"

	"github.com/goliatone/go-paybridge/core"
)

// MutatingClient is the write surface the commands need; any data client
// satisfies it.
type MutatingClient interface {
	CreateUser(ctx context.Context, in core.CreateUserInput) (*core.User, error)
	UpdateUser(ctx context.Context, userID string, in core.UpdateUserInput) (*core.User, error)
	CreateCustomer(ctx context.Context, in core.CreateCustomerInput) (*core.Customer, error)
	CreateProduct(ctx context.Context, in core.CreateProductInput) (*core.Product, error)
	DeleteProduct(ctx context.Context, productID string) error
	CreatePrice(ctx context.Context, in core.CreatePriceInput) (*core.Price, error)
	DeletePrice(ctx context.Context, priceID string) error
	CreateSubscription(ctx context.Context, in core.CreateSubscriptionInput) (*core.Subscription, error)
	DeleteSubscription(ctx context.Context, subscriptionID string) error
	HandleWebhook(ctx context.Context, event core.WebhookEvent) error
}

type UpsertUserCommand struct {
	client MutatingClient
}

func NewUpsertUserCommand(client MutatingClient) *UpsertUserCommand {
	return &UpsertUserCommand{client: client}
}

func (c *UpsertUserCommand) Execute(ctx context.Context, msg UpsertUserMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	_, err := c.client.CreateUser(ctx, msg.Input)
	return err
}

type UpdateUserCommand struct {
	client MutatingClient
}

func NewUpdateUserCommand(client MutatingClient) *UpdateUserCommand {
	return &UpdateUserCommand{client: client}
}

func (c *UpdateUserCommand) Execute(ctx context.Context, msg UpdateUserMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	_, err := c.client.UpdateUser(ctx, msg.UserID, msg.Input)
	return err
}

type UpsertCustomerCommand struct {
	client MutatingClient
}

func NewUpsertCustomerCommand(client MutatingClient) *UpsertCustomerCommand {
	return &UpsertCustomerCommand{client: client}
}

func (c *UpsertCustomerCommand) Execute(ctx context.Context, msg UpsertCustomerMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	_, err := c.client.CreateCustomer(ctx, msg.Input)
	return err
}

type UpsertProductCommand struct {
	client MutatingClient
}

func NewUpsertProductCommand(client MutatingClient) *UpsertProductCommand {
	return &UpsertProductCommand{client: client}
}

func (c *UpsertProductCommand) Execute(ctx context.Context, msg UpsertProductMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	_, err := c.client.CreateProduct(ctx, msg.Input)
	return err
}

type DeleteProductCommand struct {
	client MutatingClient
}

func NewDeleteProductCommand(client MutatingClient) *DeleteProductCommand {
	return &DeleteProductCommand{client: client}
}

func (c *DeleteProductCommand) Execute(ctx context.Context, msg DeleteProductMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.client.DeleteProduct(ctx, msg.ProductID)
}

type UpsertPriceCommand struct {
	client MutatingClient
}

func NewUpsertPriceCommand(client MutatingClient) *UpsertPriceCommand {
	return &UpsertPriceCommand{client: client}
}

func (c *UpsertPriceCommand) Execute(ctx context.Context, msg UpsertPriceMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	_, err := c.client.CreatePrice(ctx, msg.Input)
	return err
}

type DeletePriceCommand struct {
	client MutatingClient
}

func NewDeletePriceCommand(client MutatingClient) *DeletePriceCommand {
	return &DeletePriceCommand{client: client}
}

func (c *DeletePriceCommand) Execute(ctx context.Context, msg DeletePriceMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.client.DeletePrice(ctx, msg.PriceID)
}

type UpsertSubscriptionCommand struct {
	client MutatingClient
}

func NewUpsertSubscriptionCommand(client MutatingClient) *UpsertSubscriptionCommand {
	return &UpsertSubscriptionCommand{client: client}
}

func (c *UpsertSubscriptionCommand) Execute(ctx context.Context, msg UpsertSubscriptionMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	_, err := c.client.CreateSubscription(ctx, msg.Input)
	return err
}

type DeleteSubscriptionCommand struct {
	client MutatingClient
}

func NewDeleteSubscriptionCommand(client MutatingClient) *DeleteSubscriptionCommand {
	return &DeleteSubscriptionCommand{client: client}
}

func (c *DeleteSubscriptionCommand) Execute(ctx context.Context, msg DeleteSubscriptionMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.client.DeleteSubscription(ctx, msg.SubscriptionID)
}

type DispatchWebhookCommand struct {
	client MutatingClient
}

func NewDispatchWebhookCommand(client MutatingClient) *DispatchWebhookCommand {
	return &DispatchWebhookCommand{client: client}
}

func (c *DispatchWebhookCommand) Execute(ctx context.Context, msg DispatchWebhookMessage) error {
	if c == nil || c.client == nil {
		return commandDependencyError("command: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return err
	}
	return c.client.HandleWebhook(ctx, msg.Event)
}
