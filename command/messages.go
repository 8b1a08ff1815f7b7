package command

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-paybridge/core"
)

const (
	TypeUpsertUser         = "paybridge.command.user.upsert"
	TypeUpdateUser         = "paybridge.command.user.update"
	TypeUpsertCustomer     = "paybridge.command.customer.upsert"
	TypeUpsertProduct      = "paybridge.command.product.upsert"
	TypeDeleteProduct      = "paybridge.command.product.delete"
	TypeUpsertPrice        = "paybridge.command.price.upsert"
	TypeDeletePrice        = "paybridge.command.price.delete"
	TypeUpsertSubscription = "paybridge.command.subscription.upsert"
	TypeDeleteSubscription = "paybridge.command.subscription.delete"
	TypeDispatchWebhook    = "paybridge.command.webhook.dispatch"
)

type UpsertUserMessage struct {
	Input core.CreateUserInput
}

func (UpsertUserMessage) Type() string { return TypeUpsertUser }

func (m UpsertUserMessage) Validate() error {
	return m.Input.Validate()
}

type UpdateUserMessage struct {
	UserID string
	Input  core.UpdateUserInput
}

func (UpdateUserMessage) Type() string { return TypeUpdateUser }

func (m UpdateUserMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("command: user id is required")
	}
	return nil
}

type UpsertCustomerMessage struct {
	Input core.CreateCustomerInput
}

func (UpsertCustomerMessage) Type() string { return TypeUpsertCustomer }

func (m UpsertCustomerMessage) Validate() error {
	return m.Input.Validate()
}

type UpsertProductMessage struct {
	Input core.CreateProductInput
}

func (UpsertProductMessage) Type() string { return TypeUpsertProduct }

func (m UpsertProductMessage) Validate() error {
	return m.Input.Validate()
}

type DeleteProductMessage struct {
	ProductID string
}

func (DeleteProductMessage) Type() string { return TypeDeleteProduct }

func (m DeleteProductMessage) Validate() error {
	if strings.TrimSpace(m.ProductID) == "" {
		return fmt.Errorf("command: product id is required")
	}
	return nil
}

type UpsertPriceMessage struct {
	Input core.CreatePriceInput
}

func (UpsertPriceMessage) Type() string { return TypeUpsertPrice }

func (m UpsertPriceMessage) Validate() error {
	return m.Input.Validate()
}

type DeletePriceMessage struct {
	PriceID string
}

func (DeletePriceMessage) Type() string { return TypeDeletePrice }

func (m DeletePriceMessage) Validate() error {
	if strings.TrimSpace(m.PriceID) == "" {
		return fmt.Errorf("command: price id is required")
	}
	return nil
}

type UpsertSubscriptionMessage struct {
	Input core.CreateSubscriptionInput
}

func (UpsertSubscriptionMessage) Type() string { return TypeUpsertSubscription }

func (m UpsertSubscriptionMessage) Validate() error {
	return m.Input.Validate()
}

type DeleteSubscriptionMessage struct {
	SubscriptionID string
}

func (DeleteSubscriptionMessage) Type() string { return TypeDeleteSubscription }

func (m DeleteSubscriptionMessage) Validate() error {
	if strings.TrimSpace(m.SubscriptionID) == "" {
		return fmt.Errorf("command: subscription id is required")
	}
	return nil
}

type DispatchWebhookMessage struct {
	Event core.WebhookEvent
}

func (DispatchWebhookMessage) Type() string { return TypeDispatchWebhook }

func (m DispatchWebhookMessage) Validate() error {
	if strings.TrimSpace(m.Event.Type) == "" {
		return fmt.Errorf("command: webhook event type is required")
	}
	return nil
}
