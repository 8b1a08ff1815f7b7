package command

import (
	"context"
	"testing"

	"github.com/goliatone/go-paybridge/core"
)

type stubMutatingClient struct {
	products      []core.CreateProductInput
	prices        []core.CreatePriceInput
	subscriptions []core.CreateSubscriptionInput
	deleted       []string
	events        []core.WebhookEvent
}

func (s *stubMutatingClient) CreateUser(_ context.Context, in core.CreateUserInput) (*core.User, error) {
	return &core.User{ID: in.ID, Email: in.Email}, nil
}

func (s *stubMutatingClient) UpdateUser(_ context.Context, userID string, _ core.UpdateUserInput) (*core.User, error) {
	return &core.User{ID: userID}, nil
}

func (s *stubMutatingClient) CreateCustomer(_ context.Context, in core.CreateCustomerInput) (*core.Customer, error) {
	return &core.Customer{ID: in.ID}, nil
}

func (s *stubMutatingClient) CreateProduct(_ context.Context, in core.CreateProductInput) (*core.Product, error) {
	s.products = append(s.products, in)
	return &core.Product{ID: in.ID, Name: in.Name}, nil
}

func (s *stubMutatingClient) DeleteProduct(_ context.Context, productID string) error {
	s.deleted = append(s.deleted, productID)
	return nil
}

func (s *stubMutatingClient) CreatePrice(_ context.Context, in core.CreatePriceInput) (*core.Price, error) {
	s.prices = append(s.prices, in)
	return &core.Price{ID: in.ID}, nil
}

func (s *stubMutatingClient) DeletePrice(_ context.Context, priceID string) error {
	s.deleted = append(s.deleted, priceID)
	return nil
}

func (s *stubMutatingClient) CreateSubscription(_ context.Context, in core.CreateSubscriptionInput) (*core.Subscription, error) {
	s.subscriptions = append(s.subscriptions, in)
	return &core.Subscription{ID: in.ID}, nil
}

func (s *stubMutatingClient) DeleteSubscription(_ context.Context, subscriptionID string) error {
	s.deleted = append(s.deleted, subscriptionID)
	return nil
}

func (s *stubMutatingClient) HandleWebhook(_ context.Context, event core.WebhookEvent) error {
	s.events = append(s.events, event)
	return nil
}

func TestUpsertProductCommandExecutes(t *testing.T) {
	client := &stubMutatingClient{}
	cmd := NewUpsertProductCommand(client)

	err := cmd.Execute(context.Background(), UpsertProductMessage{
		Input: core.CreateProductInput{ID: "p1", Name: "Pro"},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(client.products) != 1 || client.products[0].ID != "p1" {
		t.Fatalf("product not forwarded: %+v", client.products)
	}
}

func TestUpsertProductCommandRejectsInvalidInput(t *testing.T) {
	cmd := NewUpsertProductCommand(&stubMutatingClient{})

	err := cmd.Execute(context.Background(), UpsertProductMessage{
		Input: core.CreateProductInput{ID: "p1"},
	})
	if err == nil {
		t.Fatalf("expected validation failure for missing name")
	}
}

func TestDeleteCommandsRequireIDs(t *testing.T) {
	client := &stubMutatingClient{}

	if err := NewDeleteProductCommand(client).Execute(context.Background(), DeleteProductMessage{}); err == nil {
		t.Fatalf("expected missing product id failure")
	}
	if err := NewDeletePriceCommand(client).Execute(context.Background(), DeletePriceMessage{PriceID: "pr1"}); err != nil {
		t.Fatalf("delete price: %v", err)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "pr1" {
		t.Fatalf("delete not forwarded: %+v", client.deleted)
	}
}

func TestDispatchWebhookCommandForwardsEvent(t *testing.T) {
	client := &stubMutatingClient{}
	cmd := NewDispatchWebhookCommand(client)

	err := cmd.Execute(context.Background(), DispatchWebhookMessage{
		Event: core.WebhookEvent{Type: core.WebhookProductCreated},
	})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(client.events) != 1 || client.events[0].Type != core.WebhookProductCreated {
		t.Fatalf("event not forwarded: %+v", client.events)
	}

	if err := cmd.Execute(context.Background(), DispatchWebhookMessage{}); err == nil {
		t.Fatalf("expected missing event type failure")
	}
}

func TestCommandsRequireClient(t *testing.T) {
	var cmd *UpsertUserCommand
	if err := cmd.Execute(context.Background(), UpsertUserMessage{}); err == nil {
		t.Fatalf("expected dependency failure on nil command")
	}
	if err := NewUpsertUserCommand(nil).Execute(context.Background(), UpsertUserMessage{
		Input: core.CreateUserInput{ID: "u1", Email: "a@b.c"},
	}); err == nil {
		t.Fatalf("expected dependency failure on nil client")
	}
}
