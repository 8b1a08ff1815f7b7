package paybridge

import (
	"context"
	"testing"

	"github.com/goliatone/go-paybridge/core"
)

// stubDataClient records the calls the facade forwards.
type stubDataClient struct {
	createdProducts []core.CreateProductInput
	subscriptionFor string
	events          []core.WebhookEvent
}

func (s *stubDataClient) GetUser(context.Context) (*core.User, error) { return nil, nil }

func (s *stubDataClient) CreateUser(_ context.Context, in core.CreateUserInput) (*core.User, error) {
	return &core.User{ID: in.ID}, nil
}
func (s *stubDataClient) UpdateUser(_ context.Context, userID string, _ core.UpdateUserInput) (*core.User, error) {
	return &core.User{ID: userID}, nil
}
func (s *stubDataClient) GetCustomer(context.Context, string) (*core.Customer, error) {
	return nil, nil
}
func (s *stubDataClient) CreateCustomer(_ context.Context, in core.CreateCustomerInput) (*core.Customer, error) {
	return &core.Customer{ID: in.ID}, nil
}
func (s *stubDataClient) UpdateCustomer(context.Context, string, core.UpdateCustomerInput) (*core.Customer, error) {
	return nil, nil
}
func (s *stubDataClient) GetProducts(context.Context) ([]core.Product, error) { return nil, nil }

func (s *stubDataClient) GetProduct(context.Context, string) (*core.Product, error) {
	return nil, nil
}
func (s *stubDataClient) CreateProduct(_ context.Context, in core.CreateProductInput) (*core.Product, error) {
	s.createdProducts = append(s.createdProducts, in)
	return &core.Product{ID: in.ID, Name: in.Name}, nil
}
func (s *stubDataClient) UpdateProduct(context.Context, string, core.UpdateProductInput) (*core.Product, error) {
	return nil, nil
}
func (s *stubDataClient) DeleteProduct(context.Context, string) error { return nil }

func (s *stubDataClient) GetPrices(context.Context) ([]core.Price, error) { return nil, nil }

func (s *stubDataClient) GetPrice(context.Context, string) (*core.Price, error) { return nil, nil }

func (s *stubDataClient) CreatePrice(context.Context, core.CreatePriceInput) (*core.Price, error) {
	return nil, nil
}
func (s *stubDataClient) UpdatePrice(context.Context, string, core.UpdatePriceInput) (*core.Price, error) {
	return nil, nil
}
func (s *stubDataClient) DeletePrice(context.Context, string) error { return nil }

func (s *stubDataClient) GetSubscription(_ context.Context, userID string) (*core.Subscription, error) {
	s.subscriptionFor = userID
	return nil, nil
}
func (s *stubDataClient) GetSubscriptions(context.Context) ([]core.Subscription, error) {
	return nil, nil
}
func (s *stubDataClient) CreateSubscription(context.Context, core.CreateSubscriptionInput) (*core.Subscription, error) {
	return nil, nil
}
func (s *stubDataClient) UpdateSubscription(context.Context, string, core.UpdateSubscriptionInput) (*core.Subscription, error) {
	return nil, nil
}
func (s *stubDataClient) DeleteSubscription(context.Context, string) error { return nil }

func (s *stubDataClient) SignUp(context.Context, string, string) (*core.AuthResult, error) {
	return nil, nil
}
func (s *stubDataClient) SignIn(context.Context, string, string) (*core.AuthResult, error) {
	return nil, nil
}
func (s *stubDataClient) SignOut(context.Context) error { return nil }

func (s *stubDataClient) ResetPassword(context.Context, string) error { return nil }

func (s *stubDataClient) HandleWebhook(_ context.Context, event core.WebhookEvent) error {
	s.events = append(s.events, event)
	return nil
}

var _ core.DataClient = (*stubDataClient)(nil)

func TestNewClient_WiresCommandsAndQueries(t *testing.T) {
	client, err := NewClient(core.Config{Provider: core.ProviderSQLite}, &stubDataClient{})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	commands := client.Commands()
	if commands.UpsertProduct == nil || commands.DeleteProduct == nil || commands.DispatchWebhook == nil {
		t.Fatalf("expected command handlers to be wired")
	}
	queries := client.Queries()
	if queries.ListProducts == nil || queries.GetSubscription == nil {
		t.Fatalf("expected query handlers to be wired")
	}
}

func TestNewClient_RequiresDataClient(t *testing.T) {
	if _, err := NewClient(core.Config{Provider: core.ProviderSQLite}, nil); err == nil {
		t.Fatalf("expected error for nil data client")
	}
}

func TestClient_DelegatesToBackend(t *testing.T) {
	backend := &stubDataClient{}
	client, err := NewClient(core.Config{Provider: core.ProviderSQLite}, backend)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.CreateProduct(context.Background(), core.CreateProductInput{ID: "prod_1", Name: "Pro"}); err != nil {
		t.Fatalf("create product: %v", err)
	}
	if len(backend.createdProducts) != 1 || backend.createdProducts[0].ID != "prod_1" {
		t.Fatalf("expected product create forwarded, got %#v", backend.createdProducts)
	}

	if _, err := client.GetSubscription(context.Background(), "user_1"); err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if backend.subscriptionFor != "user_1" {
		t.Fatalf("expected user id forwarded, got %q", backend.subscriptionFor)
	}

	event := core.WebhookEvent{Type: core.WebhookProductCreated}
	if err := client.HandleWebhook(context.Background(), event); err != nil {
		t.Fatalf("handle webhook: %v", err)
	}
	if len(backend.events) != 1 || backend.events[0].Type != core.WebhookProductCreated {
		t.Fatalf("expected event forwarded, got %#v", backend.events)
	}

	if client.Provider() != core.ProviderSQLite {
		t.Fatalf("unexpected provider %q", client.Provider())
	}
	if client.UnderlyingClient() != core.DataClient(backend) {
		t.Fatalf("expected backend exposed through UnderlyingClient")
	}
}
