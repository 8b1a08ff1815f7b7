package payments

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-paybridge/core"
)

type stubProductClient struct {
	products map[string]*core.Product
	creates  []core.CreateProductInput
	updates  []core.UpdateProductInput
}

func newStubProductClient() *stubProductClient {
	return &stubProductClient{products: map[string]*core.Product{}}
}

func (c *stubProductClient) GetProduct(_ context.Context, productID string) (*core.Product, error) {
	return c.products[productID], nil
}

func (c *stubProductClient) CreateProduct(_ context.Context, in core.CreateProductInput) (*core.Product, error) {
	c.creates = append(c.creates, in)
	product := &core.Product{
		ID:       in.ID,
		Active:   true,
		Name:     in.Name,
		Metadata: in.Metadata,
	}
	c.products[in.ID] = product
	return product, nil
}

func (c *stubProductClient) UpdateProduct(_ context.Context, productID string, in core.UpdateProductInput) (*core.Product, error) {
	c.updates = append(c.updates, in)
	product := c.products[productID]
	if product == nil {
		return nil, nil
	}
	if in.Metadata != nil {
		product.Metadata = in.Metadata
	}
	return product, nil
}

func newTestService(t *testing.T, data ProductClient) *Service {
	t.Helper()
	at := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	service, err := New(data, WithClock(func() time.Time { return at }))
	if err != nil {
		t.Fatalf("build payments service: %v", err)
	}
	return service
}

func TestSaveTransaction_RecordsOnCatalog(t *testing.T) {
	data := newStubProductClient()
	service := newTestService(t, data)

	saved, err := service.SaveTransaction(context.Background(), Transaction{
		Gateway:              "stripe",
		GatewayTransactionID: "ch_123",
		Amount:               "1999",
		Currency:             "usd",
		Status:               "succeeded",
	})
	if err != nil {
		t.Fatalf("save transaction: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected a minted transaction id")
	}
	if saved.CreatedAt == nil || saved.UpdatedAt == nil {
		t.Fatalf("expected timestamps on saved transaction, got %+v", saved)
	}

	if len(data.creates) != 1 {
		t.Fatalf("expected one catalog write, got %d", len(data.creates))
	}
	create := data.creates[0]
	if create.Name != "Tx:stripe:ch_123" {
		t.Fatalf("unexpected record name %q", create.Name)
	}
	if create.Metadata["gateway"] != "stripe" || create.Metadata["amount"] != "1999" {
		t.Fatalf("expected transaction payload in metadata, got %#v", create.Metadata)
	}
}

func TestSaveTransaction_RequiresGatewayPair(t *testing.T) {
	service := newTestService(t, newStubProductClient())
	if _, err := service.SaveTransaction(context.Background(), Transaction{Gateway: "stripe"}); err == nil {
		t.Fatalf("expected error for missing gateway transaction id")
	}
	if _, err := service.SaveTransaction(context.Background(), Transaction{GatewayTransactionID: "ch_123"}); err == nil {
		t.Fatalf("expected error for missing gateway")
	}
}

func TestSaveTransaction_KeepsCallerID(t *testing.T) {
	data := newStubProductClient()
	service := newTestService(t, data)

	saved, err := service.SaveTransaction(context.Background(), Transaction{
		ID:                   "tx_1",
		Gateway:              "stripe",
		GatewayTransactionID: "ch_123",
	})
	if err != nil {
		t.Fatalf("save transaction: %v", err)
	}
	if saved.ID != "tx_1" {
		t.Fatalf("expected caller id preserved, got %q", saved.ID)
	}
}

func TestUpdateTransaction_MergesPartialChanges(t *testing.T) {
	data := newStubProductClient()
	service := newTestService(t, data)

	if _, err := service.SaveTransaction(context.Background(), Transaction{
		ID:                   "tx_1",
		Gateway:              "stripe",
		GatewayTransactionID: "ch_123",
		Amount:               "1999",
		Status:               "pending",
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	status := "succeeded"
	updated, err := service.UpdateTransaction(context.Background(), "tx_1", TransactionUpdate{Status: &status})
	if err != nil {
		t.Fatalf("update transaction: %v", err)
	}
	if updated.Status != "succeeded" {
		t.Fatalf("expected status to change, got %q", updated.Status)
	}
	if updated.Amount != "1999" || updated.Gateway != "stripe" {
		t.Fatalf("expected untouched fields to survive the merge, got %+v", updated)
	}
}

func TestUpdateTransaction_UnknownIDIsNotFound(t *testing.T) {
	service := newTestService(t, newStubProductClient())
	status := "succeeded"
	_, err := service.UpdateTransaction(context.Background(), "missing", TransactionUpdate{Status: &status})
	if err == nil || !core.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestGetTransactionByID_MissingIsNil(t *testing.T) {
	service := newTestService(t, newStubProductClient())
	tx, err := service.GetTransactionByID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get missing transaction: %v", err)
	}
	if tx != nil {
		t.Fatalf("expected nil for unknown transaction, got %+v", tx)
	}
}

func TestGetTransactionByID_RoundTripsPayload(t *testing.T) {
	data := newStubProductClient()
	service := newTestService(t, data)

	if _, err := service.SaveTransaction(context.Background(), Transaction{
		ID:                   "tx_1",
		UserID:               "user_1",
		Gateway:              "stripe",
		GatewayTransactionID: "ch_123",
		Raw:                  map[string]any{"livemode": false},
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	tx, err := service.GetTransactionByID(context.Background(), "tx_1")
	if err != nil {
		t.Fatalf("get transaction: %v", err)
	}
	if tx == nil || tx.UserID != "user_1" || tx.GatewayTransactionID != "ch_123" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
	if livemode, ok := tx.Raw["livemode"].(bool); !ok || livemode {
		t.Fatalf("expected raw payload to round-trip, got %#v", tx.Raw)
	}
}

type silentProductClient struct {
	stubProductClient
}

func (c *silentProductClient) CreateProduct(_ context.Context, in core.CreateProductInput) (*core.Product, error) {
	c.creates = append(c.creates, in)
	return nil, nil
}

func TestSaveTransaction_ToleratesSilentWrite(t *testing.T) {
	data := &silentProductClient{stubProductClient: *newStubProductClient()}
	service := newTestService(t, data)

	saved, err := service.SaveTransaction(context.Background(), Transaction{
		ID:                   "tx_1",
		Gateway:              "stripe",
		GatewayTransactionID: "ch_123",
	})
	if err != nil {
		t.Fatalf("save transaction: %v", err)
	}
	if saved == nil || saved.ID != "tx_1" {
		t.Fatalf("expected the submitted record back, got %+v", saved)
	}
	if len(data.creates) != 1 {
		t.Fatalf("expected one catalog write, got %d", len(data.creates))
	}
}
