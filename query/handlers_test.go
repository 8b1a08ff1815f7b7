package query

import (
	"context"
	"testing"

	"github.com/goliatone/go-paybridge/core"
)

type stubReadClient struct {
	subscription *core.Subscription
	products     []core.Product
}

func (s *stubReadClient) GetCustomer(_ context.Context, userID string) (*core.Customer, error) {
	return &core.Customer{ID: userID}, nil
}

func (s *stubReadClient) GetProducts(_ context.Context) ([]core.Product, error) {
	return s.products, nil
}

func (s *stubReadClient) GetProduct(_ context.Context, productID string) (*core.Product, error) {
	return &core.Product{ID: productID}, nil
}

func (s *stubReadClient) GetPrices(_ context.Context) ([]core.Price, error) {
	return nil, nil
}

func (s *stubReadClient) GetPrice(_ context.Context, priceID string) (*core.Price, error) {
	return &core.Price{ID: priceID}, nil
}

func (s *stubReadClient) GetSubscription(_ context.Context, _ string) (*core.Subscription, error) {
	return s.subscription, nil
}

func (s *stubReadClient) GetSubscriptions(_ context.Context) ([]core.Subscription, error) {
	if s.subscription == nil {
		return nil, nil
	}
	return []core.Subscription{*s.subscription}, nil
}

func TestGetSubscriptionQueryReturnsClientResult(t *testing.T) {
	client := &stubReadClient{subscription: &core.Subscription{ID: "s1", UserID: "u1"}}
	q := NewGetSubscriptionQuery(client)

	subscription, err := q.Query(context.Background(), GetSubscriptionMessage{UserID: "u1"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if subscription == nil || subscription.ID != "s1" {
		t.Fatalf("unexpected subscription: %+v", subscription)
	}
}

func TestGetSubscriptionQueryRequiresUserID(t *testing.T) {
	q := NewGetSubscriptionQuery(&stubReadClient{})

	if _, err := q.Query(context.Background(), GetSubscriptionMessage{}); err == nil {
		t.Fatalf("expected missing user id failure")
	}
}

func TestListProductsQueryPassesThrough(t *testing.T) {
	client := &stubReadClient{products: []core.Product{{ID: "p1"}, {ID: "p2"}}}
	q := NewListProductsQuery(client)

	products, err := q.Query(context.Background(), ListProductsMessage{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("unexpected products: %+v", products)
	}
}

func TestQueriesRequireClient(t *testing.T) {
	var q *GetCustomerQuery
	if _, err := q.Query(context.Background(), GetCustomerMessage{UserID: "u1"}); err == nil {
		t.Fatalf("expected dependency failure on nil query")
	}
	if _, err := NewGetPriceQuery(nil).Query(context.Background(), GetPriceMessage{PriceID: "pr1"}); err == nil {
		t.Fatalf("expected dependency failure on nil client")
	}
}
