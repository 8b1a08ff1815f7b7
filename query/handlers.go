// Package query wraps the read half of the data contract in go-command
// queriers.
package query

import (
	"context"

	"github.com/goliatone/go-paybridge/core"
)

// ReadClient is the read surface the queries need; any data client
// satisfies it.
type ReadClient interface {
	GetCustomer(ctx context.Context, userID string) (*core.Customer, error)
	GetProducts(ctx context.Context) ([]core.Product, error)
	GetProduct(ctx context.Context, productID string) (*core.Product, error)
	GetPrices(ctx context.Context) ([]core.Price, error)
	GetPrice(ctx context.Context, priceID string) (*core.Price, error)
	GetSubscription(ctx context.Context, userID string) (*core.Subscription, error)
	GetSubscriptions(ctx context.Context) ([]core.Subscription, error)
}

type GetCustomerQuery struct {
	client ReadClient
}

func NewGetCustomerQuery(client ReadClient) *GetCustomerQuery {
	return &GetCustomerQuery{client: client}
}

func (q *GetCustomerQuery) Query(ctx context.Context, msg GetCustomerMessage) (*core.Customer, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.client.GetCustomer(ctx, msg.UserID)
}

type GetProductQuery struct {
	client ReadClient
}

func NewGetProductQuery(client ReadClient) *GetProductQuery {
	return &GetProductQuery{client: client}
}

func (q *GetProductQuery) Query(ctx context.Context, msg GetProductMessage) (*core.Product, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.client.GetProduct(ctx, msg.ProductID)
}

type ListProductsQuery struct {
	client ReadClient
}

func NewListProductsQuery(client ReadClient) *ListProductsQuery {
	return &ListProductsQuery{client: client}
}

func (q *ListProductsQuery) Query(ctx context.Context, msg ListProductsMessage) ([]core.Product, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	return q.client.GetProducts(ctx)
}

type GetPriceQuery struct {
	client ReadClient
}

func NewGetPriceQuery(client ReadClient) *GetPriceQuery {
	return &GetPriceQuery{client: client}
}

func (q *GetPriceQuery) Query(ctx context.Context, msg GetPriceMessage) (*core.Price, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.client.GetPrice(ctx, msg.PriceID)
}

type ListPricesQuery struct {
	client ReadClient
}

func NewListPricesQuery(client ReadClient) *ListPricesQuery {
	return &ListPricesQuery{client: client}
}

func (q *ListPricesQuery) Query(ctx context.Context, msg ListPricesMessage) ([]core.Price, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	return q.client.GetPrices(ctx)
}

type GetSubscriptionQuery struct {
	client ReadClient
}

func NewGetSubscriptionQuery(client ReadClient) *GetSubscriptionQuery {
	return &GetSubscriptionQuery{client: client}
}

func (q *GetSubscriptionQuery) Query(ctx context.Context, msg GetSubscriptionMessage) (*core.Subscription, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return q.client.GetSubscription(ctx, msg.UserID)
}

type ListSubscriptionsQuery struct {
	client ReadClient
}

func NewListSubscriptionsQuery(client ReadClient) *ListSubscriptionsQuery {
	return &ListSubscriptionsQuery{client: client}
}

func (q *ListSubscriptionsQuery) Query(ctx context.Context, msg ListSubscriptionsMessage) ([]core.Subscription, error) {
	if q == nil || q.client == nil {
		return nil, queryDependencyError("query: data client is required")
	}
	return q.client.GetSubscriptions(ctx)
}
