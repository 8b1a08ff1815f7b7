package query

import (
	"fmt"
	"strings"
)

const (
	TypeGetCustomer       = "paybridge.query.customer.get"
	TypeGetProduct        = "paybridge.query.product.get"
	TypeListProducts      = "paybridge.query.product.list"
	TypeGetPrice          = "paybridge.query.price.get"
	TypeListPrices        = "paybridge.query.price.list"
	TypeGetSubscription   = "paybridge.query.subscription.get"
	TypeListSubscriptions = "paybridge.query.subscription.list"
)

type GetCustomerMessage struct {
	UserID string
}

func (GetCustomerMessage) Type() string { return TypeGetCustomer }

func (m GetCustomerMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("query: user id is required")
	}
	return nil
}

type GetProductMessage struct {
	ProductID string
}

func (GetProductMessage) Type() string { return TypeGetProduct }

func (m GetProductMessage) Validate() error {
	if strings.TrimSpace(m.ProductID) == "" {
		return fmt.Errorf("query: product id is required")
	}
	return nil
}

type ListProductsMessage struct{}

func (ListProductsMessage) Type() string { return TypeListProducts }

func (ListProductsMessage) Validate() error { return nil }

type GetPriceMessage struct {
	PriceID string
}

func (GetPriceMessage) Type() string { return TypeGetPrice }

func (m GetPriceMessage) Validate() error {
	if strings.TrimSpace(m.PriceID) == "" {
		return fmt.Errorf("query: price id is required")
	}
	return nil
}

type ListPricesMessage struct{}

func (ListPricesMessage) Type() string { return TypeListPrices }

func (ListPricesMessage) Validate() error { return nil }

type GetSubscriptionMessage struct {
	UserID string
}

func (GetSubscriptionMessage) Type() string { return TypeGetSubscription }

func (m GetSubscriptionMessage) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("query: user id is required")
	}
	return nil
}

type ListSubscriptionsMessage struct{}

func (ListSubscriptionsMessage) Type() string { return TypeListSubscriptions }

func (ListSubscriptionsMessage) Validate() error { return nil }
