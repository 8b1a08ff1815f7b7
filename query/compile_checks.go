package query

import (
	gocmd "github.com/goliatone/go-command"
	"github.com/goliatone/go-paybridge/core"
)

var (
	_ gocmd.Querier[GetCustomerMessage, *core.Customer]            = (*GetCustomerQuery)(nil)
	_ gocmd.Querier[GetProductMessage, *core.Product]              = (*GetProductQuery)(nil)
	_ gocmd.Querier[ListProductsMessage, []core.Product]           = (*ListProductsQuery)(nil)
	_ gocmd.Querier[GetPriceMessage, *core.Price]                  = (*GetPriceQuery)(nil)
	_ gocmd.Querier[ListPricesMessage, []core.Price]               = (*ListPricesQuery)(nil)
	_ gocmd.Querier[GetSubscriptionMessage, *core.Subscription]    = (*GetSubscriptionQuery)(nil)
	_ gocmd.Querier[ListSubscriptionsMessage, []core.Subscription] = (*ListSubscriptionsQuery)(nil)
)
