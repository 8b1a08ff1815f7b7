package command

import gocmd "github.com/goliatone/go-command"

var (
	_ gocmd.Commander[UpsertUserMessage]         = (*UpsertUserCommand)(nil)
	_ gocmd.Commander[UpdateUserMessage]         = (*UpdateUserCommand)(nil)
	_ gocmd.Commander[UpsertCustomerMessage]     = (*UpsertCustomerCommand)(nil)
	_ gocmd.Commander[UpsertProductMessage]      = (*UpsertProductCommand)(nil)
	_ gocmd.Commander[DeleteProductMessage]      = (*DeleteProductCommand)(nil)
	_ gocmd.Commander[UpsertPriceMessage]        = (*UpsertPriceCommand)(nil)
	_ gocmd.Commander[DeletePriceMessage]        = (*DeletePriceCommand)(nil)
	_ gocmd.Commander[UpsertSubscriptionMessage] = (*UpsertSubscriptionCommand)(nil)
	_ gocmd.Commander[DeleteSubscriptionMessage] = (*DeleteSubscriptionCommand)(nil)
	_ gocmd.Commander[DispatchWebhookMessage]    = (*DispatchWebhookCommand)(nil)
)
