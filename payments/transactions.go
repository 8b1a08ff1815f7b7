// Package payments keeps gateway transaction records on top of the data
// layer. Transactions piggyback on the product catalog: each record is stored
// as an inactive-facing product row whose metadata carries the transaction
// payload, so both backends persist them without their own table.
package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"

	"github.com/goliatone/go-paybridge/core"
)

// Transaction is one gateway payment event worth keeping.
type Transaction struct {
	ID                   string         `json:"id"`
	UserID               string         `json:"user_id,omitempty"`
	SubscriptionID       string         `json:"subscription_id,omitempty"`
	Gateway              string         `json:"gateway"`
	GatewayTransactionID string         `json:"gateway_transaction_id"`
	Amount               string         `json:"amount,omitempty"`
	Currency             string         `json:"currency,omitempty"`
	Status               string         `json:"status,omitempty"`
	Type                 string         `json:"type,omitempty"`
	Raw                  map[string]any `json:"raw,omitempty"`
	CreatedAt            *time.Time     `json:"created_at,omitempty"`
	UpdatedAt            *time.Time     `json:"updated_at,omitempty"`
}

// TransactionUpdate carries partial changes; nil means unchanged.
type TransactionUpdate struct {
	UserID         *string
	SubscriptionID *string
	Amount         *string
	Currency       *string
	Status         *string
	Type           *string
	Raw            map[string]any
}

// ProductClient is the slice of the data contract transactions ride on.
type ProductClient interface {
	GetProduct(ctx context.Context, productID string) (*core.Product, error)
	CreateProduct(ctx context.Context, in core.CreateProductInput) (*core.Product, error)
	UpdateProduct(ctx context.Context, productID string, in core.UpdateProductInput) (*core.Product, error)
}

// Service records and reads transactions through a data client.
type Service struct {
	data   ProductClient
	logger core.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithLogger(logger core.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(data ProductClient, options ...Option) (*Service, error) {
	if data == nil {
		return nil, fmt.Errorf("payments: data client is required")
	}
	service := &Service{
		data:   data,
		logger: glog.Nop(),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, option := range options {
		if option != nil {
			option(service)
		}
	}
	return service, nil
}

// SaveTransaction upserts a transaction record. A missing id is minted; the
// gateway pair is required since it names the record.
func (s *Service) SaveTransaction(ctx context.Context, tx Transaction) (*Transaction, error) {
	if s == nil || s.data == nil {
		return nil, fmt.Errorf("payments: service is not configured")
	}
	if strings.TrimSpace(tx.Gateway) == "" || strings.TrimSpace(tx.GatewayTransactionID) == "" {
		return nil, newTransactionValidationError("gateway and gateway transaction id are required")
	}
	if strings.TrimSpace(tx.ID) == "" {
		tx.ID = uuid.NewString()
	}
	now := s.now().UTC()
	if tx.CreatedAt == nil {
		tx.CreatedAt = &now
	}
	tx.UpdatedAt = &now

	metadata, err := transactionMetadata(tx)
	if err != nil {
		return nil, err
	}
	description := fmt.Sprintf("Transaction for gateway %s", tx.Gateway)
	product, err := s.data.CreateProduct(ctx, core.CreateProductInput{
		ID:          tx.ID,
		Name:        fmt.Sprintf("Tx:%s:%s", tx.Gateway, tx.GatewayTransactionID),
		Description: &description,
		Metadata:    metadata,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("transaction saved", "transaction_id", tx.ID, "gateway", tx.Gateway)
	if product == nil {
		// Some backends acknowledge a write without echoing the row.
		return &tx, nil
	}
	return transactionFromMetadata(product.Metadata)
}

// UpdateTransaction merges partial changes into an existing record. The
// stored payload survives the merge; only the supplied fields change.
func (s *Service) UpdateTransaction(ctx context.Context, id string, updates TransactionUpdate) (*Transaction, error) {
	if s == nil || s.data == nil {
		return nil, fmt.Errorf("payments: service is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, newTransactionValidationError("transaction id is required")
	}

	current, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current == nil {
		return nil, core.NewNotFoundError(fmt.Sprintf("payments: transaction %q not found", id))
	}

	if updates.UserID != nil {
		current.UserID = *updates.UserID
	}
	if updates.SubscriptionID != nil {
		current.SubscriptionID = *updates.SubscriptionID
	}
	if updates.Amount != nil {
		current.Amount = *updates.Amount
	}
	if updates.Currency != nil {
		current.Currency = *updates.Currency
	}
	if updates.Status != nil {
		current.Status = *updates.Status
	}
	if updates.Type != nil {
		current.Type = *updates.Type
	}
	if updates.Raw != nil {
		current.Raw = updates.Raw
	}
	now := s.now().UTC()
	current.UpdatedAt = &now

	metadata, err := transactionMetadata(*current)
	if err != nil {
		return nil, err
	}
	product, err := s.data.UpdateProduct(ctx, id, core.UpdateProductInput{Metadata: metadata})
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, core.NewNotFoundError(fmt.Sprintf("payments: transaction %q not found", id))
	}
	return transactionFromMetadata(product.Metadata)
}

// GetTransactionByID returns the stored record, or (nil, nil) when the id is
// unknown.
func (s *Service) GetTransactionByID(ctx context.Context, id string) (*Transaction, error) {
	if s == nil || s.data == nil {
		return nil, fmt.Errorf("payments: service is not configured")
	}
	if strings.TrimSpace(id) == "" {
		return nil, newTransactionValidationError("transaction id is required")
	}
	product, err := s.data.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil || len(product.Metadata) == 0 {
		return nil, nil
	}
	return transactionFromMetadata(product.Metadata)
}

func transactionMetadata(tx Transaction) (map[string]any, error) {
	encoded, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("payments: encode transaction %q: %w", tx.ID, err)
	}
	metadata := map[string]any{}
	if err := json.Unmarshal(encoded, &metadata); err != nil {
		return nil, fmt.Errorf("payments: encode transaction %q: %w", tx.ID, err)
	}
	return metadata, nil
}

func transactionFromMetadata(metadata map[string]any) (*Transaction, error) {
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("payments: decode transaction metadata: %w", err)
	}
	tx := &Transaction{}
	if err := json.Unmarshal(encoded, tx); err != nil {
		return nil, fmt.Errorf("payments: decode transaction metadata: %w", err)
	}
	return tx, nil
}

func newTransactionValidationError(message string) error {
	return goerrors.New("payments: "+message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(core.ErrorCodeBadInput)
}
