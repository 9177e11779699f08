package fulfillment

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// MockOrderRepository is a mock implementation of commerce.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status commerce.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockRecordRepository is a mock implementation of fulfillment.RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*fulfillment.Record, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Record), args.Error(1)
}

func (m *MockRecordRepository) FindByProviderOrder(ctx context.Context, provider fulfillment.ProviderCode, externalOrderID string) (*fulfillment.Record, error) {
	args := m.Called(ctx, provider, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Record), args.Error(1)
}

func (m *MockRecordRepository) FindNonTerminal(ctx context.Context) ([]fulfillment.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Record), args.Error(1)
}

func (m *MockRecordRepository) Upsert(ctx context.Context, record *fulfillment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// MockProvider is a mock implementation of fulfillment.Provider
type MockProvider struct {
	mock.Mock
	code fulfillment.ProviderCode
}

func NewMockProvider(code fulfillment.ProviderCode) *MockProvider {
	return &MockProvider{code: code}
}

func (m *MockProvider) Code() fulfillment.ProviderCode {
	return m.code
}

func (m *MockProvider) Quote(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (*fulfillment.Quote, error) {
	args := m.Called(ctx, order, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Quote), args.Error(1)
}

func (m *MockProvider) Submit(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (string, error) {
	args := m.Called(ctx, order, items)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) Confirm(ctx context.Context, externalOrderID string) error {
	args := m.Called(ctx, externalOrderID)
	return args.Error(0)
}

func (m *MockProvider) GetStatus(ctx context.Context, externalOrderID string) (*fulfillment.StatusReport, error) {
	args := m.Called(ctx, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.StatusReport), args.Error(1)
}

// stubRegistry is a fixed-order registry for tests
type stubRegistry struct {
	providers []fulfillment.Provider
}

func (r *stubRegistry) Get(code fulfillment.ProviderCode) (fulfillment.Provider, error) {
	for _, p := range r.providers {
		if p.Code() == code {
			return p, nil
		}
	}
	return nil, fulfillment.ErrProviderNotRegistered
}

func (r *stubRegistry) List() []fulfillment.Provider {
	return r.providers
}

// MockEventDeduper is a mock implementation of EventDeduper
type MockEventDeduper struct {
	mock.Mock
}

func (m *MockEventDeduper) MarkConsumed(ctx context.Context, provider fulfillment.ProviderCode, eventID string) (bool, error) {
	args := m.Called(ctx, provider, eventID)
	return args.Bool(0), args.Error(1)
}
