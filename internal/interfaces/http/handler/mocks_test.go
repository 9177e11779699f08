package handler

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// mockOrderRepository is a mock implementation of commerce.OrderRepository
type mockOrderRepository struct {
	mock.Mock
}

func (m *mockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commerce.Order), args.Error(1)
}

func (m *mockOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status commerce.OrderStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// mockRecordRepository is a mock implementation of fulfillment.RecordRepository
type mockRecordRepository struct {
	mock.Mock
}

func (m *mockRecordRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*fulfillment.Record, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Record), args.Error(1)
}

func (m *mockRecordRepository) FindByProviderOrder(ctx context.Context, provider fulfillment.ProviderCode, externalOrderID string) (*fulfillment.Record, error) {
	args := m.Called(ctx, provider, externalOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Record), args.Error(1)
}

func (m *mockRecordRepository) FindNonTerminal(ctx context.Context) ([]fulfillment.Record, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]fulfillment.Record), args.Error(1)
}

func (m *mockRecordRepository) Upsert(ctx context.Context, record *fulfillment.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

// mockProvider is a mock implementation of fulfillment.Provider
type mockProvider struct {
	mock.Mock
	code fulfillment.ProviderCode
}

func newMockProvider(code fulfillment.ProviderCode) *mockProvider {
	return &mockProvider{code: code}
}

func (m *mockProvider) Code() fulfillment.ProviderCode {
	return m.code
}

func (m *mockProvider) Quote(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (*fulfillment.Quote, error) {
	args := m.Called(ctx, order, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*fulfillment.Quote), args.Error(1)
}

func (m *mockProvider) Submit(ctx context.Context, order *commerce.Order, items []commerce.OrderItem) (string, error) {
	args := m.Called(ctx, order, items)
	return args.String(0), args.Error(1)
}

func (m *mockProvider) Confirm(ctx context.Context, externalOrderID string) error {
	args := m.Called(ctx, externalOrderID)
	return args.Error(0)
}

func (m *mockProvider) GetStatus(ctx context.Context, externalOrderID string) (*fulfillment.StatusReport, error) {
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

// stubDeduper accepts every event exactly once
type stubDeduper struct {
	seen map[string]bool
}

func newStubDeduper() *stubDeduper {
	return &stubDeduper{seen: make(map[string]bool)}
}

func (d *stubDeduper) MarkConsumed(ctx context.Context, provider fulfillment.ProviderCode, eventID string) (bool, error) {
	key := provider.String() + ":" + eventID
	if d.seen[key] {
		return false, nil
	}
	d.seen[key] = true
	return true, nil
}
