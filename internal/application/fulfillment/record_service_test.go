package fulfillment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
)

func TestRecordService_RecordSubmission(t *testing.T) {
	logger := zap.NewNop()

	t.Run("creates record on first submission", func(t *testing.T) {
		orderID := uuid.New()

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByOrderID", mock.Anything, orderID).Return(nil, shared.ErrNotFound)
		recordRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*fulfillment.Record")).Return(nil)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		record, err := service.RecordSubmission(context.Background(), orderID, fulfillment.ProviderCodePrintful, "8471234")

		assert.NoError(t, err)
		assert.Equal(t, orderID, record.OrderID)
		assert.Equal(t, fulfillment.ProviderCodePrintful, record.Provider)
		assert.Equal(t, "8471234", record.ExternalOrderID)
		assert.Equal(t, fulfillment.StatusPending, record.Status)
		recordRepo.AssertExpectations(t)
	})

	t.Run("resubmission re-points the existing record", func(t *testing.T) {
		orderID := uuid.New()
		existing := fulfillment.NewRecord(orderID, fulfillment.ProviderCodePrintful, "8471234")
		existing.Status = fulfillment.StatusFailed
		existing.TrackingNumber = "stale"

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByOrderID", mock.Anything, orderID).Return(existing, nil)
		recordRepo.On("Upsert", mock.Anything, existing).Return(nil)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		record, err := service.RecordSubmission(context.Background(), orderID, fulfillment.ProviderCodePrintify, "pf_009")

		assert.NoError(t, err)
		assert.Equal(t, existing.ID, record.ID)
		assert.Equal(t, fulfillment.ProviderCodePrintify, record.Provider)
		assert.Equal(t, "pf_009", record.ExternalOrderID)
		assert.Equal(t, fulfillment.StatusPending, record.Status)
		assert.Empty(t, record.TrackingNumber)
	})

	t.Run("live record rejects a second submission", func(t *testing.T) {
		orderID := uuid.New()
		existing := fulfillment.NewRecord(orderID, fulfillment.ProviderCodePrintful, "8471234")
		existing.Status = fulfillment.StatusProcessing

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByOrderID", mock.Anything, orderID).Return(existing, nil)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		record, err := service.RecordSubmission(context.Background(), orderID, fulfillment.ProviderCodePrintify, "pf_010")

		assert.Nil(t, record)
		assert.ErrorIs(t, err, fulfillment.ErrOrderAlreadySubmitted)
		recordRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("delivered record rejects a second submission", func(t *testing.T) {
		orderID := uuid.New()
		existing := fulfillment.NewRecord(orderID, fulfillment.ProviderCodePrintful, "8471234")
		existing.Status = fulfillment.StatusDelivered

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByOrderID", mock.Anything, orderID).Return(existing, nil)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		_, err := service.RecordSubmission(context.Background(), orderID, fulfillment.ProviderCodePrintful, "8479999")

		assert.ErrorIs(t, err, fulfillment.ErrOrderAlreadySubmitted)
		assert.Equal(t, fulfillment.StatusDelivered, existing.Status)
		recordRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})
}

func TestRecordService_ApplyStatus(t *testing.T) {
	logger := zap.NewNop()

	t.Run("advance persists and reports change", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintful, "8471234")

		recordRepo := new(MockRecordRepository)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		changed, err := service.ApplyStatus(context.Background(), record, fulfillment.StatusProcessing, nil)

		assert.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, fulfillment.StatusProcessing, record.Status)
	})

	t.Run("stale status is a no-op that still persists tracking", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintful, "8471234")
		record.Status = fulfillment.StatusShipped

		recordRepo := new(MockRecordRepository)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)
		orderRepo := new(MockOrderRepository)

		service := NewRecordService(recordRepo, orderRepo, logger)

		changed, err := service.ApplyStatus(context.Background(), record, fulfillment.StatusProcessing, nil)

		assert.NoError(t, err)
		assert.False(t, changed)
		assert.Equal(t, fulfillment.StatusShipped, record.Status)
		orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reaching shipped promotes the order", func(t *testing.T) {
		orderID := uuid.New()
		record := fulfillment.NewRecord(orderID, fulfillment.ProviderCodePrintify, "pf_001")
		record.Status = fulfillment.StatusProcessing

		recordRepo := new(MockRecordRepository)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, orderID).
			Return(&commerce.Order{ID: orderID, Status: commerce.OrderStatusProcessing}, nil)
		orderRepo.On("UpdateStatus", mock.Anything, orderID, commerce.OrderStatusShipped).Return(nil)

		service := NewRecordService(recordRepo, orderRepo, logger)

		changed, err := service.ApplyStatus(context.Background(), record, fulfillment.StatusShipped, &fulfillment.TrackingInfo{
			TrackingNumber: "1Z999AA10123456784",
		})

		assert.NoError(t, err)
		assert.True(t, changed)
		orderRepo.AssertExpectations(t)
	})

	t.Run("promotion walks intermediate order states", func(t *testing.T) {
		orderID := uuid.New()
		record := fulfillment.NewRecord(orderID, fulfillment.ProviderCodePrintful, "8471234")
		record.Status = fulfillment.StatusProcessing

		recordRepo := new(MockRecordRepository)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, orderID).
			Return(&commerce.Order{ID: orderID, Status: commerce.OrderStatusPaid}, nil)
		orderRepo.On("UpdateStatus", mock.Anything, orderID, commerce.OrderStatusProcessing).Return(nil)
		orderRepo.On("UpdateStatus", mock.Anything, orderID, commerce.OrderStatusShipped).Return(nil)

		service := NewRecordService(recordRepo, orderRepo, logger)

		changed, err := service.ApplyStatus(context.Background(), record, fulfillment.StatusShipped, nil)

		assert.NoError(t, err)
		assert.True(t, changed)
		orderRepo.AssertExpectations(t)
	})

	t.Run("promotion the order lifecycle forbids is skipped", func(t *testing.T) {
		orderID := uuid.New()
		record := fulfillment.NewRecord(orderID, fulfillment.ProviderCodePrintful, "8471234")
		record.Status = fulfillment.StatusProcessing

		recordRepo := new(MockRecordRepository)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, orderID).
			Return(&commerce.Order{ID: orderID, Status: commerce.OrderStatusCancelled}, nil)

		service := NewRecordService(recordRepo, orderRepo, logger)

		changed, err := service.ApplyStatus(context.Background(), record, fulfillment.StatusShipped, nil)

		assert.NoError(t, err)
		assert.True(t, changed)
		orderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRecordService_ApplyStatusByExternal(t *testing.T) {
	logger := zap.NewNop()

	t.Run("resolves the record by provider order id", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintify, "pf_042")

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintify, "pf_042").Return(record, nil)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		changed, err := service.ApplyStatusByExternal(context.Background(), fulfillment.ProviderCodePrintify, "pf_042", fulfillment.StatusProcessing, nil)

		assert.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("unknown external order id", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintful, "999").Return(nil, shared.ErrNotFound)

		service := NewRecordService(recordRepo, new(MockOrderRepository), logger)

		changed, err := service.ApplyStatusByExternal(context.Background(), fulfillment.ProviderCodePrintful, "999", fulfillment.StatusShipped, nil)

		assert.Error(t, err)
		assert.False(t, changed)
	})
}
