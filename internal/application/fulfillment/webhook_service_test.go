package fulfillment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
)

const testWebhookSecret = "whsec_test_1234"

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func newWebhookFixture(recordRepo *MockRecordRepository, orderRepo *MockOrderRepository, deduper *MockEventDeduper) *WebhookService {
	logger := zap.NewNop()
	recordService := NewRecordService(recordRepo, orderRepo, logger)
	secrets := map[fulfillment.ProviderCode]string{
		fulfillment.ProviderCodePrintful: testWebhookSecret,
		fulfillment.ProviderCodePrintify: testWebhookSecret,
	}
	return NewWebhookService(recordService, deduper, secrets, logger)
}

func TestWebhookService_VerifySignature(t *testing.T) {
	service := newWebhookFixture(new(MockRecordRepository), new(MockOrderRepository), new(MockEventDeduper))
	body := []byte(`{"type":"package_shipped"}`)

	t.Run("valid signature", func(t *testing.T) {
		err := service.VerifySignature(fulfillment.ProviderCodePrintful, body, sign(body, testWebhookSecret))
		assert.NoError(t, err)
	})

	t.Run("wrong secret", func(t *testing.T) {
		err := service.VerifySignature(fulfillment.ProviderCodePrintful, body, sign(body, "other-secret"))
		assert.ErrorIs(t, err, fulfillment.ErrInvalidSignature)
	})

	t.Run("tampered body", func(t *testing.T) {
		header := sign(body, testWebhookSecret)
		err := service.VerifySignature(fulfillment.ProviderCodePrintful, []byte(`{"type":"order_canceled"}`), header)
		assert.ErrorIs(t, err, fulfillment.ErrInvalidSignature)
	})

	t.Run("missing prefix", func(t *testing.T) {
		mac := hmac.New(sha256.New, []byte(testWebhookSecret))
		mac.Write(body)
		err := service.VerifySignature(fulfillment.ProviderCodePrintful, body, hex.EncodeToString(mac.Sum(nil)))
		assert.ErrorIs(t, err, fulfillment.ErrInvalidSignature)
	})

	t.Run("garbage hex", func(t *testing.T) {
		err := service.VerifySignature(fulfillment.ProviderCodePrintful, body, "sha256=not-hex-at-all")
		assert.ErrorIs(t, err, fulfillment.ErrInvalidSignature)
	})

	t.Run("unconfigured provider", func(t *testing.T) {
		bare := NewWebhookService(nil, nil, map[fulfillment.ProviderCode]string{}, zap.NewNop())
		err := bare.VerifySignature(fulfillment.ProviderCodePrintful, body, sign(body, testWebhookSecret))
		assert.ErrorIs(t, err, fulfillment.ErrProviderNotConfigured)
	})
}

func TestWebhookService_Process(t *testing.T) {
	t.Run("printful shipment event advances the record", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintful, "8471234")
		record.Status = fulfillment.StatusProcessing

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintful, "8471234").Return(record, nil)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, record.OrderID).Return(nil, assert.AnError)

		deduper := new(MockEventDeduper)
		deduper.On("MarkConsumed", mock.Anything, fulfillment.ProviderCodePrintful, mock.AnythingOfType("string")).Return(true, nil)

		service := newWebhookFixture(recordRepo, orderRepo, deduper)

		body := []byte(`{"type":"package_shipped","created":1756300000,"data":{"order":{"id":8471234},"shipment":{"tracking_number":"1Z999AA10123456784","tracking_url":"https://track.example.com/1Z999AA10123456784"}}}`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintful, body, sign(body, testWebhookSecret))

		assert.NoError(t, err)
		assert.Equal(t, fulfillment.StatusShipped, record.Status)
		assert.Equal(t, "1Z999AA10123456784", record.TrackingNumber)
	})

	t.Run("printify delivery event advances the record", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintify, "pf_042")
		record.Status = fulfillment.StatusShipped

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintify, "pf_042").Return(record, nil)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, record.OrderID).Return(nil, assert.AnError)

		deduper := new(MockEventDeduper)
		deduper.On("MarkConsumed", mock.Anything, fulfillment.ProviderCodePrintify, "evt_001").Return(true, nil)

		service := newWebhookFixture(recordRepo, orderRepo, deduper)

		body := []byte(`{"id":"evt_001","type":"order:shipment:delivered","resource":{"id":"pf_042","data":{}}}`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintify, body, sign(body, testWebhookSecret))

		assert.NoError(t, err)
		assert.Equal(t, fulfillment.StatusDelivered, record.Status)
	})

	t.Run("invalid signature mutates nothing", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		service := newWebhookFixture(recordRepo, new(MockOrderRepository), new(MockEventDeduper))

		body := []byte(`{"type":"package_shipped","data":{"order":{"id":8471234}}}`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintful, body, "sha256=deadbeef")

		assert.ErrorIs(t, err, fulfillment.ErrInvalidSignature)
		recordRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
	})

	t.Run("unknown event type is an acknowledged no-op", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		deduper := new(MockEventDeduper)

		service := newWebhookFixture(recordRepo, new(MockOrderRepository), deduper)

		body := []byte(`{"id":"evt_002","type":"order:updated","resource":{"id":"pf_042","data":{}}}`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintify, body, sign(body, testWebhookSecret))

		assert.NoError(t, err)
		recordRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
		deduper.AssertNotCalled(t, "MarkConsumed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("replayed event is acked without new state", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintify, "pf_042")
		record.Status = fulfillment.StatusShipped

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintify, "pf_042").Return(record, nil)
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		deduper := new(MockEventDeduper)
		deduper.On("MarkConsumed", mock.Anything, fulfillment.ProviderCodePrintify, "evt_003").Return(false, nil)

		service := newWebhookFixture(recordRepo, new(MockOrderRepository), deduper)

		body := []byte(`{"id":"evt_003","type":"order:shipment:created","resource":{"id":"pf_042","data":{}}}`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintify, body, sign(body, testWebhookSecret))

		assert.NoError(t, err)
		assert.Equal(t, fulfillment.StatusShipped, record.Status)
	})

	t.Run("event stays unconsumed when applying it fails", func(t *testing.T) {
		record := fulfillment.NewRecord(uuid.New(), fulfillment.ProviderCodePrintful, "8471234")
		record.Status = fulfillment.StatusProcessing

		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintful, "8471234").Return(record, nil)
		recordRepo.On("Upsert", mock.Anything, record).Return(errors.New("connection reset")).Once()
		recordRepo.On("Upsert", mock.Anything, record).Return(nil)

		orderRepo := new(MockOrderRepository)
		orderRepo.On("FindByID", mock.Anything, record.OrderID).Return(nil, assert.AnError)

		deduper := new(MockEventDeduper)
		deduper.On("MarkConsumed", mock.Anything, fulfillment.ProviderCodePrintful, mock.AnythingOfType("string")).Return(true, nil)

		service := newWebhookFixture(recordRepo, orderRepo, deduper)

		body := []byte(`{"type":"package_shipped","created":1756300000,"data":{"order":{"id":8471234}}}`)
		signature := sign(body, testWebhookSecret)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintful, body, signature)
		assert.Error(t, err)
		deduper.AssertNotCalled(t, "MarkConsumed", mock.Anything, mock.Anything, mock.Anything)

		// The provider redelivers after the 500 and the update lands.
		err = service.Process(context.Background(), fulfillment.ProviderCodePrintful, body, signature)
		assert.NoError(t, err)
		assert.Equal(t, fulfillment.StatusShipped, record.Status)
		deduper.AssertNumberOfCalls(t, "MarkConsumed", 1)
	})

	t.Run("malformed payload", func(t *testing.T) {
		service := newWebhookFixture(new(MockRecordRepository), new(MockOrderRepository), new(MockEventDeduper))

		body := []byte(`{"nope":`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintful, body, sign(body, testWebhookSecret))

		assert.ErrorIs(t, err, fulfillment.ErrMalformedWebhook)
	})

	t.Run("event for an order this system never submitted is acked", func(t *testing.T) {
		recordRepo := new(MockRecordRepository)
		recordRepo.On("FindByProviderOrder", mock.Anything, fulfillment.ProviderCodePrintful, "999").
			Return(nil, shared.ErrNotFound)

		deduper := new(MockEventDeduper)

		service := newWebhookFixture(recordRepo, new(MockOrderRepository), deduper)

		body := []byte(`{"type":"package_shipped","created":1756300000,"data":{"order":{"id":999}}}`)

		err := service.Process(context.Background(), fulfillment.ProviderCodePrintful, body, sign(body, testWebhookSecret))

		assert.NoError(t, err)
		deduper.AssertNotCalled(t, "MarkConsumed", mock.Anything, mock.Anything, mock.Anything)
	})
}
