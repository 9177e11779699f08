package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
	"github.com/olafkfreund/tshop-sub002/internal/infrastructure/persistence/models"
)

// GormFulfillmentRecordRepository implements RecordRepository using GORM
type GormFulfillmentRecordRepository struct {
	db *gorm.DB
}

// NewGormFulfillmentRecordRepository creates a new GormFulfillmentRecordRepository
func NewGormFulfillmentRecordRepository(db *gorm.DB) *GormFulfillmentRecordRepository {
	return &GormFulfillmentRecordRepository{db: db}
}

var _ fulfillment.RecordRepository = (*GormFulfillmentRecordRepository)(nil)

// FindByOrderID finds the record for an order
func (r *GormFulfillmentRecordRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*fulfillment.Record, error) {
	var model models.FulfillmentRecordModel
	if err := r.db.WithContext(ctx).First(&model, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProviderOrder finds the record owning an external order ID
func (r *GormFulfillmentRecordRepository) FindByProviderOrder(ctx context.Context, provider fulfillment.ProviderCode, externalOrderID string) (*fulfillment.Record, error) {
	var model models.FulfillmentRecordModel
	if err := r.db.WithContext(ctx).
		First(&model, "provider = ? AND external_order_id = ?", provider.String(), externalOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindNonTerminal returns all records still in flight, oldest first
func (r *GormFulfillmentRecordRepository) FindNonTerminal(ctx context.Context) ([]fulfillment.Record, error) {
	var recordModels []models.FulfillmentRecordModel
	if err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []string{
			fulfillment.StatusDelivered.String(),
			fulfillment.StatusCancelled.String(),
			fulfillment.StatusFailed.String(),
		}).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]fulfillment.Record, len(recordModels))
	for i := range recordModels {
		records[i] = *recordModels[i].ToDomain()
	}
	return records, nil
}

// Upsert inserts the record or reconciles the write into the existing row
// for its order ID. The row is re-read with FOR UPDATE inside the
// transaction, so a writer holding a stale snapshot cannot overwrite a row
// a concurrent webhook already advanced; the lifecycle decides which state
// wins. record is updated to mirror the persisted row.
func (r *GormFulfillmentRecordRepository) Upsert(ctx context.Context, record *fulfillment.Record) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FulfillmentRecordModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&existing, "order_id = ?", record.OrderID).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			var model models.FulfillmentRecordModel
			model.FromDomain(record)
			return tx.Create(&model).Error
		}

		row := existing.ToDomain()
		if !row.Reconcile(record) {
			*record = *row
			return nil
		}
		*record = *row

		return tx.Model(&models.FulfillmentRecordModel{}).
			Where("order_id = ?", row.OrderID).
			Updates(map[string]interface{}{
				"provider":           row.Provider.String(),
				"external_order_id":  row.ExternalOrderID,
				"status":             row.Status.String(),
				"tracking_number":    row.TrackingNumber,
				"tracking_url":       row.TrackingURL,
				"estimated_delivery": row.EstimatedDelivery,
				"updated_at":         row.UpdatedAt,
			}).Error
	})
}
