package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/olafkfreund/tshop-sub002/internal/domain/fulfillment"
)

// FulfillmentRecordModel is the persistence model for fulfillment records.
// order_id carries a unique index: one record per order, reconciled by upsert.
type FulfillmentRecordModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primary_key"`
	OrderID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Provider          string     `gorm:"type:varchar(20);not null;index:idx_fulfillment_provider_order"`
	ExternalOrderID   string     `gorm:"type:varchar(100);not null;index:idx_fulfillment_provider_order"`
	Status            string     `gorm:"type:varchar(20);not null;index"`
	TrackingNumber    string     `gorm:"type:varchar(100)"`
	TrackingURL       string     `gorm:"type:varchar(500)"`
	EstimatedDelivery *time.Time
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

// TableName specifies the table name
func (FulfillmentRecordModel) TableName() string {
	return "fulfillment_records"
}

// ToDomain converts FulfillmentRecordModel to domain Record
func (m *FulfillmentRecordModel) ToDomain() *fulfillment.Record {
	return &fulfillment.Record{
		ID:                m.ID,
		OrderID:           m.OrderID,
		Provider:          fulfillment.ProviderCode(m.Provider),
		ExternalOrderID:   m.ExternalOrderID,
		Status:            fulfillment.Status(m.Status),
		TrackingNumber:    m.TrackingNumber,
		TrackingURL:       m.TrackingURL,
		EstimatedDelivery: m.EstimatedDelivery,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}

// FromDomain populates FulfillmentRecordModel from domain Record
func (m *FulfillmentRecordModel) FromDomain(r *fulfillment.Record) {
	m.ID = r.ID
	m.OrderID = r.OrderID
	m.Provider = r.Provider.String()
	m.ExternalOrderID = r.ExternalOrderID
	m.Status = r.Status.String()
	m.TrackingNumber = r.TrackingNumber
	m.TrackingURL = r.TrackingURL
	m.EstimatedDelivery = r.EstimatedDelivery
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}
