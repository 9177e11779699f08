package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olafkfreund/tshop-sub002/internal/domain/commerce"
)

// OrderModel is the persistence model for commerce orders
type OrderModel struct {
	ID              uuid.UUID        `gorm:"type:uuid;primary_key"`
	Status          string           `gorm:"type:varchar(20);not null;index"`
	ShippingAddress string           `gorm:"type:jsonb;not null;default:'{}'"`
	TotalAmount     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	Items           []OrderItemModel `gorm:"foreignKey:OrderID"`
	CreatedAt       time.Time        `gorm:"not null"`
	UpdatedAt       time.Time        `gorm:"not null"`
}

// TableName specifies the table name
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts OrderModel to domain Order
func (m *OrderModel) ToDomain() (*commerce.Order, error) {
	var address commerce.ShippingAddress
	if m.ShippingAddress != "" {
		if err := json.Unmarshal([]byte(m.ShippingAddress), &address); err != nil {
			return nil, err
		}
	}

	items := make([]commerce.OrderItem, 0, len(m.Items))
	for i := range m.Items {
		item, err := m.Items[i].ToDomain()
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}

	return &commerce.Order{
		ID:              m.ID,
		Status:          commerce.OrderStatus(m.Status),
		Items:           items,
		ShippingAddress: address,
		TotalAmount:     m.TotalAmount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}, nil
}

// OrderItemModel is the persistence model for order line items
type OrderItemModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID     uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID     string          `gorm:"type:varchar(100);not null"`
	Quantity      int             `gorm:"not null"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Customization string          `gorm:"type:jsonb"`
	CreatedAt     time.Time       `gorm:"not null"`
	UpdatedAt     time.Time       `gorm:"not null"`
}

// TableName specifies the table name
func (OrderItemModel) TableName() string {
	return "order_items"
}

// ToDomain converts OrderItemModel to domain OrderItem
func (m *OrderItemModel) ToDomain() (*commerce.OrderItem, error) {
	var customization *commerce.Customization
	if m.Customization != "" && m.Customization != "null" {
		customization = &commerce.Customization{}
		if err := json.Unmarshal([]byte(m.Customization), customization); err != nil {
			return nil, err
		}
	}

	return &commerce.OrderItem{
		ID:            m.ID,
		OrderID:       m.OrderID,
		ProductID:     m.ProductID,
		VariantID:     m.VariantID,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		Customization: customization,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}
