package commerce

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/olafkfreund/tshop-sub002/internal/domain/shared"
)

// OrderStatus represents the status of a customer order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "PENDING"
	OrderStatusPaid       OrderStatus = "PAID"
	OrderStatusProcessing OrderStatus = "PROCESSING"
	OrderStatusShipped    OrderStatus = "SHIPPED"
	OrderStatusDelivered  OrderStatus = "DELIVERED"
	OrderStatusCancelled  OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusPaid || target == OrderStatusCancelled
	case OrderStatusPaid:
		return target == OrderStatusProcessing || target == OrderStatusCancelled
	case OrderStatusProcessing:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // Terminal states
	}
	return false
}

// Customization holds the artwork references printed on an item
type Customization struct {
	FrontArtworkURL string `json:"front_artwork_url,omitempty"`
	BackArtworkURL  string `json:"back_artwork_url,omitempty"`
}

// IsEmpty returns true if the item carries no artwork at all
func (c Customization) IsEmpty() bool {
	return c.FrontArtworkURL == "" && c.BackArtworkURL == ""
}

// OrderItem represents a line item in a customer order
type OrderItem struct {
	ID            uuid.UUID
	OrderID       uuid.UUID
	ProductID     uuid.UUID
	VariantID     string
	Quantity      int
	UnitPrice     decimal.Decimal
	Customization *Customization
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ShippingAddress is the delivery destination for an order
type ShippingAddress struct {
	Name        string `json:"name"`
	Address1    string `json:"address1"`
	Address2    string `json:"address2,omitempty"`
	City        string `json:"city"`
	Region      string `json:"region"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Order represents a customer order. The fulfillment subsystem treats orders
// as read-only except for status promotion driven by fulfillment progress.
type Order struct {
	ID              uuid.UUID
	Status          OrderStatus
	Items           []OrderItem
	ShippingAddress ShippingAddress
	TotalAmount     decimal.Decimal
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Promote advances the order status following fulfillment progress.
// Promotion never moves an order backwards and terminal states stay put.
func (o *Order) Promote(target OrderStatus) error {
	if o.Status == target {
		return nil
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.ErrInvalidState
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// OrderRepository provides read access to orders plus the single status
// promotion write used by the fulfillment subsystem.
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status OrderStatus) error
}
