package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// Part represents a stocked inventory part.
type Part struct {
	ID               primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PartNumber       string             `json:"part_number" bson:"part_number"`
	Name             string             `json:"name" bson:"name"`
	Supplier         string             `json:"supplier" bson:"supplier"`
	UnitCost         float64            `json:"unit_cost" bson:"unit_cost"`
	ProfitPercent    float64            `json:"profit_percent" bson:"profit_percent"`
	UnitPrice        float64            `json:"unit_price" bson:"unit_price"`
	QuantityOnHand   int                `json:"quantity_on_hand" bson:"quantity_on_hand"`
	ReorderThreshold int                `json:"reorder_threshold" bson:"reorder_threshold"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// ResolveUnitPrice computes the selling price from cost and profit margin
// unless an explicit price override has been set.
func (p *Part) ResolveUnitPrice() float64 {
	if p.UnitPrice > 0 {
		return p.UnitPrice
	}
	return p.UnitCost * (1 + p.ProfitPercent/100)
}

// LineItem is a part plus quantity attached to a booking. The unit price is
// snapshotted at selection time and never tracks the live part price.
type LineItem struct {
	PartNumber string  `json:"part_number" bson:"part_number"`
	Name       string  `json:"name" bson:"name"`
	Quantity   int     `json:"quantity" bson:"quantity"`
	UnitPrice  float64 `json:"unit_price" bson:"unit_price"`
}

// Cost returns the snapshotted line total.
func (li *LineItem) Cost() float64 {
	return li.UnitPrice * float64(li.Quantity)
}
