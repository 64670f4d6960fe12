package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// ServiceCategory is the dashboard grouping derived from a service's
// label and sub-label text, not the free-text category an admin types.
type ServiceCategory string

const (
	CategoryTyres      ServiceCategory = "tyres"
	CategoryMechanical ServiceCategory = "mechanical"
	CategoryService    ServiceCategory = "service"
)

// Service represents a purchasable garage service. A service is priced by a
// fixed price, by labour (hours x rate per hour), or by both.
type Service struct {
	ID                      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Label                   string             `json:"label" bson:"label"`
	SubLabel                string             `json:"sub_label" bson:"sub_label"`
	Duration                string             `json:"duration" bson:"duration"` // "<hours> hours - <free text category>"
	FreeTextCategory        string             `json:"free_text_category" bson:"free_text_category"`
	Category                ServiceCategory    `json:"category" bson:"category"`
	FixedPrice              float64            `json:"fixed_price" bson:"fixed_price"`
	LabourHours             float64            `json:"labour_hours" bson:"labour_hours"`
	LabourRatePerHour       float64            `json:"labour_rate_per_hour" bson:"labour_rate_per_hour"`
	StandardDiscountPercent float64            `json:"standard_discount_percent" bson:"standard_discount_percent"`
	PremiumDiscountPercent  float64            `json:"premium_discount_percent" bson:"premium_discount_percent"`
	CreatedAt               time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at" bson:"updated_at"`
}

// DiscountPercent returns the discount percentage applicable for a tier.
func (s *Service) DiscountPercent(tier Tier) float64 {
	if tier == TierPremium {
		return s.PremiumDiscountPercent
	}
	return s.StandardDiscountPercent
}

// LabourCost returns this service's own labour contribution. Each service
// carries its own rate, so labour is never hours x rate over the aggregate.
func (s *Service) LabourCost() float64 {
	return s.LabourHours * s.LabourRatePerHour
}
