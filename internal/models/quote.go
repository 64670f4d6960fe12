package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Quote is the full computed price breakdown for a prospective booking. It is
// derived from the current selection and recomputed from scratch on every
// change, never partially updated or persisted on its own.
type Quote struct {
	SelectedServiceIDs []primitive.ObjectID `json:"selected_service_ids" bson:"selected_service_ids"`
	LineItems          []LineItem           `json:"line_items" bson:"line_items"`
	LabourHours        float64              `json:"labour_hours" bson:"labour_hours"`
	LabourCost         float64              `json:"labour_cost" bson:"labour_cost"`
	LabourDiscount     float64              `json:"labour_discount" bson:"labour_discount"`
	ServiceTotal       float64              `json:"service_total" bson:"service_total"`
	ServiceDiscount    float64              `json:"service_discount" bson:"service_discount"`
	PartsCost          float64              `json:"parts_cost" bson:"parts_cost"`
	Subtotal           float64              `json:"subtotal" bson:"subtotal"`
	VAT                float64              `json:"vat" bson:"vat"`
	Total              float64              `json:"total" bson:"total"`
	Tier               Tier                 `json:"tier" bson:"tier"`
}
