package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
	"time"
)

// BookingStatus tracks a booking through its lifecycle. Status transitions
// after creation are driven by staff actions, not by the reservation flow.
type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in-progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// IsValidBookingStatus checks if a status is one of the known lifecycle states.
func IsValidBookingStatus(status BookingStatus) bool {
	switch status {
	case BookingPending, BookingConfirmed, BookingInProgress, BookingCompleted, BookingCancelled:
		return true
	default:
		return false
	}
}

// Car identifies the vehicle a booking is for. Pre-filled by the caller,
// typically from a DVLA registration lookup.
type Car struct {
	Registration string `json:"registration" bson:"registration"`
	Make         string `json:"make" bson:"make"`
	Model        string `json:"model" bson:"model"`
	Year         int    `json:"year" bson:"year"`
}

// Customer identifies who the booking is for. The email drives membership
// tier resolution.
type Customer struct {
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`
}

// Booking is a persisted reservation. It embeds the full quote breakdown so
// historical quotes stay reconstructable even if catalog prices change later.
type Booking struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Reference string             `json:"reference" bson:"reference"`
	Car       Car                `json:"car" bson:"car"`
	Customer  Customer           `json:"customer" bson:"customer"`
	Services  []Service          `json:"services" bson:"services"`
	Parts     []LineItem         `json:"parts" bson:"parts"`
	Quote     Quote              `json:"quote" bson:"quote"`
	Date      string             `json:"date" bson:"date"`
	Time      string             `json:"time" bson:"time"`
	Category  ServiceCategory    `json:"category" bson:"category"`
	Status    BookingStatus      `json:"status" bson:"status"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time          `json:"updated_at" bson:"updated_at"`
}
