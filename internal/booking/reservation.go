package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/models"
	"github.com/ukgarage/garage-manager/internal/quote"
)

var (
	ErrNoServicesSelected = errors.New("at least one service must be selected")
	ErrMissingCar         = errors.New("car registration is required")
	ErrMissingCustomer    = errors.New("customer name is required")
	ErrInvalidLineItem    = errors.New("invalid line item")
)

// Catalog resolves selected service IDs against the service catalog.
type Catalog interface {
	FindServicesByIDs(ctx context.Context, ids []string) ([]models.Service, error)
}

// Ledger is the stock-mutating surface the reservation flow is allowed to
// touch. Deduction is conditional and atomic at the storage layer.
type Ledger interface {
	DeductStock(ctx context.Context, partNumber string, quantity int) (*models.Part, error)
}

// Store persists booking records.
type Store interface {
	InsertBooking(ctx context.Context, booking models.Booking) (*models.Booking, error)
}

// TierResolver maps a customer email to a membership tier.
type TierResolver interface {
	ResolveTier(ctx context.Context, email string) models.Tier
}

// StockAlerter receives low-stock signals after deductions.
type StockAlerter interface {
	PublishLowStock(ctx context.Context, part models.Part) error
}

// Request carries everything the UI collected for one reservation attempt.
type Request struct {
	Car        models.Car        `json:"car"`
	Customer   models.Customer   `json:"customer"`
	ServiceIDs []string          `json:"service_ids"`
	LineItems  []models.LineItem `json:"line_items"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
}

// DeductionWarning reports a single part whose stock could not be deducted.
// A warning is not an error: the booking it belongs to is already committed.
type DeductionWarning struct {
	PartNumber string `json:"part_number"`
	Quantity   int    `json:"quantity"`
	Reason     string `json:"reason"`
}

// Result is the outcome of a reservation attempt. Warnings being non-empty
// means partial success: the booking exists, some stock was not deducted.
type Result struct {
	BookingID string             `json:"booking_id"`
	Reference string             `json:"reference"`
	Quote     models.Quote       `json:"quote"`
	Warnings  []DeductionWarning `json:"warnings"`
}

// ReservationService turns a validated selection into a persisted booking
// plus best-effort stock deductions.
type ReservationService struct {
	catalog  Catalog
	ledger   Ledger
	store    Store
	resolver TierResolver
	alerter  StockAlerter
}

// NewReservationService wires the reservation orchestrator.
func NewReservationService(catalog Catalog, ledger Ledger, store Store, resolver TierResolver, alerter StockAlerter) *ReservationService {
	return &ReservationService{
		catalog:  catalog,
		ledger:   ledger,
		store:    store,
		resolver: resolver,
		alerter:  alerter,
	}
}

// CreateBooking runs the reservation flow: validate, price, persist, deduct.
// Booking persistence and stock deduction are deliberately decoupled: the
// booking records what was quoted, deduction is best-effort bookkeeping. A
// part failing to deduct never rolls back the booking or the other parts.
// The call is not idempotent; callers must debounce confirmations.
func (s *ReservationService) CreateBooking(ctx context.Context, req Request) (*Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	services, err := s.catalog.FindServicesByIDs(ctx, req.ServiceIDs)
	if err != nil {
		return nil, err
	}

	tier := s.resolver.ResolveTier(ctx, req.Customer.Email)
	q := quote.Compute(services, req.LineItems, tier)

	booking := models.Booking{
		Reference: newReference(),
		Car:       req.Car,
		Customer:  req.Customer,
		Services:  services,
		Parts:     req.LineItems,
		Quote:     q,
		Date:      req.Date,
		Time:      req.Time,
		Category:  services[0].Category,
		Status:    models.BookingPending,
	}

	inserted, err := s.store.InsertBooking(ctx, booking)
	if err != nil {
		// Fatal: nothing was created, so no deductions are attempted.
		return nil, fmt.Errorf("failed to persist booking: %w", err)
	}

	result := &Result{
		BookingID: inserted.ID.Hex(),
		Reference: inserted.Reference,
		Quote:     q,
		Warnings:  s.deductParts(ctx, inserted, req.LineItems),
	}
	return result, nil
}

// deductParts runs the per-part deduction batch. Each part succeeds or fails
// on its own; failures are collected, never thrown.
func (s *ReservationService) deductParts(ctx context.Context, booking *models.Booking, items []models.LineItem) []DeductionWarning {
	var warnings []DeductionWarning
	for _, item := range items {
		part, err := s.ledger.DeductStock(ctx, item.PartNumber, item.Quantity)
		if err != nil {
			log.WithFields(log.Fields{
				"booking":     booking.Reference,
				"part_number": item.PartNumber,
				"quantity":    item.Quantity,
			}).WithError(err).Warn("part deduction failed")
			warnings = append(warnings, DeductionWarning{
				PartNumber: item.PartNumber,
				Quantity:   item.Quantity,
				Reason:     warningReason(err),
			})
			continue
		}

		if s.alerter != nil && part.QuantityOnHand <= part.ReorderThreshold {
			if err := s.alerter.PublishLowStock(ctx, *part); err != nil {
				log.WithError(err).WithField("part_number", part.PartNumber).Error("failed to publish low-stock alert")
			}
		}
	}
	return warnings
}

func validate(req Request) error {
	if strings.TrimSpace(req.Car.Registration) == "" {
		return ErrMissingCar
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		return ErrMissingCustomer
	}
	if len(req.ServiceIDs) == 0 {
		return ErrNoServicesSelected
	}
	for _, item := range req.LineItems {
		if item.Quantity < 1 {
			return fmt.Errorf("%w: part %s quantity must be at least 1", ErrInvalidLineItem, item.PartNumber)
		}
		// A negative snapshot price would drag the parts cost, and with it
		// the persisted quote total, below zero.
		if item.UnitPrice < 0 {
			return fmt.Errorf("%w: part %s unit price must not be negative", ErrInvalidLineItem, item.PartNumber)
		}
	}
	return nil
}

func warningReason(err error) string {
	switch {
	case errors.Is(err, db.ErrInsufficientStock):
		return "insufficient stock"
	case errors.Is(err, db.ErrPartNotFound):
		return "part not found"
	default:
		return err.Error()
	}
}

// newReference generates the human-facing booking reference shown to
// customers, independent of the storage ID.
func newReference() string {
	return "BK-" + strings.ToUpper(uuid.NewString()[:8])
}
