package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ukgarage/garage-manager/internal/booking"
	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Reserver runs the reservation flow for a confirmed booking selection.
type Reserver interface {
	CreateBooking(ctx context.Context, req booking.Request) (*booking.Result, error)
}

// BookingHandler handles booking requests
type BookingHandler struct {
	reserver Reserver
	bookings db.BookingCollection
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(reserver Reserver, bookings db.BookingCollection) *BookingHandler {
	return &BookingHandler{reserver: reserver, bookings: bookings}
}

// HandleBookings serves /api/bookings
func (h *BookingHandler) HandleBookings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listBookings(w, r)
	case http.MethodPost:
		h.createBooking(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBookingByID serves /api/bookings/{id}
func (h *BookingHandler) HandleBookingByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/bookings/")
	if id == "" {
		http.Error(w, "Booking ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getBooking(w, r, id)
	case http.MethodPatch:
		h.updateStatus(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// createBooking runs a single reservation attempt. It is side-effecting and
// not idempotent: the UI must debounce the confirmation action.
func (h *BookingHandler) createBooking(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req booking.Request
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	result, err := h.reserver.CreateBooking(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrNoServicesSelected),
			errors.Is(err, booking.ErrMissingCar),
			errors.Is(err, booking.ErrMissingCustomer),
			errors.Is(err, booking.ErrInvalidLineItem):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, db.ErrServiceNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		default:
			http.Error(w, "Failed to create booking", http.StatusInternalServerError)
		}
		return
	}

	// Partial success is still success: the booking exists and any
	// per-part deduction failures ride along as warnings.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(result)
}

func (h *BookingHandler) listBookings(w http.ResponseWriter, r *http.Request) {
	filter := bson.M{}
	if status := r.URL.Query().Get("status"); status != "" {
		filter["status"] = status
	}

	bookings, err := h.bookings.FindBookings(r.Context(), filter)
	if err != nil {
		http.Error(w, "Failed to fetch bookings", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(bookings)
}

func (h *BookingHandler) getBooking(w http.ResponseWriter, r *http.Request, id string) {
	booked, err := h.bookings.FindBookingByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(booked)
}

func (h *BookingHandler) updateStatus(w http.ResponseWriter, r *http.Request, id string) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var statusReq struct {
		Status models.BookingStatus `json:"status"`
	}
	if err := json.Unmarshal(body, &statusReq); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	if !models.IsValidBookingStatus(statusReq.Status) {
		http.Error(w, "Invalid booking status", http.StatusBadRequest)
		return
	}

	if err := h.bookings.UpdateBookingStatus(r.Context(), id, statusReq.Status); err != nil {
		http.Error(w, "Booking not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Booking status updated successfully"})
}
