package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/ukgarage/garage-manager/internal/booking"
	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockReserver is a mock implementation of Reserver
type MockReserver struct {
	mock.Mock
}

func (m *MockReserver) CreateBooking(ctx context.Context, req booking.Request) (*booking.Result, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Result), args.Error(1)
}

// MockBookingCollection is a mock implementation of BookingCollection
type MockBookingCollection struct {
	mock.Mock
}

func (m *MockBookingCollection) InsertBooking(ctx context.Context, b models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, b)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingCollection) FindBookings(ctx context.Context, filter bson.M) ([]models.Booking, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func (m *MockBookingCollection) FindBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingCollection) UpdateBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func validBookingRequest() booking.Request {
	return booking.Request{
		Car:        models.Car{Registration: "AB12 CDE", Make: "Ford", Model: "Focus"},
		Customer:   models.Customer{Name: "Jo Smith", Email: "jo@example.com"},
		ServiceIDs: []string{primitive.NewObjectID().Hex()},
		LineItems:  []models.LineItem{{PartNumber: "BP-1044", Quantity: 2, UnitPrice: 24.99}},
		Date:       "2026-09-02",
		Time:       "09:30",
	}
}

func TestBookingHandler_CreateBooking(t *testing.T) {
	t.Run("successful reservation", func(t *testing.T) {
		mockReserver := new(MockReserver)
		handler := NewBookingHandler(mockReserver, new(MockBookingCollection))

		result := &booking.Result{
			BookingID: primitive.NewObjectID().Hex(),
			Reference: "BK-1A2B3C4D",
			Quote:     models.Quote{Total: 120.50},
		}
		mockReserver.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.Request")).Return(result, nil)

		body, _ := json.Marshal(validBookingRequest())
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookings(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response booking.Result
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		assert.Equal(t, result.Reference, response.Reference)
		assert.Empty(t, response.Warnings)
		mockReserver.AssertExpectations(t)
	})

	t.Run("partial deduction failure is still created", func(t *testing.T) {
		mockReserver := new(MockReserver)
		handler := NewBookingHandler(mockReserver, new(MockBookingCollection))

		result := &booking.Result{
			BookingID: primitive.NewObjectID().Hex(),
			Reference: "BK-9F8E7D6C",
			Warnings: []booking.DeductionWarning{
				{PartNumber: "BP-1044", Quantity: 2, Reason: "insufficient stock"},
			},
		}
		mockReserver.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.Request")).Return(result, nil)

		body, _ := json.Marshal(validBookingRequest())
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookings(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response booking.Result
		if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
			t.Fatalf("Failed to unmarshal response: %v", err)
		}
		assert.Len(t, response.Warnings, 1)
		assert.Equal(t, "insufficient stock", response.Warnings[0].Reason)
	})

	t.Run("validation failure", func(t *testing.T) {
		mockReserver := new(MockReserver)
		handler := NewBookingHandler(mockReserver, new(MockBookingCollection))

		mockReserver.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.Request")).
			Return(nil, booking.ErrNoServicesSelected)

		body, _ := json.Marshal(booking.Request{})
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookings(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown service", func(t *testing.T) {
		mockReserver := new(MockReserver)
		handler := NewBookingHandler(mockReserver, new(MockBookingCollection))

		mockReserver.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.Request")).
			Return(nil, db.ErrServiceNotFound)

		body, _ := json.Marshal(validBookingRequest())
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookings(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("storage failure", func(t *testing.T) {
		mockReserver := new(MockReserver)
		handler := NewBookingHandler(mockReserver, new(MockBookingCollection))

		mockReserver.On("CreateBooking", mock.Anything, mock.AnythingOfType("booking.Request")).
			Return(nil, assert.AnError)

		body, _ := json.Marshal(validBookingRequest())
		req := httptest.NewRequest("POST", "/api/bookings", bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookings(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestBookingHandler_ListBookings(t *testing.T) {
	mockBookings := new(MockBookingCollection)
	handler := NewBookingHandler(new(MockReserver), mockBookings)

	bookings := []models.Booking{
		{ID: primitive.NewObjectID(), Reference: "BK-AAAA1111", Status: models.BookingPending},
	}
	mockBookings.On("FindBookings", mock.Anything, bson.M{"status": "pending"}).Return(bookings, nil)

	req := httptest.NewRequest("GET", "/api/bookings?status=pending", nil)
	w := httptest.NewRecorder()

	handler.HandleBookings(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response []models.Booking
	if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	assert.Len(t, response, 1)
	mockBookings.AssertExpectations(t)
}

func TestBookingHandler_UpdateStatus(t *testing.T) {
	t.Run("valid transition", func(t *testing.T) {
		mockBookings := new(MockBookingCollection)
		handler := NewBookingHandler(new(MockReserver), mockBookings)

		id := primitive.NewObjectID().Hex()
		mockBookings.On("UpdateBookingStatus", mock.Anything, id, models.BookingConfirmed).Return(nil)

		body := []byte(`{"status":"confirmed"}`)
		req := httptest.NewRequest("PATCH", "/api/bookings/"+id, bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookingByID(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockBookings.AssertExpectations(t)
	})

	t.Run("invalid status", func(t *testing.T) {
		mockBookings := new(MockBookingCollection)
		handler := NewBookingHandler(new(MockReserver), mockBookings)

		id := primitive.NewObjectID().Hex()
		body := []byte(`{"status":"lost"}`)
		req := httptest.NewRequest("PATCH", "/api/bookings/"+id, bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookingByID(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockBookings.AssertNotCalled(t, "UpdateBookingStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown booking", func(t *testing.T) {
		mockBookings := new(MockBookingCollection)
		handler := NewBookingHandler(new(MockReserver), mockBookings)

		id := primitive.NewObjectID().Hex()
		mockBookings.On("UpdateBookingStatus", mock.Anything, id, models.BookingCancelled).Return(db.ErrBookingNotFound)

		body := []byte(`{"status":"cancelled"}`)
		req := httptest.NewRequest("PATCH", "/api/bookings/"+id, bytes.NewBuffer(body))
		w := httptest.NewRecorder()

		handler.HandleBookingByID(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
