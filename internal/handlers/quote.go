package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/models"
	"github.com/ukgarage/garage-manager/internal/quote"
)

// TierResolver maps a customer email to a membership tier.
type TierResolver interface {
	ResolveTier(ctx context.Context, email string) models.Tier
}

// QuoteHandler computes price breakdowns for the booking form. Computation
// is pure and side-effect free, so the UI may call it on every selection
// change.
type QuoteHandler struct {
	services db.ServiceCollection
	parts    db.PartCollection
	resolver TierResolver
}

// NewQuoteHandler creates a new quote handler
func NewQuoteHandler(services db.ServiceCollection, parts db.PartCollection, resolver TierResolver) *QuoteHandler {
	return &QuoteHandler{services: services, parts: parts, resolver: resolver}
}

// QuoteRequest is the current booking-form selection. Line items without a
// snapshotted unit price are resolved against the live parts ledger.
type QuoteRequest struct {
	ServiceIDs    []string          `json:"service_ids"`
	LineItems     []models.LineItem `json:"line_items"`
	CustomerEmail string            `json:"customer_email"`
}

// HandleQuote serves POST /api/quote
func (h *QuoteHandler) HandleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	var req QuoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}

	for _, item := range req.LineItems {
		if item.Quantity < 1 {
			http.Error(w, "Line item quantity must be at least 1", http.StatusBadRequest)
			return
		}
		if item.UnitPrice < 0 {
			http.Error(w, "Line item unit price must not be negative", http.StatusBadRequest)
			return
		}
	}

	services, err := h.services.FindServicesByIDs(r.Context(), req.ServiceIDs)
	if err != nil {
		if errors.Is(err, db.ErrServiceNotFound) {
			http.Error(w, "Service not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to resolve services", http.StatusBadRequest)
		return
	}

	items, err := h.snapshotPrices(r.Context(), req.LineItems)
	if err != nil {
		if errors.Is(err, db.ErrPartNotFound) {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to resolve parts", http.StatusInternalServerError)
		return
	}

	tier := h.resolver.ResolveTier(r.Context(), req.CustomerEmail)
	q := quote.Compute(services, items, tier)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(q)
}

// snapshotPrices fills in the selection-time unit price for any line item
// that arrived without one. The returned items keep that price even if the
// live part price changes afterwards.
func (h *QuoteHandler) snapshotPrices(ctx context.Context, items []models.LineItem) ([]models.LineItem, error) {
	out := make([]models.LineItem, 0, len(items))
	for _, item := range items {
		if item.UnitPrice == 0 {
			part, err := h.parts.FindByNumberOrName(ctx, item.PartNumber)
			if err != nil {
				return nil, err
			}
			item.UnitPrice = part.ResolveUnitPrice()
			if item.Name == "" {
				item.Name = part.Name
			}
		}
		out = append(out, item)
	}
	return out, nil
}
