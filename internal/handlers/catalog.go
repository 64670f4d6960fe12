package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/models"
	"github.com/ukgarage/garage-manager/internal/quote"
	"go.mongodb.org/mongo-driver/bson"
)

// CatalogHandler handles service catalog requests
type CatalogHandler struct {
	services db.ServiceCollection
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(services db.ServiceCollection) *CatalogHandler {
	return &CatalogHandler{services: services}
}

// ServiceDraft is the payload for creating or updating a catalog service.
type ServiceDraft struct {
	Label                   string  `json:"label"`
	SubLabel                string  `json:"sub_label"`
	Duration                string  `json:"duration"`
	FixedPrice              float64 `json:"fixed_price"`
	LabourHours             float64 `json:"labour_hours"`
	LabourRatePerHour       float64 `json:"labour_rate_per_hour"`
	StandardDiscountPercent float64 `json:"standard_discount_percent"`
	PremiumDiscountPercent  float64 `json:"premium_discount_percent"`
}

// HandleServices serves /api/services
func (h *CatalogHandler) HandleServices(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listServices(w, r)
	case http.MethodPost:
		h.createService(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleServiceByID serves /api/services/{id}
func (h *CatalogHandler) HandleServiceByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/services/")
	if id == "" {
		http.Error(w, "Service ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getService(w, r, id)
	case http.MethodPut:
		h.updateService(w, r, id)
	case http.MethodDelete:
		h.deleteService(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CatalogHandler) listServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.FindServices(r.Context(), bson.M{})
	if err != nil {
		http.Error(w, "Failed to fetch services", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(services)
}

func (h *CatalogHandler) createService(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	service, errMsg := serviceFromDraft(draft)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	created, err := h.services.InsertService(r.Context(), service)
	if err != nil {
		http.Error(w, "Failed to create service", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(created)
}

func (h *CatalogHandler) getService(w http.ResponseWriter, r *http.Request, id string) {
	service, err := h.services.FindServiceByID(r.Context(), id)
	if err != nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(service)
}

func (h *CatalogHandler) updateService(w http.ResponseWriter, r *http.Request, id string) {
	draft, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	service, errMsg := serviceFromDraft(draft)
	if errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if err := h.services.UpdateService(r.Context(), id, service); err != nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Service updated successfully"})
}

func (h *CatalogHandler) deleteService(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.services.DeleteService(r.Context(), id); err != nil {
		http.Error(w, "Service not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Service deleted successfully"})
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (ServiceDraft, bool) {
	var draft ServiceDraft

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return draft, false
	}
	if err := json.Unmarshal(body, &draft); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return draft, false
	}
	return draft, true
}

// serviceFromDraft validates a draft and derives the fields the engine needs:
// labour hours and free-text category from the duration compound field, and
// the dashboard category from keyword classification of the label text.
func serviceFromDraft(draft ServiceDraft) (models.Service, string) {
	if strings.TrimSpace(draft.Label) == "" {
		return models.Service{}, "Service label is required"
	}
	if strings.TrimSpace(draft.Duration) == "" {
		return models.Service{}, "Service duration/category field is required"
	}
	if draft.FixedPrice < 0 || draft.LabourHours < 0 || draft.LabourRatePerHour < 0 {
		return models.Service{}, "Prices and labour figures must not be negative"
	}
	if draft.StandardDiscountPercent < 0 || draft.StandardDiscountPercent > 100 ||
		draft.PremiumDiscountPercent < 0 || draft.PremiumDiscountPercent > 100 {
		return models.Service{}, "Discount percentages must be between 0 and 100"
	}

	hours, freeText := quote.ParseDurationField(draft.Duration)
	if draft.LabourHours > 0 {
		hours = draft.LabourHours
	}

	return models.Service{
		Label:                   draft.Label,
		SubLabel:                draft.SubLabel,
		Duration:                draft.Duration,
		FreeTextCategory:        freeText,
		Category:                quote.Categorize(draft.Label, draft.SubLabel),
		FixedPrice:              draft.FixedPrice,
		LabourHours:             hours,
		LabourRatePerHour:       draft.LabourRatePerHour,
		StandardDiscountPercent: draft.StandardDiscountPercent,
		PremiumDiscountPercent:  draft.PremiumDiscountPercent,
	}, ""
}
