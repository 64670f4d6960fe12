package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/ukgarage/garage-manager/internal/db"
	"github.com/ukgarage/garage-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// PartsHandler handles parts inventory requests. Stock quantities are only
// editable through the admin update path here; the booking flow goes through
// the atomic deduction primitive instead.
type PartsHandler struct {
	parts db.PartCollection
}

// NewPartsHandler creates a new parts handler
func NewPartsHandler(parts db.PartCollection) *PartsHandler {
	return &PartsHandler{parts: parts}
}

// HandleParts serves /api/parts
func (h *PartsHandler) HandleParts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listParts(w, r)
	case http.MethodPost:
		h.createPart(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandlePartByID serves /api/parts/{id}
func (h *PartsHandler) HandlePartByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/parts/")
	if id == "" {
		http.Error(w, "Part ID required", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodPut:
		h.updatePart(w, r, id)
	case http.MethodDelete:
		h.deletePart(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleLookup serves /api/parts/lookup?q=, resolving a single part by exact
// number or name for the booking form.
func (h *PartsHandler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "Query parameter q is required", http.StatusBadRequest)
		return
	}

	part, err := h.parts.FindByNumberOrName(r.Context(), query)
	if err != nil {
		if errors.Is(err, db.ErrPartNotFound) {
			http.Error(w, "Part not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to look up part", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(part)
}

func (h *PartsHandler) listParts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	var parts []models.Part
	var err error
	if query != "" {
		parts, err = h.parts.SearchParts(r.Context(), query)
	} else {
		parts, err = h.parts.FindParts(r.Context(), bson.M{})
	}
	if err != nil {
		http.Error(w, "Failed to fetch parts", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(parts)
}

func (h *PartsHandler) createPart(w http.ResponseWriter, r *http.Request) {
	part, ok := decodePart(w, r)
	if !ok {
		return
	}

	if errMsg := validatePart(part); errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if err := h.parts.InsertPart(r.Context(), part); err != nil {
		http.Error(w, "Failed to create part", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]string{"message": "Part created successfully"})
}

func (h *PartsHandler) updatePart(w http.ResponseWriter, r *http.Request, id string) {
	part, ok := decodePart(w, r)
	if !ok {
		return
	}

	if errMsg := validatePart(part); errMsg != "" {
		http.Error(w, errMsg, http.StatusBadRequest)
		return
	}

	if err := h.parts.UpdatePart(r.Context(), id, part); err != nil {
		http.Error(w, "Part not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Part updated successfully"})
}

func (h *PartsHandler) deletePart(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.parts.DeletePart(r.Context(), id); err != nil {
		http.Error(w, "Part not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Part deleted successfully"})
}

func decodePart(w http.ResponseWriter, r *http.Request) (models.Part, bool) {
	var part models.Part

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return part, false
	}
	if err := json.Unmarshal(body, &part); err != nil {
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return part, false
	}
	return part, true
}

func validatePart(part models.Part) string {
	if strings.TrimSpace(part.PartNumber) == "" {
		return "Part number is required"
	}
	if strings.TrimSpace(part.Name) == "" {
		return "Part name is required"
	}
	if part.UnitCost < 0 || part.ProfitPercent < 0 || part.UnitPrice < 0 {
		return "Part pricing must not be negative"
	}
	if part.QuantityOnHand < 0 {
		return "Quantity on hand must not be negative"
	}
	return ""
}
