package quote

import (
	"math"

	"github.com/ukgarage/garage-manager/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// VATRate is applied to the subtotal whenever at least one service is
// selected. Parts-only carts are VAT exempt.
const VATRate = 0.20

// premiumLabourDiscountRate is the flat labour discount for active premium
// members.
const premiumLabourDiscountRate = 0.05

// Compute builds the full price breakdown for a selection of services and
// parts under a membership tier. It is pure: identical inputs always yield
// an identical quote, so callers may recompute on every selection change.
func Compute(services []models.Service, items []models.LineItem, tier models.Tier) models.Quote {
	q := models.Quote{
		SelectedServiceIDs: serviceIDs(services),
		LineItems:          items,
		Tier:               tier,
	}

	// Labour is summed per service: each service contributes its own
	// hours x rate, never aggregate hours times a single rate.
	for _, s := range services {
		q.LabourHours += s.LabourHours
		q.LabourCost += s.LabourCost()
	}
	// Displayed hours fall back to the default when no service carries a
	// parseable figure. The fallback is cosmetic: it is never priced,
	// because labour cost only ever comes from per-service rates.
	if q.LabourHours == 0 {
		q.LabourHours = DefaultLabourHours
	}

	if tier == models.TierPremium && q.LabourCost > 0 {
		q.LabourDiscount = round2(premiumLabourDiscountRate * q.LabourCost)
	}

	for _, s := range services {
		if s.FixedPrice > 0 {
			q.ServiceTotal += s.FixedPrice
		}
	}

	// The service discount percent is the average across selected services,
	// applied to the aggregate fixed-price total rather than itemized.
	if len(services) > 0 {
		var pctSum float64
		for _, s := range services {
			pctSum += s.DiscountPercent(tier)
		}
		pct := pctSum / float64(len(services))
		q.ServiceDiscount = round2(q.ServiceTotal * pct / 100)
		if q.ServiceDiscount > q.ServiceTotal {
			q.ServiceDiscount = q.ServiceTotal
		}
	}

	for _, li := range items {
		q.PartsCost += li.Cost()
	}

	// Discounts clamp per component, never globally.
	q.Subtotal = clampZero(q.LabourCost-q.LabourDiscount) + q.PartsCost + clampZero(q.ServiceTotal-q.ServiceDiscount)

	if len(services) > 0 {
		q.VAT = round2(q.Subtotal * VATRate)
	}
	q.Total = q.Subtotal + q.VAT

	return q
}

func serviceIDs(services []models.Service) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(services))
	for _, s := range services {
		ids = append(ids, s.ID)
	}
	return ids
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clampZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
