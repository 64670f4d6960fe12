package quote

import (
	"strings"

	"github.com/ukgarage/garage-manager/internal/models"
)

// categoryRule maps a keyword set to a dashboard category. Rules are
// evaluated in fixed precedence order; the first match wins.
type categoryRule struct {
	keywords []string
	category models.ServiceCategory
}

var categoryRules = []categoryRule{
	{
		keywords: []string{"tyre", "tyres", "tire", "wheel", "puncture", "tracking"},
		category: models.CategoryTyres,
	},
	{
		keywords: []string{"brake", "clutch", "suspension", "engine", "spark", "transmission"},
		category: models.CategoryMechanical,
	},
}

// Categorize derives the dashboard category for a service from its label and
// sub-label text. Tyres keywords are checked first, then mechanical keywords;
// anything else falls into the general service column.
func Categorize(label, subLabel string) models.ServiceCategory {
	text := strings.ToLower(label + " " + subLabel)
	for _, rule := range categoryRules {
		for _, kw := range rule.keywords {
			if strings.Contains(text, kw) {
				return rule.category
			}
		}
	}
	return models.CategoryService
}
