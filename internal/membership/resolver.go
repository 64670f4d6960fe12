package membership

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukgarage/garage-manager/internal/models"
)

// Resolver maps a customer email to a membership tier by calling the
// membership service. Lookups fail safe: any transport error, non-200
// response or malformed body resolves to the free tier, never premium.
type Resolver struct {
	baseURL string
	client  *http.Client
}

// NewResolver creates a resolver against the membership service base URL.
func NewResolver(baseURL string) *Resolver {
	return &Resolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// ResolveTier looks up the membership tier for an email. Errors are
// swallowed deliberately: discount eligibility must never fail open.
func (r *Resolver) ResolveTier(ctx context.Context, email string) models.Tier {
	if r.baseURL == "" || email == "" {
		return models.TierFree
	}

	endpoint := fmt.Sprintf("%s/membership/%s", r.baseURL, url.PathEscape(email))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.TierFree
	}

	resp, err := r.client.Do(req)
	if err != nil {
		log.WithError(err).WithField("email", email).Debug("membership lookup failed, falling back to free tier")
		return models.TierFree
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return models.TierFree
	}

	var m models.Membership
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		log.WithError(err).Debug("membership response decode failed, falling back to free tier")
		return models.TierFree
	}

	return m.EffectiveTier()
}
