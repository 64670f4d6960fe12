package models

// Tier is the membership level that selects discount rates.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// Membership statuses as reported by the membership service.
const (
	MembershipActive    = "active"
	MembershipCancelled = "cancelled"
	MembershipExpired   = "expired"
)

// Membership represents a customer's membership record.
type Membership struct {
	Email  string `json:"email" bson:"email"`
	Type   string `json:"membershipType" bson:"membership_type"`
	Status string `json:"status" bson:"status"`
}

// EffectiveTier resolves the discount tier for a membership record. Only an
// active premium membership yields premium rates; every other combination
// falls back to free.
func (m *Membership) EffectiveTier() Tier {
	if m.Type == string(TierPremium) && m.Status == MembershipActive {
		return TierPremium
	}
	return TierFree
}
