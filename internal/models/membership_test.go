package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMembership_EffectiveTier(t *testing.T) {
	tests := []struct {
		name       string
		membership Membership
		expected   Tier
	}{
		{"active premium", Membership{Type: "premium", Status: MembershipActive}, TierPremium},
		{"cancelled premium", Membership{Type: "premium", Status: MembershipCancelled}, TierFree},
		{"expired premium", Membership{Type: "premium", Status: MembershipExpired}, TierFree},
		{"active free", Membership{Type: "free", Status: MembershipActive}, TierFree},
		{"empty record", Membership{}, TierFree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.membership.EffectiveTier())
		})
	}
}
