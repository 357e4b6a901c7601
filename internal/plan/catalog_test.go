package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name      string
		planType  string
		wantID    string
		wantPosts int
	}{
		{name: "free", planType: "free", wantID: "free", wantPosts: 2},
		{name: "bronze", planType: "bronze", wantID: "bronze", wantPosts: 6},
		{name: "gold", planType: "gold", wantID: "gold", wantPosts: 10},
		{name: "platinum is unlimited", planType: "platinum", wantID: "platinum", wantPosts: Unlimited},
		{name: "case insensitive", planType: "GOLD", wantID: "gold", wantPosts: 10},
		{name: "surrounding whitespace", planType: "  bronze ", wantID: "bronze", wantPosts: 6},
		{name: "unknown falls back to free", planType: "diamond", wantID: "free", wantPosts: 2},
		{name: "empty falls back to free", planType: "", wantID: "free", wantPosts: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Lookup(tt.planType)
			assert.Equal(t, tt.wantID, e.ID)
			assert.Equal(t, tt.wantPosts, e.PostQuota)
		})
	}
}

func TestIsKnown(t *testing.T) {
	assert.True(t, IsKnown("free"))
	assert.True(t, IsKnown("Platinum"))
	assert.False(t, IsKnown("diamond"))
	assert.False(t, IsKnown(""))
}

func TestBoostQuotas(t *testing.T) {
	assert.Equal(t, 0, Lookup("free").BoostQuota)
	assert.Equal(t, 1, Lookup("bronze").BoostQuota)
	assert.Equal(t, 3, Lookup("gold").BoostQuota)
	assert.Equal(t, 5, Lookup("platinum").BoostQuota)
}

func TestHasUnlimitedPosts(t *testing.T) {
	assert.True(t, Lookup("platinum").HasUnlimitedPosts())
	assert.False(t, Lookup("gold").HasUnlimitedPosts())
}

func TestAll(t *testing.T) {
	plans := All()
	require.Len(t, plans, 4)

	// Cheapest first, so the public listing never needs to sort.
	assert.Equal(t, "free", plans[0].ID)
	assert.Equal(t, "bronze", plans[1].ID)
	assert.Equal(t, "gold", plans[2].ID)
	assert.Equal(t, "platinum", plans[3].ID)

	for _, p := range plans {
		assert.NotEmpty(t, p.Name)
		assert.NotEmpty(t, p.Features)
	}
}
