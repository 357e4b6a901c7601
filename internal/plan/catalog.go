// Package plan is the static catalog of subscription tiers and the
// entitlements they grant. It is pure lookup with no side effects;
// everything that needs to know what a plan allows goes through here
// instead of trusting counters stored on the employer row.
package plan

import "strings"

// Unlimited is the post-quota sentinel for the platinum tier. It is the
// same -1 the public plans payload has always used, so it can be sent
// to clients as-is.
const Unlimited = -1

// FreeTier is the plan every employer starts on and falls back to when
// a subscription expires.
const FreeTier = "free"

// Entitlement bundles what a plan grants: how many jobs may be Active
// at once, how many boosts are included, and what the plan costs.
type Entitlement struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Price      float64  `json:"price"`
	PostQuota  int      `json:"jobPosts"`
	BoostQuota int      `json:"boostsIncluded"`
	Emoji      string   `json:"emoji"`
	Features   []string `json:"features"`
}

// HasUnlimitedPosts reports whether the plan has no cap on Active jobs.
func (e Entitlement) HasUnlimitedPosts() bool {
	return e.PostQuota == Unlimited
}

// The canonical plan table. Quotas are TOTAL Active-post allowances
// (free 2, bronze 6, gold 10), matching the limits the production
// system enforced; the 4/8 "allowance on top of base" variant from an
// older schema draft is not used.
var catalog = map[string]Entitlement{
	"free": {
		ID:         "free",
		Name:       "FREE PLAN",
		Price:      0,
		PostQuota:  2,
		BoostQuota: 0,
		Emoji:      "🏢",
		Features:   []string{"2 Active Job Posts", "Standard Visibility", "Basic Support"},
	},
	"bronze": {
		ID:         "bronze",
		Name:       "BRONZE PLAN",
		Price:      3500,
		PostQuota:  6,
		BoostQuota: 1,
		Emoji:      "🥉",
		Features:   []string{"6 Active Job Posts", "1 Boost included", "Email Support"},
	},
	"gold": {
		ID:         "gold",
		Name:       "GOLD PLAN",
		Price:      7500,
		PostQuota:  10,
		BoostQuota: 3,
		Emoji:      "🥇",
		Features:   []string{"10 Active Job Posts", "3 Boosts included", "Priority Support"},
	},
	"platinum": {
		ID:         "platinum",
		Name:       "PLATINUM PLAN",
		Price:      14000,
		PostQuota:  Unlimited,
		BoostQuota: 5,
		Emoji:      "💎",
		Features:   []string{"Unlimited Job Posts", "5 Boosts included", "24/7 Dedicated Support"},
	},
}

// Display order for the public plan listing.
var listing = []string{"free", "bronze", "gold", "platinum"}

// Lookup resolves a plan identifier to its entitlement. The match is
// case-insensitive. Unknown identifiers fall back to the free tier:
// an employer with a garbled plan column gets the most restrictive
// quota, never an error.
func Lookup(planType string) Entitlement {
	if e, ok := catalog[strings.ToLower(strings.TrimSpace(planType))]; ok {
		return e
	}
	return catalog[FreeTier]
}

// IsKnown reports whether the identifier names a real tier. Lookup
// still falls back for unknown ones; this exists so the payment flow
// can reject a submission for a plan that does not exist.
func IsKnown(planType string) bool {
	_, ok := catalog[strings.ToLower(strings.TrimSpace(planType))]
	return ok
}

// All returns the public plan listing, cheapest first.
func All() []Entitlement {
	plans := make([]Entitlement, 0, len(listing))
	for _, id := range listing {
		plans = append(plans, catalog[id])
	}
	return plans
}
