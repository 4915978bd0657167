// Package profile holds the immutable trade/niche scoring configuration.
// Profiles are loaded once at startup and never mutated afterward; callers
// hold their own notion of the "current" profile.
package profile

// Weights is the importance vector applied to the six residential subscores.
// Entries are fractions of the final score; the sum is conventionally near
// 1.0 but is not required to be an exact distribution.
type Weights struct {
	Age       float64 `yaml:"age" json:"age"`
	Storm     float64 `yaml:"storm" json:"storm"`
	Permit    float64 `yaml:"permit" json:"permit"`
	Income    float64 `yaml:"income" json:"income"`
	Ownership float64 `yaml:"ownership" json:"ownership"`
	Distance  float64 `yaml:"distance" json:"distance"`
}

// Sum returns the total of all weight entries.
func (w Weights) Sum() float64 {
	return w.Age + w.Storm + w.Permit + w.Income + w.Ownership + w.Distance
}

// AgeRange is an inclusive property-age band in years.
type AgeRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Contains reports whether age falls inside the band.
func (r AgeRange) Contains(age int) bool { return age >= r.Min && age <= r.Max }

// TradeProfile configures residential scoring for one home-service trade.
type TradeProfile struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`

	Weights Weights `yaml:"weights" json:"weights"`

	// PrimeAgeRange is the property-age band where the trade's work is most
	// likely due; ExtendedAgeRange is the wider still-plausible band.
	PrimeAgeRange    AgeRange `yaml:"prime_age_range" json:"prime_age_range"`
	ExtendedAgeRange AgeRange `yaml:"extended_age_range" json:"extended_age_range"`

	// IncomeThreshold is the household income (USD/yr) at which the income
	// subscore reads as solidly positive.
	IncomeThreshold float64 `yaml:"income_threshold" json:"income_threshold"`

	// Reason templates. Each is a fmt format string; see scoring for the
	// arguments each template receives.
	AgeReason    string `yaml:"age_reason" json:"age_reason"`
	StormReason  string `yaml:"storm_reason" json:"storm_reason"`
	PermitReason string `yaml:"permit_reason" json:"permit_reason"`
	IncomeReason string `yaml:"income_reason" json:"income_reason"`
	OwnerReason  string `yaml:"owner_reason" json:"owner_reason"`
}

// NicheWeights is the importance vector for photographer-niche subscores.
type NicheWeights struct {
	Venue         float64 `yaml:"venue" json:"venue"`
	Rating        float64 `yaml:"rating" json:"rating"`
	PhotoFriendly float64 `yaml:"photo_friendly" json:"photo_friendly"`
	Accessibility float64 `yaml:"accessibility" json:"accessibility"`
	Distance      float64 `yaml:"distance" json:"distance"`
}

// Sum returns the total of all niche weight entries.
func (w NicheWeights) Sum() float64 {
	return w.Venue + w.Rating + w.PhotoFriendly + w.Accessibility + w.Distance
}

// NicheProfile configures photo-spot scoring for the photographer vertical.
type NicheProfile struct {
	ID          string `yaml:"id" json:"id"`
	DisplayName string `yaml:"display_name" json:"display_name"`

	Weights NicheWeights `yaml:"weights" json:"weights"`

	// VenueKeywords mark listings that read as event/wedding venues.
	VenueKeywords []string `yaml:"venue_keywords" json:"venue_keywords"`
	// PhotoKeywords mark outdoor/industrial/urban backdrops.
	PhotoKeywords []string `yaml:"photo_keywords" json:"photo_keywords"`
	// AccessibleTypes are place types the public can walk into.
	AccessibleTypes []string `yaml:"accessible_types" json:"accessible_types"`
}
