package scoring

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/leadscout/internal/geo"
	"github.com/sells-group/leadscout/internal/profile"
)

// Area is a normalized residential candidate derived from one census tract,
// enriched with nearby storm and permit signals.
type Area struct {
	ID     string
	Label  string
	Center geo.Point

	MedianYearBuilt  *int
	MedianIncome     *float64
	OwnerOccupiedPct *float64 // 0-100

	Storms    []StormSignal
	HasPermit bool
}

// StormSignal is one qualifying severe-weather event near the area.
type StormSignal struct {
	Type          string
	Severity      string
	DaysAgo       int
	DistanceMiles float64
}

// neutralSubscore is the starting value of every residential subscore.
// Absence of data must never read as a negative signal.
const neutralSubscore = 5.0

// subscore is one evaluated residential signal.
type subscore struct {
	name   string
	value  float64
	weight float64
	reason string // empty when the signal did not fire
}

func (s subscore) contribution() float64 { return s.value * s.weight }

var enPrinter = message.NewPrinter(language.English)

// ScoreResidential scores one residential area candidate with the given
// trade profile. Six subscores start neutral, are resolved independently,
// and combine via the profile's weight vector, clipped to [1,10].
func ScoreResidential(a Area, prof profile.TradeProfile, params Params) Lead {
	age, hasAge := propertyAge(a, params)
	dist := geo.DistanceMiles(params.Center, a.Center)

	// Evaluation order is also the trigger tie-break order.
	subs := []subscore{
		stormSubscore(a, prof),
		ageSubscore(age, hasAge, prof),
		permitSubscore(a, prof),
		incomeSubscore(a, prof),
		ownershipSubscore(a, prof),
		distanceSubscore(dist, geo.MetersToMiles(params.RadiusMeters), prof.Weights.Distance),
	}

	var total float64
	var reasons []string
	best := subs[0]
	for _, s := range subs {
		total += s.contribution()
		if s.reason != "" {
			reasons = append(reasons, s.reason)
		}
		if s.contribution() > best.contribution() {
			best = s
		}
	}
	if len(reasons) == 0 {
		reasons = []string{genericReason}
	}

	lead := Lead{
		ID:               a.ID,
		Name:             a.Label,
		Location:         a.Center,
		Score:            clip(total, 1, 10),
		Trigger:          best.name,
		Reasons:          reasons,
		Industry:         prof.ID,
		Kind:             KindResidential,
		DistanceMiles:    dist,
		MedianIncome:     a.MedianIncome,
		OwnerOccupiedPct: a.OwnerOccupiedPct,
		HasStorm:         len(a.Storms) > 0,
		HasPermit:        a.HasPermit,
	}
	if hasAge {
		lead.PropertyAge = &age
	}
	return lead
}

func propertyAge(a Area, params Params) (int, bool) {
	if a.MedianYearBuilt == nil || *a.MedianYearBuilt <= 0 {
		return 0, false
	}
	age := params.now().Year() - *a.MedianYearBuilt
	if age < 0 {
		age = 0
	}
	return age, true
}

func ageSubscore(age int, hasAge bool, prof profile.TradeProfile) subscore {
	s := subscore{name: "age", value: neutralSubscore, weight: prof.Weights.Age}
	if !hasAge {
		return s
	}
	switch {
	case prof.PrimeAgeRange.Contains(age):
		s.value = 10
	case prof.ExtendedAgeRange.Contains(age):
		s.value = 8
	case age > prof.ExtendedAgeRange.Max:
		s.value = 6
	case age < prof.PrimeAgeRange.Min:
		// Too new for the trade's work to be due.
		s.value = 3
	}
	if s.value >= 6 {
		s.reason = fmt.Sprintf(prof.AgeReason, age)
	}
	return s
}

func stormSubscore(a Area, prof profile.TradeProfile) subscore {
	s := subscore{name: "storm", value: neutralSubscore, weight: prof.Weights.Storm}
	if len(a.Storms) == 0 {
		return s
	}
	closest := a.Storms[0]
	for _, st := range a.Storms[1:] {
		if st.DistanceMiles < closest.DistanceMiles {
			closest = st
		}
	}
	switch {
	case closest.DistanceMiles <= 5:
		s.value = 10
	case closest.DistanceMiles <= 15:
		s.value = 8
	default:
		return s
	}
	s.reason = fmt.Sprintf(prof.StormReason, closest.Type, recencyPhrase(closest.DaysAgo), closest.DistanceMiles)
	return s
}

func permitSubscore(a Area, prof profile.TradeProfile) subscore {
	s := subscore{name: "permit", value: neutralSubscore, weight: prof.Weights.Permit}
	if a.HasPermit {
		s.value = 9
		s.reason = prof.PermitReason
	}
	return s
}

// incomeSubscore is the one subscore allowed to read as a genuine negative:
// low income is a real negative signal for most trades.
func incomeSubscore(a Area, prof profile.TradeProfile) subscore {
	s := subscore{name: "income", value: neutralSubscore, weight: prof.Weights.Income}
	if a.MedianIncome == nil || *a.MedianIncome <= 0 || prof.IncomeThreshold <= 0 {
		return s
	}
	ratio := *a.MedianIncome / prof.IncomeThreshold
	switch {
	case ratio >= 1.5:
		s.value = 10
	case ratio >= 1.0:
		s.value = 8
	case ratio >= 0.7:
		s.value = 6
	case ratio >= 0.5:
		s.value = 4
	default:
		s.value = 2
	}
	if s.value >= 8 {
		s.reason = fmt.Sprintf(prof.IncomeReason, enPrinter.Sprintf("%d", int(*a.MedianIncome)))
	}
	return s
}

// ownershipSubscore reads rental-heavy areas as a genuine negative signal.
func ownershipSubscore(a Area, prof profile.TradeProfile) subscore {
	s := subscore{name: "ownership", value: neutralSubscore, weight: prof.Weights.Ownership}
	if a.OwnerOccupiedPct == nil {
		return s
	}
	pct := *a.OwnerOccupiedPct
	switch {
	case pct >= 80:
		s.value = 10
	case pct >= 65:
		s.value = 8
	case pct >= 50:
		s.value = 6
	case pct >= 30:
		s.value = 3
	default:
		s.value = 1
	}
	if s.value >= 8 {
		s.reason = fmt.Sprintf(prof.OwnerReason, pct)
	}
	return s
}

// distanceSubscore is a smooth gradient from 10 at the search center to
// roughly 2 at the radius edge; never a hard cutoff.
func distanceSubscore(distMiles, radiusMiles, weight float64) subscore {
	s := subscore{name: "distance", value: neutralSubscore, weight: weight}
	if radiusMiles <= 0 {
		return s
	}
	frac := distMiles / radiusMiles
	if frac > 1 {
		frac = 1
	}
	s.value = 10 - 8*frac
	return s
}

func recencyPhrase(daysAgo int) string {
	switch {
	case daysAgo <= 0:
		return "today"
	case daysAgo == 1:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", daysAgo)
	}
}
