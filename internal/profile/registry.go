package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GeneralID is the fall-back trade used for any unrecognized profile id.
const GeneralID = "general"

// Registry is the read-only lookup table of trade and niche profiles.
type Registry struct {
	trades map[string]TradeProfile
	niches map[string]NicheProfile
}

// Option customizes registry construction.
type Option func(*Registry)

// WithTrades replaces the built-in trade table. Used by tests and by the
// YAML profile override loader.
func WithTrades(trades []TradeProfile) Option {
	return func(r *Registry) {
		r.trades = make(map[string]TradeProfile, len(trades))
		for _, t := range trades {
			r.trades[t.ID] = t
		}
	}
}

// WithNiches replaces the built-in niche table.
func WithNiches(niches []NicheProfile) Option {
	return func(r *Registry) {
		r.niches = make(map[string]NicheProfile, len(niches))
		for _, n := range niches {
			r.niches[n.ID] = n
		}
	}
}

// NewRegistry builds a registry from the built-in profile tables, applies
// any options, and validates the result.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		trades: make(map[string]TradeProfile, len(builtinTrades)),
		niches: make(map[string]NicheProfile, len(builtinNiches)),
	}
	for _, t := range builtinTrades {
		r.trades[t.ID] = t
	}
	for _, n := range builtinNiches {
		r.niches[n.ID] = n
	}
	for _, o := range opts {
		o(r)
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// TradeFor returns the trade profile for id. An unrecognized id falls back
// to the general-purpose profile; lookup never fails.
func (r *Registry) TradeFor(id string) TradeProfile {
	if t, ok := r.trades[normalizeID(id)]; ok {
		return t
	}
	return r.trades[GeneralID]
}

// NicheFor returns the niche profile for id, falling back to the first
// registered niche (sorted by id) when unrecognized.
func (r *Registry) NicheFor(id string) NicheProfile {
	if n, ok := r.niches[normalizeID(id)]; ok {
		return n
	}
	ids := make([]string, 0, len(r.niches))
	for k := range r.niches {
		ids = append(ids, k)
	}
	sort.Strings(ids)
	return r.niches[ids[0]]
}

// IsNiche reports whether id names a registered niche rather than a trade.
func (r *Registry) IsNiche(id string) bool {
	_, ok := r.niches[normalizeID(id)]
	return ok
}

// Trades returns all trade profiles sorted by id.
func (r *Registry) Trades() []TradeProfile {
	out := make([]TradeProfile, 0, len(r.trades))
	for _, t := range r.trades {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Niches returns all niche profiles sorted by id.
func (r *Registry) Niches() []NicheProfile {
	out := make([]NicheProfile, 0, len(r.niches))
	for _, n := range r.niches {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func normalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// DisplayNameFor derives a human label from a profile id when the profile
// does not carry one.
func DisplayNameFor(id string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(normalizeID(id), "_", " "))
}

// weightSumTolerance allows for floating-point drift and deliberate slight
// over/under-weighting in hand-tuned profile tables.
const weightSumTolerance = 0.15

func (r *Registry) validate() error {
	var errs []string

	if _, ok := r.trades[GeneralID]; !ok {
		errs = append(errs, fmt.Sprintf("missing fall-back trade %q", GeneralID))
	}
	if len(r.niches) == 0 {
		errs = append(errs, "at least one niche profile is required")
	}

	for id, t := range r.trades {
		if id != t.ID {
			errs = append(errs, fmt.Sprintf("trade %q registered under key %q", t.ID, id))
		}
		sum := t.Weights.Sum()
		if sum <= 0 {
			errs = append(errs, fmt.Sprintf("trade %q: weight sum must be > 0", id))
		} else if math.Abs(sum-1.0) > weightSumTolerance {
			errs = append(errs, fmt.Sprintf("trade %q: weights should sum near 1.0, got %.2f", id, sum))
		}
		if t.PrimeAgeRange.Min > t.PrimeAgeRange.Max {
			errs = append(errs, fmt.Sprintf("trade %q: prime age range inverted", id))
		}
		if t.ExtendedAgeRange.Min > t.ExtendedAgeRange.Max {
			errs = append(errs, fmt.Sprintf("trade %q: extended age range inverted", id))
		}
		if t.IncomeThreshold < 0 {
			errs = append(errs, fmt.Sprintf("trade %q: income threshold must be >= 0", id))
		}
	}

	for id, n := range r.niches {
		if id != n.ID {
			errs = append(errs, fmt.Sprintf("niche %q registered under key %q", n.ID, id))
		}
		sum := n.Weights.Sum()
		if sum <= 0 {
			errs = append(errs, fmt.Sprintf("niche %q: weight sum must be > 0", id))
		} else if math.Abs(sum-1.0) > weightSumTolerance {
			errs = append(errs, fmt.Sprintf("niche %q: weights should sum near 1.0, got %.2f", id, sum))
		}
	}

	if len(errs) > 0 {
		return eris.Errorf("profile: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
