package shoppers

import (
	"fmt"
	"math/rand"
	"sort"
)

// CohortParams are the generation ranges for one shopper cohort.
type CohortParams struct {
	DemandMin, DemandMax int
	WindowMin, WindowMax int // Window length range in days

	BasePriceMin, BasePriceMax float64
	MaxPriceMin, MaxPriceMax   float64
	UrgencyMin, UrgencyMax     float64
}

// PopulationParams drive population generation.
type PopulationParams struct {
	TotalShoppers int
	LongTermRatio float64 // Fraction of shoppers in the long-term cohort
	NumDays       int

	LongTerm  CohortParams
	ShortTerm CohortParams
}

// Population is the persistent shopper set for one run. It is generated
// once; after that the only mutation is demand depletion via Deplete.
type Population struct {
	shoppers []*Shopper
	index    map[string]*Shopper
}

// Generate creates the shopper population from the given parameters,
// drawing all random values from rng so runs are reproducible by seed.
// Parameter errors (inverted ranges, zero-day windows paired with
// non-trivial urgency) are reported here, before the run starts.
func Generate(p PopulationParams, rng *rand.Rand) (*Population, error) {
	if err := validateParams(p); err != nil {
		return nil, err
	}

	numLongTerm := int(float64(p.TotalShoppers) * p.LongTermRatio)
	numShortTerm := p.TotalShoppers - numLongTerm

	pop := &Population{index: make(map[string]*Shopper, p.TotalShoppers)}
	for i := 0; i < numLongTerm; i++ {
		id := fmt.Sprintf("LT_%04d", i+1)
		pop.add(spawnShopper(id, LongTerm, p.LongTerm, p.NumDays, rng))
	}
	for i := 0; i < numShortTerm; i++ {
		id := fmt.Sprintf("ST_%04d", i+1)
		pop.add(spawnShopper(id, ShortTerm, p.ShortTerm, p.NumDays, rng))
	}
	return pop, nil
}

func validateParams(p PopulationParams) error {
	if p.TotalShoppers <= 0 {
		return fmt.Errorf("total shoppers must be positive, got %d", p.TotalShoppers)
	}
	if p.NumDays < 1 {
		return fmt.Errorf("num days must be at least 1, got %d", p.NumDays)
	}
	if p.LongTermRatio < 0 || p.LongTermRatio > 1 {
		return fmt.Errorf("long-term ratio must be in [0,1], got %g", p.LongTermRatio)
	}
	for _, c := range []struct {
		name   string
		params CohortParams
	}{{"long_term", p.LongTerm}, {"short_term", p.ShortTerm}} {
		cp := c.params
		if cp.DemandMin > cp.DemandMax || cp.DemandMin < 1 {
			return fmt.Errorf("%s demand range invalid: [%d, %d]", c.name, cp.DemandMin, cp.DemandMax)
		}
		if cp.WindowMin > cp.WindowMax || cp.WindowMin < 0 {
			return fmt.Errorf("%s window range invalid: [%d, %d]", c.name, cp.WindowMin, cp.WindowMax)
		}
		if cp.WindowMax == 0 && cp.UrgencyMax != 1 {
			return fmt.Errorf("%s zero-length windows require urgency 1, got max %g", c.name, cp.UrgencyMax)
		}
		if cp.BasePriceMin > cp.BasePriceMax || cp.MaxPriceMin > cp.MaxPriceMax {
			return fmt.Errorf("%s price ranges invalid", c.name)
		}
		if cp.UrgencyMin > cp.UrgencyMax || cp.UrgencyMin <= 0 {
			return fmt.Errorf("%s urgency range invalid: [%g, %g]", c.name, cp.UrgencyMin, cp.UrgencyMax)
		}
	}
	return nil
}

func spawnShopper(id string, typ ShopperType, c CohortParams, numDays int, rng *rand.Rand) *Shopper {
	demand := randIntIn(rng, c.DemandMin, c.DemandMax)

	// Cap the window length so the window always fits inside the run.
	maxWindow := c.WindowMax
	if maxWindow > numDays-1 {
		maxWindow = numDays - 1
	}
	minWindow := c.WindowMin
	if minWindow > maxWindow {
		minWindow = maxWindow
	}
	windowLen := randIntIn(rng, minWindow, maxWindow)

	maxStart := numDays - windowLen
	if maxStart < 1 {
		maxStart = 1
	}
	windowStart := randIntIn(rng, 1, maxStart)

	return &Shopper{
		ID:              id,
		Type:            typ,
		TotalDemand:     demand,
		DemandRemaining: demand,
		WindowStart:     windowStart,
		WindowEnd:       windowStart + windowLen,
		BasePrice:       randFloatIn(rng, c.BasePriceMin, c.BasePriceMax),
		MaxPrice:        randFloatIn(rng, c.MaxPriceMin, c.MaxPriceMax),
		Urgency:         randFloatIn(rng, c.UrgencyMin, c.UrgencyMax),
	}
}

func (p *Population) add(s *Shopper) {
	p.shoppers = append(p.shoppers, s)
	p.index[s.ID] = s
}

// Shoppers returns the underlying shopper list. Callers must not mutate
// demand directly; depletion goes through Deplete.
func (p *Population) Shoppers() []*Shopper {
	return p.shoppers
}

// Lookup returns the shopper with the given ID, or nil.
func (p *Population) Lookup(id string) *Shopper {
	return p.index[id]
}

// DailyPool builds the day's demand pool: one DemandUnit per remaining
// unit of every active shopper, priced by the urgency curve. The pool is
// shuffled and then stable-sorted by descending price, so same-price
// ties are broken by an independent random draw each day while the
// cross-price ordering stays deterministic. The population itself is
// not mutated.
func (p *Population) DailyPool(day int, rng *rand.Rand) []DemandUnit {
	var pool []DemandUnit
	for _, s := range p.shoppers {
		if !s.Active(day) {
			continue
		}
		price := s.CurrentPrice(day)
		for i := 0; i < s.DemandRemaining; i++ {
			pool = append(pool, DemandUnit{ShopperID: s.ID, WillingToPay: price})
		}
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].WillingToPay > pool[j].WillingToPay
	})
	return pool
}

// Deplete decrements a shopper's remaining demand after successful
// trades. Driving demand below zero is an engine defect, not a runtime
// condition, so it panics.
func (p *Population) Deplete(id string, units int) {
	s := p.index[id]
	if s == nil {
		panic(fmt.Sprintf("shoppers: deplete unknown shopper %q", id))
	}
	if units < 0 || units > s.DemandRemaining {
		panic(fmt.Sprintf("shoppers: deplete %d units from %q with %d remaining", units, id, s.DemandRemaining))
	}
	s.DemandRemaining -= units
}

// TotalRemaining sums remaining demand across the population.
func (p *Population) TotalRemaining() int {
	total := 0
	for _, s := range p.shoppers {
		total += s.DemandRemaining
	}
	return total
}

func randIntIn(rng *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func randFloatIn(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}
