package game

import (
	"math/rand/v2"
	"sync"
)

// Pool draws locations from a fixed catalog, avoiding repeats for as long as
// the catalog allows.
type Pool struct {
	mu      sync.Mutex
	rng     *rand.Rand
	catalog []Location
}

type PoolOption func(*Pool)

// WithRand replaces the pool's random source, mostly for deterministic tests.
// The pool takes ownership: rng must not be shared with another pool.
func WithRand(rng *rand.Rand) PoolOption {
	return func(p *Pool) { p.rng = rng }
}

// NewPool copies catalog into a new pool. An empty catalog is refused.
func NewPool(catalog []Location, opts ...PoolOption) (*Pool, error) {
	if len(catalog) == 0 {
		return nil, ErrCatalogEmpty
	}
	p := &Pool{
		catalog: append([]Location(nil), catalog...),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Pool) Len() int { return len(p.catalog) }

// Locations returns a copy of the catalog in its original order.
func (p *Pool) Locations() []Location {
	return append([]Location(nil), p.catalog...)
}

// Draw picks uniformly among locations whose ID is not in excluding. Once
// excluding covers the whole catalog it picks uniformly from the full catalog
// instead, so a round can always start.
func (p *Pool) Draw(excluding map[string]struct{}) Location {
	p.mu.Lock()
	defer p.mu.Unlock()

	candidates := make([]int, 0, len(p.catalog))
	for i, loc := range p.catalog {
		if _, used := excluding[loc.ID]; !used {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return p.catalog[p.rng.IntN(len(p.catalog))]
	}
	return p.catalog[candidates[p.rng.IntN(len(candidates))]]
}

// Shuffled returns the catalog in a uniformly random order.
func (p *Pool) Shuffled() []Location {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Shuffle(p.catalog, p.rng)
}

// Shuffle returns a Fisher-Yates permutation of catalog. The input is not
// modified.
func Shuffle(catalog []Location, rng *rand.Rand) []Location {
	out := append([]Location(nil), catalog...)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
