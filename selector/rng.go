package selector

import (
	"hash/fnv"
	"math/rand"
)

// === SelectionKey ===

// SelectionKey identifies a reproducible evaluation. It is derived from the
// scenario hash, never from a system entropy source, so two evaluations of
// identical content draw identical pseudo-random streams.
type SelectionKey int64

// KeyFromHash folds a scenario hash into a SelectionKey.
func KeyFromHash(scenarioHash string) SelectionKey {
	return SelectionKey(fnv1a64(scenarioHash))
}

// === Subsystem Constants ===

const (
	// SubsystemNSGA2 is reported as the NSGA-II seed for companion heuristics.
	SubsystemNSGA2 = "nsga2"

	// SubsystemTradeoff drives bootstrap resampling in trade-off analysis.
	SubsystemTradeoff = "tradeoff"
)

// === PartitionedRNG ===

// PartitionedRNG provides deterministic, isolated RNG instances per subsystem.
//
// Derivation formula: key XOR fnv1a64(subsystemName).
//
// Thread-safety: NOT thread-safe. Must be called from single goroutine.
type PartitionedRNG struct {
	key        SelectionKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SelectionKey.
func NewPartitionedRNG(key SelectionKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// SubsystemSeed returns the seed ForSubsystem would use for name.
func (p *PartitionedRNG) SubsystemSeed(name string) int64 {
	return int64(p.key) ^ fnv1a64(name)
}

// ForSubsystem returns a deterministically-seeded RNG for the named subsystem.
// The same subsystem name always returns the same *rand.Rand instance (cached).
// Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SubsystemSeed(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SelectionKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SelectionKey {
	return p.key
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
