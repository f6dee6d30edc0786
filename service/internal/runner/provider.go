package runner

import (
	"context"
	"math/rand/v2"

	"github.com/jason-s-yu/dutch/engine"
)

// DefaultPassChance is how often a RandomProvider lets a same-rank window go
// by. Claims are blind, so most of them draw a penalty.
const DefaultPassChance = 0.85

// RandomProvider picks uniformly among the legal actions. It is not safe for
// concurrent use.
type RandomProvider struct {
	rng        *rand.Rand
	PassChance float64
}

func NewRandomProvider(seed uint64) *RandomProvider {
	return &RandomProvider{
		rng:        rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		PassChance: DefaultPassChance,
	}
}

func (p *RandomProvider) NextAction(_ context.Context, view engine.View, legal []engine.Action) (engine.Action, error) {
	if len(legal) == 0 {
		return nil, nil
	}
	if view.Phase == engine.PhaseSameRankWindow && p.rng.Float64() < p.PassChance {
		return nil, nil
	}
	return legal[p.rng.IntN(len(legal))], nil
}

// FirstLegalProvider plays the first legal action and passes every
// same-rank window.
type FirstLegalProvider struct{}

func (FirstLegalProvider) NextAction(_ context.Context, view engine.View, legal []engine.Action) (engine.Action, error) {
	if len(legal) == 0 || view.Phase == engine.PhaseSameRankWindow {
		return nil, nil
	}
	return legal[0], nil
}
