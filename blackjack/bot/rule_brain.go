package bot

import "math/rand"

// RuleBrain plays the heuristic policy defined by its persona
// thresholds. It reads the table view and nothing else; randomness
// comes from its own seeded source so decisions are reproducible.
type RuleBrain struct {
	persona *Persona
	rng     *rand.Rand
}

// NewRuleBrain creates a RuleBrain from a persona definition.
func NewRuleBrain(persona *Persona, seed int64) *RuleBrain {
	if persona == nil {
		persona = DefaultPersona()
	}
	return &RuleBrain{
		persona: persona,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

func (b *RuleBrain) Name() string { return b.persona.Name }

// Decide implements Decider.
//
// Below HitFloor a hit can never bust (even drawing an ace-low 11
// keeps the total at 21 or under), so it always hits. At StandCeiling
// and above it always stands. In between it looks at opponents whose
// hands are already resolved: when trailing the best visible score it
// chases with PressureHitProb, otherwise it hits only below
// MidHitCeiling.
func (b *RuleBrain) Decide(view TableView) Action {
	t := b.persona.Brain
	score := view.Score

	if score < t.HitFloor {
		return ActionHit
	}
	if score >= t.StandCeiling {
		return ActionStand
	}

	best := 0
	for _, o := range view.Opponents {
		if o.Status.Resolved() && o.Score > best {
			best = o.Score
		}
	}

	if score < best && score < t.StandCeiling {
		if b.rng.Float64() < t.PressureHitProb {
			return ActionHit
		}
		return ActionStand
	}

	if score < t.MidHitCeiling {
		return ActionHit
	}
	return ActionStand
}
