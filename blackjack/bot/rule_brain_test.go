package bot

import (
	"testing"

	"github.com/Grosth/BlackjackCS/blackjack"
)

func TestRuleBrainLowScoresAlwaysHit(t *testing.T) {
	brain := NewRuleBrain(nil, 42)
	for score := 4; score < 12; score++ {
		if got := brain.Decide(TableView{Score: score}); got != ActionHit {
			t.Fatalf("Decide(score=%d) = %v, want hit", score, got)
		}
	}
}

func TestRuleBrainHighScoresAlwaysStand(t *testing.T) {
	brain := NewRuleBrain(nil, 42)
	for score := 17; score <= 21; score++ {
		if got := brain.Decide(TableView{Score: score}); got != ActionStand {
			t.Fatalf("Decide(score=%d) = %v, want stand", score, got)
		}
	}
}

func TestRuleBrainMidRangeWithoutPressure(t *testing.T) {
	brain := NewRuleBrain(nil, 42)
	// Nobody resolved ahead: hit below 15, stand at 15-16.
	for score := 12; score < 15; score++ {
		if got := brain.Decide(TableView{Score: score}); got != ActionHit {
			t.Fatalf("Decide(score=%d, no opponents) = %v, want hit", score, got)
		}
	}
	for score := 15; score < 17; score++ {
		if got := brain.Decide(TableView{Score: score}); got != ActionStand {
			t.Fatalf("Decide(score=%d, no opponents) = %v, want stand", score, got)
		}
	}
}

func TestRuleBrainIgnoresUnresolvedOpponents(t *testing.T) {
	brain := NewRuleBrain(nil, 42)
	// A still-playing opponent's score is not visible to the policy,
	// so a 16 facing a playing 21 stands deterministically.
	view := TableView{
		Score: 16,
		Opponents: []OpponentView{
			{Score: 21, Status: blackjack.StatusPlaying},
			{Score: 20, Status: blackjack.StatusBusted},
		},
	}
	for i := 0; i < 100; i++ {
		if got := brain.Decide(view); got != ActionStand {
			t.Fatalf("Decide ignoring unresolved opponents = %v, want stand", got)
		}
	}
}

func TestRuleBrainChasesWhenTrailingAtRoughlyConfiguredRate(t *testing.T) {
	brain := NewRuleBrain(nil, 99)
	view := TableView{
		Score: 14,
		Opponents: []OpponentView{
			{Score: 20, Status: blackjack.StatusStanding},
		},
	}

	const rounds = 4000
	hits := 0
	for i := 0; i < rounds; i++ {
		if brain.Decide(view) == ActionHit {
			hits++
		}
	}
	rate := float64(hits) / float64(rounds)
	if rate < 0.62 || rate > 0.78 {
		t.Fatalf("chase hit rate = %.3f, want ~0.70", rate)
	}
}

func TestRuleBrainDeterministicForFixedSeed(t *testing.T) {
	view := TableView{
		Score:     13,
		Opponents: []OpponentView{{Score: 19, Status: blackjack.StatusStanding}},
	}
	a := NewRuleBrain(nil, 7)
	b := NewRuleBrain(nil, 7)
	for i := 0; i < 200; i++ {
		da, db := a.Decide(view), b.Decide(view)
		if da != db {
			t.Fatalf("decision %d diverged: %v vs %v", i, da, db)
		}
	}
}

func TestRegistryLoadFromJSON(t *testing.T) {
	r := NewRegistry()
	if r.Get("house") == nil {
		t.Fatal("default persona missing")
	}

	data := []byte(`[
		{"id": "cautious", "name": "Cautious Carl", "brain": {"standCeiling": 15}},
		{"id": "", "name": "skipped"}
	]`)
	if err := r.LoadFromJSON(data); err != nil {
		t.Fatalf("LoadFromJSON err: %v", err)
	}
	if r.Count() != 2 {
		t.Fatalf("registry has %d personas, want 2", r.Count())
	}

	p := r.Get("cautious")
	if p == nil {
		t.Fatal("cautious persona missing")
	}
	if p.Brain.StandCeiling != 15 {
		t.Fatalf("StandCeiling = %d, want 15", p.Brain.StandCeiling)
	}
	// Unset thresholds fall back to defaults.
	if p.Brain.HitFloor != 12 || p.Brain.PressureHitProb != 0.7 {
		t.Fatalf("defaults not applied: %+v", p.Brain)
	}

	brain := NewRuleBrain(p, 1)
	if got := brain.Decide(TableView{Score: 15}); got != ActionStand {
		t.Fatalf("cautious Decide(15) = %v, want stand", got)
	}
}
