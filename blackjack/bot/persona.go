package bot

// Thresholds are the tunable parameters of a RuleBrain.
type Thresholds struct {
	HitFloor        int     `json:"hitFloor"`        // always hit below this score
	StandCeiling    int     `json:"standCeiling"`    // always stand at or above
	MidHitCeiling   int     `json:"midHitCeiling"`   // hit below this when nobody is ahead
	PressureHitProb float64 `json:"pressureHitProb"` // hit probability when trailing a resolved opponent
}

// DefaultThresholds is the conventional policy: hit below 12, stand at
// 17+, chase when trailing with probability 0.7, otherwise hit below 15.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HitFloor:        12,
		StandCeiling:    17,
		MidHitCeiling:   15,
		PressureHitProb: 0.7,
	}
}

// Persona is a named bot profile.
type Persona struct {
	ID      string     `json:"id"`
	Name    string     `json:"name"`
	Tagline string     `json:"tagline"`
	Brain   Thresholds `json:"brain"`
}

// DefaultPersona is the stock table bot.
func DefaultPersona() *Persona {
	return &Persona{
		ID:    "house",
		Name:  "AI Player",
		Brain: DefaultThresholds(),
	}
}
