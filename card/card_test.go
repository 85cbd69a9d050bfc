package card

import "testing"

func TestBlackjackValue(t *testing.T) {
	cases := []struct {
		card Card
		want int
	}{
		{CardSpadeA, 11},
		{CardHeart2, 2},
		{CardClub9, 9},
		{CardDiamondT, 10},
		{CardSpadeJ, 10},
		{CardHeartQ, 10},
		{CardClubK, 10},
	}
	for _, c := range cases {
		if got := c.card.BlackjackValue(); got != c.want {
			t.Errorf("BlackjackValue(%s) = %d, want %d", c.card, got, c.want)
		}
	}
}

func TestParseRoundTrip(t *testing.T) {
	cases := []struct {
		in   string
		want Card
	}{
		{"As", CardSpadeA},
		{"Th", CardHeartT},
		{"10h", CardHeartT},
		{"Kd", CardDiamondK},
		{"2c", CardClub2},
	}
	for _, c := range cases {
		got, err := Parse(c.in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %v, want %v", c.in, got, c.want)
		}
	}

	if _, err := Parse("Xz"); err == nil {
		t.Error("expected error for invalid card string")
	}
}

func TestFullDeckUnique(t *testing.T) {
	if len(FullDeck) != 52 {
		t.Fatalf("FullDeck has %d cards, want 52", len(FullDeck))
	}
	seen := make(map[Card]bool, 52)
	suits := make(map[Suit]int, 4)
	for _, c := range FullDeck {
		if seen[c] {
			t.Fatalf("duplicate card %s", c)
		}
		seen[c] = true
		suits[c.Suit()]++
		if r := c.Rank(); r < 1 || r > 13 {
			t.Fatalf("card %s has rank %d out of range", c, r)
		}
	}
	for s, n := range suits {
		if n != 13 {
			t.Errorf("suit %s has %d cards, want 13", s, n)
		}
	}
}
