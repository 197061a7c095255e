package domain

// Tier is one row of the static rank table. Tiers are contiguous and
// ordered ascending by MinPoints; the last MaxPoints is a ceiling used for
// percentage math only.
type Tier struct {
	Name      string `json:"name"`
	MinPoints int    `json:"minPoints"`
	MaxPoints int    `json:"maxPoints"`
}

// Tiers covers [0, inf). The final tier is open-ended in practice.
var Tiers = []Tier{
	{Name: "Bagong Kaibigan", MinPoints: 0, MaxPoints: 249},
	{Name: "Bantay Kaibigan", MinPoints: 250, MaxPoints: 749},
	{Name: "Kapit-Bisig Hero", MinPoints: 750, MaxPoints: 1499},
	{Name: "Bayanihan Pillar", MinPoints: 1500, MaxPoints: 2999},
	{Name: "Community Guardian", MinPoints: 3000, MaxPoints: 10000},
}

// RankFor returns the name of the highest tier whose floor the balance has
// reached. Negative balances map to the starter tier.
func RankFor(points int) string {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if points >= Tiers[i].MinPoints {
			return Tiers[i].Name
		}
	}
	return Tiers[0].Name
}

// RankProgress describes how far a balance has advanced through its tier.
type RankProgress struct {
	Current    int `json:"current"`
	Next       int `json:"next"`
	Percentage int `json:"percentage"`
}

// Progress computes percent-to-next-tier for the given balance and tier
// name. Unknown names fall back to the starter tier. The result is clamped
// to [0, 100]; a balance past the final ceiling reads as 100.
func Progress(points int, rankName string) RankProgress {
	idx := 0
	for i, t := range Tiers {
		if t.Name == rankName {
			idx = i
			break
		}
	}
	tier := Tiers[idx]
	next := tier
	if idx+1 < len(Tiers) {
		next = Tiers[idx+1]
	}

	span := tier.MaxPoints - tier.MinPoints
	gained := points - tier.MinPoints
	pct := 0
	if span > 0 {
		pct = int(float64(gained)/float64(span)*100 + 0.5)
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	return RankProgress{
		Current:    tier.MinPoints,
		Next:       next.MinPoints,
		Percentage: pct,
	}
}
