package domain

import "testing"

func TestRankFor(t *testing.T) {
	cases := []struct {
		points int
		want   string
	}{
		{0, "Bagong Kaibigan"},
		{249, "Bagong Kaibigan"},
		{250, "Bantay Kaibigan"},
		{500, "Bantay Kaibigan"},
		{749, "Bantay Kaibigan"},
		{750, "Kapit-Bisig Hero"},
		{1500, "Bayanihan Pillar"},
		{3000, "Community Guardian"},
		{25000, "Community Guardian"},
		{-10, "Bagong Kaibigan"},
	}
	for _, c := range cases {
		if got := RankFor(c.points); got != c.want {
			t.Errorf("RankFor(%d) = %q, want %q", c.points, got, c.want)
		}
	}
}

func TestProgressBoundaries(t *testing.T) {
	if p := Progress(0, "Bagong Kaibigan"); p.Percentage != 0 {
		t.Errorf("expected 0%% at tier floor, got %d%%", p.Percentage)
	}
	if p := Progress(10000, "Community Guardian"); p.Percentage != 100 {
		t.Errorf("expected 100%% at final ceiling, got %d%%", p.Percentage)
	}
	if p := Progress(250, "Bantay Kaibigan"); p.Percentage != 0 {
		t.Errorf("expected 0%% at minPoints, got %d%%", p.Percentage)
	}
	// Past the final ceiling the percentage clamps instead of overflowing.
	if p := Progress(99999, "Community Guardian"); p.Percentage != 100 {
		t.Errorf("expected clamp to 100%%, got %d%%", p.Percentage)
	}
}

func TestProgressMidTier(t *testing.T) {
	p := Progress(500, "Bantay Kaibigan")
	if p.Current != 250 || p.Next != 750 {
		t.Fatalf("unexpected tier bounds: current=%d next=%d", p.Current, p.Next)
	}
	if p.Percentage != 50 {
		t.Errorf("Progress(500) percentage = %d, want 50", p.Percentage)
	}
}

func TestProgressUnknownRankFallsBack(t *testing.T) {
	p := Progress(100, "No Such Rank")
	if p.Current != 0 || p.Next != 250 {
		t.Fatalf("expected starter tier bounds, got current=%d next=%d", p.Current, p.Next)
	}
}

func TestProgressConsistentWithRankFor(t *testing.T) {
	for _, points := range []int{0, 100, 250, 600, 800, 2000, 5000, 10000} {
		rank := RankFor(points)
		p := Progress(points, rank)
		if p.Percentage < 0 || p.Percentage > 100 {
			t.Errorf("points=%d rank=%q percentage out of range: %d", points, rank, p.Percentage)
		}
	}
}
