package matching

import "testing"

func TestCalculate_Perfect(t *testing.T) {
	res := Calculate(SwapCandidate{
		Offered:                 SkillHolding{SkillName: "Logo Design", ProficiencyLevel: 5, YearsExperience: 4},
		Requested:               SkillHolding{SkillName: "Web Development", ProficiencyLevel: 5, YearsExperience: 3},
		ProposerWantsRequested:  true,
		CounterpartWantsOffered: true,
	})
	if res.MatchScore != 100 {
		t.Fatalf("expected 100, got %d", res.MatchScore)
	}
}

func TestCalculate_Partial(t *testing.T) {
	res := Calculate(SwapCandidate{
		Offered:   SkillHolding{ProficiencyLevel: 3, YearsExperience: 0},
		Requested: SkillHolding{ProficiencyLevel: 5, YearsExperience: 6},
	})
	// 40*0.75*0.6 = 18, requested 40
	if res.Offered != 18 || res.Requested != 40 || res.Reciprocity != 0 {
		t.Fatalf("unexpected parts: %+v", res)
	}
	if res.MatchScore != 58 {
		t.Fatalf("expected 58, got %d", res.MatchScore)
	}
}

func TestCalculate_UnknownProficiency(t *testing.T) {
	res := Calculate(SwapCandidate{
		Offered:                 SkillHolding{ProficiencyLevel: 0, YearsExperience: 10},
		CounterpartWantsOffered: true,
	})
	if res.MatchScore != 10 {
		t.Fatalf("expected 10, got %d", res.MatchScore)
	}
}

func TestCalculate_ClampsLevels(t *testing.T) {
	res := Calculate(SwapCandidate{
		Offered:   SkillHolding{ProficiencyLevel: 9, YearsExperience: 3},
		Requested: SkillHolding{ProficiencyLevel: 9, YearsExperience: 3},
	})
	if res.MatchScore != 80 {
		t.Fatalf("expected 80, got %d", res.MatchScore)
	}
}
