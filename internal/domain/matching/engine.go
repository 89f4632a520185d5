package matching

import "math"

// SkillHolding is what a user lists for one skill.
type SkillHolding struct {
	SkillName        string
	ProficiencyLevel int
	YearsExperience  int
}

// SwapCandidate describes both sides of a proposed exchange.
type SwapCandidate struct {
	Offered   SkillHolding // proposer's listing of the skill they perform
	Requested SkillHolding // counterpart's listing of the skill they perform

	// ProposerWantsRequested and CounterpartWantsOffered come from each user's wanted list.
	ProposerWantsRequested  bool
	CounterpartWantsOffered bool
}

type Result struct {
	MatchScore  int
	Offered     int
	Requested   int
	Reciprocity int
}

// ExpectedYears is the experience at which the years bonus saturates.
const ExpectedYears = 3

// Calculate scores a swap candidate out of 100: up to 40 for each side's
// proficiency and experience in the skill it performs, and 10 for each side
// that explicitly wants what the other offers.
func Calculate(c SwapCandidate) Result {
	offered := holdingScore(c.Offered, 40)
	requested := holdingScore(c.Requested, 40)

	reciprocity := 0.0
	if c.ProposerWantsRequested {
		reciprocity += 10
	}
	if c.CounterpartWantsOffered {
		reciprocity += 10
	}

	total := offered + requested + reciprocity
	score := clampInt(int(math.Round(total)), 0, 100)

	return Result{
		MatchScore:  score,
		Offered:     int(math.Round(offered)),
		Requested:   int(math.Round(requested)),
		Reciprocity: int(math.Round(reciprocity)),
	}
}

// holdingScore splits weight 3:1 between proficiency level and experience.
func holdingScore(h SkillHolding, weight float64) float64 {
	lvl := clampInt(h.ProficiencyLevel, 0, 5)
	if lvl <= 0 {
		return 0
	}
	levelPart := weight * 0.75 * (float64(lvl) / 5.0)
	expPart := weight * 0.25 * expRatio(h.YearsExperience, ExpectedYears)
	return levelPart + expPart
}

func expRatio(years, expected int) float64 {
	if expected <= 0 {
		return 1
	}
	if years <= 0 {
		return 0
	}
	ratio := float64(years) / float64(expected)
	if ratio > 1 {
		return 1
	}
	return ratio
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
