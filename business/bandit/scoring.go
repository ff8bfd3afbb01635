package bandit

import (
	"fmt"
	"math"
	"sort"
)

const (
	DefaultAlpha            = 0.3
	DefaultExplorationRatio = 0.2

	maxConfidence         = 0.99
	confidenceUncertainty = 0.1
)

type Reason string

const (
	ReasonExploit Reason = "exploit"
	ReasonExplore Reason = "explore"
)

// Score is the model's view of one feature vector.
type Score struct {
	ExpectedReward float64
	Uncertainty    float64
}

// UCB = theta·x + alpha * sqrt(x^T A^-1 x)
func (s Score) UCB(alpha float64) float64 {
	return s.ExpectedReward + alpha*s.Uncertainty
}

// Confidence is clamped to [0, 0.99].
func (s Score) Confidence() float64 {
	c := s.ExpectedReward + s.Uncertainty*confidenceUncertainty
	if c > maxConfidence {
		c = maxConfidence
	}
	if !(c > 0) {
		c = 0
	}
	return c
}

// ScoreFeatures evaluates x against the model. The quadratic form is floored
// at zero before the square root so rounding can never produce NaN.
func ScoreFeatures(x FeatureVector, m *UserModel) (Score, error) {
	if err := m.validate(); err != nil {
		return Score{}, err
	}
	v := x.Vec()
	mean := dot(m.Theta, v)
	variance := dot(v, multiplyMatrixVector(m.AInv, v))
	s := Score{
		ExpectedReward: mean,
		Uncertainty:    math.Sqrt(math.Max(0, variance)),
	}
	if math.IsNaN(s.ExpectedReward) || math.IsNaN(s.Uncertainty) {
		return Score{}, fmt.Errorf("%w: score is NaN", ErrMalformedModel)
	}
	return s, nil
}

// ---- Ranking ----

type RankParams struct {
	Alpha            float64
	ExplorationRatio float64
}

func DefaultRankParams() RankParams {
	return RankParams{
		Alpha:            DefaultAlpha,
		ExplorationRatio: DefaultExplorationRatio,
	}
}

type RankedArm struct {
	Arm      Arm
	Features FeatureVector
	Score    Score
	UCB      float64
	Reason   Reason
}

func (r RankedArm) Confidence() float64 {
	return r.Score.Confidence()
}

// Rank scores every arm, keeps the top limit by UCB and tags the first
// floor(limit*(1-ratio)) picks as exploit and the rest as explore. The split
// is taken from the requested limit, so a pool smaller than the limit may
// come back all exploit. Exploration only relabels items that already made
// the cut; lower-ranked arms are never sampled.
func Rank(arms []Arm, c Context, m *UserModel, limit int, p RankParams) ([]RankedArm, error) {
	if limit <= 0 || len(arms) == 0 {
		return []RankedArm{}, nil
	}

	scored := make([]RankedArm, 0, len(arms))
	for _, arm := range arms {
		x := ExtractFeatures(arm, c)
		s, err := ScoreFeatures(x, m)
		if err != nil {
			return nil, fmt.Errorf("score arm %d: %w", arm.ID, err)
		}
		scored = append(scored, RankedArm{
			Arm:      arm,
			Features: x,
			Score:    s,
			UCB:      s.UCB(p.Alpha),
		})
	}

	// stable: ties keep pool order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].UCB > scored[j].UCB
	})

	n := min(limit, len(scored))
	out := scored[:n]

	exploit := exploitCount(limit, p.ExplorationRatio)
	for i := range out {
		if i >= exploit {
			out[i].Reason = ReasonExplore
		} else {
			out[i].Reason = ReasonExploit
		}
	}
	return out, nil
}

func exploitCount(limit int, ratio float64) int {
	if limit <= 0 {
		return 0
	}
	if !(ratio > 0) {
		return limit
	}
	// nudge past float noise so 5*(1-0.2) floors to 4
	k := int(math.Floor(float64(limit)*(1-ratio) + 1e-9))
	return min(max(k, 0), limit)
}
