package bandit

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// FeatureDim is the length of every feature vector. Slot positions below are
// part of the persisted model format; never reorder them.
const FeatureDim = 20

const (
	featLogPrice     = 0
	featBudgetRatio  = 1
	featHourOfDay    = 2
	featIsMobile     = 3
	featLightness    = 4
	featChroma       = 5
	featHue          = 6
	featMediumStart  = 7
	featGenreStart   = 13
	featStyleMatch   = 18
	featEngagement   = 19
	mediumSlots      = 6
	genreSlots       = 5
	defaultBudgetFit = 0.5
)

// Price at which the log-price feature saturates at 1.
const priceCeiling = 100_000.0

// Taxonomy ordering is fixed. Entries past the slot count are recognized
// labels that get no one-hot bit.
var (
	MediumTaxonomy = []string{"painting", "sculpture", "photography", "digital", "printmaking", "mixed-media", "textile", "ceramics"}
	GenreTaxonomy  = []string{"abstract", "contemporary", "landscape", "portrait", "minimalism", "pop-art", "surrealism"}
)

type FeatureVector [FeatureDim]float64

// Vec copies the vector into a gonum column vector.
func (x FeatureVector) Vec() *mat.VecDense {
	data := make([]float64, FeatureDim)
	copy(data, x[:])
	return mat.NewVecDense(FeatureDim, data)
}

func (x FeatureVector) Slice() []float64 {
	out := make([]float64, FeatureDim)
	copy(out, x[:])
	return out
}

// ExtractFeatures maps an arm seen under a context to its feature vector.
// It is pure: missing or unknown metadata leaves the matching slots at zero.
func ExtractFeatures(arm Arm, c Context) FeatureVector {
	var x FeatureVector

	meta := arm.Meta

	// index 0-1: price
	x[featLogPrice] = logPrice(meta.Price)
	x[featBudgetRatio] = budgetFit(meta.Price, c.Budget)

	// index 2-3: request situation
	x[featHourOfDay] = hourOfDay(c.Hour)
	if c.Device == DeviceMobile {
		x[featIsMobile] = 1
	}

	// index 4-6: perceptual color
	if meta.Color != nil {
		x[featLightness] = finiteOrZero(meta.Color.Lightness)
		x[featChroma] = finiteOrZero(meta.Color.Chroma)
		x[featHue] = finiteOrZero(meta.Color.Hue)
	}

	// index 7-17: one-hot taxonomies
	if i := taxonomyIndex(MediumTaxonomy, meta.Medium); i >= 0 && i < mediumSlots {
		x[featMediumStart+i] = 1
	}
	if i := taxonomyIndex(GenreTaxonomy, meta.Genre); i >= 0 && i < genreSlots {
		x[featGenreStart+i] = 1
	}

	// index 18: stated taste
	if c.PrefersStyle(meta.Genre) {
		x[featStyleMatch] = 1
	}

	// index 19: engagement
	x[featEngagement] = (clamp01(meta.Popularity) + clamp01(meta.Recency)) / 2

	return x
}

func logPrice(price float64) float64 {
	if !(price > 0) || math.IsInf(price, 0) {
		return 0
	}
	return math.Min(1, math.Log1p(price)/math.Log1p(priceCeiling))
}

func budgetFit(price float64, budget *float64) float64 {
	if budget == nil || !(*budget > 0) || math.IsInf(*budget, 0) {
		return defaultBudgetFit
	}
	if !(price > 0) {
		return 0
	}
	return math.Min(1, price / *budget)
}

func hourOfDay(hour int) float64 {
	if hour < 0 {
		hour = 0
	} else if hour > 23 {
		hour = 23
	}
	return float64(hour) / 23.0
}

func taxonomyIndex(taxonomy []string, label string) int {
	label = normalizeLabel(label)
	if label == "" {
		return -1
	}
	for i, v := range taxonomy {
		if v == label {
			return i
		}
	}
	return -1
}

func normalizeLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.ReplaceAll(s, " ", "-")
}

func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ---- Color ----

// PerceptualColor is an OKLCH-style triple scaled to roughly [0, 1]:
// lightness/100, raw chroma, hue/360.
type PerceptualColor struct {
	Lightness float64 `json:"lightness"`
	Chroma    float64 `json:"chroma"`
	Hue       float64 `json:"hue"`
}

// matches "62.8% 0.258 29.23", with or without an oklch(...) wrapper
var perceptualColorPattern = regexp.MustCompile(`(\d+(?:\.\d+)?)%\s+(\d+(?:\.\d+)?)\s+(\d+(?:\.\d+)?)`)

// ParsePerceptualColor decodes a "lightness% chroma hue" string.
// ok is false when the string does not follow that pattern.
func ParsePerceptualColor(s string) (PerceptualColor, bool) {
	m := perceptualColorPattern.FindStringSubmatch(s)
	if m == nil {
		return PerceptualColor{}, false
	}
	l, err1 := strconv.ParseFloat(m[1], 64)
	c, err2 := strconv.ParseFloat(m[2], 64)
	h, err3 := strconv.ParseFloat(m[3], 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return PerceptualColor{}, false
	}
	return PerceptualColor{
		Lightness: l / 100,
		Chroma:    c,
		Hue:       h / 360,
	}, true
}
