package bandit

import (
	"math"
	"time"

	"myArtMarket/domain"
)

const (
	// weighted engagement at which popularity saturates
	popularityCeiling = 10_000.0
	// works older than this get zero recency
	recencyHorizonYears = 20.0
)

// Arm is one recommendable artwork as the bandit sees it.
type Arm struct {
	ID   uint64
	Meta ArmMetadata
}

type ArmMetadata struct {
	Medium     string
	Genre      string
	Price      float64
	ColorTags  []string
	Color      *PerceptualColor
	ArtistID   uint64
	Popularity float64 // [0, 1]
	Recency    float64 // [0, 1]
}

// NewArm derives an arm from a catalog artwork. It is deterministic for a
// given artwork and reference time.
func NewArm(item domain.Artwork, now time.Time) Arm {
	meta := ArmMetadata{
		Medium:     item.Medium,
		Genre:      item.Style,
		Price:      item.Price,
		ColorTags:  append([]string(nil), item.ColorTags...),
		ArtistID:   item.ArtistID,
		Popularity: popularity(item.ViewCount, item.LikeCount, item.SaveCount),
		Recency:    recency(item.CreationYear, now),
	}
	if c, ok := ParsePerceptualColor(item.ColorDescription); ok {
		meta.Color = &c
	}
	return Arm{ID: item.ID, Meta: meta}
}

func popularity(views, likes, saves int64) float64 {
	engagement := float64(max(views, 0)) + 3*float64(max(likes, 0)) + 5*float64(max(saves, 0))
	if engagement <= 0 {
		return 0
	}
	return math.Min(1, math.Log1p(engagement)/math.Log1p(popularityCeiling))
}

func recency(year int, now time.Time) float64 {
	if year <= 0 {
		return 0
	}
	age := float64(now.Year() - year)
	if age <= 0 {
		return 1
	}
	return math.Max(0, 1-age/recencyHorizonYears)
}
