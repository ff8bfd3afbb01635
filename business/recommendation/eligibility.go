package recommendation

import (
	"context"
	"fmt"
	"strings"

	"myArtMarket/domain"

	"github.com/google/cel-go/cel"
)

// EligibilityChecker decides if an artwork may be shown to a user at all
// (sold out, hidden, outside a campaign rule).
type EligibilityChecker interface {
	IsEligible(ctx context.Context, userID uint, item domain.Artwork) (bool, error)
}

// NoopEligibilityChecker allows everything.
type NoopEligibilityChecker struct{}

func (NoopEligibilityChecker) IsEligible(ctx context.Context, userID uint, item domain.Artwork) (bool, error) {
	return true, nil
}

// RuleEligibilityChecker filters items with a CEL expression over
// `item` (map of artwork fields) and `user_id` (int), e.g.
//
//	item.is_available && item.price > 0.0 && !("nsfw" in item.color_tags)
type RuleEligibilityChecker struct {
	expr string
	prg  cel.Program
}

// NewRuleEligibilityChecker compiles expr once. An empty rule allows everything.
func NewRuleEligibilityChecker(expr string) (*RuleEligibilityChecker, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = "true"
	}

	env, err := cel.NewEnv(
		cel.Variable("item", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("user_id", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile eligibility rule: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program eligibility rule: %w", err)
	}

	return &RuleEligibilityChecker{expr: expr, prg: prg}, nil
}

func (c *RuleEligibilityChecker) IsEligible(ctx context.Context, userID uint, item domain.Artwork) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("context error: %w", err)
	}

	out, _, err := c.prg.Eval(map[string]any{
		"item":    artworkFields(item),
		"user_id": int64(userID),
	})
	if err != nil {
		return false, fmt.Errorf("eval eligibility rule: %w", err)
	}

	ok, isBool := out.Value().(bool)
	if !isBool {
		return false, fmt.Errorf("eligibility rule must return bool, got %T", out.Value())
	}
	return ok, nil
}

func artworkFields(item domain.Artwork) map[string]any {
	tags := make([]string, 0, len(item.ColorTags))
	tags = append(tags, item.ColorTags...)
	return map[string]any{
		"id":            int64(item.ID),
		"title":         item.Title,
		"artist_id":     int64(item.ArtistID),
		"medium":        item.Medium,
		"style":         item.Style,
		"price":         item.Price,
		"color_tags":    tags,
		"view_count":    item.ViewCount,
		"like_count":    item.LikeCount,
		"save_count":    item.SaveCount,
		"creation_year": int64(item.CreationYear),
		"is_available":  item.IsAvailable,
	}
}
