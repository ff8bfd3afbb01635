package recommendation

import (
	"context"
	"fmt"
	"strings"

	"myArtMarket/business/bandit"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"

	"golang.org/x/sync/errgroup"
)

// Narrator writes the short "why this piece" text shown with a pick.
// Implementations may be slow or fail; callers always have a fallback.
type Narrator interface {
	Explain(ctx context.Context, item domain.Artwork, c bandit.Context) (string, error)
}

// explainAll asks the narrator about every pick concurrently and waits for
// all of them. Each call gets its own timeout; a failed, slow or empty
// answer is replaced by the template text for that pick only.
func (s *Service) explainAll(ctx context.Context, picks []pick, c bandit.Context) []string {
	out := make([]string, len(picks))
	if len(picks) == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.cfg.NarrativeConcurrency > 0 {
		g.SetLimit(s.cfg.NarrativeConcurrency)
	}

	for i, p := range picks {
		g.Go(func() error {
			out[i] = s.explainOne(gctx, p, c)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (s *Service) explainOne(ctx context.Context, p pick, c bandit.Context) string {
	fallback := fallbackExplanation(p.item, p.ranked.Reason)

	timeout := s.cfg.NarrativeTimeout
	if timeout <= 0 {
		timeout = defaultNarrativeTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		text string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		text, err := s.narrator.Explain(callCtx, p.item, c)
		ch <- result{text: text, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			NarrativeFallbacksTotal.WithLabelValues("error").Inc()
			logger.Warn("bandit_narrative_failed",
				"trace_id", bandit.TraceIDFromContext(ctx),
				"artwork_id", p.item.ID,
				"error", r.err,
			)
			return fallback
		}
		if strings.TrimSpace(r.text) == "" {
			NarrativeFallbacksTotal.WithLabelValues("empty").Inc()
			return fallback
		}
		return r.text
	case <-callCtx.Done():
		NarrativeFallbacksTotal.WithLabelValues("timeout").Inc()
		logger.Warn("bandit_narrative_timeout",
			"trace_id", bandit.TraceIDFromContext(ctx),
			"artwork_id", p.item.ID,
		)
		return fallback
	}
}

// TemplateNarrator builds explanations locally without any remote call.
type TemplateNarrator struct{}

func (TemplateNarrator) Explain(_ context.Context, item domain.Artwork, c bandit.Context) (string, error) {
	subject := withArticle(describe(item))
	subject = strings.ToUpper(subject[:1]) + subject[1:]
	if c.PrefersStyle(item.Style) {
		return fmt.Sprintf("%s that fits your taste for %s work.", subject, strings.ToLower(strings.TrimSpace(item.Style))), nil
	}
	if c.Budget != nil && item.Price > 0 && item.Price <= *c.Budget {
		return fmt.Sprintf("%s that sits comfortably within your budget.", subject), nil
	}
	return fmt.Sprintf("%s we think is worth a closer look.", subject), nil
}

func fallbackExplanation(item domain.Artwork, reason bandit.Reason) string {
	subject := withArticle(describe(item))
	if reason == bandit.ReasonExplore {
		return fmt.Sprintf("Something a little different: %s outside your usual picks.", subject)
	}
	return fmt.Sprintf("Picked for you: %s similar to work you have enjoyed.", subject)
}

func describe(item domain.Artwork) string {
	parts := make([]string, 0, 2)
	if s := strings.TrimSpace(item.Style); s != "" {
		parts = append(parts, strings.ToLower(s))
	}
	if m := strings.TrimSpace(item.Medium); m != "" {
		parts = append(parts, strings.ToLower(m))
	} else {
		parts = append(parts, "piece")
	}
	return strings.Join(parts, " ")
}

func withArticle(noun string) string {
	if strings.ContainsRune("aeiou", rune(noun[0])) {
		return "an " + noun
	}
	return "a " + noun
}
