// Package narrative calls an external text service for the short
// explanation shown next to each recommendation.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"myArtMarket/business/bandit"
	"myArtMarket/business/recommendation"
	"myArtMarket/domain"

	"github.com/pobyzaarif/goshortcute"
)

type Config struct {
	BaseURL           string
	BasicAuthUsername string
	BasicAuthPassword string
	Timeout           time.Duration
}

type HTTPNarrator struct {
	cfg    Config
	client *http.Client
}

var _ recommendation.Narrator = (*HTTPNarrator)(nil)

func NewHTTPNarrator(cfg Config) *HTTPNarrator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPNarrator{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type explainArtwork struct {
	ID               uint64   `json:"id"`
	Title            string   `json:"title"`
	Medium           string   `json:"medium"`
	Style            string   `json:"style"`
	Price            float64  `json:"price"`
	ColorDescription string   `json:"color_description,omitempty"`
	ColorTags        []string `json:"color_tags,omitempty"`
}

type explainUser struct {
	PreferredStyles []string `json:"preferred_styles,omitempty"`
	Budget          *float64 `json:"budget,omitempty"`
	Device          string   `json:"device"`
	Season          string   `json:"season"`
	RecentSearches  []string `json:"recent_searches,omitempty"`
}

type payloadExplain struct {
	Artwork explainArtwork `json:"artwork"`
	User    explainUser    `json:"user"`
}

type responseExplain struct {
	Explanation string `json:"explanation"`
}

func (n *HTTPNarrator) Explain(ctx context.Context, item domain.Artwork, c bandit.Context) (string, error) {
	url := strings.TrimRight(n.cfg.BaseURL, "/") + "/v1/explanations"

	styles := make([]string, 0, len(c.PreferredStyles))
	for s := range c.PreferredStyles {
		styles = append(styles, s)
	}

	payload := payloadExplain{
		Artwork: explainArtwork{
			ID:               item.ID,
			Title:            item.Title,
			Medium:           item.Medium,
			Style:            item.Style,
			Price:            item.Price,
			ColorDescription: item.ColorDescription,
			ColorTags:        []string(item.ColorTags),
		},
		User: explainUser{
			PreferredStyles: styles,
			Budget:          c.Budget,
			Device:          string(c.Device),
			Season:          string(c.Season),
			RecentSearches:  c.RecentSearches,
		},
	}

	payloadByte, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal json payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payloadByte))
	if err != nil {
		return "", err
	}

	req.Header.Add("Content-Type", "application/json")
	if n.cfg.BasicAuthUsername != "" {
		buildBasicAuth := goshortcute.StringtoBase64Encode(n.cfg.BasicAuthUsername + ":" + n.cfg.BasicAuthPassword)
		req.Header.Add("Authorization", "Basic "+buildBasicAuth)
	}

	res, err := n.client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return "", fmt.Errorf("narrative service return negative response %v: %s", res.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var out responseExplain
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode narrative response: %w", err)
	}

	return strings.TrimSpace(out.Explanation), nil
}
