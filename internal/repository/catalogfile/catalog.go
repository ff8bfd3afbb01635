// Package catalogfile serves the candidate pool from a YAML file and
// reloads it when the file changes. Useful for demos, tests and curated
// campaigns that do not live in the database.
//
//	artworks:
//	  - id: 1
//	    title: Quiet Harbor
//	    medium: painting
//	    style: landscape
//	    price: 1200
//	    color_description: "oklch(62% 0.12 210)"
//	    is_available: true
package catalogfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"myArtMarket/business/recommendation"
	"myArtMarket/domain"
	"myArtMarket/pkg/logger"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

type document struct {
	Artworks []domain.Artwork `yaml:"artworks"`
}

// Catalog is an in-memory catalog backed by a YAML file.
type Catalog struct {
	path string

	mu    sync.RWMutex
	items []domain.Artwork
	byID  map[uint64]int
}

var _ recommendation.CatalogSource = (*Catalog)(nil)

// Load reads the file once. Call Watch to keep it fresh.
func Load(path string) (*Catalog, error) {
	c := &Catalog{path: path}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes a catalog document.
func Parse(raw []byte) ([]domain.Artwork, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[uint64]struct{}, len(doc.Artworks))
	for _, a := range doc.Artworks {
		if a.ID == 0 {
			return nil, fmt.Errorf("parse catalog: artwork %q has no id", a.Title)
		}
		if _, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("parse catalog: duplicate artwork id %d", a.ID)
		}
		seen[a.ID] = struct{}{}
	}
	return doc.Artworks, nil
}

// Reload re-reads the file. On error the previous contents stay in place.
func (c *Catalog) Reload() error {
	raw, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}
	items, err := Parse(raw)
	if err != nil {
		return err
	}

	byID := make(map[uint64]int, len(items))
	for i, a := range items {
		byID[a.ID] = i
	}

	c.mu.Lock()
	c.items = items
	c.byID = byID
	c.mu.Unlock()
	return nil
}

// Artworks returns a copy of every artwork, available or not.
func (c *Catalog) Artworks() []domain.Artwork {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Artwork, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) FetchCandidatePool(ctx context.Context) ([]domain.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Artwork, 0, len(c.items))
	for _, a := range c.items {
		if a.IsAvailable {
			out = append(out, a)
		}
	}
	return out, nil
}

func (c *Catalog) FindArtwork(ctx context.Context, id uint64) (domain.Artwork, error) {
	if err := ctx.Err(); err != nil {
		return domain.Artwork{}, fmt.Errorf("context error: %w", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return domain.Artwork{}, domain.ErrArtworkNotFound
	}
	return c.items[i], nil
}

// Watch reloads the catalog whenever the file is written or replaced, until
// ctx is done. The parent directory is watched because editors and deploy
// tools usually swap the file with a rename.
func (c *Catalog) Watch(ctx context.Context, onReload func(error)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}

	abs, err := filepath.Abs(c.path)
	if err != nil {
		fw.Close()
		return err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer fw.Close()
		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				err := c.Reload()
				if err != nil {
					logger.Warn("catalog_reload_failed", "path", c.path, "error", err)
				} else {
					logger.Info("catalog_reloaded", "path", c.path, "artworks", len(c.Artworks()))
				}
				if onReload != nil {
					onReload(err)
				}

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog_watch_error", "path", c.path, "error", err)

			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}
