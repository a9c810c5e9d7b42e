package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"time-tracker/internal/stats"
)

//go:embed categories.yaml
var defaultCatalog []byte

// CategoryTemplate is one category created for every new account.
type CategoryTemplate struct {
	Name  string `yaml:"name"`
	Color string `yaml:"color"`
	Icon  string `yaml:"icon"`
}

// Catalog is the category configuration: the default set created at
// registration and the name lists the statistics split relies on.
type Catalog struct {
	Defaults      []CategoryTemplate `yaml:"defaults"`
	Productive    []string           `yaml:"productive"`
	Unproductive  []string           `yaml:"unproductive"`
	Uncategorized stats.Display      `yaml:"uncategorized"`
}

// Classifier returns the statistics classifier described by the catalog.
func (c Catalog) Classifier() stats.Classifier {
	return stats.Classifier{
		Productive:    c.Productive,
		Unproductive:  c.Unproductive,
		Uncategorized: c.Uncategorized,
	}
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("catalog: %w", err)
	}
	seen := make(map[string]bool, len(c.Defaults))
	for _, d := range c.Defaults {
		if d.Name == "" {
			return c, errors.New("catalog: default category without a name")
		}
		if seen[d.Name] {
			return c, fmt.Errorf("catalog: duplicate default category %q", d.Name)
		}
		seen[d.Name] = true
	}
	if c.Uncategorized.Name == "" {
		c.Uncategorized.Name = "Uncategorized"
	}
	return c, nil
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// LoadCatalog reads path, or returns the embedded catalog when path is empty.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return ParseCatalog(b)
}

// CatalogHolder serves the current catalog and swaps it on reload.
type CatalogHolder struct {
	mu   sync.RWMutex
	cur  Catalog
	path string
	log  *slog.Logger
}

func NewCatalogHolder(path string, log *slog.Logger) (*CatalogHolder, error) {
	c, err := LoadCatalog(path)
	if err != nil {
		return nil, err
	}
	return &CatalogHolder{cur: c, path: path, log: log}, nil
}

func (h *CatalogHolder) Get() Catalog {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.cur
}

// Reload re-reads the catalog file. On error the previous catalog stays.
func (h *CatalogHolder) Reload() error {
	c, err := LoadCatalog(h.path)
	if err != nil {
		return err
	}
	h.mu.Lock()
	h.cur = c
	h.mu.Unlock()
	return nil
}

// Watch reloads the catalog whenever its file changes, until ctx is done.
// It returns immediately when the embedded catalog is in use.
func (h *CatalogHolder) Watch(ctx context.Context) error {
	if h.path == "" {
		return nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	// Watch the directory: editors often replace the file instead of writing it.
	if err := w.Add(filepath.Dir(h.path)); err != nil {
		return err
	}
	target := filepath.Clean(h.path)
	h.log.Info("watching category catalog", slog.String("path", target))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := h.Reload(); err != nil {
				h.log.Warn("category catalog reload failed", slog.String("error", err.Error()))
				continue
			}
			h.log.Info("category catalog reloaded", slog.String("path", target))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			h.log.Warn("category catalog watcher error", slog.String("error", err.Error()))
		}
	}
}
