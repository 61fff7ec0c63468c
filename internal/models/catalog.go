package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"log/slog"

	"scribe/internal/fileutil"
	"scribe/internal/language"
	"scribe/internal/logging"
)

const (
	catalogFileName       = "model-list.json"
	defaultCatalogMaxAge  = 24 * time.Hour
	defaultCatalogTimeout = 30 * time.Second
	modelTypeSmall        = "small"
)

// CatalogPath returns the on-disk catalog location for a cache directory.
func CatalogPath(cacheDir string) string {
	return filepath.Join(cacheDir, catalogFileName)
}

// Entry represents a single model record from the upstream catalog.
type Entry struct {
	Name     string `json:"name"`
	Lang     string `json:"lang"`
	LangText string `json:"lang_text"`
	MD5      string `json:"md5"`
	Obsolete string `json:"obsolete"`
	Size     int64  `json:"size"`
	SizeText string `json:"size_text"`
	Type     string `json:"type"`
	URL      string `json:"url"`
	Version  string `json:"version"`
}

// IsObsolete reports whether the catalog marks this model as superseded.
// The upstream list encodes the flag as the string "true".
func (e Entry) IsObsolete() bool {
	return strings.EqualFold(strings.TrimSpace(e.Obsolete), "true")
}

// LanguageOption is one selectable language derived from the catalog.
type LanguageOption struct {
	Code    string
	Display string
	Models  int
}

// Catalog mirrors the upstream model list into the cache directory and
// serves queries from it. The on-disk copy is refreshed when older than
// maxAge; refresh failures fall back to the cached copy when one exists.
type Catalog struct {
	path    string
	url     string
	maxAge  time.Duration
	client  *http.Client
	logger  *slog.Logger
	mu      sync.RWMutex
	entries []Entry
	modTime time.Time
}

// NewCatalog creates a catalog cached at path. An empty URL or non-positive
// ages fall back to upstream defaults.
func NewCatalog(path, url string, maxAge, timeout time.Duration, logger *slog.Logger) *Catalog {
	if strings.TrimSpace(url) == "" {
		url = "https://alphacephei.com/vosk/models/model-list.json"
	}
	if maxAge <= 0 {
		maxAge = defaultCatalogMaxAge
	}
	if timeout <= 0 {
		timeout = defaultCatalogTimeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Catalog{
		path:   strings.TrimSpace(path),
		url:    strings.TrimSpace(url),
		maxAge: maxAge,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Entries returns every catalog record in upstream order.
func (c *Catalog) Entries(ctx context.Context) ([]Entry, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out, nil
}

// FindByName returns the catalog record with the given model name.
func (c *Catalog) FindByName(ctx context.Context, name string) (Entry, bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Entry{}, false, nil
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return Entry{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.entries {
		if entry.Name == name {
			return entry, true, nil
		}
	}
	return Entry{}, false, nil
}

// FindByLanguage returns the preferred model for a language code: the first
// non-obsolete small model, falling back to the first non-obsolete model of
// any type. The code is matched against the catalog's lang field.
func (c *Catalog) FindByLanguage(ctx context.Context, code string) (Entry, bool, error) {
	code = language.Normalize(code)
	if code == "" {
		return Entry{}, false, nil
	}
	if err := c.ensureLoaded(ctx); err != nil {
		return Entry{}, false, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	var fallback *Entry
	for i := range c.entries {
		entry := c.entries[i]
		if entry.IsObsolete() || !strings.EqualFold(entry.Lang, code) {
			continue
		}
		if strings.EqualFold(entry.Type, modelTypeSmall) {
			return entry, true, nil
		}
		if fallback == nil {
			fallback = &entry
		}
	}
	if fallback != nil {
		return *fallback, true, nil
	}
	return Entry{}, false, nil
}

// Languages summarizes the catalog by language, sorted by code. Obsolete
// models are not counted.
func (c *Catalog) Languages(ctx context.Context) ([]LanguageOption, error) {
	if err := c.ensureLoaded(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	counts := make(map[string]int)
	display := make(map[string]string)
	for _, entry := range c.entries {
		if entry.IsObsolete() {
			continue
		}
		code := strings.ToLower(strings.TrimSpace(entry.Lang))
		if code == "" {
			continue
		}
		counts[code]++
		if display[code] == "" {
			display[code] = strings.TrimSpace(entry.LangText)
		}
	}

	options := make([]LanguageOption, 0, len(counts))
	for code, count := range counts {
		name := display[code]
		if name == "" {
			name = language.DisplayName(code)
		}
		options = append(options, LanguageOption{Code: code, Display: name, Models: count})
	}
	sort.Slice(options, func(i, j int) bool { return options[i].Code < options[j].Code })
	return options, nil
}

func (c *Catalog) ensureLoaded(ctx context.Context) error {
	info, statErr := os.Stat(c.path)
	if statErr != nil {
		if !errors.Is(statErr, fs.ErrNotExist) {
			return fmt.Errorf("stat model catalog: %w", statErr)
		}
		if err := c.refresh(ctx); err != nil {
			return fmt.Errorf("download model catalog: %w", err)
		}
		return nil
	}

	if c.maxAge > 0 && time.Since(info.ModTime()) > c.maxAge {
		err := c.refresh(ctx)
		if err == nil {
			return nil
		}
		c.logger.Warn("model catalog refresh failed; using cached copy",
			logging.String("path", c.path),
			logging.Error(err))
	}

	c.mu.RLock()
	loaded := c.entries != nil && c.modTime.Equal(info.ModTime())
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.loadFromDisk(info)
}

func (c *Catalog) loadFromDisk(info fs.FileInfo) error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("read model catalog: %w", err)
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse model catalog: %w", err)
	}

	c.mu.Lock()
	c.entries = entries
	c.modTime = info.ModTime()
	c.mu.Unlock()
	return nil
}

func (c *Catalog) refresh(ctx context.Context) error {
	c.logger.Debug("refreshing model catalog", logging.String("url", c.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch catalog: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read catalog response: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("parse catalog response: %w", err)
	}

	if err := fileutil.WriteFileAtomic(c.path, data, 0o644); err != nil {
		return fmt.Errorf("cache catalog: %w", err)
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return fmt.Errorf("stat cached catalog: %w", err)
	}

	c.mu.Lock()
	c.entries = entries
	c.modTime = info.ModTime()
	c.mu.Unlock()

	c.logger.Debug("model catalog refreshed",
		logging.String("path", c.path),
		logging.Int("models", len(entries)))
	return nil
}
