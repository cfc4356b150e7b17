package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pageza/alchemorsel-cocktails/backend/internal/types"
)

// TimestampLayout is the filename timestamp, second precision
const TimestampLayout = "20060102_150405"

// RecipeStore persists validated recipes
type RecipeStore interface {
	Save(ctx context.Context, recipe *types.Recipe) (*types.StoredRecipe, error)
}

// Mirror receives a copy of every stored recipe file
type Mirror interface {
	Put(ctx context.Context, filename string, body []byte) error
}

// FileStore writes one pretty-printed JSON file per recipe. Two recipes with
// the same name saved within the same second share a filename; the later
// write wins.
type FileStore struct {
	dir    string
	now    func() time.Time
	mirror Mirror
	logger *slog.Logger
}

// FileStoreOption customizes a FileStore
type FileStoreOption func(*FileStore)

// WithClock replaces time.Now for filename timestamps
func WithClock(now func() time.Time) FileStoreOption {
	return func(s *FileStore) { s.now = now }
}

// WithMirror copies each written file to m
func WithMirror(m Mirror) FileStoreOption {
	return func(s *FileStore) { s.mirror = m }
}

// NewFileStore creates a store rooted at dir
func NewFileStore(dir string, logger *slog.Logger, opts ...FileStoreOption) *FileStore {
	s := &FileStore{dir: dir, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RecipeFilename derives <lowercased_name>_<YYYYMMDD_HHMMSS>.json
func RecipeFilename(name string, at time.Time) string {
	sanitized := strings.ToLower(name)
	sanitized = strings.ReplaceAll(sanitized, " ", "_")
	// keep the file inside the output directory
	sanitized = strings.NewReplacer("/", "_", `\`, "_").Replace(sanitized)
	return fmt.Sprintf("%s_%s.json", sanitized, at.Format(TimestampLayout))
}

// Save writes the recipe. A failed write leaves no file behind.
func (s *FileStore) Save(ctx context.Context, recipe *types.Recipe) (*types.StoredRecipe, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(recipe, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal recipe: %w", err)
	}
	data = append(data, '\n')

	filename := RecipeFilename(recipe.Name, s.now())
	path := filepath.Join(s.dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("failed to write %s: %w", filename, err)
	}

	s.logger.Info("cocktail recipe saved", "file", filename)

	if s.mirror != nil {
		if err := s.mirror.Put(ctx, filename, data); err != nil {
			mirrorFailures.Inc()
			s.logger.Warn("failed to mirror recipe", "file", filename, "error", err)
		}
	}

	return &types.StoredRecipe{
		Recipe:   *recipe,
		Filename: filename,
		FilePath: path,
	}, nil
}
