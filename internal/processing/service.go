package processing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/farfield/internal/repository"
	"github.com/RMahshie/farfield/internal/storage"
	"github.com/RMahshie/farfield/pkg/farfield"
	"github.com/RMahshie/farfield/pkg/ffe"
	"github.com/RMahshie/farfield/pkg/models"
)

// ErrInvalidPath is returned for input paths outside the data directory or
// naming an unusable object key.
var ErrInvalidPath = errors.New("invalid dataset path")

// DatasetService loads FFE datasets through the parse cache and keeps a
// catalogue of what has been loaded.
type DatasetService interface {
	Load(ctx context.Context, paths []string) (*models.DatasetRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, *farfield.Dataset, error)
	List(ctx context.Context, limit, offset int) ([]*models.DatasetRecord, error)
	Refresh(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error)
	Delete(ctx context.Context, id uuid.UUID) error
	PurgeCache() int
}

type datasetService struct {
	cache      *ffe.Cache
	repository repository.DatasetRepository
	dataDir    string
	policy     ffe.DuplicatePolicy
}

// NewDatasetService creates a service reading local paths relative to
// dataDir. policy is recorded on each catalogued dataset and must match the
// policy the cache's parser was built with.
func NewDatasetService(cache *ffe.Cache, repo repository.DatasetRepository, dataDir string, policy ffe.DuplicatePolicy) DatasetService {
	return &datasetService{
		cache:      cache,
		repository: repo,
		dataDir:    dataDir,
		policy:     policy,
	}
}

// Load parses paths in the given order and catalogues the result.
func (s *datasetService) Load(ctx context.Context, paths []string) (*models.DatasetRecord, error) {
	resolved, err := s.resolve(paths)
	if err != nil {
		return nil, err
	}

	ds, err := s.cache.Parse(ctx, resolved...)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	record := &models.DatasetRecord{
		ID:        uuid.New().String(),
		Paths:     append([]string(nil), paths...),
		CreatedAt: now,
	}
	s.summarise(record, ds, now)

	if err := s.repository.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to catalogue dataset: %w", err)
	}

	shape := record.Shape()
	log.Info().
		Str("datasetID", record.ID).
		Strs("paths", paths).
		Ints("shape", shape[:]).
		Msg("Dataset loaded")
	return record, nil
}

// Get returns the catalogue record and the parsed dataset. The dataset comes
// from the cache and is re-parsed if it has been evicted.
func (s *datasetService) Get(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, *farfield.Dataset, error) {
	record, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	resolved, err := s.resolve(record.Paths)
	if err != nil {
		return nil, nil, err
	}
	ds, err := s.cache.Parse(ctx, resolved...)
	if err != nil {
		return nil, nil, err
	}
	return record, ds, nil
}

func (s *datasetService) List(ctx context.Context, limit, offset int) ([]*models.DatasetRecord, error) {
	return s.repository.List(ctx, limit, offset)
}

// Refresh re-reads the dataset's files, bypassing the cache, and updates the
// catalogue summary.
func (s *datasetService) Refresh(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error) {
	record, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resolved, err := s.resolve(record.Paths)
	if err != nil {
		return nil, err
	}
	ds, err := s.cache.Refresh(ctx, resolved...)
	if err != nil {
		return nil, err
	}

	s.summarise(record, ds, time.Now().UTC())
	if err := s.repository.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update dataset: %w", err)
	}

	log.Info().Str("datasetID", record.ID).Msg("Dataset refreshed")
	return record, nil
}

// Delete removes the dataset from the catalogue and drops its cache entry.
func (s *datasetService) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.repository.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repository.Delete(ctx, id); err != nil {
		return err
	}
	if resolved, err := s.resolve(record.Paths); err == nil {
		s.cache.Invalidate(resolved...)
	}

	log.Info().Str("datasetID", record.ID).Msg("Dataset deleted")
	return nil
}

// PurgeCache drops every parsed dataset and returns how many were held.
func (s *datasetService) PurgeCache() int {
	n := s.cache.Len()
	s.cache.Purge()
	log.Info().Int("entries", n).Msg("Parse cache purged")
	return n
}

func (s *datasetService) summarise(record *models.DatasetRecord, ds *farfield.Dataset, at time.Time) {
	record.Frequencies = ds.Frequencies()
	record.Thetas = ds.Thetas()
	record.Phis = ds.Phis()
	record.Columns = ds.Columns()
	record.DuplicatePolicy = s.policy.String()
	record.UpdatedAt = at
}

// resolve maps user paths to parser paths. Object keys keep their scheme;
// local paths must be relative and stay inside the data directory.
func (s *datasetService) resolve(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: no paths given", ErrInvalidPath)
	}

	out := make([]string, len(paths))
	for i, p := range paths {
		if strings.HasPrefix(p, ffe.ObjectScheme) {
			if err := storage.ValidateKey(strings.TrimPrefix(p, ffe.ObjectScheme)); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidPath, err)
			}
			out[i] = p
			continue
		}
		if !filepath.IsLocal(p) {
			return nil, fmt.Errorf("%w: %q must be relative to the data directory", ErrInvalidPath, p)
		}
		out[i] = filepath.Join(s.dataDir, p)
	}
	return out, nil
}
