// Package memory keeps the dataset catalogue in process memory. It is used
// when no DATABASE_URL is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/RMahshie/farfield/internal/repository"
	"github.com/RMahshie/farfield/pkg/models"
)

// DatasetRepository implements repository.DatasetRepository in memory.
type DatasetRepository struct {
	mu      sync.RWMutex
	records map[string]*models.DatasetRecord
}

// NewDatasetRepository creates an empty in-memory catalogue
func NewDatasetRepository() *DatasetRepository {
	return &DatasetRepository{records: make(map[string]*models.DatasetRecord)}
}

var _ repository.DatasetRepository = (*DatasetRepository)(nil)

func (r *DatasetRepository) Create(_ context.Context, record *models.DatasetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[record.ID] = clone(record)
	return nil
}

func (r *DatasetRepository) GetByID(_ context.Context, id uuid.UUID) (*models.DatasetRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.records[id.String()]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(record), nil
}

// List returns records newest first, ties broken by ID.
func (r *DatasetRepository) List(_ context.Context, limit, offset int) ([]*models.DatasetRecord, error) {
	r.mu.RLock()
	all := make([]*models.DatasetRecord, 0, len(r.records))
	for _, record := range r.records {
		all = append(all, clone(record))
	}
	r.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].ID < all[j].ID
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *DatasetRepository) Update(_ context.Context, record *models.DatasetRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[record.ID]
	if !ok {
		return repository.ErrNotFound
	}
	updated := clone(record)
	updated.Paths = existing.Paths
	updated.CreatedAt = existing.CreatedAt
	r.records[record.ID] = updated
	return nil
}

func (r *DatasetRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.records[id.String()]; !ok {
		return repository.ErrNotFound
	}
	delete(r.records, id.String())
	return nil
}

func clone(r *models.DatasetRecord) *models.DatasetRecord {
	c := *r
	c.Paths = append([]string(nil), r.Paths...)
	c.Frequencies = append([]float64(nil), r.Frequencies...)
	c.Thetas = append([]float64(nil), r.Thetas...)
	c.Phis = append([]float64(nil), r.Phis...)
	c.Columns = append([]string(nil), r.Columns...)
	return &c
}
