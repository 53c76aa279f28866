package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/RMahshie/farfield/pkg/models"
)

// ErrNotFound is returned when no dataset has the requested ID.
var ErrNotFound = errors.New("dataset not found")

// DatasetRepository defines the interface for the dataset catalogue
type DatasetRepository interface {
	Create(ctx context.Context, record *models.DatasetRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error)
	// List returns records newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit, offset int) ([]*models.DatasetRecord, error)
	Update(ctx context.Context, record *models.DatasetRecord) error
	Delete(ctx context.Context, id uuid.UUID) error
}
