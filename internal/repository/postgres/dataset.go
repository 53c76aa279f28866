package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/RMahshie/farfield/internal/repository"
	"github.com/RMahshie/farfield/pkg/models"
)

// PostgresDatasetRepository implements DatasetRepository for PostgreSQL
type PostgresDatasetRepository struct {
	db *sql.DB
}

// NewPostgresDatasetRepository creates a new PostgreSQL dataset repository
func NewPostgresDatasetRepository(db *sql.DB) repository.DatasetRepository {
	return &PostgresDatasetRepository{db: db}
}

const datasetColumns = `id, paths, frequencies, thetas, phis, columns, duplicate_policy, created_at, updated_at`

// Create inserts a new dataset record
func (r *PostgresDatasetRepository) Create(ctx context.Context, record *models.DatasetRecord) error {
	query := `
		INSERT INTO datasets (` + datasetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		pq.Array(record.Paths),
		pq.Array(record.Frequencies),
		pq.Array(record.Thetas),
		pq.Array(record.Phis),
		pq.Array(record.Columns),
		record.DuplicatePolicy,
		record.CreatedAt,
		record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dataset %s: %w", record.ID, err)
	}
	return nil
}

// GetByID retrieves a dataset record by ID
func (r *PostgresDatasetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error) {
	query := `
		SELECT ` + datasetColumns + `
		FROM datasets
		WHERE id = $1`

	record, err := scanDataset(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return record, nil
}

// List returns dataset records, newest first. A limit of zero or less
// returns every record.
func (r *PostgresDatasetRepository) List(ctx context.Context, limit, offset int) ([]*models.DatasetRecord, error) {
	query := `
		SELECT ` + datasetColumns + `
		FROM datasets
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	// LIMIT NULL is no limit
	rowLimit := sql.NullInt64{Int64: int64(limit), Valid: limit > 0}
	rows, err := r.db.QueryContext(ctx, query, rowLimit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.DatasetRecord
	for rows.Next() {
		record, err := scanDataset(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// Update replaces the coordinate summary after a re-parse
func (r *PostgresDatasetRepository) Update(ctx context.Context, record *models.DatasetRecord) error {
	query := `
		UPDATE datasets
		SET frequencies = $1, thetas = $2, phis = $3, columns = $4, duplicate_policy = $5, updated_at = $6
		WHERE id = $7`

	res, err := r.db.ExecContext(ctx, query,
		pq.Array(record.Frequencies),
		pq.Array(record.Thetas),
		pq.Array(record.Phis),
		pq.Array(record.Columns),
		record.DuplicatePolicy,
		record.UpdatedAt,
		record.ID)
	if err != nil {
		return fmt.Errorf("failed to update dataset %s: %w", record.ID, err)
	}
	return expectOneRow(res)
}

// Delete removes a dataset record
func (r *PostgresDatasetRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset %s: %w", id, err)
	}
	return expectOneRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDataset(row rowScanner) (*models.DatasetRecord, error) {
	var record models.DatasetRecord
	var paths, columns pq.StringArray
	var frequencies, thetas, phis pq.Float64Array

	err := row.Scan(
		&record.ID,
		&paths,
		&frequencies,
		&thetas,
		&phis,
		&columns,
		&record.DuplicatePolicy,
		&record.CreatedAt,
		&record.UpdatedAt)
	if err != nil {
		return nil, err
	}

	record.Paths = []string(paths)
	record.Frequencies = []float64(frequencies)
	record.Thetas = []float64(thetas)
	record.Phis = []float64(phis)
	record.Columns = []string(columns)
	return &record, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
