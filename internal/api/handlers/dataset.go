package handlers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/farfield/internal/processing"
	"github.com/RMahshie/farfield/internal/repository"
	"github.com/RMahshie/farfield/internal/storage"
	"github.com/RMahshie/farfield/pkg/farfield"
	"github.com/RMahshie/farfield/pkg/ffe"
	"github.com/RMahshie/farfield/pkg/models"
)

const uploadExpiry = 15 * time.Minute

// DatasetHandler handles dataset-related HTTP requests
type DatasetHandler struct {
	service   processing.DatasetService
	s3Service storage.S3Service
}

// NewDatasetHandler creates a new dataset handler. s3Service may be nil when
// no bucket is configured; uploads are then unavailable.
func NewDatasetHandler(service processing.DatasetService, s3Service storage.S3Service) *DatasetHandler {
	return &DatasetHandler{
		service:   service,
		s3Service: s3Service,
	}
}

// CreateDataset parses the requested files and catalogues the dataset
func (h *DatasetHandler) CreateDataset(ctx context.Context, req *models.CreateDatasetRequest) (*models.DatasetResponse, error) {
	log.Info().Strs("paths", req.Body.Paths).Msg("Loading dataset")

	record, err := h.service.Load(ctx, req.Body.Paths)
	if err != nil {
		return nil, datasetError("Failed to load dataset", err)
	}
	return &models.DatasetResponse{Body: models.NewDatasetSummary(record)}, nil
}

// ListDatasets returns catalogued datasets, newest first
func (h *DatasetHandler) ListDatasets(ctx context.Context, req *models.ListDatasetsRequest) (*models.ListDatasetsResponse, error) {
	records, err := h.service.List(ctx, req.Limit, req.Offset)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list datasets", err)
	}

	resp := &models.ListDatasetsResponse{}
	resp.Body.Datasets = make([]models.DatasetSummary, 0, len(records))
	for _, r := range records {
		resp.Body.Datasets = append(resp.Body.Datasets, models.NewDatasetSummary(r))
	}
	return resp, nil
}

// GetDataset returns one dataset summary
func (h *DatasetHandler) GetDataset(ctx context.Context, req *models.DatasetRequest) (*models.DatasetResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	record, _, err := h.service.Get(ctx, id)
	if err != nil {
		return nil, datasetError("Failed to get dataset", err)
	}
	return &models.DatasetResponse{Body: models.NewDatasetSummary(record)}, nil
}

// GetColumn returns one column's (theta, phi) grid at a frequency
func (h *DatasetHandler) GetColumn(ctx context.Context, req *models.GetColumnRequest) (*models.ColumnResponse, error) {
	ds, f, err := h.load(ctx, req.ID, req.Frequency)
	if err != nil {
		return nil, err
	}

	arr, err := ds.Column(req.Name)
	if err != nil {
		return nil, huma.Error404NotFound(fmt.Sprintf("Column %q not found", req.Name), err)
	}

	return &models.ColumnResponse{Body: models.ColumnResponseBody{
		ID:        req.ID,
		Column:    req.Name,
		Frequency: req.Frequency,
		Thetas:    ds.Thetas(),
		Phis:      ds.Phis(),
		Values:    arr.Slice(f),
	}}, nil
}

// GetField returns the complex Etheta and Ephi grids at a frequency
func (h *DatasetHandler) GetField(ctx context.Context, req *models.FieldRequest) (*models.FieldResponse, error) {
	ds, f, err := h.load(ctx, req.ID, req.Frequency)
	if err != nil {
		return nil, err
	}

	field, err := ds.ElectricField()
	if err != nil {
		return nil, datasetError("Electric field unavailable", err)
	}

	return &models.FieldResponse{Body: models.FieldResponseBody{
		ID:        req.ID,
		Frequency: req.Frequency,
		Thetas:    ds.Thetas(),
		Phis:      ds.Phis(),
		Etheta:    models.NewComplexGrid(field.Etheta.Slice(f)),
		Ephi:      models.NewComplexGrid(field.Ephi.Slice(f)),
	}}, nil
}

// GetCartesian returns the complex Ex, Ey and Ez grids at a frequency
func (h *DatasetHandler) GetCartesian(ctx context.Context, req *models.FieldRequest) (*models.CartesianResponse, error) {
	ds, f, err := h.load(ctx, req.ID, req.Frequency)
	if err != nil {
		return nil, err
	}

	cart, err := ds.ToCartesian()
	if err != nil {
		return nil, datasetError("Cartesian field unavailable", err)
	}

	return &models.CartesianResponse{Body: models.CartesianResponseBody{
		ID:        req.ID,
		Frequency: req.Frequency,
		Thetas:    ds.Thetas(),
		Phis:      ds.Phis(),
		Ex:        models.NewComplexGrid(cart.Ex.Slice(f)),
		Ey:        models.NewComplexGrid(cart.Ey.Slice(f)),
		Ez:        models.NewComplexGrid(cart.Ez.Slice(f)),
	}}, nil
}

// RefreshDataset re-parses a dataset's files, bypassing the cache
func (h *DatasetHandler) RefreshDataset(ctx context.Context, req *models.DatasetRequest) (*models.DatasetResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	record, err := h.service.Refresh(ctx, id)
	if err != nil {
		return nil, datasetError("Failed to refresh dataset", err)
	}
	return &models.DatasetResponse{Body: models.NewDatasetSummary(record)}, nil
}

// DeleteDataset removes a dataset from the catalogue and the cache
func (h *DatasetHandler) DeleteDataset(ctx context.Context, req *models.DatasetRequest) (*struct{}, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return nil, err
	}
	if err := h.service.Delete(ctx, id); err != nil {
		return nil, datasetError("Failed to delete dataset", err)
	}
	return nil, nil
}

// PurgeCache drops every parsed dataset held in memory
func (h *DatasetHandler) PurgeCache(ctx context.Context, _ *struct{}) (*models.PurgeCacheResponse, error) {
	resp := &models.PurgeCacheResponse{}
	resp.Body.Purged = h.service.PurgeCache()
	return resp, nil
}

// CreateUpload returns a pre-signed URL for uploading an FFE file to S3
func (h *DatasetHandler) CreateUpload(ctx context.Context, req *models.CreateUploadRequest) (*models.CreateUploadResponse, error) {
	if h.s3Service == nil {
		return nil, huma.Error503ServiceUnavailable("Object storage is not configured")
	}

	name := path.Base(req.Body.Filename)
	key := fmt.Sprintf("uploads/%s/%s", uuid.New(), name)
	if err := storage.ValidateKey(key); err != nil {
		return nil, huma.Error400BadRequest("Filename must end in .ffe", err)
	}

	contentType := req.Body.ContentType
	if contentType == "" {
		contentType = "text/plain"
	}
	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, key, contentType)
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to prepare upload", err)
	}

	log.Info().Str("key", key).Msg("Upload URL generated")
	return &models.CreateUploadResponse{Body: models.CreateUploadResponseBody{
		Key:       key,
		Path:      ffe.ObjectScheme + key,
		UploadURL: uploadURL,
		ExpiresIn: int(uploadExpiry.Seconds()),
	}}, nil
}

// load fetches the dataset and the index of an exact frequency.
func (h *DatasetHandler) load(ctx context.Context, rawID string, freq float64) (*farfield.Dataset, int, error) {
	id, err := parseID(rawID)
	if err != nil {
		return nil, 0, err
	}
	_, ds, err := h.service.Get(ctx, id)
	if err != nil {
		return nil, 0, datasetError("Failed to get dataset", err)
	}
	f, ok := ds.FrequencyIndex(freq)
	if !ok {
		return nil, 0, huma.Error404NotFound(fmt.Sprintf("Frequency %g Hz not in dataset", freq))
	}
	return ds, f, nil
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, huma.Error400BadRequest("Invalid dataset ID", err)
	}
	return id, nil
}

// datasetError maps service and parser errors onto HTTP status codes.
func datasetError(msg string, err error) error {
	var formatErr *ffe.FormatError
	var missing *farfield.MissingFieldError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return huma.Error404NotFound("Dataset not found", err)
	case errors.Is(err, processing.ErrInvalidPath):
		return huma.Error400BadRequest(msg, err)
	case errors.Is(err, fs.ErrNotExist):
		return huma.Error404NotFound("File not found", err)
	case errors.As(err, &formatErr), errors.As(err, &missing):
		return huma.Error422UnprocessableEntity(msg, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return huma.Error503ServiceUnavailable(msg, err)
	}
	log.Error().Err(err).Msg(msg)
	return huma.Error500InternalServerError(msg, err)
}
