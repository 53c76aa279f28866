package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/farfield/internal/processing"
	"github.com/RMahshie/farfield/internal/repository"
	"github.com/RMahshie/farfield/pkg/farfield"
	"github.com/RMahshie/farfield/pkg/ffe"
	"github.com/RMahshie/farfield/pkg/models"
)

// MockDatasetService implements processing.DatasetService for testing
type MockDatasetService struct {
	mock.Mock
}

func (m *MockDatasetService) Load(ctx context.Context, paths []string) (*models.DatasetRecord, error) {
	args := m.Called(ctx, paths)
	record, _ := args.Get(0).(*models.DatasetRecord)
	return record, args.Error(1)
}

func (m *MockDatasetService) Get(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, *farfield.Dataset, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*models.DatasetRecord)
	ds, _ := args.Get(1).(*farfield.Dataset)
	return record, ds, args.Error(2)
}

func (m *MockDatasetService) List(ctx context.Context, limit, offset int) ([]*models.DatasetRecord, error) {
	args := m.Called(ctx, limit, offset)
	records, _ := args.Get(0).([]*models.DatasetRecord)
	return records, args.Error(1)
}

func (m *MockDatasetService) Refresh(ctx context.Context, id uuid.UUID) (*models.DatasetRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*models.DatasetRecord)
	return record, args.Error(1)
}

func (m *MockDatasetService) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockDatasetService) PurgeCache() int {
	args := m.Called()
	return args.Int(0)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockS3Service) EnsureBucket(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// testDataset has two frequencies on a 2x2 grid. Re(Etheta) holds
// 100*f + 10*t + p by index; the other components are constant.
func testDataset(t *testing.T, withField bool) *farfield.Dataset {
	t.Helper()
	columns := []string{"Re(Etheta)", "Im(Etheta)"}
	if withField {
		columns = append(columns, "Re(Ephi)", "Im(Ephi)")
	}

	data := make(map[string]*farfield.Array, len(columns))
	for c, name := range columns {
		values := make([]float64, 8)
		for i := range values {
			if c == 0 {
				values[i] = float64(100*(i/4) + 10*((i/2)%2) + i%2)
			} else {
				values[i] = float64(c)
			}
		}
		arr, err := farfield.NewArray(2, 2, 2, values)
		require.NoError(t, err)
		data[name] = arr
	}

	ds, err := farfield.New([]float64{1e9, 2e9}, []float64{0, 90}, []float64{0, 90}, columns, data)
	require.NoError(t, err)
	return ds
}

func testRecord(ds *farfield.Dataset) *models.DatasetRecord {
	now := time.Now()
	return &models.DatasetRecord{
		ID:              uuid.New().String(),
		Paths:           []string{"horn.ffe"},
		Frequencies:     ds.Frequencies(),
		Thetas:          ds.Thetas(),
		Phis:            ds.Phis(),
		Columns:         ds.Columns(),
		DuplicatePolicy: "first",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma.StatusError, got %v", err)
	return se.GetStatus()
}

func TestCreateDataset(t *testing.T) {
	ds := testDataset(t, true)
	record := testRecord(ds)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, 0},
		{"invalid path", fmt.Errorf("%w: ../x", processing.ErrInvalidPath), 400},
		{"missing file", fmt.Errorf("failed to open x: %w", os.ErrNotExist), 404},
		{"irregular grid", &ffe.FormatError{Stage: ffe.StageGrid, Err: ffe.ErrIrregularGrid}, 422},
		{"unexpected", errors.New("disk on fire"), 500},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockDatasetService)
			handler := NewDatasetHandler(svc, nil)
			paths := []string{"horn.ffe"}

			req := &models.CreateDatasetRequest{}
			req.Body.Paths = paths

			if tt.err == nil {
				svc.On("Load", mock.Anything, paths).Return(record, nil)
			} else {
				svc.On("Load", mock.Anything, paths).Return(nil, tt.err)
			}

			resp, err := handler.CreateDataset(context.Background(), req)
			if tt.wantStatus == 0 {
				require.NoError(t, err)
				assert.Equal(t, record.ID, resp.Body.ID)
				assert.Equal(t, [3]int{2, 2, 2}, resp.Body.Shape)
			} else {
				assert.Equal(t, tt.wantStatus, statusOf(t, err))
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestListDatasets(t *testing.T) {
	svc := new(MockDatasetService)
	handler := NewDatasetHandler(svc, nil)
	ds := testDataset(t, true)
	records := []*models.DatasetRecord{testRecord(ds), testRecord(ds)}

	svc.On("List", mock.Anything, 50, 0).Return(records, nil)

	resp, err := handler.ListDatasets(context.Background(), &models.ListDatasetsRequest{Limit: 50})
	require.NoError(t, err)
	require.Len(t, resp.Body.Datasets, 2)
	assert.Equal(t, records[1].ID, resp.Body.Datasets[1].ID)
}

func TestGetDataset(t *testing.T) {
	t.Run("invalid id", func(t *testing.T) {
		handler := NewDatasetHandler(new(MockDatasetService), nil)

		_, err := handler.GetDataset(context.Background(), &models.DatasetRequest{ID: "not-a-uuid"})
		assert.Equal(t, 400, statusOf(t, err))
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(MockDatasetService)
		handler := NewDatasetHandler(svc, nil)
		id := uuid.New()
		svc.On("Get", mock.Anything, id).Return(nil, nil, repository.ErrNotFound)

		_, err := handler.GetDataset(context.Background(), &models.DatasetRequest{ID: id.String()})
		assert.Equal(t, 404, statusOf(t, err))
	})
}

func TestGetColumn(t *testing.T) {
	ds := testDataset(t, true)
	record := testRecord(ds)
	id := uuid.MustParse(record.ID)

	svc := new(MockDatasetService)
	svc.On("Get", mock.Anything, id).Return(record, ds, nil)
	handler := NewDatasetHandler(svc, nil)

	resp, err := handler.GetColumn(context.Background(), &models.GetColumnRequest{ID: record.ID, Name: "Re(Etheta)", Frequency: 2e9})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{100, 101}, {110, 111}}, resp.Body.Values)
	assert.Equal(t, []float64{0, 90}, resp.Body.Thetas)

	_, err = handler.GetColumn(context.Background(), &models.GetColumnRequest{ID: record.ID, Name: "Gain", Frequency: 2e9})
	assert.Equal(t, 404, statusOf(t, err))

	_, err = handler.GetColumn(context.Background(), &models.GetColumnRequest{ID: record.ID, Name: "Re(Etheta)", Frequency: 1.5e9})
	assert.Equal(t, 404, statusOf(t, err))
}

func TestGetField(t *testing.T) {
	t.Run("complete", func(t *testing.T) {
		ds := testDataset(t, true)
		record := testRecord(ds)
		svc := new(MockDatasetService)
		svc.On("Get", mock.Anything, uuid.MustParse(record.ID)).Return(record, ds, nil)
		handler := NewDatasetHandler(svc, nil)

		resp, err := handler.GetField(context.Background(), &models.FieldRequest{ID: record.ID, Frequency: 1e9})
		require.NoError(t, err)
		assert.Equal(t, [][]float64{{0, 1}, {10, 11}}, resp.Body.Etheta.Real)
		assert.Equal(t, [][]float64{{1, 1}, {1, 1}}, resp.Body.Etheta.Imag)
		assert.Equal(t, [][]float64{{2, 2}, {2, 2}}, resp.Body.Ephi.Real)
		assert.Equal(t, [][]float64{{3, 3}, {3, 3}}, resp.Body.Ephi.Imag)
	})

	t.Run("missing components", func(t *testing.T) {
		ds := testDataset(t, false)
		record := testRecord(ds)
		svc := new(MockDatasetService)
		svc.On("Get", mock.Anything, uuid.MustParse(record.ID)).Return(record, ds, nil)
		handler := NewDatasetHandler(svc, nil)

		_, err := handler.GetField(context.Background(), &models.FieldRequest{ID: record.ID, Frequency: 1e9})
		assert.Equal(t, 422, statusOf(t, err))

		_, err = handler.GetCartesian(context.Background(), &models.FieldRequest{ID: record.ID, Frequency: 1e9})
		assert.Equal(t, 422, statusOf(t, err))
	})
}

func TestGetCartesian(t *testing.T) {
	ds := testDataset(t, true)
	record := testRecord(ds)
	svc := new(MockDatasetService)
	svc.On("Get", mock.Anything, uuid.MustParse(record.ID)).Return(record, ds, nil)
	handler := NewDatasetHandler(svc, nil)

	resp, err := handler.GetCartesian(context.Background(), &models.FieldRequest{ID: record.ID, Frequency: 1e9})
	require.NoError(t, err)

	// theta=0, phi=0: Ex = Etheta, Ey = Ephi, Ez = 0
	assert.InDelta(t, 0.0, resp.Body.Ex.Real[0][0], 1e-12)
	assert.InDelta(t, 1.0, resp.Body.Ex.Imag[0][0], 1e-12)
	assert.InDelta(t, 2.0, resp.Body.Ey.Real[0][0], 1e-12)
	assert.InDelta(t, 3.0, resp.Body.Ey.Imag[0][0], 1e-12)
	assert.InDelta(t, 0.0, resp.Body.Ez.Real[0][0], 1e-12)

	// theta=90, phi=0: Ez = -Etheta
	assert.InDelta(t, -10.0, resp.Body.Ez.Real[1][0], 1e-12)
	assert.InDelta(t, -1.0, resp.Body.Ez.Imag[1][0], 1e-12)
}

func TestRefreshAndDelete(t *testing.T) {
	ds := testDataset(t, true)
	record := testRecord(ds)
	id := uuid.MustParse(record.ID)

	svc := new(MockDatasetService)
	svc.On("Refresh", mock.Anything, id).Return(record, nil)
	svc.On("Delete", mock.Anything, id).Return(nil).Once()
	svc.On("Delete", mock.Anything, id).Return(repository.ErrNotFound)
	handler := NewDatasetHandler(svc, nil)

	resp, err := handler.RefreshDataset(context.Background(), &models.DatasetRequest{ID: record.ID})
	require.NoError(t, err)
	assert.Equal(t, record.ID, resp.Body.ID)

	_, err = handler.DeleteDataset(context.Background(), &models.DatasetRequest{ID: record.ID})
	require.NoError(t, err)
	_, err = handler.DeleteDataset(context.Background(), &models.DatasetRequest{ID: record.ID})
	assert.Equal(t, 404, statusOf(t, err))
	svc.AssertExpectations(t)
}

func TestPurgeCache(t *testing.T) {
	svc := new(MockDatasetService)
	svc.On("PurgeCache").Return(3)
	handler := NewDatasetHandler(svc, nil)

	resp, err := handler.PurgeCache(context.Background(), &struct{}{})
	require.NoError(t, err)
	assert.Equal(t, 3, resp.Body.Purged)
}

func TestCreateUpload(t *testing.T) {
	t.Run("no storage", func(t *testing.T) {
		handler := NewDatasetHandler(new(MockDatasetService), nil)
		req := &models.CreateUploadRequest{}
		req.Body.Filename = "horn.ffe"

		_, err := handler.CreateUpload(context.Background(), req)
		assert.Equal(t, 503, statusOf(t, err))
	})

	t.Run("presigns an uploads key", func(t *testing.T) {
		s3 := new(MockS3Service)
		s3.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(key string) bool {
			return len(key) > len("uploads/") && key[len(key)-len("/horn.ffe"):] == "/horn.ffe"
		}), "text/plain").Return("https://s3.example/upload", nil)
		handler := NewDatasetHandler(new(MockDatasetService), s3)

		req := &models.CreateUploadRequest{}
		req.Body.Filename = "../../horn.ffe"

		resp, err := handler.CreateUpload(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "https://s3.example/upload", resp.Body.UploadURL)
		assert.Equal(t, "s3://"+resp.Body.Key, resp.Body.Path)
		assert.Equal(t, 900, resp.Body.ExpiresIn)
		s3.AssertExpectations(t)
	})

	t.Run("rejects non-ffe names", func(t *testing.T) {
		handler := NewDatasetHandler(new(MockDatasetService), new(MockS3Service))
		req := &models.CreateUploadRequest{}
		req.Body.Filename = "notes.txt"

		_, err := handler.CreateUpload(context.Background(), req)
		assert.Equal(t, 400, statusOf(t, err))
	})
}
