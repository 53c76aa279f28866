package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/RMahshie/farfield/internal/api/handlers"
	"github.com/RMahshie/farfield/internal/processing"
	"github.com/RMahshie/farfield/internal/storage"
)

// RegisterRoutes sets up all API routes. metrics may be nil to leave
// /metrics unexposed.
func RegisterRoutes(router chi.Router, api huma.API, datasetSvc processing.DatasetService, s3Service storage.S3Service, metrics http.Handler) {
	datasetHandler := handlers.NewDatasetHandler(datasetSvc, s3Service)

	huma.Register(api, huma.Operation{
		OperationID:   "createDataset",
		Method:        http.MethodPost,
		Path:          "/api/datasets",
		Summary:       "Load a dataset",
		Description:   "Parses one or more FFE files in order, merges them by frequency and catalogues the result",
		Tags:          []string{"Datasets"},
		DefaultStatus: http.StatusCreated,
	}, datasetHandler.CreateDataset)

	huma.Register(api, huma.Operation{
		OperationID: "listDatasets",
		Method:      http.MethodGet,
		Path:        "/api/datasets",
		Summary:     "List datasets",
		Description: "Returns catalogued datasets, newest first",
		Tags:        []string{"Datasets"},
	}, datasetHandler.ListDatasets)

	huma.Register(api, huma.Operation{
		OperationID: "getDataset",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}",
		Summary:     "Get dataset summary",
		Description: "Returns the frequencies, angular grid and column names of a dataset",
		Tags:        []string{"Datasets"},
	}, datasetHandler.GetDataset)

	huma.Register(api, huma.Operation{
		OperationID: "getColumn",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}/columns/{name}",
		Summary:     "Get column values",
		Description: "Returns one data column on the (theta, phi) grid at a single frequency",
		Tags:        []string{"Datasets"},
	}, datasetHandler.GetColumn)

	huma.Register(api, huma.Operation{
		OperationID: "getElectricField",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}/field",
		Summary:     "Get electric field",
		Description: "Returns the complex Etheta and Ephi components at a single frequency",
		Tags:        []string{"Fields"},
	}, datasetHandler.GetField)

	huma.Register(api, huma.Operation{
		OperationID: "getCartesianField",
		Method:      http.MethodGet,
		Path:        "/api/datasets/{id}/cartesian",
		Summary:     "Get Cartesian field",
		Description: "Returns the complex Ex, Ey and Ez components at a single frequency",
		Tags:        []string{"Fields"},
	}, datasetHandler.GetCartesian)

	huma.Register(api, huma.Operation{
		OperationID: "refreshDataset",
		Method:      http.MethodPost,
		Path:        "/api/datasets/{id}/refresh",
		Summary:     "Refresh dataset",
		Description: "Re-reads the dataset files, bypassing and replacing the cached parse",
		Tags:        []string{"Datasets"},
	}, datasetHandler.RefreshDataset)

	huma.Register(api, huma.Operation{
		OperationID:   "deleteDataset",
		Method:        http.MethodDelete,
		Path:          "/api/datasets/{id}",
		Summary:       "Delete dataset",
		Description:   "Removes a dataset from the catalogue and drops its cached parse",
		Tags:          []string{"Datasets"},
		DefaultStatus: http.StatusNoContent,
	}, datasetHandler.DeleteDataset)

	huma.Register(api, huma.Operation{
		OperationID: "purgeCache",
		Method:      http.MethodDelete,
		Path:        "/api/cache",
		Summary:     "Purge parse cache",
		Description: "Drops every parsed dataset held in memory; catalogued datasets are re-parsed on next access",
		Tags:        []string{"Cache"},
	}, datasetHandler.PurgeCache)

	huma.Register(api, huma.Operation{
		OperationID:   "createUpload",
		Method:        http.MethodPost,
		Path:          "/api/uploads",
		Summary:       "Create upload URL",
		Description:   "Returns a pre-signed S3 URL to upload an FFE file, and the path to load it with",
		Tags:          []string{"Uploads"},
		DefaultStatus: http.StatusCreated,
	}, datasetHandler.CreateUpload)

	if metrics != nil {
		router.Handle("/metrics", metrics)
	}
}
