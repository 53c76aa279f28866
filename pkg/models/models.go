package models

import (
	"time"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateDatasetRequest asks the service to parse one or more FFE files
type CreateDatasetRequest struct {
	Body struct {
		Paths []string `json:"paths" minItems:"1" maxItems:"64" required:"true" doc:"FFE files relative to the data directory, or s3:// keys, in merge order"`
	}
}

// DatasetRequest addresses one catalogued dataset
type DatasetRequest struct {
	ID string `path:"id" doc:"Dataset ID"`
}

// DatasetResponse returns a dataset summary
type DatasetResponse struct {
	Body DatasetSummary
}

// ListDatasetsRequest pages through the catalogue
type ListDatasetsRequest struct {
	Limit  int `query:"limit" minimum:"1" maximum:"500" default:"50" doc:"Maximum datasets to return"`
	Offset int `query:"offset" minimum:"0" default:"0" doc:"Datasets to skip"`
}

// ListDatasetsResponseBody is the body of the list response
type ListDatasetsResponseBody struct {
	Datasets []DatasetSummary `json:"datasets" doc:"Catalogued datasets, newest first"`
}

// ListDatasetsResponse lists catalogued datasets
type ListDatasetsResponse struct {
	Body ListDatasetsResponseBody
}

// GetColumnRequest selects one column at one frequency
type GetColumnRequest struct {
	ID        string  `path:"id" doc:"Dataset ID"`
	Name      string  `path:"name" doc:"Column name, e.g. Re(Etheta)"`
	Frequency float64 `query:"frequency" required:"true" doc:"Frequency in Hz, must match a dataset frequency exactly"`
}

// ColumnResponseBody is the body of the column response
type ColumnResponseBody struct {
	ID        string      `json:"id" doc:"Dataset ID"`
	Column    string      `json:"column" doc:"Column name"`
	Frequency float64     `json:"frequency" doc:"Frequency in Hz"`
	Thetas    []float64   `json:"thetas" doc:"Theta samples in degrees"`
	Phis      []float64   `json:"phis" doc:"Phi samples in degrees"`
	Values    [][]float64 `json:"values" doc:"Values indexed [theta][phi]"`
}

// ColumnResponse returns one column's angular grid
type ColumnResponse struct {
	Body ColumnResponseBody
}

// FieldRequest selects a derived field view at one frequency
type FieldRequest struct {
	ID        string  `path:"id" doc:"Dataset ID"`
	Frequency float64 `query:"frequency" required:"true" doc:"Frequency in Hz, must match a dataset frequency exactly"`
}

// FieldResponseBody is the body of the electric field response
type FieldResponseBody struct {
	ID        string      `json:"id" doc:"Dataset ID"`
	Frequency float64     `json:"frequency" doc:"Frequency in Hz"`
	Thetas    []float64   `json:"thetas" doc:"Theta samples in degrees"`
	Phis      []float64   `json:"phis" doc:"Phi samples in degrees"`
	Etheta    ComplexGrid `json:"etheta" doc:"Complex theta component"`
	Ephi      ComplexGrid `json:"ephi" doc:"Complex phi component"`
}

// FieldResponse returns the complex spherical field components
type FieldResponse struct {
	Body FieldResponseBody
}

// CartesianResponseBody is the body of the Cartesian field response
type CartesianResponseBody struct {
	ID        string      `json:"id" doc:"Dataset ID"`
	Frequency float64     `json:"frequency" doc:"Frequency in Hz"`
	Thetas    []float64   `json:"thetas" doc:"Theta samples in degrees"`
	Phis      []float64   `json:"phis" doc:"Phi samples in degrees"`
	Ex        ComplexGrid `json:"ex" doc:"Complex x component"`
	Ey        ComplexGrid `json:"ey" doc:"Complex y component"`
	Ez        ComplexGrid `json:"ez" doc:"Complex z component"`
}

// CartesianResponse returns the complex Cartesian field components
type CartesianResponse struct {
	Body CartesianResponseBody
}

// PurgeCacheResponse reports how many parsed datasets were dropped
type PurgeCacheResponse struct {
	Body struct {
		Purged int `json:"purged" doc:"Number of cache entries removed"`
	}
}

// CreateUploadRequest asks for a pre-signed upload URL
type CreateUploadRequest struct {
	Body struct {
		Filename    string `json:"filename" minLength:"5" maxLength:"200" required:"true" doc:"File name ending in .ffe"`
		ContentType string `json:"content_type" enum:"text/plain,application/octet-stream" default:"text/plain" doc:"Upload MIME type"`
	}
}

// CreateUploadResponseBody is the body of the upload response
type CreateUploadResponseBody struct {
	Key       string `json:"key" doc:"Object key the file will be stored under"`
	Path      string `json:"path" doc:"Path to pass to POST /api/datasets once uploaded"`
	UploadURL string `json:"upload_url" doc:"Pre-signed S3 URL for file upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateUploadResponse returns where to PUT an FFE file
type CreateUploadResponse struct {
	Body CreateUploadResponseBody
}
