package bulksync

import (
	"encoding/json"
	"time"

	"packagesync/internal/entities"
)

type syncLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

type syncFilters struct {
	GeocodingReadyOnly bool `json:"geocodingReadyOnly"`
	MinRecordAgeHours  int  `json:"minRecordAgeHours,omitempty"`
}

type syncRequest struct {
	Timestamp       time.Time     `json:"timestamp"`
	DeviceID        string        `json:"deviceId"`
	Location        *syncLocation `json:"location,omitempty"`
	RequestID       string        `json:"requestId"`
	Filters         syncFilters   `json:"filters"`
	Limit           int           `json:"limit"`
	IncludeMetadata bool          `json:"includeMetadata"`
}

type syncResponse struct {
	Success          bool            `json:"success"`
	Packages         json.RawMessage `json:"packages"`
	TotalPackages    int             `json:"totalPackages"`
	ReturnedPackages int             `json:"returnedPackages"`
	Timestamp        time.Time       `json:"timestamp"`
	Error            *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func toRequest(deviceID, requestID string, now time.Time, opts entities.SyncOptions) syncRequest {
	req := syncRequest{
		Timestamp: now.UTC(),
		DeviceID:  deviceID,
		RequestID: requestID,
		Filters: syncFilters{
			GeocodingReadyOnly: opts.GeocodingReadyOnly,
			MinRecordAgeHours:  opts.MinRecordAgeHours,
		},
		Limit:           opts.Limit,
		IncludeMetadata: opts.IncludeMetadata,
	}
	if opts.Location != nil {
		req.Location = &syncLocation{
			Latitude:  opts.Location.Latitude,
			Longitude: opts.Location.Longitude,
			Accuracy:  opts.Location.Accuracy,
		}
	}
	return req
}
