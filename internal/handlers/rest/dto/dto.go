package dto

import "packagesync/internal/entities"

type PingResponse struct {
	Message *string `json:"message,omitempty"`
}

type PackageList struct {
	Packages []entities.Package `json:"packages"`
	Count    int                `json:"count"`
}

type Location struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

type StatusUpdate struct {
	Status   string    `json:"status"`
	Location *Location `json:"location,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
}

type SyncRequest struct {
	GeocodingReadyOnly *bool     `json:"geocodingReadyOnly,omitempty"`
	MinRecordAgeHours  *int      `json:"minRecordAgeHours,omitempty"`
	Limit              *int      `json:"limit,omitempty"`
	IncludeMetadata    *bool     `json:"includeMetadata,omitempty"`
	Location           *Location `json:"location,omitempty"`
}

type Error struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
}

func (l *Location) ToEntity() *entities.Location {
	if l == nil {
		return nil
	}
	loc := &entities.Location{
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
	}
	if l.Accuracy != nil {
		loc.Accuracy = *l.Accuracy
	}
	return loc
}
