package entities

import "time"

type MarkerStyle string

const (
	MarkerViable   MarkerStyle = "viable"
	MarkerDegraded MarkerStyle = "degraded"
)

// CoordinateSource откуда взята координата маркера.
type CoordinateSource string

const (
	SourceDestination CoordinateSource = "destination"
	SourcePackage     CoordinateSource = "package"
	SourceOrigin      CoordinateSource = "origin"
	SourceFallback    CoordinateSource = "fallback"
)

type Marker struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Coordinate  Coordinates      `json:"coordinate"`
	Source      CoordinateSource `json:"source"`
	Style       MarkerStyle      `json:"style"`
}

// SyncCounters агрегаты одного ответа.
type SyncCounters struct {
	Total                int `json:"total"`
	WithRoute            int `json:"withRoute"`
	WithStamps           int `json:"withStamps"`
	WithDestinationQuery int `json:"withDestinationQuery"`
}

// SyncStats накопительная статистика клиента.
type SyncStats struct {
	SyncCount        int       `json:"syncCount"`
	LastSyncAt       time.Time `json:"lastSyncAt"`
	UniquePackages   int       `json:"uniquePackages"`
	UniqueMarkers    int       `json:"uniqueMarkers"`
	NewPackagesDelta int       `json:"newPackagesDelta"`
	NewMarkersDelta  int       `json:"newMarkersDelta"`
}

type SyncResult struct {
	RequestID        string       `json:"requestId"`
	Packages         []Package    `json:"packages"`
	TotalPackages    int          `json:"totalPackages"`
	ReturnedPackages int          `json:"returnedPackages"`
	ServerTime       time.Time    `json:"serverTime"`
	Counters         SyncCounters `json:"counters"`
	Markers          []Marker     `json:"markers"`
	Stats            SyncStats    `json:"stats"`
	// NewPackages посылки, впервые увиденные этим клиентом.
	NewPackages []Package `json:"-"`
}

// SyncOptions параметры одного запроса синхронизации.
type SyncOptions struct {
	GeocodingReadyOnly bool
	MinRecordAgeHours  int
	Limit              int
	IncludeMetadata    bool
	Location           *Location
}
