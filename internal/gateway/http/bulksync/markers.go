package bulksync

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"packagesync/internal/entities"
)

type markerBuilder struct {
	fallback entities.Coordinates
	jitter   float64

	mu  sync.Mutex
	rng *rand.Rand
}

// build проецирует посылки с известным маршрутом в маркеры карты.
func (b *markerBuilder) build(packages []entities.Package) []entities.Marker {
	markers := make([]entities.Marker, 0, len(packages))
	for _, p := range packages {
		if !p.Route.Resolvable() {
			continue
		}

		coord, source := b.coordinate(p)
		style := entities.MarkerDegraded
		if p.Route.Viable {
			style = entities.MarkerViable
		}

		markers = append(markers, entities.Marker{
			ID:          p.ID,
			Title:       markerTitle(p),
			Description: markerDescription(p),
			Coordinate:  coord,
			Source:      source,
			Style:       style,
		})
	}
	return markers
}

// coordinate точка назначения, затем точка отправления, затем координаты самой посылки,
// и только потом случайная точка рядом с запасной.
func (b *markerBuilder) coordinate(p entities.Package) (entities.Coordinates, entities.CoordinateSource) {
	switch {
	case p.Route.To.Coordinates != nil:
		return *p.Route.To.Coordinates, entities.SourceDestination
	case p.Route.From.Coordinates != nil:
		return *p.Route.From.Coordinates, entities.SourceOrigin
	case p.Coordinates != nil:
		return *p.Coordinates, entities.SourcePackage
	}

	b.mu.Lock()
	dLat := (b.rng.Float64()*2 - 1) * b.jitter
	dLon := (b.rng.Float64()*2 - 1) * b.jitter
	b.mu.Unlock()

	return entities.Coordinates{
		Latitude:  b.fallback.Latitude + dLat,
		Longitude: b.fallback.Longitude + dLon,
	}, entities.SourceFallback
}

func markerTitle(p entities.Package) string {
	name := p.TrackingNumber
	if name == "" {
		name = p.ID
	}
	if p.RecipientName == "" {
		return name
	}
	return name + " · " + p.RecipientName
}

func markerDescription(p entities.Package) string {
	lines := []string{
		fmt.Sprintf("Маршрут: %s → %s", p.Route.From.Label, p.Route.To.Label),
		"Статус: " + p.Status.String(),
	}
	if p.Carrier != "" {
		lines = append(lines, "Перевозчик: "+p.Carrier)
	}
	if p.Stamps != nil {
		if len(p.Stamps.GreenNumbers) > 0 {
			codes := make([]string, 0, len(p.Stamps.GreenNumbers))
			for _, s := range p.Stamps.GreenNumbers {
				codes = append(codes, s.Code)
			}
			lines = append(lines, "Отметки: "+strings.Join(codes, ", "))
		}
		if q := strings.TrimSpace(p.Stamps.DestinationQuery); q != "" {
			lines = append(lines, "Адрес: "+q)
		}
	}
	if p.AddressConfidence > 0 {
		lines = append(lines, fmt.Sprintf("Точность адреса: %.0f%%", p.AddressConfidence*100))
	}
	if !p.Route.GeocodingReady {
		lines = append(lines, "Геокодинг не завершен")
	}
	return strings.Join(lines, "\n")
}
