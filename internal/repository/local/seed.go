package local

import (
	"fmt"
	"time"

	"packagesync/internal/entities"
)

type seedSpec struct {
	recipient string
	phone     string
	street    string
	city      string
	postal    string
	lat, lon  float64
	status    entities.PackageStatusType
	priority  entities.PriorityType
	carrier   string
	courier   string
	etaHours  int
	stamps    []entities.Stamp
	query     string
}

var seedSpecs = []seedSpec{
	{
		recipient: "Анна Смирнова", phone: "+79161234501",
		street: "ул. Тверская, 7", city: "Москва", postal: "125009",
		lat: 55.7575, lon: 37.6132,
		status: entities.StatusPending, priority: entities.PriorityNormal,
		carrier: "CDEK", etaHours: 48,
	},
	{
		recipient: "Игорь Петров", phone: "+79161234502",
		street: "Ленинский пр-т, 32", city: "Москва", postal: "119334",
		lat: 55.7078, lon: 37.5857,
		status: entities.StatusAssigned, priority: entities.PriorityHigh,
		carrier: "CDEK", courier: "courier-1", etaHours: 24,
		stamps: []entities.Stamp{{Code: "12", Text: "хрупкое"}},
	},
	{
		recipient: "Мария Козлова", phone: "+79161234503",
		street: "ул. Арбат, 15", city: "Москва", postal: "119002",
		lat: 55.7512, lon: 37.5925,
		status: entities.StatusInTransit, priority: entities.PriorityUrgent,
		carrier: "Boxberry", courier: "courier-2", etaHours: 6,
		query: "Арбат 15 подъезд 2",
	},
	{
		recipient: "Дмитрий Волков", phone: "+79161234504",
		street: "Кутузовский пр-т, 2", city: "Москва", postal: "121248",
		lat: 55.7496, lon: 37.5647,
		status: entities.StatusOutForDelivery, priority: entities.PriorityMedium,
		carrier: "Boxberry", courier: "courier-2", etaHours: 2,
		stamps: []entities.Stamp{{Code: "7"}, {Code: "21", Text: "до двери"}},
		query:  "Кутузовский 2 офис 14",
	},
	{
		recipient: "Елена Новикова", phone: "+79161234505",
		street: "ул. Покровка, 20", city: "Москва", postal: "101000",
		lat: 55.7594, lon: 37.6464,
		status: entities.StatusDelivered, priority: entities.PriorityLow,
		carrier: "Почта России", courier: "courier-1", etaHours: -4,
	},
	{
		recipient: "Сергей Морозов", phone: "+79161234506",
		street: "Невский пр-т, 28", city: "Санкт-Петербург", postal: "191186",
		lat: 59.9357, lon: 30.3259,
		status: entities.StatusFailed, priority: entities.PriorityNormal,
		carrier: "CDEK", courier: "courier-3", etaHours: -12,
	},
	{
		recipient: "Ольга Лебедева", phone: "+79161234507",
		street: "ул. Баумана, 44", city: "Казань", postal: "420111",
		lat: 55.7887, lon: 49.1221,
		status: entities.StatusPending, priority: entities.PriorityHigh,
		carrier: "Почта России", etaHours: 72,
		query: "Баумана 44",
	},
	{
		recipient: "Алексей Соколов", phone: "+79161234508",
		street: "ул. Малышева, 51", city: "Екатеринбург", postal: "620014",
		status: entities.StatusInTransit, priority: entities.PriorityMedium,
		carrier: "Boxberry", courier: "courier-4", etaHours: 30,
	},
}

// SeedPackages фиксированный набор демонстрационных посылок, покрывающий все статусы и приоритеты.
// Последняя посылка без координат.
func SeedPackages(now time.Time) []entities.Package {
	out := make([]entities.Package, 0, len(seedSpecs))
	for i, spec := range seedSpecs {
		createdAt := now.Add(-time.Duration(len(seedSpecs)-i) * time.Hour)
		eta := now.Add(time.Duration(spec.etaHours) * time.Hour)

		p := entities.Package{
			ID:             fmt.Sprintf("PKG-%03d", i+1),
			TrackingNumber: fmt.Sprintf("TRK%08d", 10000000+i*7919),
			RecipientName:  spec.recipient,
			RecipientPhone: spec.phone,
			Address: entities.Address{
				Street:     spec.street,
				City:       spec.city,
				PostalCode: spec.postal,
				Formatted:  fmt.Sprintf("%s, %s, %s", spec.street, spec.city, spec.postal),
			},
			Status:            spec.status,
			Priority:          spec.priority,
			MaxAttempts:       entities.DefaultMaxAttempts,
			DeliveryPersonID:  spec.courier,
			Carrier:           spec.carrier,
			CreatedAt:         createdAt,
			UpdatedAt:         createdAt,
			EstimatedDelivery: &eta,
		}

		if spec.lat != 0 || spec.lon != 0 {
			p.Coordinates = &entities.Coordinates{Latitude: spec.lat, Longitude: spec.lon}
			p.AddressConfidence = 0.9
		}

		switch spec.status {
		case entities.StatusDelivered:
			p.Attempts = 1
			deliveredAt := eta
			p.DeliveredAt = &deliveredAt
		case entities.StatusFailed:
			p.Attempts = entities.DefaultMaxAttempts
		}

		if len(spec.stamps) > 0 || spec.query != "" {
			p.Stamps = &entities.StampsSummary{
				GreenNumbers:     append([]entities.Stamp(nil), spec.stamps...),
				DestinationQuery: spec.query,
			}
		}

		out = append(out, p)
	}
	return out
}
