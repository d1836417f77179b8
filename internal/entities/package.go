package entities

import "time"

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Address struct {
	Street     string `json:"street,omitempty"`
	City       string `json:"city,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Formatted  string `json:"formatted,omitempty"`
}

type RouteEndpoint struct {
	Label       string       `json:"label,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type RouteSummary struct {
	From           RouteEndpoint `json:"from"`
	To             RouteEndpoint `json:"to"`
	Viable         bool          `json:"viable"`
	GeocodingReady bool          `json:"geocodingReady"`
}

// Known у конца маршрута есть подпись или координаты.
func (e RouteEndpoint) Known() bool {
	return e.Label != "" || e.Coordinates != nil
}

// Resolvable маршрут известен с обоих концов.
func (r *RouteSummary) Resolvable() bool {
	return r != nil && r.From.Known() && r.To.Known()
}

type Stamp struct {
	Code string `json:"code"`
	Text string `json:"text,omitempty"`
}

// StampsSummary каноничная форма: вложенный объект stampsSummary.
// Старые ревизии сервера присылали stamps_summary или плоские green_numbers -
// см. UnmarshalJSON у Package.
type StampsSummary struct {
	GreenNumbers     []Stamp `json:"greenNumbers,omitempty"`
	DestinationQuery string  `json:"destinationQuery,omitempty"`
}

type Location struct {
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

type Package struct {
	ID             string `json:"id"`
	TrackingNumber string `json:"trackingNumber"`

	RecipientName  string       `json:"recipientName"`
	RecipientPhone string       `json:"recipientPhone,omitempty"`
	Address        Address      `json:"address"`
	Coordinates    *Coordinates `json:"coordinates,omitempty"`

	Status           PackageStatusType `json:"status"`
	Priority         PriorityType      `json:"priority"`
	Attempts         int               `json:"attempts"`
	MaxAttempts      int               `json:"maxAttempts"`
	DeliveryPersonID string            `json:"deliveryPersonId,omitempty"`
	Notes            string            `json:"notes,omitempty"`
	LastLocation     *Location         `json:"lastLocation,omitempty"`

	Carrier           string         `json:"carrier,omitempty"`
	Route             *RouteSummary  `json:"route,omitempty"`
	AddressConfidence float64        `json:"addressConfidence,omitempty"`
	Stamps            *StampsSummary `json:"stampsSummary,omitempty"`

	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
	EstimatedDelivery *time.Time `json:"estimatedDelivery,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
}

const DefaultMaxAttempts = 3

// StatusContext необязательный контекст смены статуса.
type StatusContext struct {
	Location *Location
	Notes    *string
}

// StatusUpdate элемент пакетного обновления.
type StatusUpdate struct {
	ID      string
	Status  PackageStatusType
	Context StatusContext
}

// ApplyStatus применяет смену статуса к копии посылки. Счетчик попыток растет
// при выходе из OUT_FOR_DELIVERY в финальный статус; при исчерпании попыток
// посылка принудительно переводится в FAILED.
func (p Package) ApplyStatus(status PackageStatusType, sc StatusContext, now time.Time) Package {
	if p.Status == StatusOutForDelivery && status.IsTerminal() {
		p.Attempts++
	}
	p.Status = status

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if p.Attempts >= maxAttempts && !p.Status.IsTerminal() {
		p.Status = StatusFailed
	}
	if p.Attempts > maxAttempts {
		p.Attempts = maxAttempts
	}

	if sc.Notes != nil {
		p.Notes = *sc.Notes
	}
	if sc.Location != nil {
		loc := *sc.Location
		p.LastLocation = &loc
	}
	if p.Status == StatusDelivered {
		deliveredAt := now
		p.DeliveredAt = &deliveredAt
	}
	p.UpdatedAt = now
	return p
}

// Clone глубокая копия, чтобы кэш и подписчики не делили указатели.
func (p Package) Clone() Package {
	out := p
	if p.Coordinates != nil {
		c := *p.Coordinates
		out.Coordinates = &c
	}
	if p.LastLocation != nil {
		l := *p.LastLocation
		out.LastLocation = &l
	}
	if p.Route != nil {
		r := *p.Route
		if r.From.Coordinates != nil {
			c := *r.From.Coordinates
			r.From.Coordinates = &c
		}
		if r.To.Coordinates != nil {
			c := *r.To.Coordinates
			r.To.Coordinates = &c
		}
		out.Route = &r
	}
	if p.Stamps != nil {
		s := *p.Stamps
		s.GreenNumbers = append([]Stamp(nil), p.Stamps.GreenNumbers...)
		out.Stamps = &s
	}
	if p.EstimatedDelivery != nil {
		t := *p.EstimatedDelivery
		out.EstimatedDelivery = &t
	}
	if p.DeliveredAt != nil {
		t := *p.DeliveredAt
		out.DeliveredAt = &t
	}
	return out
}

func ClonePackages(in []Package) []Package {
	if in == nil {
		return nil
	}
	out := make([]Package, 0, len(in))
	for _, p := range in {
		out = append(out, p.Clone())
	}
	return out
}
