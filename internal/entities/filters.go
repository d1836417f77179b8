package entities

import (
	"net/url"
	"sort"
	"strings"
	"time"
)

const (
	FilterStatus           = "status"
	FilterPriority         = "priority"
	FilterDeliveryPersonID = "deliveryPersonId"
	FilterDate             = "date"
	FilterCarrier          = "carrier"

	filterDateLayout = "2006-01-02"
)

// Filters произвольное отображение ключ -> значение. Неизвестные ключи игнорируются.
type Filters map[string]string

// Match применяет известные фильтры к посылке.
func (f Filters) Match(p Package) bool {
	for key, value := range f {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case FilterStatus:
			if !matchStatusSet(value, p.Status) {
				return false
			}
		case FilterPriority:
			if !strings.EqualFold(value, p.Priority.String()) {
				return false
			}
		case FilterDeliveryPersonID:
			if value != p.DeliveryPersonID {
				return false
			}
		case FilterCarrier:
			if !strings.EqualFold(value, p.Carrier) {
				return false
			}
		case FilterDate:
			if !matchDate(value, p) {
				return false
			}
		}
	}
	return true
}

// Apply возвращает подходящие посылки в исходном порядке.
func (f Filters) Apply(packages []Package) []Package {
	out := make([]Package, 0, len(packages))
	for _, p := range packages {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Key каноничная строка фильтров в виде закодированного запроса: ключи отсортированы,
// пустые значения отброшены. Пустые фильтры дают пустую строку.
func (f Filters) Key() string {
	q := make(url.Values, len(f))
	for k, v := range f {
		if strings.TrimSpace(v) != "" {
			q.Set(k, canonicalValue(k, v))
		}
	}
	return q.Encode()
}

// Query фильтры как параметры запроса.
func (f Filters) Query() url.Values {
	q := make(url.Values, len(f))
	for k, v := range f {
		if strings.TrimSpace(v) != "" {
			q.Set(k, strings.TrimSpace(v))
		}
	}
	return q
}

// FiltersFromQuery обратная к Query, берет первое значение каждого ключа.
func FiltersFromQuery(q url.Values) Filters {
	f := make(Filters, len(q))
	for k := range q {
		if v := q.Get(k); v != "" {
			f[k] = v
		}
	}
	return f
}

func canonicalValue(key, value string) string {
	value = strings.TrimSpace(value)
	if key != FilterStatus {
		return value
	}
	parts := splitStatuses(value)
	out := make([]string, 0, len(parts))
	for _, s := range parts {
		out = append(out, s.String())
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}

func splitStatuses(value string) []PackageStatusType {
	raw := strings.Split(value, ",")
	out := make([]PackageStatusType, 0, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		s, _ := ParseStatus(r)
		out = append(out, s)
	}
	return out
}

func matchStatusSet(value string, status PackageStatusType) bool {
	for _, s := range splitStatuses(value) {
		if s == status {
			return true
		}
	}
	return false
}

func matchDate(value string, p Package) bool {
	day, err := time.Parse(filterDateLayout, value)
	if err != nil {
		// некорректная дата не отсекает посылки
		return true
	}
	ref := p.CreatedAt
	if p.EstimatedDelivery != nil {
		ref = *p.EstimatedDelivery
	}
	return ref.UTC().Format(filterDateLayout) == day.Format(filterDateLayout)
}
