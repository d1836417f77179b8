package entities

import "strings"

type PackageStatusType string

const (
	StatusPending        PackageStatusType = "PENDING"
	StatusAssigned       PackageStatusType = "ASSIGNED"
	StatusInTransit      PackageStatusType = "IN_TRANSIT"
	StatusOutForDelivery PackageStatusType = "OUT_FOR_DELIVERY"
	StatusDelivered      PackageStatusType = "DELIVERED"
	StatusFailed         PackageStatusType = "FAILED"
)

// DeliverySuccessRate доля DELIVERED на последнем переходе автоматической симуляции.
const DeliverySuccessRate = 0.8

func (s PackageStatusType) String() string {
	return string(s)
}

func (s PackageStatusType) IsValid() bool {
	switch s {
	case StatusPending, StatusAssigned, StatusInTransit,
		StatusOutForDelivery, StatusDelivered, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal DELIVERED и FAILED автоматически больше не продвигаются.
func (s PackageStatusType) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// ParseStatus принимает статус в любом регистре, "in-transit" тоже.
func ParseStatus(raw string) (PackageStatusType, bool) {
	s := PackageStatusType(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	return s, s.IsValid()
}

// NextStatus возвращает следующее состояние ровно через одно ребро автомата.
// roll в [0,1) выбирает исход последнего перехода: roll < DeliverySuccessRate - DELIVERED.
// Для терминальных и неизвестных статусов возвращает false.
func NextStatus(current PackageStatusType, roll float64) (PackageStatusType, bool) {
	switch current {
	case StatusPending:
		return StatusAssigned, true
	case StatusAssigned:
		return StatusInTransit, true
	case StatusInTransit:
		return StatusOutForDelivery, true
	case StatusOutForDelivery:
		if roll < DeliverySuccessRate {
			return StatusDelivered, true
		}
		return StatusFailed, true
	default:
		return current, false
	}
}

// IsAdjacent true если to достижим из from одним ребром.
// Неадъяцентные обновления допустимы как ручной override, но движок сам их не делает.
func IsAdjacent(from, to PackageStatusType) bool {
	switch from {
	case StatusOutForDelivery:
		return to == StatusDelivered || to == StatusFailed
	default:
		next, ok := NextStatus(from, 0)
		return ok && next == to
	}
}

type PriorityType string

const (
	PriorityUrgent PriorityType = "urgent"
	PriorityHigh   PriorityType = "high"
	PriorityMedium PriorityType = "medium"
	PriorityNormal PriorityType = "normal"
	PriorityLow    PriorityType = "low"
)

func (p PriorityType) String() string {
	return string(p)
}

// Rank больше - важнее. medium и normal равны.
func (p PriorityType) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium, PriorityNormal:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}
