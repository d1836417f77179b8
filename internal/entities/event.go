package entities

// Event событие репозитория. Закрытый вариант: реализуют только типы этого пакета,
// поэтому type switch по Event исчерпывающий.
type Event interface {
	PackageID() string
	isEvent()
}

type PackageAdded struct {
	Package Package
}

type PackageUpdated struct {
	Package Package
}

type PackageRemoved struct {
	ID string
}

type StatusChanged struct {
	ID        string
	OldStatus PackageStatusType
	NewStatus PackageStatusType
	// Package nil, если источник события прислал только статусы.
	Package *Package
}

func (e PackageAdded) PackageID() string   { return e.Package.ID }
func (e PackageUpdated) PackageID() string { return e.Package.ID }
func (e PackageRemoved) PackageID() string { return e.ID }
func (e StatusChanged) PackageID() string  { return e.ID }

func (PackageAdded) isEvent()   {}
func (PackageUpdated) isEvent() {}
func (PackageRemoved) isEvent() {}
func (StatusChanged) isEvent()  {}

// EventName имя события для логов и метрик.
func EventName(e Event) string {
	switch e.(type) {
	case PackageAdded:
		return "package_added"
	case PackageUpdated:
		return "package_updated"
	case PackageRemoved:
		return "package_removed"
	case StatusChanged:
		return "status_changed"
	default:
		return "unknown"
	}
}
