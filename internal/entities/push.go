package entities

import (
	"encoding/json"
	"fmt"
)

type PushEventType string

const (
	PushPackageUpdate  PushEventType = "packageUpdate"
	PushStatusChange   PushEventType = "statusChange"
	PushPackageCreated PushEventType = "packageCreated"
	PushPackageDeleted PushEventType = "packageDeleted"
)

// PushEvent событие push канала. Закрытый вариант по одному типу на вид события.
type PushEvent interface {
	PackageID() string
	// Event переводит push событие в событие репозитория для подписчиков.
	Event() Event
	isPushEvent()
}

type PushPackageUpdated struct {
	ID      string
	Package *Package
}

type PushStatusChanged struct {
	ID        string
	OldStatus PackageStatusType
	NewStatus PackageStatusType
	Package   *Package
}

type PushPackageAdded struct {
	ID      string
	Package *Package
}

type PushPackageRemoved struct {
	ID string
}

func (e PushPackageUpdated) PackageID() string { return e.ID }
func (e PushStatusChanged) PackageID() string  { return e.ID }
func (e PushPackageAdded) PackageID() string   { return e.ID }
func (e PushPackageRemoved) PackageID() string { return e.ID }

func (PushPackageUpdated) isPushEvent() {}
func (PushStatusChanged) isPushEvent()  {}
func (PushPackageAdded) isPushEvent()   {}
func (PushPackageRemoved) isPushEvent() {}

func (e PushPackageUpdated) Event() Event {
	if e.Package == nil {
		return StatusChanged{ID: e.ID}
	}
	return PackageUpdated{Package: e.Package.Clone()}
}

func (e PushStatusChanged) Event() Event {
	out := StatusChanged{ID: e.ID, OldStatus: e.OldStatus, NewStatus: e.NewStatus}
	if e.Package != nil {
		p := e.Package.Clone()
		out.Package = &p
	}
	return out
}

func (e PushPackageAdded) Event() Event {
	if e.Package == nil {
		return StatusChanged{ID: e.ID}
	}
	return PackageAdded{Package: e.Package.Clone()}
}

func (e PushPackageRemoved) Event() Event {
	return PackageRemoved{ID: e.ID}
}

type pushEnvelope struct {
	Type      PushEventType     `json:"type"`
	PackageID string            `json:"packageId"`
	Package   *Package          `json:"package,omitempty"`
	OldStatus PackageStatusType `json:"oldStatus,omitempty"`
	NewStatus PackageStatusType `json:"newStatus,omitempty"`
}

// DecodePushEvent разбирает конверт {type, packageId, package?, oldStatus?, newStatus?}.
// packageId можно опустить, если передан package с id.
func DecodePushEvent(data []byte) (PushEvent, error) {
	var env pushEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode push envelope: %w", err)
	}

	id := env.PackageID
	if id == "" && env.Package != nil {
		id = env.Package.ID
	}
	if id == "" {
		return nil, fmt.Errorf("push event %q: %w", env.Type, ErrMissingPackageID)
	}

	switch env.Type {
	case PushPackageUpdate:
		return PushPackageUpdated{ID: id, Package: env.Package}, nil
	case PushStatusChange:
		return PushStatusChanged{ID: id, OldStatus: env.OldStatus, NewStatus: env.NewStatus, Package: env.Package}, nil
	case PushPackageCreated:
		return PushPackageAdded{ID: id, Package: env.Package}, nil
	case PushPackageDeleted:
		return PushPackageRemoved{ID: id}, nil
	default:
		return nil, fmt.Errorf("push event %q: %w", env.Type, ErrUnknownPushEvent)
	}
}

// EncodePushEvent обратная операция, нужна продюсерам и тестам.
func EncodePushEvent(e PushEvent) ([]byte, error) {
	env := pushEnvelope{PackageID: e.PackageID()}
	switch ev := e.(type) {
	case PushPackageUpdated:
		env.Type, env.Package = PushPackageUpdate, ev.Package
	case PushStatusChanged:
		env.Type, env.Package = PushStatusChange, ev.Package
		env.OldStatus, env.NewStatus = ev.OldStatus, ev.NewStatus
	case PushPackageAdded:
		env.Type, env.Package = PushPackageCreated, ev.Package
	case PushPackageRemoved:
		env.Type = PushPackageDeleted
	default:
		return nil, ErrUnknownPushEvent
	}
	return json.Marshal(env)
}
