package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	MutationMaxAge      = time.Hour
	MutationMaxAttempts = 3
)

// QueuedMutation мутация, отложенная до восстановления связи.
// Закрытый вариант: UpdateStatusMutation, CreateMutation, DeleteMutation, BatchUpdateMutation.
type QueuedMutation interface {
	Meta() *MutationMeta
	Kind() string
	isMutation()
}

type MutationMeta struct {
	ID           uuid.UUID
	TargetID     string
	EnqueuedAt   time.Time
	AttemptCount int
}

// Expired мутация старше maxAge или исчерпала попытки.
func (m *MutationMeta) Expired(now time.Time, maxAge time.Duration, maxAttempts int) bool {
	return now.Sub(m.EnqueuedAt) > maxAge || m.AttemptCount >= maxAttempts
}

type UpdateStatusMutation struct {
	MutationMeta
	Status  PackageStatusType
	Context StatusContext
}

type CreateMutation struct {
	MutationMeta
	Package Package
}

type DeleteMutation struct {
	MutationMeta
}

type BatchUpdateMutation struct {
	MutationMeta
	Updates []StatusUpdate
}

func (m *UpdateStatusMutation) Meta() *MutationMeta { return &m.MutationMeta }
func (m *CreateMutation) Meta() *MutationMeta       { return &m.MutationMeta }
func (m *DeleteMutation) Meta() *MutationMeta       { return &m.MutationMeta }
func (m *BatchUpdateMutation) Meta() *MutationMeta  { return &m.MutationMeta }

func (*UpdateStatusMutation) Kind() string { return "update_status" }
func (*CreateMutation) Kind() string       { return "create" }
func (*DeleteMutation) Kind() string       { return "delete" }
func (*BatchUpdateMutation) Kind() string  { return "batch_update" }

func (*UpdateStatusMutation) isMutation() {}
func (*CreateMutation) isMutation()       {}
func (*DeleteMutation) isMutation()       {}
func (*BatchUpdateMutation) isMutation()  {}

func NewMutationMeta(targetID string, now time.Time) MutationMeta {
	return MutationMeta{
		ID:         uuid.New(),
		TargetID:   targetID,
		EnqueuedAt: now,
	}
}
