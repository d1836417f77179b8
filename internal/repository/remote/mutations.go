package remote

import (
	"context"
	"net/http"

	"packagesync/internal/entities"
	"packagesync/pkg/logger"
	"packagesync/pkg/ttlcache"
)

func (s *Store) UpdateStatus(
	ctx context.Context,
	id string,
	status entities.PackageStatusType,
	sc entities.StatusContext,
) (*entities.Package, error) {
	if id == "" {
		return nil, entities.NewError(entities.KindInvalidInput, "package id is required", nil)
	}
	if !status.IsValid() {
		return nil, entities.NewError(entities.KindInvalidInput, "unknown status "+string(status), nil)
	}

	old, known := s.cached(id)

	if s.Online() {
		p, err := s.transport.UpdateStatus(ctx, id, status, sc)
		if err == nil && p == nil {
			err = emptyResult()
		}
		if err == nil {
			s.storeServerResult(*p)
			s.emitStatus(old, known, *p)
			out := p.Clone()
			return &out, nil
		}
		if !isConnectivity(err) {
			return nil, classify(err)
		}
		s.goOffline(err)
	}

	meta := entities.NewMutationMeta(id, s.now())
	s.enqueue(&entities.UpdateStatusMutation{MutationMeta: meta, Status: status, Context: sc})

	base := old
	if !known {
		base = entities.Package{ID: id, Status: status, MaxAttempts: entities.DefaultMaxAttempts}
	}
	optimistic := base.ApplyStatus(status, sc, s.now())
	s.storeOptimistic(optimistic)
	s.emitStatus(old, known, optimistic)

	out := optimistic.Clone()
	return &out, nil
}

// CreatePackage создает посылку на сервере, офлайн - оптимистично в кэше.
func (s *Store) CreatePackage(ctx context.Context, p entities.Package) (*entities.Package, error) {
	if p.ID == "" {
		return nil, entities.NewError(entities.KindInvalidInput, "package id is required", nil)
	}

	if s.Online() {
		created, err := s.transport.CreatePackage(ctx, p)
		if err == nil && created == nil {
			err = emptyResult()
		}
		if err == nil {
			s.storeServerResult(*created)
			s.subs.Emit(entities.PackageAdded{Package: created.Clone()})
			out := created.Clone()
			return &out, nil
		}
		if !isConnectivity(err) {
			return nil, classify(err)
		}
		s.goOffline(err)
	}

	now := s.now()
	optimistic := p.Clone()
	if optimistic.CreatedAt.IsZero() {
		optimistic.CreatedAt = now
	}
	optimistic.UpdatedAt = now

	meta := entities.NewMutationMeta(p.ID, now)
	s.enqueue(&entities.CreateMutation{MutationMeta: meta, Package: optimistic.Clone()})
	s.storeOptimistic(optimistic)
	s.subs.Emit(entities.PackageAdded{Package: optimistic.Clone()})

	out := optimistic.Clone()
	return &out, nil
}

// DeletePackage удаляет посылку. Офлайн удаление сразу видно в кэше.
func (s *Store) DeletePackage(ctx context.Context, id string) error {
	if id == "" {
		return entities.NewError(entities.KindInvalidInput, "package id is required", nil)
	}

	if s.Online() {
		err := s.transport.DeletePackage(ctx, id)
		if err == nil || isHTTPStatus(err, http.StatusNotFound) {
			s.forget(id)
			s.subs.Emit(entities.PackageRemoved{ID: id})
			return nil
		}
		if !isConnectivity(err) {
			return classify(err)
		}
		s.goOffline(err)
	}

	meta := entities.NewMutationMeta(id, s.now())
	s.enqueue(&entities.DeleteMutation{MutationMeta: meta})
	s.forget(id)
	s.subs.Emit(entities.PackageRemoved{ID: id})
	return nil
}

// BatchUpdateStatus меняет статусы нескольких посылок одним запросом.
// Офлайн весь пакет ставится в очередь одной мутацией.
func (s *Store) BatchUpdateStatus(ctx context.Context, updates []entities.StatusUpdate) ([]entities.Package, error) {
	if len(updates) == 0 {
		return []entities.Package{}, nil
	}
	for _, u := range updates {
		if u.ID == "" {
			return nil, entities.NewError(entities.KindInvalidInput, "package id is required", nil)
		}
		if !u.Status.IsValid() {
			return nil, entities.NewError(entities.KindInvalidInput, "unknown status "+string(u.Status), nil)
		}
	}

	type before struct {
		pkg   entities.Package
		known bool
	}
	olds := make(map[string]before, len(updates))
	for _, u := range updates {
		p, ok := s.cached(u.ID)
		olds[u.ID] = before{pkg: p, known: ok}
	}

	if s.Online() {
		result, err := s.transport.BatchUpdateStatus(ctx, updates)
		if err == nil {
			for _, p := range result {
				s.storeServerResult(p)
			}
			for _, p := range result {
				o := olds[p.ID]
				s.emitStatus(o.pkg, o.known, p)
			}
			return entities.ClonePackages(result), nil
		}
		if !isConnectivity(err) {
			return nil, classify(err)
		}
		s.goOffline(err)
	}

	now := s.now()
	queued := make([]entities.StatusUpdate, len(updates))
	copy(queued, updates)
	s.enqueue(&entities.BatchUpdateMutation{
		MutationMeta: entities.NewMutationMeta(updates[0].ID, now),
		Updates:      queued,
	})

	out := make([]entities.Package, 0, len(updates))
	for _, u := range updates {
		o := olds[u.ID]
		base := o.pkg
		if !o.known {
			base = entities.Package{ID: u.ID, Status: u.Status, MaxAttempts: entities.DefaultMaxAttempts}
		}
		optimistic := base.ApplyStatus(u.Status, u.Context, now)
		s.storeOptimistic(optimistic)
		olds[u.ID] = before{pkg: optimistic, known: true}
		s.emitStatus(o.pkg, o.known, optimistic)
		out = append(out, optimistic.Clone())
	}
	return out, nil
}

// UpsertPackages принимает записи, уже полученные от сервера (bulk sync),
// и целиком заменяет ими кэшированные версии. Сеть не используется.
func (s *Store) UpsertPackages(_ context.Context, packages []entities.Package) ([]entities.Package, error) {
	for _, p := range packages {
		if p.ID == "" {
			return nil, entities.NewError(entities.KindInvalidInput, "package id is required", nil)
		}
	}

	for _, p := range packages {
		_, known := s.cached(p.ID)
		s.storeOptimistic(p)
		if known {
			s.subs.Emit(entities.PackageUpdated{Package: p.Clone()})
		} else {
			s.subs.Emit(entities.PackageAdded{Package: p.Clone()})
		}
	}
	return entities.ClonePackages(packages), nil
}

func (s *Store) enqueue(m entities.QueuedMutation) {
	s.mu.Lock()
	s.queue = append(s.queue, m)
	depth := len(s.queue)
	s.mu.Unlock()

	QueueDepth.Set(float64(depth))
	s.log.Info("mutation queued for replay",
		logger.NewField("kind", m.Kind()),
		logger.NewField("package_id", m.Meta().TargetID),
		logger.NewField("queue_depth", depth),
	)
}

func (s *Store) goOffline(err error) {
	s.log.Warn("write failed on connectivity, switching to offline queue", logger.NewField("error", err))
	s.setOnline(false)
}

// cached последняя известная версия посылки: деталь или любой список.
func (s *Store) cached(id string) (entities.Package, bool) {
	if e, ok := s.details.GetAny(detailPrefix + id); ok {
		return e.Value.Clone(), true
	}

	var (
		found entities.Package
		ok    bool
	)
	s.lists.Range(listPrefix, func(_ string, e ttlcache.Entry[listEntry]) bool {
		for _, p := range e.Value.Packages {
			if p.ID == id {
				found, ok = p.Clone(), true
				return false
			}
		}
		return true
	})
	return found, ok
}

// storeServerResult подтвержденная сервером запись: деталь обновляется,
// списки инвалидируются, так как сервер мог изменить и другие поля.
func (s *Store) storeServerResult(p entities.Package) {
	s.details.Set(detailPrefix+p.ID, p.Clone())
	s.lists.DeletePrefix(listPrefix)
}

// storeOptimistic запись без подтверждения сервера: деталь обновляется,
// в списках посылка заменяется, добавляется или убирается по фильтрам.
func (s *Store) storeOptimistic(p entities.Package) {
	s.details.Set(detailPrefix+p.ID, p.Clone())
	s.lists.UpdatePrefix(listPrefix, func(le listEntry) listEntry {
		return le.with(p)
	})
}

func (s *Store) forget(id string) {
	s.details.Delete(detailPrefix + id)
	s.lists.UpdatePrefix(listPrefix, func(le listEntry) listEntry {
		return le.without(id)
	})
}

func (s *Store) emitStatus(old entities.Package, known bool, updated entities.Package) {
	p := updated.Clone()
	if !known {
		s.subs.Emit(entities.PackageUpdated{Package: p})
		return
	}
	s.subs.Emit(entities.StatusChanged{
		ID:        updated.ID,
		OldStatus: old.Status,
		NewStatus: updated.Status,
		Package:   &p,
	})
}

func (le listEntry) with(p entities.Package) listEntry {
	out := make([]entities.Package, 0, len(le.Packages)+1)
	replaced := false
	for _, existing := range le.Packages {
		if existing.ID != p.ID {
			out = append(out, existing)
			continue
		}
		replaced = true
		if le.Filters.Match(p) {
			out = append(out, p.Clone())
		}
	}
	if !replaced && le.Filters.Match(p) {
		out = append(out, p.Clone())
	}
	le.Packages = out
	return le
}

func (le listEntry) without(id string) listEntry {
	out := make([]entities.Package, 0, len(le.Packages))
	for _, p := range le.Packages {
		if p.ID != id {
			out = append(out, p)
		}
	}
	le.Packages = out
	return le
}
