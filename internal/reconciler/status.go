package reconciler

import (
	"context"

	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
)

// AddStatusUpdate inserts an update and prepends it locally, matching the
// newest-first order LoadAll uses. Projects whose list was never loaded keep
// a nil list so readers go back to the store.
func (r *Reconciler) AddStatusUpdate(ctx context.Context, projectID uuid.UUID, req models.CreateStatusUpdateRequest) (models.StatusUpdate, error) {
	return mutate(ctx, r, mutation[models.StatusUpdate]{
		kind: "status_update",
		check: func() error {
			if err := req.Validate(); err != nil {
				return err
			}
			if r.projectIndex(projectID) < 0 {
				return ErrNotFound
			}
			return nil
		},
		remote: func(ctx context.Context) (models.StatusUpdate, error) {
			s := models.StatusUpdate{
				ProjectID: projectID,
				Content:   req.Content,
				Status:    req.Status,
				CreatedBy: r.Session().UserID,
			}
			err := r.store.StatusUpdates.Insert(ctx, &s)
			return s, err
		},
		mirror: func(s models.StatusUpdate) {
			if i := r.projectIndex(s.ProjectID); i >= 0 && r.projects[i].StatusUpdates != nil {
				r.projects[i].StatusUpdates = append([]models.StatusUpdate{s}, r.projects[i].StatusUpdates...)
			}
		},
		event: func(s models.StatusUpdate) events.Event {
			return r.newEvent(events.StatusAdded, s.ProjectID, s)
		},
	})
}

func (r *Reconciler) EditStatusUpdate(ctx context.Context, updated models.StatusUpdate) (models.StatusUpdate, error) {
	var current models.StatusUpdate
	return mutate(ctx, r, mutation[models.StatusUpdate]{
		kind: "status_update",
		check: func() error {
			if err := updated.Validate(); err != nil {
				return err
			}
			pi, si := r.statusIndex(updated.ID)
			if pi < 0 {
				return ErrNotFound
			}
			current = r.projects[pi].StatusUpdates[si]
			return nil
		},
		remote: func(ctx context.Context) (models.StatusUpdate, error) {
			patch := map[string]any{"content": updated.Content, "status_type": updated.Status}
			if err := r.store.StatusUpdates.Update(ctx, patch, store.Filter{"id": updated.ID}); err != nil {
				return models.StatusUpdate{}, err
			}
			s := current
			s.Content = updated.Content
			s.Status = updated.Status
			return s, nil
		},
		mirror: func(s models.StatusUpdate) {
			if pi, si := r.statusIndex(s.ID); pi >= 0 {
				r.projects[pi].StatusUpdates[si] = s
			}
		},
		event: func(s models.StatusUpdate) events.Event {
			return r.newEvent(events.StatusUpdated, s.ProjectID, s)
		},
	})
}

// DeleteStatusUpdate removes one entry from its project's list; other
// projects are not touched.
func (r *Reconciler) DeleteStatusUpdate(ctx context.Context, id uuid.UUID) error {
	var current models.StatusUpdate
	_, err := mutate(ctx, r, mutation[models.StatusUpdate]{
		kind: "status_update",
		check: func() error {
			pi, si := r.statusIndex(id)
			if pi < 0 {
				return ErrNotFound
			}
			current = r.projects[pi].StatusUpdates[si]
			return nil
		},
		remote: func(ctx context.Context) (models.StatusUpdate, error) {
			return current, r.store.StatusUpdates.Delete(ctx, store.Filter{"id": id})
		},
		mirror: func(s models.StatusUpdate) {
			if pi, si := r.statusIndex(s.ID); pi >= 0 {
				list := r.projects[pi].StatusUpdates
				r.projects[pi].StatusUpdates = append(list[:si:si], list[si+1:]...)
			}
		},
		event: func(s models.StatusUpdate) events.Event {
			return r.newEvent(events.StatusDeleted, s.ProjectID, map[string]string{"id": s.ID.String()})
		},
	})
	return err
}

// statusIndex searches the loaded status lists; mu must be held.
func (r *Reconciler) statusIndex(id uuid.UUID) (pi, si int) {
	for pi := range r.projects {
		for si := range r.projects[pi].StatusUpdates {
			if r.projects[pi].StatusUpdates[si].ID == id {
				return pi, si
			}
		}
	}
	return -1, -1
}

// StatusUpdate returns a loaded status update.
func (r *Reconciler) StatusUpdate(id uuid.UUID) (models.StatusUpdate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, si := r.statusIndex(id)
	if pi < 0 {
		return models.StatusUpdate{}, false
	}
	return r.projects[pi].StatusUpdates[si], true
}
