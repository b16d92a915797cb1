package reconciler

import (
	"context"

	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
)

// AddMilestone appends a milestone whose position is the project's current
// local milestone count. Positions are not guarded against other sessions
// inserting concurrently.
func (r *Reconciler) AddMilestone(ctx context.Context, projectID uuid.UUID, req models.CreateMilestoneRequest) (models.Milestone, error) {
	var position int
	return mutate(ctx, r, mutation[models.Milestone]{
		kind: "milestone",
		check: func() error {
			if err := req.Validate(); err != nil {
				return err
			}
			i := r.projectIndex(projectID)
			if i < 0 {
				return ErrNotFound
			}
			position = len(r.projects[i].Milestones)
			return nil
		},
		remote: func(ctx context.Context) (models.Milestone, error) {
			m := models.Milestone{
				ProjectID:   projectID,
				Title:       req.Title,
				Description: req.Description,
				Date:        req.Date,
				Completion:  req.Completion,
				Position:    position,
			}
			if err := r.store.Milestones.Insert(ctx, &m); err != nil {
				return models.Milestone{}, err
			}
			m.Notes = []models.Note{}
			return m, nil
		},
		mirror: func(m models.Milestone) {
			if i := r.projectIndex(m.ProjectID); i >= 0 {
				r.projects[i].Milestones = append(r.projects[i].Milestones, cloneMilestone(m))
			}
		},
		event: func(m models.Milestone) events.Event {
			return r.newEvent(events.MilestoneAdded, m.ProjectID, m)
		},
	})
}

// EditMilestone writes the editable fields of updated (title, description,
// date, completion). Position and notes are kept.
func (r *Reconciler) EditMilestone(ctx context.Context, updated models.Milestone) (models.Milestone, error) {
	var current models.Milestone
	return mutate(ctx, r, mutation[models.Milestone]{
		kind: "milestone",
		check: func() error {
			if err := updated.Validate(); err != nil {
				return err
			}
			pi, mi := r.milestoneIndex(updated.ID)
			if pi < 0 {
				return ErrNotFound
			}
			current = cloneMilestone(r.projects[pi].Milestones[mi])
			return nil
		},
		remote: func(ctx context.Context) (models.Milestone, error) {
			patch := map[string]any{
				"title":       updated.Title,
				"description": updated.Description,
				"date":        updated.Date,
				"completion":  updated.Completion,
			}
			if err := r.store.Milestones.Update(ctx, patch, store.Filter{"id": updated.ID}); err != nil {
				return models.Milestone{}, err
			}
			m := current
			m.Title = updated.Title
			m.Description = updated.Description
			m.Date = updated.Date
			m.Completion = updated.Completion
			return m, nil
		},
		mirror: func(m models.Milestone) {
			if pi, mi := r.milestoneIndex(m.ID); pi >= 0 {
				r.projects[pi].Milestones[mi] = cloneMilestone(m)
			}
		},
		event: func(m models.Milestone) events.Event {
			return r.newEvent(events.MilestoneUpdated, m.ProjectID, m)
		},
	})
}

// DeleteMilestone removes the milestone. Remaining positions are not
// compacted and its notes are left in place.
func (r *Reconciler) DeleteMilestone(ctx context.Context, id uuid.UUID) error {
	var current models.Milestone
	_, err := mutate(ctx, r, mutation[models.Milestone]{
		kind: "milestone",
		check: func() error {
			pi, mi := r.milestoneIndex(id)
			if pi < 0 {
				return ErrNotFound
			}
			current = r.projects[pi].Milestones[mi]
			return nil
		},
		remote: func(ctx context.Context) (models.Milestone, error) {
			return current, r.store.Milestones.Delete(ctx, store.Filter{"id": id})
		},
		mirror: func(m models.Milestone) {
			if pi, mi := r.milestoneIndex(m.ID); pi >= 0 {
				ms := r.projects[pi].Milestones
				r.projects[pi].Milestones = append(ms[:mi:mi], ms[mi+1:]...)
			}
		},
		event: func(m models.Milestone) events.Event {
			return r.newEvent(events.MilestoneDeleted, m.ProjectID, map[string]string{"id": m.ID.String()})
		},
	})
	return err
}

// milestoneIndex searches every project; mu must be held.
func (r *Reconciler) milestoneIndex(id uuid.UUID) (pi, mi int) {
	for pi := range r.projects {
		for mi := range r.projects[pi].Milestones {
			if r.projects[pi].Milestones[mi].ID == id {
				return pi, mi
			}
		}
	}
	return -1, -1
}

// Milestone returns a copy of a loaded milestone.
func (r *Reconciler) Milestone(id uuid.UUID) (models.Milestone, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	pi, mi := r.milestoneIndex(id)
	if pi < 0 {
		return models.Milestone{}, false
	}
	return cloneMilestone(r.projects[pi].Milestones[mi]), true
}
