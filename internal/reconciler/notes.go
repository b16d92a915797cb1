package reconciler

import (
	"context"

	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
)

// AddNote attaches a note to a milestone of the active project.
func (r *Reconciler) AddNote(ctx context.Context, milestoneID uuid.UUID, req models.CreateNoteRequest) (models.Note, error) {
	var projectID uuid.UUID
	return mutate(ctx, r, mutation[models.Note]{
		kind: "note",
		check: func() error {
			if err := req.Validate(); err != nil {
				return err
			}
			mi := r.activeMilestoneIndex(milestoneID)
			if mi < 0 {
				return ErrNotFound
			}
			projectID = r.projects[r.session.ActiveIndex].ID
			return nil
		},
		remote: func(ctx context.Context) (models.Note, error) {
			n := models.Note{
				MilestoneID: milestoneID,
				Type:        req.Type,
				Content:     req.Content,
				CreatedBy:   r.Session().UserID,
			}
			err := r.store.Notes.Insert(ctx, &n)
			return n, err
		},
		mirror: func(n models.Note) {
			if mi := r.activeMilestoneIndex(n.MilestoneID); mi >= 0 {
				m := &r.projects[r.session.ActiveIndex].Milestones[mi]
				m.Notes = append(m.Notes, n)
			}
		},
		event: func(n models.Note) events.Event {
			return r.newEvent(events.NoteAdded, projectID, n)
		},
	})
}

func (r *Reconciler) DeleteNote(ctx context.Context, noteID, milestoneID uuid.UUID) error {
	var (
		projectID uuid.UUID
		current   models.Note
	)
	_, err := mutate(ctx, r, mutation[models.Note]{
		kind: "note",
		check: func() error {
			mi := r.activeMilestoneIndex(milestoneID)
			if mi < 0 {
				return ErrNotFound
			}
			p := r.projects[r.session.ActiveIndex]
			for _, n := range p.Milestones[mi].Notes {
				if n.ID == noteID {
					projectID = p.ID
					current = n
					return nil
				}
			}
			return ErrNotFound
		},
		remote: func(ctx context.Context) (models.Note, error) {
			return current, r.store.Notes.Delete(ctx, store.Filter{"id": noteID, "milestone_id": milestoneID})
		},
		mirror: func(n models.Note) {
			mi := r.activeMilestoneIndex(n.MilestoneID)
			if mi < 0 {
				return
			}
			m := &r.projects[r.session.ActiveIndex].Milestones[mi]
			for i := range m.Notes {
				if m.Notes[i].ID == n.ID {
					m.Notes = append(m.Notes[:i:i], m.Notes[i+1:]...)
					return
				}
			}
		},
		event: func(n models.Note) events.Event {
			return r.newEvent(events.NoteDeleted, projectID, map[string]string{"id": n.ID.String(), "milestoneId": n.MilestoneID.String()})
		},
	})
	return err
}

// activeMilestoneIndex scans the active project's milestones; mu must be held.
func (r *Reconciler) activeMilestoneIndex(id uuid.UUID) int {
	if len(r.projects) == 0 {
		return -1
	}
	for i, m := range r.projects[r.session.ActiveIndex].Milestones {
		if m.ID == id {
			return i
		}
	}
	return -1
}
