package reconciler

import (
	"context"
	"strings"

	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CreateProject inserts a project, appends it locally with no milestones and
// makes it the active project.
func (r *Reconciler) CreateProject(ctx context.Context, req models.CreateProjectRequest) (models.Project, error) {
	return mutate(ctx, r, mutation[models.Project]{
		kind: "project",
		check: func() error {
			if err := req.Validate(); err != nil {
				return err
			}
			if r.goals != nil {
				return r.goals.Validate(req.Goals)
			}
			return nil
		},
		remote: func(ctx context.Context) (models.Project, error) {
			p := models.Project{
				Name:      strings.TrimSpace(req.Name),
				Summary:   req.Summary,
				Goals:     datatypes.JSONSlice[string](nonNil(req.Goals)),
				KPIs:      datatypes.JSONSlice[string](nonNil(req.KPIs)),
				CreatedBy: r.Session().UserID,
			}
			if err := r.store.Projects.Insert(ctx, &p); err != nil {
				return models.Project{}, err
			}
			p.Milestones = []models.Milestone{}
			p.StatusUpdates = []models.StatusUpdate{}
			return p, nil
		},
		mirror: func(p models.Project) {
			r.projects = append(r.projects, cloneProject(p))
			r.session.ActiveIndex = len(r.projects) - 1
		},
		after: func(ctx context.Context, _ models.Project) {
			r.persistActive(ctx)
		},
		event: func(p models.Project) events.Event {
			return r.newEvent(events.ProjectCreated, p.ID, p)
		},
	})
}

func (r *Reconciler) UpdateProjectSummary(ctx context.Context, projectID uuid.UUID, summary string) (models.Project, error) {
	_, err := mutate(ctx, r, mutation[models.Project]{
		kind: "project",
		check: func() error {
			if err := (models.UpdateSummaryRequest{Summary: summary}).Validate(); err != nil {
				return err
			}
			if r.projectIndex(projectID) < 0 {
				return ErrNotFound
			}
			return nil
		},
		remote: func(ctx context.Context) (models.Project, error) {
			err := r.store.Projects.Update(ctx, map[string]any{"summary": summary}, store.Filter{"id": projectID})
			return models.Project{ID: projectID, Summary: summary}, err
		},
		mirror: func(p models.Project) {
			if i := r.projectIndex(p.ID); i >= 0 {
				r.projects[i].Summary = p.Summary
			}
		},
		event: func(p models.Project) events.Event {
			return r.newEvent(events.ProjectUpdated, p.ID, map[string]string{"summary": p.Summary})
		},
	})
	if err != nil {
		return models.Project{}, err
	}

	p, _ := r.Project(projectID)
	return p, nil
}
