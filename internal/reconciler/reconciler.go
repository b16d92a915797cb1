// Package reconciler keeps one session's in-memory project tree aligned with
// the row store. Every mutation goes to the store first and is mirrored
// locally only after the store confirms it.
package reconciler

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/gminsights/roadmap-api/internal/catalog"
	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
)

// Session is the explicit per-user state the reconciler works for.
type Session struct {
	UserID      uuid.UUID
	Email       string
	ActiveIndex int
}

type Preferences interface {
	ActiveProject(ctx context.Context, userID uuid.UUID) (int, bool, error)
	SetActiveProject(ctx context.Context, userID uuid.UUID, index int) error
}

type Options struct {
	Preferences Preferences
	Publisher   events.Publisher
	Logger      *zap.Logger
	// Goals restricts project goal tags; nil accepts any tag.
	Goals *catalog.Catalog
	// LegacyNotesOnLoad runs MigrateLegacyNotes at the start of every LoadAll.
	LegacyNotesOnLoad bool
}

type Reconciler struct {
	store        *store.Store
	prefs        Preferences
	pub          events.Publisher
	log          *zap.Logger
	goals        *catalog.Catalog
	legacyOnLoad bool

	// opMu serializes loads and mutations, so positions computed from the
	// local tree cannot race within one session.
	opMu sync.Mutex

	mu       sync.RWMutex
	session  Session
	projects []models.Project
	loaded   bool
}

func New(st *store.Store, session Session, opts Options) *Reconciler {
	log := opts.Logger
	log = logger.OrNop(log)
	pub := opts.Publisher
	if pub == nil {
		pub = events.Nop{}
	}
	return &Reconciler{
		store:        st,
		prefs:        opts.Preferences,
		pub:          pub,
		log:          log.With(zap.Stringer("user", session.UserID)),
		goals:        opts.Goals,
		legacyOnLoad: opts.LegacyNotesOnLoad,
		session:      session,
	}
}

func (r *Reconciler) Session() Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.session
}

// Loaded reports whether LoadAll has succeeded at least once.
func (r *Reconciler) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// Projects returns a deep copy of the local tree.
func (r *Reconciler) Projects() []models.Project {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneProjects(r.projects)
}

// ActiveProject returns a copy of the active project.
func (r *Reconciler) ActiveProject() (models.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.projects) == 0 {
		return models.Project{}, false
	}
	return cloneProject(r.projects[r.session.ActiveIndex]), true
}

// Project returns a copy of the project with the given id.
func (r *Reconciler) Project(id uuid.UUID) (models.Project, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	i := r.projectIndex(id)
	if i < 0 {
		return models.Project{}, false
	}
	return cloneProject(r.projects[i]), true
}

// LoadAll fetches every project with its milestones and notes, plus the
// status updates of the active project, and replaces the local tree.
func (r *Reconciler) LoadAll(ctx context.Context) ([]models.Project, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	if r.legacyOnLoad {
		if _, err := MigrateLegacyNotes(ctx, r.store, r.Session().UserID, r.log); err != nil {
			return nil, err
		}
	}

	r.mu.RLock()
	active := r.session.ActiveIndex
	loaded := r.loaded
	var knownID uuid.UUID
	if active < len(r.projects) {
		knownID = r.projects[active].ID
	}
	userID := r.session.UserID
	r.mu.RUnlock()

	if !loaded && r.prefs != nil {
		idx, found, err := r.prefs.ActiveProject(ctx, userID)
		if err != nil {
			r.log.Warn("read active project preference", zap.Error(err))
		} else if found {
			active = idx
		}
	}

	var (
		projects []models.Project
		updates  []models.StatusUpdate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		projects, err = r.store.Projects.Select(gctx, store.Query{
			Nested: []string{"Milestones.Notes"},
			Order:  "created_at ASC",
		})
		return err
	})
	if knownID != uuid.Nil {
		g.Go(func() error {
			var err error
			updates, err = r.selectStatusUpdates(gctx, knownID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		r.log.Error("load projects", zap.Error(err))
		return nil, err
	}

	active = clampIndex(active, len(projects))
	if len(projects) > 0 {
		if projects[active].ID != knownID {
			var err error
			if updates, err = r.selectStatusUpdates(ctx, projects[active].ID); err != nil {
				r.log.Error("load status updates", zap.Error(err))
				return nil, err
			}
		}
		projects[active].StatusUpdates = nonNil(updates)
	}
	for i := range projects {
		normalizeProject(&projects[i])
	}

	r.mu.Lock()
	r.projects = projects
	r.session.ActiveIndex = active
	r.loaded = true
	out := cloneProjects(r.projects)
	r.mu.Unlock()

	r.log.Debug("projects loaded", zap.Int("count", len(out)), zap.Int("active", active))
	return out, nil
}

// SwitchProject makes the project at index active, fetches its status
// updates, and persists the choice.
func (r *Reconciler) SwitchProject(ctx context.Context, index int) (models.Project, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	r.mu.RLock()
	n := len(r.projects)
	var id uuid.UUID
	if index >= 0 && index < n {
		id = r.projects[index].ID
	}
	r.mu.RUnlock()

	if index < 0 || index >= n {
		return models.Project{}, &models.ValidationError{
			Field:   "index",
			Message: fmt.Sprintf("Project index must be between 0 and %d", n-1),
		}
	}

	updates, err := r.selectStatusUpdates(ctx, id)
	if err != nil {
		return models.Project{}, err
	}

	r.mu.Lock()
	i := r.projectIndex(id)
	if i < 0 {
		r.mu.Unlock()
		return models.Project{}, ErrNotFound
	}
	r.projects[i].StatusUpdates = nonNil(updates)
	r.session.ActiveIndex = i
	p := cloneProject(r.projects[i])
	r.mu.Unlock()

	r.persistActive(ctx)
	return p, nil
}

// StatusBuckets groups the status updates of a loaded project.
func (r *Reconciler) StatusBuckets(projectID uuid.UUID) (Buckets, error) {
	p, ok := r.Project(projectID)
	if !ok {
		return Buckets{}, ErrNotFound
	}
	return GroupByStatus(p.StatusUpdates), nil
}

func (r *Reconciler) selectStatusUpdates(ctx context.Context, projectID uuid.UUID) ([]models.StatusUpdate, error) {
	return r.store.StatusUpdates.Select(ctx, store.Query{
		Filter: store.Filter{"project_id": projectID},
		Order:  "created_at DESC",
	})
}

func (r *Reconciler) persistActive(ctx context.Context) {
	if r.prefs == nil {
		return
	}
	s := r.Session()
	if err := r.prefs.SetActiveProject(ctx, s.UserID, s.ActiveIndex); err != nil {
		r.log.Warn("persist active project", zap.Error(err))
	}
}

// projectIndex must be called with mu held.
func (r *Reconciler) projectIndex(id uuid.UUID) int {
	for i := range r.projects {
		if r.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func clampIndex(i, n int) int {
	if i < 0 || i >= n {
		return 0
	}
	return i
}

func normalizeProject(p *models.Project) {
	if p.Milestones == nil {
		p.Milestones = []models.Milestone{}
	}
	sort.SliceStable(p.Milestones, func(i, j int) bool {
		a, b := p.Milestones[i], p.Milestones[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	for i := range p.Milestones {
		m := &p.Milestones[i]
		if m.Notes == nil {
			m.Notes = []models.Note{}
		}
		sort.SliceStable(m.Notes, func(a, b int) bool {
			return m.Notes[a].CreatedAt.Before(m.Notes[b].CreatedAt)
		})
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func cloneProjects(in []models.Project) []models.Project {
	out := make([]models.Project, len(in))
	for i := range in {
		out[i] = cloneProject(in[i])
	}
	return out
}

func cloneProject(p models.Project) models.Project {
	p.Goals = append(p.Goals[:0:0], p.Goals...)
	p.KPIs = append(p.KPIs[:0:0], p.KPIs...)
	if p.StatusUpdates != nil {
		p.StatusUpdates = append([]models.StatusUpdate{}, p.StatusUpdates...)
	}
	ms := make([]models.Milestone, len(p.Milestones))
	for i, m := range p.Milestones {
		ms[i] = cloneMilestone(m)
	}
	p.Milestones = ms
	return p
}

func cloneMilestone(m models.Milestone) models.Milestone {
	m.Notes = append([]models.Note{}, m.Notes...)
	if m.LegacyNotes != nil {
		raw := append(datatypes.JSON{}, *m.LegacyNotes...)
		m.LegacyNotes = &raw
	}
	return m
}
