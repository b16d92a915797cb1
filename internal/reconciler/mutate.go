package reconciler

import (
	"context"
	"fmt"

	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/metrics"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// mutation describes one single-row change. Steps run in order: check
// (local preconditions, read lock held), role check, remote, then mirror
// (write lock held). A failure at any step leaves the tree untouched.
// after runs on success while opMu is still held.
type mutation[T any] struct {
	kind   string
	check  func() error
	remote func(ctx context.Context) (T, error)
	mirror func(row T)
	after  func(ctx context.Context, row T)
	event  func(row T) events.Event
}

func mutate[T any](ctx context.Context, r *Reconciler, m mutation[T]) (T, error) {
	r.opMu.Lock()
	defer r.opMu.Unlock()

	row, err := run(ctx, r, m)
	metrics.IncrementMutation(m.kind, outcome(err))
	if err != nil {
		r.log.Warn("mutation failed", zap.String("kind", m.kind), zap.Error(err))
		var zero T
		return zero, err
	}

	if m.after != nil {
		m.after(ctx, row)
	}
	if m.event != nil {
		r.pub.Publish(ctx, m.event(row))
	}
	return row, nil
}

func run[T any](ctx context.Context, r *Reconciler, m mutation[T]) (T, error) {
	var zero T

	if m.check != nil {
		r.mu.RLock()
		err := m.check()
		r.mu.RUnlock()
		if err != nil {
			return zero, err
		}
	}

	if err := r.requireEditor(ctx); err != nil {
		return zero, err
	}

	row, err := m.remote(ctx)
	if err != nil {
		return zero, err
	}

	r.mu.Lock()
	m.mirror(row)
	r.mu.Unlock()
	return row, nil
}

// requireEditor reads the session user's profile row and fails unless the
// role is editor.
func (r *Reconciler) requireEditor(ctx context.Context) error {
	userID := r.Session().UserID
	rows, err := r.store.Profiles.Select(ctx, store.Query{
		Columns: []string{"id", "role"},
		Filter:  store.Filter{"id": userID},
		Limit:   1,
	})
	if err != nil {
		return fmt.Errorf("%w: could not verify user role: %v", ErrPermission, err)
	}
	if len(rows) == 0 || rows[0].Role != models.RoleEditor {
		return ErrPermission
	}
	return nil
}

func (r *Reconciler) newEvent(t events.Type, projectID uuid.UUID, data any) events.Event {
	return events.Event{Type: t, ProjectID: projectID, UserID: r.Session().UserID, Data: data}
}
