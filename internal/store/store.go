// Package store is the row store the reconciler talks to: generic
// select/insert/update/delete per table, backed by GORM.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gminsights/roadmap-api/internal/metrics"
	"github.com/gminsights/roadmap-api/internal/models"
	"gorm.io/gorm"
)

const (
	TableProjects      = "projects"
	TableMilestones    = "milestones"
	TableNotes         = "milestone_notes"
	TableStatusUpdates = "status_updates"
	TableProfiles      = "profiles"
	TableActivities    = "activities"
)

// ErrNoRows is returned by Update and Delete when the filter matched nothing.
var ErrNoRows = errors.New("no matching rows")

// RemoteOperationError wraps any failure reported by the store.
type RemoteOperationError struct {
	Table string
	Op    string
	Err   error
}

func (e *RemoteOperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteOperationError) Unwrap() error {
	return e.Err
}

// Filter is an equality filter, column -> value.
type Filter map[string]any

type Query struct {
	Columns []string
	Filter  Filter
	Where   string // optional raw condition, ANDed with Filter
	Args    []any
	Order   string
	Nested  []string // child relations to join, e.g. "Milestones.Notes"
	Limit   int
	Offset  int
}

type Table[T any] interface {
	Name() string
	Select(ctx context.Context, q Query) ([]T, error)
	Insert(ctx context.Context, row *T) error
	Update(ctx context.Context, patch map[string]any, f Filter) error
	Delete(ctx context.Context, f Filter) error
	Count(ctx context.Context, f Filter) (int64, error)
}

type Store struct {
	Projects      Table[models.Project]
	Milestones    Table[models.Milestone]
	Notes         Table[models.Note]
	StatusUpdates Table[models.StatusUpdate]
	Profiles      Table[models.Profile]
	Activities    Table[models.Activity]
}

func New(db *gorm.DB) *Store {
	return &Store{
		Projects:      &gormTable[models.Project]{db: db, name: TableProjects},
		Milestones:    &gormTable[models.Milestone]{db: db, name: TableMilestones},
		Notes:         &gormTable[models.Note]{db: db, name: TableNotes},
		StatusUpdates: &gormTable[models.StatusUpdate]{db: db, name: TableStatusUpdates},
		Profiles:      &gormTable[models.Profile]{db: db, name: TableProfiles},
		Activities:    &gormTable[models.Activity]{db: db, name: TableActivities},
	}
}

type gormTable[T any] struct {
	db   *gorm.DB
	name string
}

func (t *gormTable[T]) Name() string {
	return t.name
}

func (t *gormTable[T]) fail(op string, err error) error {
	return &RemoteOperationError{Table: t.name, Op: op, Err: err}
}

func (t *gormTable[T]) Select(ctx context.Context, q Query) ([]T, error) {
	defer observe("select", t.name, time.Now())

	tx := t.db.WithContext(ctx).Model(new(T))
	if len(q.Columns) > 0 {
		tx = tx.Select(q.Columns)
	}
	if len(q.Filter) > 0 {
		tx = tx.Where(map[string]interface{}(q.Filter))
	}
	if q.Where != "" {
		tx = tx.Where(q.Where, q.Args...)
	}
	for _, rel := range q.Nested {
		tx = tx.Preload(rel)
	}
	if q.Order != "" {
		tx = tx.Order(q.Order)
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}

	var rows []T
	if err := tx.Find(&rows).Error; err != nil {
		return nil, t.fail("select", err)
	}
	return rows, nil
}

func (t *gormTable[T]) Insert(ctx context.Context, row *T) error {
	defer observe("insert", t.name, time.Now())

	if err := t.db.WithContext(ctx).Create(row).Error; err != nil {
		return t.fail("insert", err)
	}
	return nil
}

func (t *gormTable[T]) Update(ctx context.Context, patch map[string]any, f Filter) error {
	defer observe("update", t.name, time.Now())

	if len(f) == 0 {
		return t.fail("update", gorm.ErrMissingWhereClause)
	}
	res := t.db.WithContext(ctx).Model(new(T)).
		Where(map[string]interface{}(f)).
		Updates(map[string]interface{}(patch))
	if res.Error != nil {
		return t.fail("update", res.Error)
	}
	if res.RowsAffected == 0 {
		return t.fail("update", ErrNoRows)
	}
	return nil
}

func (t *gormTable[T]) Delete(ctx context.Context, f Filter) error {
	defer observe("delete", t.name, time.Now())

	if len(f) == 0 {
		return t.fail("delete", gorm.ErrMissingWhereClause)
	}
	res := t.db.WithContext(ctx).Where(map[string]interface{}(f)).Delete(new(T))
	if res.Error != nil {
		return t.fail("delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return t.fail("delete", ErrNoRows)
	}
	return nil
}

func (t *gormTable[T]) Count(ctx context.Context, f Filter) (int64, error) {
	defer observe("count", t.name, time.Now())

	tx := t.db.WithContext(ctx).Model(new(T))
	if len(f) > 0 {
		tx = tx.Where(map[string]interface{}(f))
	}
	var n int64
	if err := tx.Count(&n).Error; err != nil {
		return 0, t.fail("count", err)
	}
	return n, nil
}

func observe(op, table string, start time.Time) {
	metrics.RecordDBQueryDuration(op, table, time.Since(start))
}
