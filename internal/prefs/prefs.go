// Package prefs persists per-user client state, currently the last-viewed
// project index.
package prefs

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const activeProjectKey = "roadmap:active_project"

// Key is the storage key holding a user's last-viewed project index.
func Key(userID uuid.UUID) string {
	return activeProjectKey + ":" + userID.String()
}

type Store interface {
	// ActiveProject returns the stored index and whether one was found.
	ActiveProject(ctx context.Context, userID uuid.UUID) (int, bool, error)
	SetActiveProject(ctx context.Context, userID uuid.UUID, index int) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(addr, password string, db int) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}))
}

func NewRedisStoreWithClient(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func (s *RedisStore) ActiveProject(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	v, err := s.rdb.Get(ctx, Key(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	idx, err := strconv.Atoi(v)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt active project index %q: %w", v, err)
	}
	return idx, true, nil
}

func (s *RedisStore) SetActiveProject(ctx context.Context, userID uuid.UUID, index int) error {
	return s.rdb.Set(ctx, Key(userID), index, 0).Err()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// SQLStore keeps preferences in the preferences table.
type SQLStore struct {
	db *gorm.DB
}

func NewSQLStore(db *gorm.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) ActiveProject(ctx context.Context, userID uuid.UUID) (int, bool, error) {
	var pref models.Preference
	err := s.db.WithContext(ctx).
		Where(map[string]interface{}{"user_id": userID, "key": activeProjectKey}).
		Take(&pref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	idx, err := strconv.Atoi(pref.Value)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt active project index %q: %w", pref.Value, err)
	}
	return idx, true, nil
}

func (s *SQLStore) SetActiveProject(ctx context.Context, userID uuid.UUID, index int) error {
	pref := models.Preference{
		UserID:    userID,
		Key:       activeProjectKey,
		Value:     strconv.Itoa(index),
		UpdatedAt: time.Now(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&pref).Error
}
