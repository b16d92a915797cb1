package events

import (
	"context"
	"encoding/json"

	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ActivityLog records project events in the activities table.
type ActivityLog struct {
	table store.Table[models.Activity]
	log   *zap.Logger
}

func NewActivityLog(table store.Table[models.Activity], log *zap.Logger) *ActivityLog {
	log = logger.OrNop(log)
	return &ActivityLog{table: table, log: log}
}

// Publish stores e. Events without a project are ignored.
func (a *ActivityLog) Publish(ctx context.Context, e Event) {
	if e.ProjectID == uuid.Nil {
		return
	}

	activity := models.Activity{
		ProjectID:  e.ProjectID,
		UserID:     e.UserID,
		ActionType: string(e.Type),
	}
	if e.Data != nil {
		data, err := json.Marshal(e.Data)
		if err == nil {
			activity.Metadata = data
			activity.TargetID = targetID(data)
		}
	}

	if err := a.table.Insert(ctx, &activity); err != nil {
		a.log.Warn("record activity failed", zap.String("type", string(e.Type)), zap.Error(err))
	}
}

// targetID pulls the "id" field out of an event payload.
func targetID(data []byte) *uuid.UUID {
	var v struct {
		ID uuid.UUID `json:"id"`
	}
	if err := json.Unmarshal(data, &v); err != nil || v.ID == uuid.Nil {
		return nil
	}
	return &v.ID
}
