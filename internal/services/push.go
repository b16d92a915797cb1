package services

import (
	"context"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/logger"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Sender is the part of the FCM client the push service needs.
type Sender interface {
	Send(ctx context.Context, msg *messaging.Message) (string, error)
}

// PushService notifies every other user with a registered device when a
// status update is posted.
type PushService struct {
	client   Sender
	profiles store.Table[models.Profile]
	log      *zap.Logger
	wg       sync.WaitGroup
}

// NewPush connects to Firebase Cloud Messaging. With no service account
// configured it returns a service that sends nothing.
func NewPush(ctx context.Context, serviceAccountPath string, profiles store.Table[models.Profile], log *zap.Logger) (*PushService, error) {
	log = logger.OrNop(log)
	if serviceAccountPath == "" {
		log.Info("FCM: no service account configured, push notifications disabled")
		return &PushService{profiles: profiles, log: log}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("get messaging client: %w", err)
	}

	log.Info("FCM: push notifications enabled")
	return NewPushWithSender(client, profiles, log), nil
}

func NewPushWithSender(client Sender, profiles store.Table[models.Profile], log *zap.Logger) *PushService {
	log = logger.OrNop(log)
	return &PushService{client: client, profiles: profiles, log: log}
}

// Publish implements events.Publisher. Sends happen in the background.
func (p *PushService) Publish(ctx context.Context, e events.Event) {
	if p.client == nil || e.Type != events.StatusAdded {
		return
	}
	update, ok := e.Data.(models.StatusUpdate)
	if !ok {
		return
	}

	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.notify(ctx, e, update)
	}()
}

// Wait blocks until every background send has finished.
func (p *PushService) Wait() {
	p.wg.Wait()
}

func (p *PushService) notify(ctx context.Context, e events.Event, update models.StatusUpdate) {
	recipients, err := p.profiles.Select(ctx, store.Query{
		Columns: []string{"id", "fcm_token"},
		Where:   "fcm_token <> '' AND id <> ?",
		Args:    []any{e.UserID},
	})
	if err != nil {
		p.log.Warn("FCM: load device tokens", zap.Error(err))
		return
	}

	data := map[string]string{
		"type":      string(e.Type),
		"projectId": e.ProjectID.String(),
		"statusId":  update.ID.String(),
	}
	for _, r := range recipients {
		msg := &messaging.Message{
			Token: r.FCMToken,
			Notification: &messaging.Notification{
				Title: "New status update: " + update.Status,
				Body:  update.Content,
			},
			Data: data,
		}
		if _, err := p.client.Send(ctx, msg); err != nil {
			p.log.Warn("FCM: send failed", zap.Stringer("user", r.ID), zap.Error(err))
		}
	}
}
