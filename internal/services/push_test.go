package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"firebase.google.com/go/v4/messaging"
	"github.com/gminsights/roadmap-api/internal/events"
	"github.com/gminsights/roadmap-api/internal/models"
	"github.com/gminsights/roadmap-api/internal/store"
	"github.com/gminsights/roadmap-api/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu     sync.Mutex
	tokens []string
	err    error
}

func (f *fakeSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens = append(f.tokens, msg.Token)
	return "id", f.err
}

func TestPush_NotifiesOtherDevices(t *testing.T) {
	db := testutil.NewDB(t)
	author := testutil.CreateProfile(t, db, "author@example.com", models.RoleEditor)
	other := testutil.CreateProfile(t, db, "other@example.com", models.RoleViewer)
	testutil.CreateProfile(t, db, "notoken@example.com", models.RoleViewer)
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", author.ID).Update("fcm_token", "author-token").Error)
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", other.ID).Update("fcm_token", "other-token").Error)

	sender := &fakeSender{}
	push := NewPushWithSender(sender, store.New(db).Profiles, nil)

	push.Publish(context.Background(), events.Event{
		Type:      events.StatusAdded,
		ProjectID: uuid.New(),
		UserID:    author.ID,
		Data:      models.StatusUpdate{ID: uuid.New(), Content: "Shipped", Status: models.StatusCompleted},
	})
	push.Wait()

	assert.Equal(t, []string{"other-token"}, sender.tokens)
}

func TestPush_IgnoresOtherEvents(t *testing.T) {
	sender := &fakeSender{}
	push := NewPushWithSender(sender, store.New(testutil.NewDB(t)).Profiles, nil)

	push.Publish(context.Background(), events.Event{Type: events.MilestoneAdded, Data: models.Milestone{}})
	push.Wait()

	assert.Empty(t, sender.tokens)
}

func TestPush_SendErrorsAreLogged(t *testing.T) {
	db := testutil.NewDB(t)
	p := testutil.CreateProfile(t, db, "other@example.com", models.RoleViewer)
	require.NoError(t, db.Model(&models.Profile{}).Where("id = ?", p.ID).Update("fcm_token", "tok").Error)

	sender := &fakeSender{err: errors.New("unregistered")}
	push := NewPushWithSender(sender, store.New(db).Profiles, nil)
	push.Publish(context.Background(), events.Event{Type: events.StatusAdded, UserID: uuid.New(), Data: models.StatusUpdate{}})
	push.Wait()

	assert.Len(t, sender.tokens, 1)
}

func TestNewPush_DisabledWithoutServiceAccount(t *testing.T) {
	push, err := NewPush(context.Background(), "", nil, nil)
	require.NoError(t, err)

	push.Publish(context.Background(), events.Event{Type: events.StatusAdded, Data: models.StatusUpdate{}})
	push.Wait()
}
