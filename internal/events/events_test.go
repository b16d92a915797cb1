package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeConn struct {
	mu   sync.Mutex
	msgs [][]byte
	err  error
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.msgs = append(f.msgs, data)
	return f.err
}

func TestHub_PublishExcludesSender(t *testing.T) {
	hub := NewHub(nil)
	project := uuid.New()
	sender, other := uuid.New(), uuid.New()

	senderConn, otherConn, elsewhere := &fakeConn{}, &fakeConn{}, &fakeConn{}
	hub.Join(project, sender, senderConn)
	hub.Join(project, other, otherConn)
	hub.Join(uuid.New(), other, elsewhere)

	hub.Publish(context.Background(), Event{Type: MilestoneAdded, ProjectID: project, UserID: sender})

	assert.Empty(t, senderConn.msgs)
	assert.Empty(t, elsewhere.msgs)
	require.Len(t, otherConn.msgs, 1)

	var got Event
	require.NoError(t, json.Unmarshal(otherConn.msgs[0], &got))
	assert.Equal(t, MilestoneAdded, got.Type)
	assert.Equal(t, project, got.ProjectID)
}

func TestHub_LeaveRemovesRoom(t *testing.T) {
	hub := NewHub(nil)
	project := uuid.New()

	leave := hub.Join(project, uuid.New(), &fakeConn{})
	assert.Equal(t, 1, hub.Size(project))

	leave()
	assert.Equal(t, 0, hub.Size(project))
}

func TestHub_WriteErrorDoesNotStopDelivery(t *testing.T) {
	hub := NewHub(nil)
	project := uuid.New()
	bad, good := &fakeConn{err: errors.New("closed")}, &fakeConn{}
	hub.Join(project, uuid.New(), bad)
	hub.Join(project, uuid.New(), good)

	hub.Publish(context.Background(), Event{Type: StatusAdded, ProjectID: project})

	assert.Len(t, good.msgs, 1)
}

func TestMulti_FansOut(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Multi{a, nil, b}.Publish(context.Background(), Event{Type: NoteAdded})

	assert.Equal(t, []Type{NoteAdded}, a.Types())
	assert.Equal(t, []Type{NoteAdded}, b.Types())
}

func TestEvent_RoutingKey(t *testing.T) {
	assert.Equal(t, "roadmap.status_deleted", Event{Type: StatusDeleted}.RoutingKey())
}

type fakeChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	calls    int
	err      error
	closed   bool
}

func (f *fakeChannel) PublishWithContext(_ context.Context, exchange, key string, _, _ bool, msg amqp.Publishing) error {
	f.calls++
	f.exchange, f.key, f.msg = exchange, key, msg
	return f.err
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestAMQPPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := &AMQPPublisher{channel: ch, exchange: "roadmap.events", log: zap.NewNop()}
	project := uuid.New()

	p.Publish(context.Background(), Event{Type: StatusAdded, ProjectID: project, Data: map[string]string{"content": "Hired analyst"}})

	require.Equal(t, 1, ch.calls)
	assert.Equal(t, "roadmap.events", ch.exchange)
	assert.Equal(t, "roadmap."+string(StatusAdded), ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)
	assert.Equal(t, amqp.Persistent, ch.msg.DeliveryMode)

	var got Event
	require.NoError(t, json.Unmarshal(ch.msg.Body, &got))
	assert.Equal(t, StatusAdded, got.Type)
	assert.Equal(t, project, got.ProjectID)

	p.Close()
	assert.True(t, ch.closed)
}

func TestAMQPPublisher_PublishErrorIsLogged(t *testing.T) {
	ch := &fakeChannel{err: errors.New("channel closed")}
	core, logs := observer.New(zap.WarnLevel)
	p := &AMQPPublisher{channel: ch, exchange: "roadmap.events", log: zap.New(core)}

	p.Publish(context.Background(), Event{Type: MilestoneAdded, ProjectID: uuid.New()})

	assert.Equal(t, 1, ch.calls)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "amqp publish failed", logs.All()[0].Message)
}
