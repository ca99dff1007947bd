package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDelivery struct {
	mu     sync.Mutex
	sent   []dto.LiveEvent
	target []uuid.UUID
}

func (d *recordingDelivery) Send(sessionID uuid.UUID, event dto.LiveEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.target = append(d.target, sessionID)
	d.sent = append(d.sent, event)
}

func (d *recordingDelivery) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.sent)
}

func TestEventsReachLiveDeliveryInOrder(t *testing.T) {
	log := logger.NewNopLogger()
	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	delivery := &recordingDelivery{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewConsumerService(pubSub, events.TopicAnalysis, delivery, log).Consume(ctx))

	publisher := NewPublisherService(events.TopicAnalysis, pubSub, log)
	sessionID := uuid.New()
	cycleID := uuid.New()
	snap := dto.SessionSnapshot{Id: sessionID, Phase: "ENCODING", Loading: true}

	require.NoError(t, publisher.Publish(ctx, events.NewSessionEvent(events.TypeAnalysisStarted, cycleID, snap)))
	snap.Phase, snap.Loading = "SETTLED_SUCCESS", false
	require.NoError(t, publisher.Publish(ctx, events.NewSessionEvent(events.TypeAnalysisSettled, cycleID, snap)))

	require.Eventually(t, func() bool { return delivery.count() == 2 }, time.Second, 10*time.Millisecond)

	delivery.mu.Lock()
	defer delivery.mu.Unlock()
	assert.Equal(t, events.TypeAnalysisStarted, delivery.sent[0].Type)
	assert.Equal(t, events.TypeAnalysisSettled, delivery.sent[1].Type)
	assert.Equal(t, cycleID.String(), delivery.sent[1].CycleId)
	assert.Equal(t, sessionID, delivery.target[0])
	assert.False(t, delivery.sent[1].Data.Loading)
}

func TestInvalidMessageIsAcked(t *testing.T) {
	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	delivery := &recordingDelivery{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, NewConsumerService(pubSub, events.TopicAnalysis, delivery, logger.NewNopLogger()).Consume(ctx))

	// Publish blocks until ack, so returning at all proves the bad payload was acked.
	require.NoError(t, pubSub.Publish(events.TopicAnalysis, message.NewMessage(watermill.NewUUID(), []byte("not json"))))
	assert.Zero(t, delivery.count())
}
