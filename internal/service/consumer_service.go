package service

import (
	"context"
	"encoding/json"

	"rickshaw-client/internal/dto"
	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
)

// LiveDelivery pushes a live event to every connection of one session.
// Implemented by the WebSocket hub.
type LiveDelivery interface {
	Send(sessionID uuid.UUID, event dto.LiveEvent)
}

type IConsumerService interface {
	Consume(ctx context.Context) error
}

type consumerService struct {
	subscriber message.Subscriber
	topicName  string
	delivery   LiveDelivery
	logger     logger.ILogger
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	delivery LiveDelivery,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		logger:     log,
	}
}

// Consume subscribes to the analysis topic and relays events until ctx is done.
func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var evt events.SessionEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal event", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite redelivery
		return
	}

	live := dto.LiveEvent{Type: evt.Type, Data: evt.Snapshot}
	if evt.CycleID != uuid.Nil {
		live.CycleId = evt.CycleID.String()
	}
	cs.delivery.Send(evt.SessionID, live)
	msg.Ack()
}
