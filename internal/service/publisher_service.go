package service

import (
	"context"
	"encoding/json"

	"rickshaw-client/internal/pkg/logger"
	"rickshaw-client/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

type IPublisherService interface {
	Publish(ctx context.Context, evt events.Event) error
}

type publisherService struct {
	topicName string
	publisher message.Publisher
	logger    logger.ILogger
}

func NewPublisherService(topicName string, publisher message.Publisher, log logger.ILogger) IPublisherService {
	return &publisherService{
		topicName: topicName,
		publisher: publisher,
		logger:    log,
	}
}

func (p *publisherService) Publish(ctx context.Context, evt events.Event) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.SetContext(ctx)
	msg.Metadata.Set("event_type", evt.EventType())

	if err := p.publisher.Publish(p.topicName, msg); err != nil {
		p.logger.Error("PublisherService", "Failed to publish event", map[string]interface{}{
			"error": err.Error(),
			"type":  evt.EventType(),
		})
		return err
	}
	p.logger.Debug("PublisherService", "Published "+evt.EventType(), evt.Payload())
	return nil
}
