package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	pkgkafka "github.com/saikat7890/Lost-and-Found-System/pkg/kafka"
	"github.com/saikat7890/Lost-and-Found-System/pkg/logger"
)

// Kafka topic constants for item domain events.
const (
	TopicItemCreated = "trackitdown.item.created"
	TopicItemUpdated = "trackitdown.item.updated"
	TopicItemDeleted = "trackitdown.item.deleted"
)

// Aggregate type constant.
const AggregateTypeItem = "item"

// Source identifier for events originating from the item service.
const SourceItemService = "item-service"

// ItemData is the payload for item.created and item.updated events.
type ItemData struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Category     string        `json:"category"`
	Type         domain.Kind   `json:"type"`
	Location     string        `json:"location"`
	Status       domain.Status `json:"status"`
	OwnerID      string        `json:"owner_id"`
	ImageCount   int           `json:"image_count"`
	DateOccurred time.Time     `json:"date_occurred"`
}

// ItemDeletedData is the payload for an item.deleted event.
type ItemDeletedData struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id"`
	ImagesOrphaned int    `json:"images_orphaned"`
}

// Publisher writes an event envelope to a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Producer publishes item domain events to Kafka.
type Producer struct {
	kafka  Publisher
	logger *slog.Logger
}

// NewProducer creates a new event producer for the item service.
func NewProducer(kafka Publisher, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishItemCreated publishes an item.created event.
func (p *Producer) PublishItemCreated(ctx context.Context, item *domain.Item) error {
	return p.publish(ctx, TopicItemCreated, item.ID, itemData(item))
}

// PublishItemUpdated publishes an item.updated event.
func (p *Producer) PublishItemUpdated(ctx context.Context, item *domain.Item) error {
	return p.publish(ctx, TopicItemUpdated, item.ID, itemData(item))
}

// PublishItemDeleted publishes an item.deleted event. orphaned is the number
// of images the object store failed to remove.
func (p *Producer) PublishItemDeleted(ctx context.Context, item *domain.Item, orphaned int) error {
	data := ItemDeletedData{ID: item.ID, OwnerID: item.OwnerID, ImagesOrphaned: orphaned}
	return p.publish(ctx, TopicItemDeleted, item.ID, data)
}

func (p *Producer) publish(ctx context.Context, topic, id string, data any) error {
	event, err := pkgkafka.NewEvent(topic, id, AggregateTypeItem, SourceItemService, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if cid := logger.CorrelationIDFromContext(ctx); cid != "" {
		event.WithCorrelationID(cid)
	}

	if err := p.kafka.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.logger.DebugContext(ctx, "published item event",
		slog.String("topic", topic),
		slog.String("item_id", id),
	)
	return nil
}

func itemData(item *domain.Item) ItemData {
	return ItemData{
		ID:           item.ID,
		Title:        item.Title,
		Category:     item.Category,
		Type:         item.Kind,
		Location:     item.Location,
		Status:       item.Status,
		OwnerID:      item.OwnerID,
		ImageCount:   len(item.Images),
		DateOccurred: item.DateOccurred,
	}
}
