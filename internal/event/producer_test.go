package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saikat7890/Lost-and-Found-System/internal/domain"
	pkgkafka "github.com/saikat7890/Lost-and-Found-System/pkg/kafka"
	"github.com/saikat7890/Lost-and-Found-System/pkg/logger"
)

type mockWriter struct {
	mock.Mock
}

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	return m.Called(ctx, msgs).Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func newTestProducer(w *mockWriter) *Producer {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewProducer(pkgkafka.NewProducerWithWriter(w, nil, l), l)
}

func captureOne(t *testing.T, w *mockWriter) *kafka.Message {
	t.Helper()
	var sent kafka.Message
	w.On("WriteMessages", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).([]kafka.Message)[0] }).
		Return(nil).Once()
	return &sent
}

func testItem() *domain.Item {
	return &domain.Item{
		ID:       "item-1",
		Title:    "Black Wallet",
		Category: domain.CategoryAccessories,
		Kind:     domain.KindLost,
		Location: "Central Park",
		Status:   domain.StatusActive,
		OwnerID:  "user-1",
		Images:   []domain.Image{{URL: "u1", Handle: "h1"}, {URL: "u2", Handle: "h2"}},
	}
}

func TestPublishItemCreated(t *testing.T) {
	w := new(mockWriter)
	sent := captureOne(t, w)
	p := newTestProducer(w)

	ctx := logger.WithCorrelationID(context.Background(), "corr-42")
	require.NoError(t, p.PublishItemCreated(ctx, testItem()))

	assert.Equal(t, TopicItemCreated, sent.Topic)
	assert.Equal(t, "item-1", string(sent.Key))

	event, err := pkgkafka.UnmarshalEvent(sent.Value)
	require.NoError(t, err)
	assert.Equal(t, TopicItemCreated, event.EventType)
	assert.Equal(t, AggregateTypeItem, event.AggregateType)
	assert.Equal(t, SourceItemService, event.Source)
	assert.Equal(t, "corr-42", event.CorrelationID)

	var data ItemData
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, "Black Wallet", data.Title)
	assert.Equal(t, domain.KindLost, data.Type)
	assert.Equal(t, 2, data.ImageCount)
	w.AssertExpectations(t)
}

func TestPublishItemUpdated(t *testing.T) {
	w := new(mockWriter)
	sent := captureOne(t, w)
	p := newTestProducer(w)

	item := testItem()
	item.Status = domain.StatusResolved
	require.NoError(t, p.PublishItemUpdated(context.Background(), item))

	event, err := pkgkafka.UnmarshalEvent(sent.Value)
	require.NoError(t, err)
	assert.Equal(t, TopicItemUpdated, sent.Topic)
	assert.Empty(t, event.CorrelationID)

	var data ItemData
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, domain.StatusResolved, data.Status)
}

func TestPublishItemDeleted(t *testing.T) {
	w := new(mockWriter)
	sent := captureOne(t, w)
	p := newTestProducer(w)

	require.NoError(t, p.PublishItemDeleted(context.Background(), testItem(), 1))

	event, err := pkgkafka.UnmarshalEvent(sent.Value)
	require.NoError(t, err)
	assert.Equal(t, TopicItemDeleted, sent.Topic)

	var data ItemDeletedData
	require.NoError(t, json.Unmarshal(event.Data, &data))
	assert.Equal(t, ItemDeletedData{ID: "item-1", OwnerID: "user-1", ImagesOrphaned: 1}, data)
}

func TestPublish_WriterError(t *testing.T) {
	w := new(mockWriter)
	w.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	p := newTestProducer(w)

	err := p.PublishItemCreated(context.Background(), testItem())
	require.Error(t, err)
	assert.Contains(t, err.Error(), TopicItemCreated)
	assert.Contains(t, err.Error(), "broker down")
}
