package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/candidate-scorer/internal/models"
)

type recordingChannel struct {
	exchange string
	key      string
	msg      amqp.Publishing
	closed   bool
}

func (r *recordingChannel) Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	r.exchange, r.key, r.msg = exchange, key, msg
	return nil
}

func (r *recordingChannel) Close() error {
	r.closed = true
	return nil
}

func TestAMQPPublisherRoutingKey(t *testing.T) {
	ch := &recordingChannel{}
	pub := &amqpPublisher{channel: ch, exchange: "evaluation_updates"}

	id := uuid.New()
	score := 77.0
	event := StatusEvent{EvaluationID: id, Status: models.StatusCompleted, TotalScore: &score, Timestamp: time.Now()}
	require.NoError(t, pub.PublishStatus(context.Background(), event))

	assert.Equal(t, "evaluation_updates", ch.exchange)
	assert.Equal(t, "evaluation."+id.String(), ch.key)
	assert.Equal(t, "application/json", ch.msg.ContentType)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(ch.msg.Body, &decoded))
	assert.Equal(t, "completed", decoded["status"])
	assert.Equal(t, 77.0, decoded["total_score"])
	assert.NotContains(t, decoded, "error")

	require.NoError(t, pub.Close())
	assert.True(t, ch.closed)
}

func TestNopPublisher(t *testing.T) {
	pub := NewNopPublisher()
	assert.NoError(t, pub.PublishStatus(context.Background(), StatusEvent{}))
	assert.NoError(t, pub.Close())
}
