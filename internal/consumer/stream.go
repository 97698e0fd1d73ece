package consumer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/config"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/hub"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = 1 * time.Second
)

// StreamConsumer consumes score snapshots from the Redis score stream
// and forwards them to the websocket hub. A single goroutine reads the
// stream, so snapshots reach the hub in stream (and therefore publish)
// order.
type StreamConsumer struct {
	redis        *redis.Client
	hub          *hub.Hub
	streamConfig config.StreamConfig
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(redisClient *redis.Client, h *hub.Hub, streamConfig config.StreamConfig) *StreamConsumer {
	return &StreamConsumer{
		redis:        redisClient,
		hub:          h,
		streamConfig: streamConfig,
	}
}

// Start begins consuming from the score stream until ctx is cancelled.
func (sc *StreamConsumer) Start(ctx context.Context) error {
	stream := sc.streamConfig.ScoreStream
	log.Info("stream consumer started", zap.String("stream", stream))

	sc.createConsumerGroup(ctx, stream)
	sc.consumeStream(ctx, stream)
	return nil
}

// createConsumerGroup creates the consumer group (ignoring already-exists).
func (sc *StreamConsumer) createConsumerGroup(ctx context.Context, stream string) {
	err := sc.redis.XGroupCreateMkStream(ctx, stream, sc.streamConfig.ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		log.Warn("failed to create consumer group",
			zap.String("stream", stream), zap.Error(err))
	}
}

func (sc *StreamConsumer) consumeStream(ctx context.Context, stream string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
			streams, err := sc.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    sc.streamConfig.ConsumerGroup,
				Consumer: sc.streamConfig.ConsumerID,
				Streams:  []string{stream, ">"},
				Count:    batchSize,
				Block:    blockDuration,
			}).Result()

			if err != nil {
				if err == redis.Nil {
					// No new messages - continue
					continue
				}
				if ctx.Err() != nil {
					return
				}
				log.Warn("stream read error",
					zap.String("stream", stream), zap.Error(err))
				time.Sleep(1 * time.Second)
				continue
			}

			for _, s := range streams {
				for _, message := range s.Messages {
					sc.processMessage(ctx, s.Stream, message)
				}
			}
		}
	}
}

// processMessage decodes one snapshot and hands it to the hub.
func (sc *StreamConsumer) processMessage(ctx context.Context, stream string, msg redis.XMessage) {
	dataStr, ok := msg.Values["data"].(string)
	if !ok {
		log.Warn("invalid message format",
			zap.String("stream", stream), zap.String("id", msg.ID))
		sc.ackMessage(ctx, stream, msg.ID)
		return
	}

	var score models.MatchScore
	if err := json.Unmarshal([]byte(dataStr), &score); err != nil {
		log.Warn("failed to parse score snapshot",
			zap.String("stream", stream), zap.Error(err))
		sc.ackMessage(ctx, stream, msg.ID)
		return
	}

	sc.hub.Broadcast(&score)
	sc.ackMessage(ctx, stream, msg.ID)
}

func (sc *StreamConsumer) ackMessage(ctx context.Context, stream, id string) {
	if err := sc.redis.XAck(ctx, stream, sc.streamConfig.ConsumerGroup, id).Err(); err != nil {
		log.Warn("failed to ack message",
			zap.String("stream", stream), zap.String("id", id), zap.Error(err))
	}
}
