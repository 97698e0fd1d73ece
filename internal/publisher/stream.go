package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/cache"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// StreamPublisher publishes score snapshots to the Redis score stream
// and mirrors the latest snapshot into the cache. XADD assigns
// monotonically increasing IDs, so single-writer-per-match upstream is
// enough to preserve per-match ordering end to end.
type StreamPublisher struct {
	client *redis.Client
	stream string
	cache  *cache.SnapshotWriter
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(client *redis.Client, stream string, cache *cache.SnapshotWriter) *StreamPublisher {
	return &StreamPublisher{
		client: client,
		stream: stream,
		cache:  cache,
	}
}

// PublishScore appends one score snapshot to the stream.
func (p *StreamPublisher) PublishScore(ctx context.Context, score *models.MatchScore) error {
	data, err := json.Marshal(score)
	if err != nil {
		return fmt.Errorf("marshaling score update: %w", err)
	}

	if p.cache != nil {
		// Cache failure degrades the on-connect fetch only; the stream
		// append below is what viewers depend on.
		p.cache.WriteScore(ctx, score)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data":     string(data),
			"match_id": score.MatchID,
			"topic":    models.ScoreTopic(score.MatchID),
		},
	}).Err()
}
