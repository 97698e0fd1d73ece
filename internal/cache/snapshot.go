package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// TTL constants
const (
	LiveScoreTTL  = 2 * time.Hour
	FinalScoreTTL = 6 * time.Hour
)

// SnapshotWriter keeps the latest MatchScore per match in Redis so a
// freshly connected viewer gets current state without a replay.
type SnapshotWriter struct {
	client *redis.Client
}

// NewSnapshotWriter creates a new snapshot writer
func NewSnapshotWriter(client *redis.Client) *SnapshotWriter {
	return &SnapshotWriter{
		client: client,
	}
}

func scoreKey(matchID string) string {
	return models.ScoreTopic(matchID)
}

// WriteScore stores the latest snapshot for a match. Errors are logged,
// not returned: the cache is a read accelerator, not the source of truth.
func (w *SnapshotWriter) WriteScore(ctx context.Context, score *models.MatchScore) {
	data, err := json.Marshal(score)
	if err != nil {
		log.Error("marshaling score snapshot", zap.Error(err))
		return
	}

	if err := w.client.Set(ctx, scoreKey(score.MatchID), data, LiveScoreTTL).Err(); err != nil {
		log.Warn("snapshot cache write failed",
			zap.String("match_id", score.MatchID), zap.Error(err))
	}
}

// MarkFinal re-expires a completed match's snapshot on the final TTL.
func (w *SnapshotWriter) MarkFinal(ctx context.Context, matchID string) {
	if err := w.client.Expire(ctx, scoreKey(matchID), FinalScoreTTL).Err(); err != nil {
		log.Warn("snapshot expire failed",
			zap.String("match_id", matchID), zap.Error(err))
	}
}

// ReadScore retrieves the latest snapshot for a match, redis.Nil when absent.
func (w *SnapshotWriter) ReadScore(ctx context.Context, matchID string) (*models.MatchScore, error) {
	data, err := w.client.Get(ctx, scoreKey(matchID)).Result()
	if err != nil {
		return nil, err
	}

	var score models.MatchScore
	if err := json.Unmarshal([]byte(data), &score); err != nil {
		return nil, fmt.Errorf("unmarshaling score snapshot: %w", err)
	}

	return &score, nil
}
