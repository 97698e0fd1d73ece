package scoring

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/config"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/log"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

var (
	// ErrNoActiveMatch is returned in strict mode when the match ID does
	// not resolve to a known match.
	ErrNoActiveMatch = errors.New("no active match")

	// ErrMatchNotLive is returned in strict mode when balls are recorded
	// against a match that is not in the live state.
	ErrMatchNotLive = errors.New("match is not live")

	// ErrNothingToUndo is returned when the undo ring for a match is empty.
	ErrNothingToUndo = errors.New("nothing to undo")

	// ErrPersistence wraps store write failures after retries are exhausted.
	ErrPersistence = errors.New("persistence failure")
)

// Publisher delivers a freshly persisted score to all interested viewers.
// A publish failure never rolls back persisted state.
type Publisher interface {
	PublishScore(ctx context.Context, score *models.MatchScore) error
}

// session holds the in-memory working state for one match: the undo ring
// of pre-ball snapshots and the display chips for the over in progress.
// Its mutex serializes every scoring action for the match.
type session struct {
	mu          sync.Mutex
	undo        []*models.MatchScore
	currentOver []string
}

// Manager orchestrates live scoring. It is the only writer of MatchScore
// records: all scoring actions for one match are applied strictly
// one-at-a-time under that match's session lock, so ball accounting can
// never interleave. Different matches score in parallel.
type Manager struct {
	store     db.Store
	publisher Publisher
	cfg       config.ScoringConfig

	mu       sync.Mutex
	sessions map[string]*session
}

// NewManager creates a scoring manager over the given store and publisher.
func NewManager(store db.Store, publisher Publisher, cfg config.ScoringConfig) *Manager {
	if cfg.PersistRetries < 1 {
		cfg.PersistRetries = 1
	}
	if cfg.UndoDepth < 1 {
		cfg.UndoDepth = 1
	}
	return &Manager{
		store:     store,
		publisher: publisher,
		cfg:       cfg,
		sessions:  make(map[string]*session),
	}
}

func (m *Manager) session(matchID string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[matchID]
	if !ok {
		s = &session{}
		m.sessions[matchID] = s
	}
	return s
}

// LoadOrCreate fetches the score for a match, creating and persisting a
// zeroed record if none exists. The returned bool reports creation.
func (m *Manager) LoadOrCreate(ctx context.Context, matchID string) (*models.MatchScore, bool, error) {
	s := m.session(matchID)
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.loadOrCreateLocked(ctx, matchID)
}

func (m *Manager) loadOrCreateLocked(ctx context.Context, matchID string) (*models.MatchScore, bool, error) {
	score, err := m.store.GetScore(ctx, matchID)
	if err == nil {
		return score, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, err
	}

	if m.cfg.Strict {
		return nil, false, ErrNoActiveMatch
	}

	score = &models.MatchScore{
		ID:         "score-" + matchID,
		MatchID:    matchID,
		BallByBall: []models.BallEvent{},
	}
	if err := m.persist(ctx, score); err != nil {
		return nil, false, err
	}
	log.Info("created zeroed score", zap.String("match_id", matchID))
	return score, true, nil
}

// RecordBall applies one delivery to the currently batting innings,
// persists the result and publishes it. The ball is not considered
// recorded unless persistence succeeds.
func (m *Manager) RecordBall(ctx context.Context, matchID string, input models.BallInput) (*models.MatchScore, error) {
	if err := ValidateBall(input); err != nil {
		return nil, err
	}

	s := m.session(matchID)
	s.mu.Lock()
	defer s.mu.Unlock()

	var match *models.Match
	if m.cfg.Strict {
		var err error
		match, err = m.store.GetMatch(ctx, matchID)
		if errors.Is(err, db.ErrNotFound) {
			return nil, ErrNoActiveMatch
		}
		if err != nil {
			return nil, err
		}
		if match.Status != models.StatusLive {
			return nil, ErrMatchNotLive
		}
	} else {
		match, _ = m.store.GetMatch(ctx, matchID)
	}

	score, _, err := m.loadOrCreateLocked(ctx, matchID)
	if err != nil {
		return nil, err
	}

	teamB := targetsTeamB(score, match)
	innings := score.TeamAInnings()
	if teamB {
		innings = score.TeamBInnings()
	}

	ev := models.BallEvent{
		Runs:       input.Runs,
		IsWicket:   input.IsWicket,
		IsWide:     input.IsWide,
		IsNoBall:   input.IsNoBall,
		IsBye:      input.IsBye,
		IsLegBye:   input.IsLegBye,
		Over:       OverNumber(innings.Overs),
		BallInOver: BallNumber(innings.Overs),
		Timestamp:  time.Now().UTC(),
	}

	updated := score.Clone()
	next := Apply(innings, ev)
	if teamB {
		updated.SetTeamBInnings(next)
	} else {
		updated.SetTeamAInnings(next)
	}
	updated.BallByBall = append(updated.BallByBall, ev)

	if err := m.persist(ctx, updated); err != nil {
		return nil, err
	}

	s.pushUndo(score, m.cfg.UndoDepth)
	s.currentOver = append(s.currentOver, ballSymbol(ev))
	if !ev.IsWide && !ev.IsNoBall && BallsInOver(next.Overs) == 0 {
		// Over rolled; the working set starts fresh on the next ball.
		s.currentOver = nil
	}

	m.publish(ctx, updated)
	return updated, nil
}

// UndoLastBall reverses the most recent delivery by restoring the
// pre-ball snapshot: numeric figures and the ball-by-ball log both roll
// back, and the restored state is persisted and published.
func (m *Manager) UndoLastBall(ctx context.Context, matchID string) (*models.MatchScore, error) {
	s := m.session(matchID)
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.popUndo()
	if prev == nil {
		return nil, ErrNothingToUndo
	}

	restored := prev.Clone()
	if err := m.persist(ctx, restored); err != nil {
		// Keep the snapshot so the undo can be retried.
		s.pushUndo(prev, m.cfg.UndoDepth)
		return nil, err
	}

	if n := len(s.currentOver); n > 0 {
		s.currentOver = s.currentOver[:n-1]
	}

	m.publish(ctx, restored)
	return restored, nil
}

// EndOver clears the current-over working set for a match. The numeric
// over rollover already happened inside RecordBall on the 6th legal
// ball; this only acknowledges the over boundary for display.
func (m *Manager) EndOver(matchID string) {
	s := m.session(matchID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentOver = nil
}

// CurrentOver returns the display chips for the over in progress.
func (m *Manager) CurrentOver(matchID string) []string {
	s := m.session(matchID)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.currentOver))
	copy(out, s.currentOver)
	return out
}

// persist writes the score with bounded retries. The caller's in-flight
// state is only accepted once a write succeeds.
func (m *Manager) persist(ctx context.Context, score *models.MatchScore) error {
	var lastErr error
	for attempt := 1; attempt <= m.cfg.PersistRetries; attempt++ {
		writeCtx := ctx
		var cancel context.CancelFunc
		if m.cfg.PersistTimeout > 0 {
			writeCtx, cancel = context.WithTimeout(ctx, m.cfg.PersistTimeout)
		}
		lastErr = m.store.UpsertScore(writeCtx, score)
		if cancel != nil {
			cancel()
		}
		if lastErr == nil {
			return nil
		}
		log.Warn("score write failed",
			zap.String("match_id", score.MatchID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr))
	}
	return fmt.Errorf("%w: %v", ErrPersistence, lastErr)
}

// publish fans the persisted score out to viewers. Failures are logged
// only: persistence is authoritative and is never rolled back for a
// delivery problem.
func (m *Manager) publish(ctx context.Context, score *models.MatchScore) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.PublishScore(ctx, score); err != nil {
		log.Error("score publish failed",
			zap.String("match_id", score.MatchID),
			zap.Error(err))
	}
}

func (s *session) pushUndo(snapshot *models.MatchScore, depth int) {
	s.undo = append(s.undo, snapshot.Clone())
	if len(s.undo) > depth {
		s.undo = s.undo[len(s.undo)-depth:]
	}
}

func (s *session) popUndo() *models.MatchScore {
	n := len(s.undo)
	if n == 0 {
		return nil
	}
	top := s.undo[n-1]
	s.undo = s.undo[:n-1]
	return top
}

// targetsTeamB resolves which innings the ball updates: team B only when
// the designated batting side matches the match's team B, team A in
// every other case (including a nil batting side on a first innings).
func targetsTeamB(score *models.MatchScore, match *models.Match) bool {
	if score.CurrentBattingTeamID == nil || match == nil {
		return false
	}
	return *score.CurrentBattingTeamID == match.TeamBID
}

func ballSymbol(ev models.BallEvent) string {
	switch {
	case ev.IsWicket:
		return "W"
	case ev.IsWide:
		return "WD"
	case ev.IsNoBall:
		return "NB"
	default:
		return strconv.Itoa(ev.Runs)
	}
}
