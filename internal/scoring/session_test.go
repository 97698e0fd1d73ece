package scoring

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rajeshautomates-creator/cricket-hub-live/internal/config"
	"github.com/rajeshautomates-creator/cricket-hub-live/internal/db"
	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// capturePublisher records published snapshots in delivery order.
type capturePublisher struct {
	mu        sync.Mutex
	published []*models.MatchScore
	fail      bool
}

func (p *capturePublisher) PublishScore(ctx context.Context, score *models.MatchScore) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.published = append(p.published, score.Clone())
	return nil
}

func (p *capturePublisher) snapshots() []*models.MatchScore {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]*models.MatchScore, len(p.published))
	copy(out, p.published)
	return out
}

// flakyStore fails UpsertScore a configured number of times.
type flakyStore struct {
	*db.Memory
	mu       sync.Mutex
	failures int
}

func (f *flakyStore) UpsertScore(ctx context.Context, score *models.MatchScore) error {
	f.mu.Lock()
	if f.failures > 0 {
		f.failures--
		f.mu.Unlock()
		return errors.New("disk full")
	}
	f.mu.Unlock()
	return f.Memory.UpsertScore(ctx, score)
}

func testConfig() config.ScoringConfig {
	return config.ScoringConfig{
		PersistRetries: 3,
		PersistTimeout: time.Second,
		UndoDepth:      12,
	}
}

func dot() models.BallInput { return models.BallInput{Runs: 0} }

func TestRecordBallLenientAutoCreates(t *testing.T) {
	store := db.NewMemory()
	pub := &capturePublisher{}
	m := NewManager(store, pub, testConfig())

	score, err := m.RecordBall(context.Background(), "m1", models.BallInput{Runs: 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if score.TeamARuns != 4 || !oversEqual(score.TeamAOvers, 0.1) {
		t.Errorf("got %d/%f, want 4/0.1", score.TeamARuns, score.TeamAOvers)
	}
	if len(score.BallByBall) != 1 {
		t.Errorf("ball log length = %d, want 1", len(score.BallByBall))
	}
	if score.BallByBall[0].Over != 1 || score.BallByBall[0].BallInOver != 1 {
		t.Errorf("display position = %d.%d, want 1.1",
			score.BallByBall[0].Over, score.BallByBall[0].BallInOver)
	}
}

func TestRecordBallStrictUnknownMatch(t *testing.T) {
	cfg := testConfig()
	cfg.Strict = true
	m := NewManager(db.NewMemory(), &capturePublisher{}, cfg)

	_, err := m.RecordBall(context.Background(), "ghost", dot())
	if !errors.Is(err, ErrNoActiveMatch) {
		t.Errorf("err = %v, want ErrNoActiveMatch", err)
	}
}

func TestRecordBallStrictRequiresLiveMatch(t *testing.T) {
	cfg := testConfig()
	cfg.Strict = true
	store := db.NewMemory()
	ctx := context.Background()

	match := &models.Match{ID: "m1", TeamAID: "ta", TeamBID: "tb", Status: models.StatusUpcoming}
	if err := store.CreateMatch(ctx, match); err != nil {
		t.Fatal(err)
	}

	m := NewManager(store, &capturePublisher{}, cfg)

	if _, err := m.RecordBall(ctx, "m1", dot()); !errors.Is(err, ErrMatchNotLive) {
		t.Errorf("err = %v, want ErrMatchNotLive", err)
	}

	if err := store.UpdateMatchStatus(ctx, "m1", models.StatusLive); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RecordBall(ctx, "m1", dot()); err != nil {
		t.Errorf("unexpected error for live match: %v", err)
	}
}

func TestRecordBallFullOverScenario(t *testing.T) {
	m := NewManager(db.NewMemory(), &capturePublisher{}, testConfig())
	ctx := context.Background()

	score, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 4})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		score, err = m.RecordBall(ctx, "m1", dot())
		if err != nil {
			t.Fatal(err)
		}
	}

	if score.TeamARuns != 4 || score.TeamAWickets != 0 || !oversEqual(score.TeamAOvers, 1.0) {
		t.Errorf("after 6 legal balls: %d/%d overs %f, want 4/0 overs 1.0",
			score.TeamARuns, score.TeamAWickets, score.TeamAOvers)
	}
	if len(score.BallByBall) != 6 {
		t.Errorf("ball log length = %d, want 6", len(score.BallByBall))
	}
}

func TestRecordBallRejectsNegativeRuns(t *testing.T) {
	store := db.NewMemory()
	m := NewManager(store, &capturePublisher{}, testConfig())

	_, err := m.RecordBall(context.Background(), "m1", models.BallInput{Runs: -2})
	if err == nil {
		t.Fatal("expected validation error")
	}
	// Fail closed: no record may exist afterwards.
	if _, err := store.GetScore(context.Background(), "m1"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("state mutated by rejected input: %v", err)
	}
}

func TestRecordBallTargetsBattingTeamB(t *testing.T) {
	store := db.NewMemory()
	ctx := context.Background()

	match := &models.Match{ID: "m1", TeamAID: "ta", TeamBID: "tb", Status: models.StatusLive}
	if err := store.CreateMatch(ctx, match); err != nil {
		t.Fatal(err)
	}

	battingB := "tb"
	score, err := store.GetScore(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	score.CurrentBattingTeamID = &battingB
	if err := store.UpsertScore(ctx, score); err != nil {
		t.Fatal(err)
	}

	m := NewManager(store, &capturePublisher{}, testConfig())
	updated, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 6})
	if err != nil {
		t.Fatal(err)
	}

	if updated.TeamBRuns != 6 || !oversEqual(updated.TeamBOvers, 0.1) {
		t.Errorf("team B = %d/%f, want 6/0.1", updated.TeamBRuns, updated.TeamBOvers)
	}
	if updated.TeamARuns != 0 || !oversEqual(updated.TeamAOvers, 0) {
		t.Errorf("team A figures touched: %d/%f", updated.TeamARuns, updated.TeamAOvers)
	}
}

func TestUndoLastBallRestoresState(t *testing.T) {
	store := db.NewMemory()
	m := NewManager(store, &capturePublisher{}, testConfig())
	ctx := context.Background()

	if _, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 4}); err != nil {
		t.Fatal(err)
	}
	if _, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 0, IsWicket: true}); err != nil {
		t.Fatal(err)
	}

	restored, err := m.UndoLastBall(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}

	if restored.TeamARuns != 4 || restored.TeamAWickets != 0 || !oversEqual(restored.TeamAOvers, 0.1) {
		t.Errorf("restored = %d/%d overs %f, want 4/0 overs 0.1",
			restored.TeamARuns, restored.TeamAWickets, restored.TeamAOvers)
	}
	if len(restored.BallByBall) != 1 {
		t.Errorf("ball log length = %d, want 1", len(restored.BallByBall))
	}

	// The restored state must be the persisted state, not just in-memory.
	stored, err := store.GetScore(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.TeamAWickets != 0 || len(stored.BallByBall) != 1 {
		t.Errorf("persisted state not rolled back: %+v", stored)
	}
}

func TestUndoLastBallEmpty(t *testing.T) {
	m := NewManager(db.NewMemory(), &capturePublisher{}, testConfig())

	if _, err := m.UndoLastBall(context.Background(), "m1"); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestEndOverClearsWorkingSet(t *testing.T) {
	mem := db.NewMemory()
	m := NewManager(mem, &capturePublisher{}, testConfig())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 1}); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(m.CurrentOver("m1")); got != 3 {
		t.Fatalf("current over chips = %d, want 3", got)
	}

	m.EndOver("m1")
	if got := len(m.CurrentOver("m1")); got != 0 {
		t.Errorf("current over chips after end = %d, want 0", got)
	}

	// Numeric state must be untouched.
	score, err := mem.GetScore(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if score.TeamARuns != 3 || !oversEqual(score.TeamAOvers, 0.3) {
		t.Errorf("numeric state changed by EndOver: %d/%f", score.TeamARuns, score.TeamAOvers)
	}
}

func TestPersistenceFailureSurfacesAndDropsBall(t *testing.T) {
	cfg := testConfig()
	cfg.PersistRetries = 2

	flaky := &flakyStore{Memory: db.NewMemory(), failures: 10}
	pub := &capturePublisher{}
	m := NewManager(flaky, pub, cfg)

	_, err := m.RecordBall(context.Background(), "m1", models.BallInput{Runs: 4})
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
	if len(pub.snapshots()) != 0 {
		t.Error("snapshot published despite persistence failure")
	}
}

func TestPersistenceRetriesThenSucceeds(t *testing.T) {
	flaky := &flakyStore{Memory: db.NewMemory(), failures: 1}
	m := NewManager(flaky, &capturePublisher{}, testConfig())

	score, err := m.RecordBall(context.Background(), "m1", models.BallInput{Runs: 1})
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if score.TeamARuns != 1 {
		t.Errorf("runs = %d, want 1", score.TeamARuns)
	}
}

func TestPublishFailureDoesNotRollBack(t *testing.T) {
	fstore := db.NewMemory()
	pub := &capturePublisher{fail: true}
	m := NewManager(fstore, pub, testConfig())
	ctx := context.Background()

	score, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 2})
	if err != nil {
		t.Fatalf("publish failure must not fail the action: %v", err)
	}
	if score.TeamARuns != 2 {
		t.Errorf("runs = %d, want 2", score.TeamARuns)
	}

	stored, err := fstore.GetScore(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if stored.TeamARuns != 2 {
		t.Errorf("persisted runs = %d, want 2", stored.TeamARuns)
	}
}

func TestConcurrentRecordBallSerializes(t *testing.T) {
	pub := &capturePublisher{}
	m := NewManager(db.NewMemory(), pub, testConfig())
	ctx := context.Background()

	const goroutines = 8
	const ballsEach = 15

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < ballsEach; i++ {
				if _, err := m.RecordBall(ctx, "m1", models.BallInput{Runs: 1}); err != nil {
					t.Errorf("record ball: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	score, _, err := m.LoadOrCreate(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}

	total := goroutines * ballsEach
	if score.TeamARuns != total {
		t.Errorf("runs = %d, want %d", score.TeamARuns, total)
	}
	wantOvers := float64(total/6) + float64(total%6)/10
	if !oversEqual(score.TeamAOvers, wantOvers) {
		t.Errorf("overs = %f, want %f", score.TeamAOvers, wantOvers)
	}
	if len(score.BallByBall) != total {
		t.Errorf("ball log length = %d, want %d", len(score.BallByBall), total)
	}

	// Snapshots must form one serial history: each publishes exactly one
	// more ball than the previous.
	snaps := pub.snapshots()
	if len(snaps) != total {
		t.Fatalf("published %d snapshots, want %d", len(snaps), total)
	}
	for i, s := range snaps {
		if len(s.BallByBall) != i+1 {
			t.Fatalf("snapshot %d has %d balls, want %d", i, len(s.BallByBall), i+1)
		}
	}
}

func TestLoadOrCreateRoundTrip(t *testing.T) {
	m := NewManager(db.NewMemory(), &capturePublisher{}, testConfig())
	ctx := context.Background()

	first, created, err := m.LoadOrCreate(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Error("expected creation on first load")
	}
	if first.TeamARuns != 0 || first.TeamBRuns != 0 || len(first.BallByBall) != 0 {
		t.Errorf("zeroed record expected, got %+v", first)
	}

	second, created, err := m.LoadOrCreate(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if created {
		t.Error("second load must not create")
	}
	if second.MatchID != "m1" {
		t.Errorf("match ID = %s, want m1", second.MatchID)
	}
}

func TestRollingOverResetsCurrentOverChips(t *testing.T) {
	m := NewManager(db.NewMemory(), &capturePublisher{}, testConfig())
	ctx := context.Background()

	for i := 0; i < 6; i++ {
		if _, err := m.RecordBall(ctx, "m1", dot()); err != nil {
			t.Fatal(err)
		}
	}
	if got := len(m.CurrentOver("m1")); got != 0 {
		t.Errorf("chips after completed over = %d, want 0", got)
	}
}
