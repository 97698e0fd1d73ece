package db

import (
	"context"
	"sync"
	"time"

	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// Memory is an in-process Store used in tests and standalone demo mode.
type Memory struct {
	mu          sync.RWMutex
	scores      map[string]*models.MatchScore
	matches     map[string]*models.Match
	teams       map[string]*models.Team
	tournaments map[string]*models.Tournament
	usersByKey  map[string]*models.User
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		scores:      make(map[string]*models.MatchScore),
		matches:     make(map[string]*models.Match),
		teams:       make(map[string]*models.Team),
		tournaments: make(map[string]*models.Tournament),
		usersByKey:  make(map[string]*models.User),
	}
}

func (m *Memory) Ping(ctx context.Context) error { return nil }
func (m *Memory) Close() error                   { return nil }

func (m *Memory) GetScore(ctx context.Context, matchID string) (*models.MatchScore, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scores[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Memory) UpsertScore(ctx context.Context, score *models.MatchScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	score.UpdatedAt = time.Now().UTC()
	m.scores[score.MatchID] = score.Clone()
	return nil
}

func (m *Memory) CreateMatch(ctx context.Context, match *models.Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *match
	m.matches[match.ID] = &cp
	m.scores[match.ID] = &models.MatchScore{
		ID:         "score-" + match.ID,
		MatchID:    match.ID,
		BallByBall: []models.BallEvent{},
		UpdatedAt:  time.Now().UTC(),
	}
	return nil
}

func (m *Memory) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	match, ok := m.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *match
	return &cp, nil
}

func (m *Memory) ListMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Match
	for _, match := range m.matches {
		if tournamentID != "" && match.TournamentID != tournamentID {
			continue
		}
		cp := *match
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	match, ok := m.matches[id]
	if !ok {
		return ErrNotFound
	}
	match.Status = status
	return nil
}

func (m *Memory) CreateTeam(ctx context.Context, team *models.Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *team
	m.teams[team.ID] = &cp
	return nil
}

func (m *Memory) ListTeams(ctx context.Context) ([]*models.Team, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Team
	for _, t := range m.teams {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (m *Memory) CreateTournament(ctx context.Context, t *models.Tournament) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.tournaments[t.ID] = &cp
	return nil
}

func (m *Memory) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tournaments[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *Memory) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Tournament
	for _, t := range m.tournaments {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

// AddUser seeds a user record (test helper and demo bootstrap).
func (m *Memory) AddUser(u *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.usersByKey[u.APIKey] = &cp
}

func (m *Memory) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.usersByKey[apiKey]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *Memory) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.usersByKey {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.usersByKey {
		if u.ID == id {
			u.Role = role
			return nil
		}
	}
	return ErrNotFound
}
