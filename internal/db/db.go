package db

import (
	"context"
	"errors"

	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
)

// ScoreStore is durable keyed storage mapping matchID to MatchScore.
// Writes are last-write-wins whole-record replacements; callers
// read-modify-write and the session serializes writers per match.
type ScoreStore interface {
	GetScore(ctx context.Context, matchID string) (*models.MatchScore, error)
	// UpsertScore replaces the stored record wholesale and refreshes
	// UpdatedAt (also on the passed record).
	UpsertScore(ctx context.Context, score *models.MatchScore) error
}

// MatchStore owns match, team and tournament records.
type MatchStore interface {
	CreateMatch(ctx context.Context, match *models.Match) error
	GetMatch(ctx context.Context, id string) (*models.Match, error)
	ListMatches(ctx context.Context, tournamentID string) ([]*models.Match, error)
	UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error

	CreateTeam(ctx context.Context, team *models.Team) error
	ListTeams(ctx context.Context) ([]*models.Team, error)

	CreateTournament(ctx context.Context, t *models.Tournament) error
	GetTournament(ctx context.Context, id string) (*models.Tournament, error)
	ListTournaments(ctx context.Context) ([]*models.Tournament, error)
}

// UserStore resolves API keys to users and manages role upgrades.
type UserStore interface {
	GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserRole(ctx context.Context, id string, role models.Role) error
}

// Store bundles everything the service persists.
type Store interface {
	ScoreStore
	MatchStore
	UserStore
	Ping(ctx context.Context) error
	Close() error
}
