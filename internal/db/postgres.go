package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/rajeshautomates-creator/cricket-hub-live/pkg/models"
)

// Postgres implements Store on PostgreSQL.
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a connection pool against the given DSN.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	return &Postgres{db: db}, nil
}

// Ping checks database connectivity
func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

// Close releases the connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// GetScore fetches the score record for a match.
func (p *Postgres) GetScore(ctx context.Context, matchID string) (*models.MatchScore, error) {
	query := `
		SELECT id, match_id, team_a_runs, team_a_wickets, team_a_overs,
		       team_b_runs, team_b_wickets, team_b_overs,
		       current_batting_team_id, ball_by_ball, updated_at
		FROM match_scores
		WHERE match_id = $1
	`

	var (
		score    models.MatchScore
		batting  sql.NullString
		ballJSON []byte
	)
	err := p.db.QueryRowContext(ctx, query, matchID).Scan(
		&score.ID, &score.MatchID,
		&score.TeamARuns, &score.TeamAWickets, &score.TeamAOvers,
		&score.TeamBRuns, &score.TeamBWickets, &score.TeamBOvers,
		&batting, &ballJSON, &score.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get score: %w", err)
	}

	if batting.Valid {
		score.CurrentBattingTeamID = &batting.String
	}
	if len(ballJSON) > 0 {
		if err := json.Unmarshal(ballJSON, &score.BallByBall); err != nil {
			return nil, fmt.Errorf("parse ball_by_ball JSON: %w", err)
		}
	}
	if score.BallByBall == nil {
		score.BallByBall = []models.BallEvent{}
	}

	return &score, nil
}

// UpsertScore replaces the stored record wholesale, refreshing updated_at.
func (p *Postgres) UpsertScore(ctx context.Context, score *models.MatchScore) error {
	ballJSON, err := json.Marshal(score.BallByBall)
	if err != nil {
		return fmt.Errorf("marshal ball_by_ball: %w", err)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO match_scores (
			id, match_id, team_a_runs, team_a_wickets, team_a_overs,
			team_b_runs, team_b_wickets, team_b_overs,
			current_batting_team_id, ball_by_ball, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (match_id) DO UPDATE SET
			team_a_runs = EXCLUDED.team_a_runs,
			team_a_wickets = EXCLUDED.team_a_wickets,
			team_a_overs = EXCLUDED.team_a_overs,
			team_b_runs = EXCLUDED.team_b_runs,
			team_b_wickets = EXCLUDED.team_b_wickets,
			team_b_overs = EXCLUDED.team_b_overs,
			current_batting_team_id = EXCLUDED.current_batting_team_id,
			ball_by_ball = EXCLUDED.ball_by_ball,
			updated_at = EXCLUDED.updated_at
	`

	var batting interface{}
	if score.CurrentBattingTeamID != nil {
		batting = *score.CurrentBattingTeamID
	}

	_, err = p.db.ExecContext(ctx, query,
		score.ID, score.MatchID,
		score.TeamARuns, score.TeamAWickets, score.TeamAOvers,
		score.TeamBRuns, score.TeamBWickets, score.TeamBOvers,
		batting, ballJSON, now,
	)
	if err != nil {
		return fmt.Errorf("upsert score: %w", err)
	}

	score.UpdatedAt = now
	return nil
}

// CreateMatch inserts a match and its zeroed score in one transaction.
func (p *Postgres) CreateMatch(ctx context.Context, match *models.Match) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO matches (
			id, tournament_id, team_a_id, team_b_id, venue, format,
			status, scheduled_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		match.ID, match.TournamentID, match.TeamAID, match.TeamBID,
		match.Venue, match.Format, match.Status, match.ScheduledAt, match.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO match_scores (
			id, match_id, team_a_runs, team_a_wickets, team_a_overs,
			team_b_runs, team_b_wickets, team_b_overs,
			current_batting_team_id, ball_by_ball, updated_at
		) VALUES ($1, $2, 0, 0, 0, 0, 0, 0, NULL, '[]'::jsonb, $3)`,
		"score-"+match.ID, match.ID, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert zeroed score: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// GetMatch fetches a single match by ID.
func (p *Postgres) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	query := `
		SELECT id, tournament_id, team_a_id, team_b_id, venue, format,
		       status, scheduled_at, created_at
		FROM matches
		WHERE id = $1
	`

	var m models.Match
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.TournamentID, &m.TeamAID, &m.TeamBID, &m.Venue,
		&m.Format, &m.Status, &m.ScheduledAt, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return &m, nil
}

// ListMatches returns matches, optionally filtered by tournament.
func (p *Postgres) ListMatches(ctx context.Context, tournamentID string) ([]*models.Match, error) {
	query := `
		SELECT id, tournament_id, team_a_id, team_b_id, venue, format,
		       status, scheduled_at, created_at
		FROM matches
		WHERE ($1 = '' OR tournament_id = $1)
		ORDER BY scheduled_at
	`

	rows, err := p.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*models.Match
	for rows.Next() {
		var m models.Match
		if err := rows.Scan(
			&m.ID, &m.TournamentID, &m.TeamAID, &m.TeamBID, &m.Venue,
			&m.Format, &m.Status, &m.ScheduledAt, &m.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		matches = append(matches, &m)
	}
	return matches, rows.Err()
}

// UpdateMatchStatus writes a new lifecycle status.
func (p *Postgres) UpdateMatchStatus(ctx context.Context, id string, status models.MatchStatus) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE matches SET status = $2 WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("update match status: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateTeam inserts a team.
func (p *Postgres) CreateTeam(ctx context.Context, team *models.Team) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO teams (id, name, short_name, created_at)
		VALUES ($1, $2, $3, $4)`,
		team.ID, team.Name, team.ShortName, team.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}
	return nil
}

// ListTeams returns all teams.
func (p *Postgres) ListTeams(ctx context.Context) ([]*models.Team, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, short_name, created_at FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		var t models.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.ShortName, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, &t)
	}
	return teams, rows.Err()
}

// CreateTournament inserts a tournament.
func (p *Postgres) CreateTournament(ctx context.Context, t *models.Tournament) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO tournaments (id, name, location, start_date, end_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Location, t.StartDate, t.EndDate, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tournament: %w", err)
	}
	return nil
}

// GetTournament fetches a tournament by ID.
func (p *Postgres) GetTournament(ctx context.Context, id string) (*models.Tournament, error) {
	var t models.Tournament
	err := p.db.QueryRowContext(ctx, `
		SELECT id, name, location, start_date, end_date, created_at
		FROM tournaments WHERE id = $1`, id).Scan(
		&t.ID, &t.Name, &t.Location, &t.StartDate, &t.EndDate, &t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tournament: %w", err)
	}
	return &t, nil
}

// ListTournaments returns all tournaments.
func (p *Postgres) ListTournaments(ctx context.Context) ([]*models.Tournament, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, name, location, start_date, end_date, created_at
		FROM tournaments ORDER BY start_date`)
	if err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}
	defer rows.Close()

	var out []*models.Tournament
	for rows.Next() {
		var t models.Tournament
		if err := rows.Scan(&t.ID, &t.Name, &t.Location, &t.StartDate, &t.EndDate, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tournament: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

// GetUserByAPIKey resolves an API key to its user.
func (p *Postgres) GetUserByAPIKey(ctx context.Context, apiKey string) (*models.User, error) {
	var u models.User
	err := p.db.QueryRowContext(ctx, `
		SELECT id, email, role, api_key, created_at
		FROM users WHERE api_key = $1`, apiKey).Scan(
		&u.ID, &u.Email, &u.Role, &u.APIKey, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by api key: %w", err)
	}
	return &u, nil
}

// GetUserByEmail fetches a user by email.
func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := p.db.QueryRowContext(ctx, `
		SELECT id, email, role, api_key, created_at
		FROM users WHERE email = $1`, email).Scan(
		&u.ID, &u.Email, &u.Role, &u.APIKey, &u.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return &u, nil
}

// UpdateUserRole writes a new role for a user.
func (p *Postgres) UpdateUserRole(ctx context.Context, id string, role models.Role) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE users SET role = $2 WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("update user role: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
