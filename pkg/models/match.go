package models

import "time"

// MatchStatus is the lifecycle state of a match.
type MatchStatus string

const (
	StatusUpcoming  MatchStatus = "upcoming"
	StatusLive      MatchStatus = "live"
	StatusCompleted MatchStatus = "completed"
)

// Valid reports whether s is a known status.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusLive, StatusCompleted:
		return true
	}
	return false
}

// CanTransitionTo enforces upcoming -> live -> completed.
func (s MatchStatus) CanTransitionTo(next MatchStatus) bool {
	switch s {
	case StatusUpcoming:
		return next == StatusLive
	case StatusLive:
		return next == StatusCompleted
	}
	return false
}

// Tournament groups a set of teams and matches.
type Tournament struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	CreatedAt time.Time `json:"created_at"`
}

// Team is a participating side.
type Team struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	ShortName string    `json:"short_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Match is a scheduled fixture between two teams. Format names an entry
// in the match-format config (overs per innings, balls per over).
type Match struct {
	ID           string      `json:"id"`
	TournamentID string      `json:"tournament_id"`
	TeamAID      string      `json:"team_a_id"`
	TeamBID      string      `json:"team_b_id"`
	Venue        string      `json:"venue"`
	Format       string      `json:"format"`
	Status       MatchStatus `json:"status"`
	ScheduledAt  time.Time   `json:"scheduled_at"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Role is a user's access level.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

// AtLeast reports whether r grants the access of required.
func (r Role) AtLeast(required Role) bool {
	rank := map[Role]int{RoleViewer: 0, RoleAdmin: 1, RoleSuperAdmin: 2}
	return rank[r] >= rank[required]
}

// User is an account with an API key and a role.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	APIKey    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
