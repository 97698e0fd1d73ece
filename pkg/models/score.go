package models

import "time"

// BallInput is the payload an admin submits for a single delivery.
// All fields are independent; real cricket allows combinations like
// wide + wicket, so nothing here forbids them.
type BallInput struct {
	Runs     int  `json:"runs"`
	IsWicket bool `json:"is_wicket"`
	IsWide   bool `json:"is_wide"`
	IsNoBall bool `json:"is_no_ball"`
	IsBye    bool `json:"is_bye"`
	IsLegBye bool `json:"is_leg_bye"`
}

// BallEvent is an applied delivery as recorded in the ball-by-ball log.
// Over and BallInOver are display positions computed from the pre-event
// over state at append time.
type BallEvent struct {
	Runs       int       `json:"runs"`
	IsWicket   bool      `json:"is_wicket"`
	IsWide     bool      `json:"is_wide"`
	IsNoBall   bool      `json:"is_no_ball"`
	IsBye      bool      `json:"is_bye"`
	IsLegBye   bool      `json:"is_leg_bye"`
	Over       int       `json:"over"`
	BallInOver int       `json:"ball_in_over"`
	Timestamp  time.Time `json:"timestamp"`
}

// Innings is one team's running figures. Overs uses decimal notation:
// integer part is completed overs, tenths are legal balls bowled in the
// current over (fraction never exceeds .5 before rollover).
type Innings struct {
	Runs    int     `json:"runs"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// MatchScore is the authoritative score record, one per match.
type MatchScore struct {
	ID                   string      `json:"id"`
	MatchID              string      `json:"match_id"`
	TeamARuns            int         `json:"team_a_runs"`
	TeamAWickets         int         `json:"team_a_wickets"`
	TeamAOvers           float64     `json:"team_a_overs"`
	TeamBRuns            int         `json:"team_b_runs"`
	TeamBWickets         int         `json:"team_b_wickets"`
	TeamBOvers           float64     `json:"team_b_overs"`
	CurrentBattingTeamID *string     `json:"current_batting_team_id"`
	BallByBall           []BallEvent `json:"ball_by_ball"`
	UpdatedAt            time.Time   `json:"updated_at"`
}

// TeamAInnings returns team A's figures as an Innings triple.
func (s *MatchScore) TeamAInnings() Innings {
	return Innings{Runs: s.TeamARuns, Wickets: s.TeamAWickets, Overs: s.TeamAOvers}
}

// TeamBInnings returns team B's figures as an Innings triple.
func (s *MatchScore) TeamBInnings() Innings {
	return Innings{Runs: s.TeamBRuns, Wickets: s.TeamBWickets, Overs: s.TeamBOvers}
}

// SetTeamAInnings writes an Innings triple back into team A's fields.
func (s *MatchScore) SetTeamAInnings(in Innings) {
	s.TeamARuns, s.TeamAWickets, s.TeamAOvers = in.Runs, in.Wickets, in.Overs
}

// SetTeamBInnings writes an Innings triple back into team B's fields.
func (s *MatchScore) SetTeamBInnings(in Innings) {
	s.TeamBRuns, s.TeamBWickets, s.TeamBOvers = in.Runs, in.Wickets, in.Overs
}

// Clone returns a deep copy, including the ball-by-ball log.
func (s *MatchScore) Clone() *MatchScore {
	c := *s
	if s.CurrentBattingTeamID != nil {
		id := *s.CurrentBattingTeamID
		c.CurrentBattingTeamID = &id
	}
	c.BallByBall = make([]BallEvent, len(s.BallByBall))
	copy(c.BallByBall, s.BallByBall)
	return &c
}
