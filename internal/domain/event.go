package domain

import "time"

const (
	EventNameSessionFinished    = "session.finished"
	EventNameScoreUpdated       = "score.updated"
	EventNameLeaderboardUpdated = "leaderboard.updated"
)

type EventSessionFinished struct {
	SessionCode string
	HostName    string
}

func (EventSessionFinished) Name() string { return EventNameSessionFinished }

type EventScoreUpdated struct {
	SessionCode string
	PlayerID    string
	TotalScore  int
	UpdateTime  time.Time
}

func (EventScoreUpdated) Name() string { return EventNameScoreUpdated }

type EventLeaderboardUpdated struct {
	Leaderboard Leaderboard
}

func (EventLeaderboardUpdated) Name() string { return EventNameLeaderboardUpdated }
