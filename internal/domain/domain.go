package domain

import "time"

// SessionStatus is the lifecycle state of a game session. Transitions are
// forward-only: waiting -> playing -> finished.
type SessionStatus string

const (
	StatusWaiting  SessionStatus = "waiting"
	StatusPlaying  SessionStatus = "playing"
	StatusFinished SessionStatus = "finished"
)

// Question is a single quiz item with four options and exactly one correct
// answer. Questions are built once at session creation and never mutated.
type Question struct {
	PromptText    string   `json:"prompt_text"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
}

// OptionsPerQuestion is the fixed number of options every question carries.
const OptionsPerQuestion = 4

// AnswerRecord captures one accepted submission. Immutable once appended to a
// player's history.
type AnswerRecord struct {
	QuestionIndex  int     `json:"question_index"`
	ChosenAnswer   string  `json:"chosen_answer"`
	IsCorrect      bool    `json:"is_correct"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	PointsAwarded  int     `json:"points_awarded"`
}

// Player is one participant in a session. Each player advances through the
// question list independently.
type Player struct {
	ID                   string
	DisplayName          string
	Score                int
	CurrentQuestionIndex int
	Finished             bool
	Answers              []AnswerRecord
	JoinedAt             time.Time
	QuestionStartedAt    time.Time
}

// AnswerResult summarizes an accepted submission for the caller.
type AnswerResult struct {
	QuestionIndex int     `json:"question_index"`
	IsCorrect     bool    `json:"is_correct"`
	ElapsedSecs   float64 `json:"elapsed_seconds"`
	PointsAwarded int     `json:"points_awarded"`
	TotalScore    int     `json:"total_score"`
	Finished      bool    `json:"finished"`
}

// RankedPlayer is one row of a session's leaderboard. Rank is positional:
// players tied on score still get distinct ranks, earlier join wins.
type RankedPlayer struct {
	PlayerID string         `json:"player_id"`
	Name     string         `json:"name"`
	Score    int            `json:"score"`
	Answers  []AnswerRecord `json:"answers"`
	Rank     int            `json:"rank"`
}

// QuestionStats is the host-facing progress view for a single question.
type QuestionStats struct {
	TotalPlayers int `json:"total_players"`
	Answered     int `json:"answered"`
	Correct      int `json:"correct"`
	Waiting      int `json:"waiting"`
}

// Leaderboard is the redis-mirrored scoreboard view consumed by external
// display boards. The authoritative ranking lives in the session itself.
type Leaderboard struct {
	SessionCode string
	Entries     []LeaderboardEntry
}

type LeaderboardEntry struct {
	PlayerID string
	Score    float64
}
