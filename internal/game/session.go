package game

import (
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vocaquiz/vocaquiz/internal/domain"
)

var (
	ErrNameRequired   = errors.New("display name is required")
	ErrAlreadyStarted = errors.New("session already started")
	ErrSessionOver    = errors.New("session already finished")
)

const codeLength = 6

// Settings carries the host-chosen quiz parameters. TimeLimitSeconds is
// advisory for presentation layers; the session never force-advances a player.
type Settings struct {
	Mode             string
	NumQuestions     int
	TimeLimitSeconds int
}

// Config configures a new Session. Clock and GenerateCode default to the
// system clock and uniform random digits when unset.
type Config struct {
	HostName     string
	Settings     Settings
	Questions    []domain.Question
	Clock        Clock
	GenerateCode func() string
}

// Session owns one multiplayer game's authoritative state: the question list,
// the roster and each player's independent progress. Every mutating and
// reading operation is serialized by the session's own mutex, so concurrent
// calls against different sessions never contend.
type Session struct {
	code      string
	hostName  string
	settings  Settings
	questions []domain.Question
	createdAt time.Time
	clock     Clock

	mu      sync.Mutex
	status  domain.SessionStatus
	players map[string]*domain.Player
}

// NewSession creates a session in the waiting state with no players. The join
// code is random digits; uniqueness against other live sessions is the
// registry's job.
func NewSession(c Config) *Session {
	if c.Clock == nil {
		c.Clock = SystemClock()
	}
	if c.GenerateCode == nil {
		c.GenerateCode = generateSessionCode
	}

	return &Session{
		code:      c.GenerateCode(),
		hostName:  c.HostName,
		settings:  c.Settings,
		questions: c.Questions,
		createdAt: c.Clock.Now(),
		clock:     c.Clock,
		status:    domain.StatusWaiting,
		players:   make(map[string]*domain.Player),
	}
}

func generateSessionCode() string {
	const digits = "0123456789"

	b := make([]byte, codeLength)
	for i := range b {
		b[i] = digits[rand.Intn(len(digits))]
	}
	return string(b)
}

func (s *Session) Code() string         { return s.code }
func (s *Session) HostName() string     { return s.hostName }
func (s *Session) Settings() Settings   { return s.settings }
func (s *Session) CreatedAt() time.Time { return s.createdAt }
func (s *Session) QuestionCount() int   { return len(s.questions) }

func (s *Session) Status() domain.SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *Session) PlayerCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.players)
}

// Question returns the question at the given index. The copy includes the
// correct answer; callers serving players must strip it.
func (s *Session) Question(index int) (domain.Question, bool) {
	if index < 0 || index >= len(s.questions) {
		return domain.Question{}, false
	}

	q := s.questions[index]
	q.Options = append([]string(nil), q.Options...)
	return q, true
}

// AddPlayer adds a player to the roster and returns the generated player id.
// Joins are rejected once the session has started.
func (s *Session) AddPlayer(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusWaiting {
		return "", ErrAlreadyStarted
	}

	id := uuid.NewString()
	for _, taken := s.players[id]; taken; _, taken = s.players[id] {
		id = uuid.NewString()
	}

	s.players[id] = &domain.Player{
		ID:          id,
		DisplayName: name,
		JoinedAt:    s.clock.Now(),
	}

	return id, nil
}

// Start flips the session to playing and resets every player's progress and
// question timer. Calling it again while playing re-resets all progress;
// a finished session stays finished.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusFinished {
		return ErrSessionOver
	}

	now := s.clock.Now()
	s.status = domain.StatusPlaying
	for _, p := range s.players {
		p.CurrentQuestionIndex = 0
		p.Finished = false
		p.Score = 0
		p.Answers = nil
		p.QuestionStartedAt = now
	}

	return nil
}

// SubmitAnswer applies one player's answer to their current question. The
// returned bool reports acceptance; stale, duplicate, out-of-range and
// unknown-player submissions are rejected without mutation, which makes
// retries from an unreliable transport safe.
func (s *Session) SubmitAnswer(playerID string, questionIndex int, chosenAnswer string) (domain.AnswerResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != domain.StatusPlaying {
		return domain.AnswerResult{}, false
	}

	p, ok := s.players[playerID]
	if !ok {
		return domain.AnswerResult{}, false
	}

	if questionIndex != p.CurrentQuestionIndex {
		return domain.AnswerResult{}, false
	}

	for _, a := range p.Answers {
		if a.QuestionIndex == questionIndex {
			return domain.AnswerResult{}, false
		}
	}

	if questionIndex < 0 || questionIndex >= len(s.questions) {
		return domain.AnswerResult{}, false
	}

	q := s.questions[questionIndex]
	now := s.clock.Now()
	elapsed := now.Sub(p.QuestionStartedAt)

	isCorrect := chosenAnswer == q.CorrectAnswer
	points := 0
	if isCorrect {
		points = scorePoints(elapsed)
	}

	p.Answers = append(p.Answers, domain.AnswerRecord{
		QuestionIndex:  questionIndex,
		ChosenAnswer:   chosenAnswer,
		IsCorrect:      isCorrect,
		ElapsedSeconds: elapsed.Seconds(),
		PointsAwarded:  points,
	})
	p.Score += points

	p.CurrentQuestionIndex++
	if p.CurrentQuestionIndex < len(s.questions) {
		p.QuestionStartedAt = now
	} else {
		p.Finished = true
	}

	if p.Finished {
		s.finishIfDone()
	}

	return domain.AnswerResult{
		QuestionIndex: questionIndex,
		IsCorrect:     isCorrect,
		ElapsedSecs:   elapsed.Seconds(),
		PointsAwarded: points,
		TotalScore:    p.Score,
		Finished:      p.Finished,
	}, true
}

// finishIfDone flips the session to finished once every player is done.
// Caller must hold the mutex.
func (s *Session) finishIfDone() {
	if len(s.players) == 0 {
		return
	}

	for _, p := range s.players {
		if !p.Finished {
			return
		}
	}

	s.status = domain.StatusFinished
}

// Leaderboard returns one ranked entry per player, sorted by descending score
// with ties broken by earliest join time. Rank is positional and 1-based;
// tied scores do not share a rank.
func (s *Session) Leaderboard() []domain.RankedPlayer {
	s.mu.Lock()
	defer s.mu.Unlock()

	type row struct {
		player   *domain.Player
		joinedAt time.Time
	}

	rows := make([]row, 0, len(s.players))
	for _, p := range s.players {
		rows = append(rows, row{player: p, joinedAt: p.JoinedAt})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].player.Score != rows[j].player.Score {
			return rows[i].player.Score > rows[j].player.Score
		}
		return rows[i].joinedAt.Before(rows[j].joinedAt)
	})

	board := make([]domain.RankedPlayer, 0, len(rows))
	for i, r := range rows {
		board = append(board, domain.RankedPlayer{
			PlayerID: r.player.ID,
			Name:     r.player.DisplayName,
			Score:    r.player.Score,
			Answers:  append([]domain.AnswerRecord(nil), r.player.Answers...),
			Rank:     i + 1,
		})
	}

	return board
}

// QuestionStats reports, for one question, how much of the roster has
// answered it and how many got it right.
func (s *Session) QuestionStats(index int) (domain.QuestionStats, bool) {
	if index < 0 || index >= len(s.questions) {
		return domain.QuestionStats{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := domain.QuestionStats{TotalPlayers: len(s.players)}
	for _, p := range s.players {
		for _, a := range p.Answers {
			if a.QuestionIndex != index {
				continue
			}
			st.Answered++
			if a.IsCorrect {
				st.Correct++
			}
			break
		}
	}
	st.Waiting = st.TotalPlayers - st.Answered

	return st, true
}

// Player returns a snapshot of one player's state.
func (s *Session) Player(playerID string) (domain.Player, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[playerID]
	if !ok {
		return domain.Player{}, false
	}

	snap := *p
	snap.Answers = append([]domain.AnswerRecord(nil), p.Answers...)
	return snap, true
}
