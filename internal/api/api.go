package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/vocaquiz/vocaquiz/internal/domain"
	"github.com/vocaquiz/vocaquiz/internal/errors"
	"github.com/vocaquiz/vocaquiz/internal/event"
	"github.com/vocaquiz/vocaquiz/internal/game"
	"github.com/vocaquiz/vocaquiz/internal/leaderboard"
	"github.com/vocaquiz/vocaquiz/internal/question"
	"github.com/vocaquiz/vocaquiz/internal/registry"
	"github.com/vocaquiz/vocaquiz/internal/telemetry"
	"github.com/vocaquiz/vocaquiz/internal/vocab"
)

const defaultNumQuestions = 10

type Config struct {
	Router       gin.IRouter
	EventBus     *event.Bus
	Registry     *registry.Registry
	Generator    *question.Generator
	Leaderboard  *leaderboard.Service
	Redis        Redis
	PubsubPrefix string
	Metrics      *telemetry.Metrics
}

type Redis interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

type API struct {
	eb      *event.Bus
	reg     *registry.Registry
	gen     *question.Generator
	lb      *leaderboard.Service
	redis   Redis
	prefix  string
	metrics *telemetry.Metrics
}

func New(c Config) *API {
	a := &API{
		eb:      c.EventBus,
		reg:     c.Registry,
		gen:     c.Generator,
		lb:      c.Leaderboard,
		redis:   c.Redis,
		prefix:  c.PubsubPrefix,
		metrics: c.Metrics,
	}

	v1 := c.Router.Group("/v1")
	v1.POST("/sessions", a.createSession)
	v1.GET("/sessions/:code", a.getSession)
	v1.DELETE("/sessions/:code", a.closeSession)
	v1.POST("/sessions/:code/players", a.addPlayer)
	v1.POST("/sessions/:code/start", a.startSession)
	v1.POST("/sessions/:code/answers", a.submitAnswer)
	v1.GET("/sessions/:code/leaderboard", a.getLeaderboard)
	v1.GET("/sessions/:code/questions/:index", a.getQuestion)
	v1.GET("/sessions/:code/questions/:index/stats", a.getQuestionStats)

	// Register event handlers
	c.EventBus.Subscribe(domain.EventNameLeaderboardUpdated, func(ctx context.Context, e event.Event) error {
		return a.PublishLeaderboardUpdated(ctx, e.(domain.EventLeaderboardUpdated))
	})

	return a
}

type CreateSessionRequest struct {
	HostName         string        `json:"host_name" binding:"required"`
	Mode             string        `json:"mode"`
	NumQuestions     int           `json:"num_questions"`
	TimeLimitSeconds int           `json:"time_limit_seconds"`
	Entries          []vocab.Entry `json:"entries" binding:"required"`
}

type SessionResponse struct {
	Code           string `json:"code"`
	HostName       string `json:"host_name"`
	Status         string `json:"status"`
	TotalQuestions int    `json:"total_questions"`
	PlayerCount    int    `json:"player_count"`
}

func (a *API) createSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	if req.NumQuestions <= 0 {
		req.NumQuestions = defaultNumQuestions
	}

	table := vocab.NewTable(req.Entries)
	questions := a.gen.Generate(table, question.Mode(req.Mode), req.NumQuestions)
	if len(questions) == 0 {
		renderError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("no questions could be generated from %d entries", len(req.Entries))))
		return
	}

	s := a.reg.CreateSession(game.Config{
		HostName: req.HostName,
		Settings: game.Settings{
			Mode:             req.Mode,
			NumQuestions:     req.NumQuestions,
			TimeLimitSeconds: req.TimeLimitSeconds,
		},
		Questions: questions,
	})
	a.metrics.SessionCreated()

	c.JSON(http.StatusCreated, sessionResponse(s))
}

func (a *API) getSession(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, sessionResponse(s))
}

func (a *API) closeSession(c *gin.Context) {
	code := c.Param("code")
	a.reg.CloseSession(code)

	if a.lb != nil {
		if err := a.lb.CloseSession(c.Request.Context(), code); err != nil {
			renderError(c, err)
			return
		}
	}

	c.Status(http.StatusNoContent)
}

type AddPlayerRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddPlayerResponse struct {
	PlayerID string `json:"player_id"`
}

func (a *API) addPlayer(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var req AddPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	id, err := s.AddPlayer(req.Name)
	if err != nil {
		renderError(c, convertGameError(err))
		return
	}
	a.metrics.PlayerJoined()

	c.JSON(http.StatusCreated, AddPlayerResponse{PlayerID: id})
}

func (a *API) startSession(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	if err := s.Start(); err != nil {
		renderError(c, convertGameError(err))
		return
	}

	c.JSON(http.StatusOK, sessionResponse(s))
}

type SubmitAnswerRequest struct {
	PlayerID      string `json:"player_id" binding:"required"`
	QuestionIndex *int   `json:"question_index" binding:"required"`
	ChosenAnswer  string `json:"chosen_answer"`
}

type SubmitAnswerResponse struct {
	Accepted bool                 `json:"accepted"`
	Result   *domain.AnswerResult `json:"result,omitempty"`
}

func (a *API) submitAnswer(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderError(c, errors.New(errors.CodeInvalidArgument, errors.WithCause(err)))
		return
	}

	res, accepted := s.SubmitAnswer(req.PlayerID, *req.QuestionIndex, req.ChosenAnswer)
	if !accepted {
		// Stale, duplicate or otherwise out-of-order submissions are a
		// normal outcome under retrying transports, not an error.
		a.metrics.AnswerSubmitted(telemetry.AnswerRejected)
		c.JSON(http.StatusOK, SubmitAnswerResponse{Accepted: false})
		return
	}
	a.metrics.AnswerSubmitted(telemetry.AnswerAccepted)

	a.eb.Publish(c.Request.Context(), domain.EventScoreUpdated{
		SessionCode: s.Code(),
		PlayerID:    req.PlayerID,
		TotalScore:  res.TotalScore,
		UpdateTime:  time.Now(),
	})

	if res.Finished && s.Status() == domain.StatusFinished {
		a.eb.Publish(c.Request.Context(), domain.EventSessionFinished{
			SessionCode: s.Code(),
			HostName:    s.HostName(),
		})
	}

	c.JSON(http.StatusOK, SubmitAnswerResponse{Accepted: true, Result: &res})
}

type LeaderboardResponse struct {
	SessionCode string                `json:"session_code"`
	Entries     []domain.RankedPlayer `json:"entries"`
}

func (a *API) getLeaderboard(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, LeaderboardResponse{
		SessionCode: s.Code(),
		Entries:     s.Leaderboard(),
	})
}

// PlayerQuestion is a question as served to players: no correct answer.
type PlayerQuestion struct {
	Index      int      `json:"index"`
	PromptText string   `json:"prompt_text"`
	Options    []string `json:"options"`
}

func (a *API) getQuestion(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	index, ok := a.questionIndex(c)
	if !ok {
		return
	}

	q, ok := s.Question(index)
	if !ok {
		renderError(c, errors.New(errors.CodeNotFound,
			errors.WithMessagef("question not found: session=%s index=%d", s.Code(), index)))
		return
	}

	c.JSON(http.StatusOK, PlayerQuestion{
		Index:      index,
		PromptText: q.PromptText,
		Options:    q.Options,
	})
}

func (a *API) getQuestionStats(c *gin.Context) {
	s, ok := a.session(c)
	if !ok {
		return
	}

	index, ok := a.questionIndex(c)
	if !ok {
		return
	}

	st, ok := s.QuestionStats(index)
	if !ok {
		renderError(c, errors.New(errors.CodeNotFound,
			errors.WithMessagef("question not found: session=%s index=%d", s.Code(), index)))
		return
	}

	c.JSON(http.StatusOK, st)
}

func (a *API) session(c *gin.Context) (*game.Session, bool) {
	code := c.Param("code")

	s, ok := a.reg.GetSession(code)
	if !ok {
		renderError(c, errors.New(errors.CodeNotFound,
			errors.WithMessagef("session not found: code=%s", code)))
		return nil, false
	}

	return s, true
}

func (a *API) questionIndex(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		renderError(c, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("invalid question index: %s", c.Param("index"))))
		return 0, false
	}

	return index, true
}

func sessionResponse(s *game.Session) SessionResponse {
	return SessionResponse{
		Code:           s.Code(),
		HostName:       s.HostName(),
		Status:         string(s.Status()),
		TotalQuestions: s.QuestionCount(),
		PlayerCount:    s.PlayerCount(),
	}
}

func convertGameError(err error) error {
	switch {
	case stderrors.Is(err, game.ErrNameRequired):
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("%s", err))
	case stderrors.Is(err, game.ErrAlreadyStarted), stderrors.Is(err, game.ErrSessionOver):
		return errors.New(errors.CodeFailedPrecondition, errors.WithMessagef("%s", err))
	default:
		return err
	}
}

func renderError(c *gin.Context, err error) {
	e := errors.Convert(err)
	c.AbortWithStatusJSON(e.HTTPStatusCode(), e)
}
