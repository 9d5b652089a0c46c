package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the game-level prometheus counters. A nil *Metrics is safe
// to use so tests can skip registration.
type Metrics struct {
	SessionsCreated prometheus.Counter
	SessionsExpired prometheus.Counter
	PlayersJoined   prometheus.Counter
	Answers         *prometheus.CounterVec
}

const (
	AnswerAccepted = "accepted"
	AnswerRejected = "rejected"
)

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		SessionsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "vocaquiz_sessions_created_total",
			Help: "Number of game sessions created.",
		}),
		SessionsExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "vocaquiz_sessions_expired_total",
			Help: "Number of game sessions removed by the expiry sweep.",
		}),
		PlayersJoined: f.NewCounter(prometheus.CounterOpts{
			Name: "vocaquiz_players_joined_total",
			Help: "Number of players who joined a session.",
		}),
		Answers: f.NewCounterVec(prometheus.CounterOpts{
			Name: "vocaquiz_answers_total",
			Help: "Number of answer submissions by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) SessionCreated() {
	if m != nil {
		m.SessionsCreated.Inc()
	}
}

func (m *Metrics) SessionsSwept(n int) {
	if m != nil {
		m.SessionsExpired.Add(float64(n))
	}
}

func (m *Metrics) PlayerJoined() {
	if m != nil {
		m.PlayersJoined.Inc()
	}
}

func (m *Metrics) AnswerSubmitted(outcome string) {
	if m != nil {
		m.Answers.WithLabelValues(outcome).Inc()
	}
}
