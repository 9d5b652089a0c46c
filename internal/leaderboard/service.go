// Package leaderboard mirrors session scoreboards into redis for external
// display boards. The in-memory session remains the authoritative ranking;
// this mirror exists so wall displays can subscribe to updates without
// polling the HTTP API.
package leaderboard

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vocaquiz/vocaquiz/internal/domain"
	"github.com/vocaquiz/vocaquiz/internal/errors"
	"github.com/vocaquiz/vocaquiz/internal/event"
)

const (
	publishInterval = 200 * time.Millisecond
)

type Config struct {
	EventBus *event.Bus
	Redis    redis.UniversalClient
	Prefix   string
}

type Service struct {
	eb     *event.Bus
	redis  redis.UniversalClient
	prefix string
}

func NewService(c Config) *Service {
	s := &Service{
		eb:     c.EventBus,
		redis:  c.Redis,
		prefix: c.Prefix,
	}

	s.eb.Subscribe(domain.EventNameScoreUpdated, func(ctx context.Context, e event.Event) error {
		return s.UpdateLeaderboard(ctx, e.(domain.EventScoreUpdated))
	})

	return s
}

type GetLeaderboardRequest struct {
	SessionCode string
}

// GetLeaderboard returns the mirrored scoreboard for a session.
func (s *Service) GetLeaderboard(ctx context.Context, req GetLeaderboardRequest) (*domain.Leaderboard, error) {
	res, err := s.redis.ZRevRangeWithScores(ctx, s.getLeaderboardKey(req.SessionCode), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("get leaderboard: %w", err)
	}

	if len(res) == 0 {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("leaderboard not found: session=%s", req.SessionCode))
	}

	entries := make([]domain.LeaderboardEntry, 0, len(res))
	for _, z := range res {
		entries = append(entries, domain.LeaderboardEntry{
			PlayerID: z.Member.(string),
			Score:    z.Score,
		})
	}

	return &domain.Leaderboard{
		SessionCode: req.SessionCode,
		Entries:     entries,
	}, nil
}

// UpdateLeaderboard overwrites the player's score in the mirror.
func (s *Service) UpdateLeaderboard(ctx context.Context, e domain.EventScoreUpdated) error {
	if err := s.redis.ZAdd(ctx, s.getLeaderboardKey(e.SessionCode), redis.Z{
		Score:  float64(e.TotalScore),
		Member: e.PlayerID,
	}).Err(); err != nil {
		return fmt.Errorf("update leaderboard: %w", err)
	}

	return s.schedulePublishLeaderboard(ctx, e)
}

// schedulePublishLeaderboard publishes leaderboard changes at most once per
// interval. Many players score in a short window, so coalescing keeps the
// published event count down.
func (s *Service) schedulePublishLeaderboard(ctx context.Context, e domain.EventScoreUpdated) error {
	ok, err := s.redis.SetNX(ctx, s.getLeaderboardTimeKey(e.SessionCode), e.UpdateTime.UnixMilli(), publishInterval).Result()
	if err != nil {
		return fmt.Errorf("setnx: %w", err)
	}

	if !ok {
		return nil
	}

	return s.publishLeaderboard(ctx, e)
}

func (s *Service) publishLeaderboard(ctx context.Context, e domain.EventScoreUpdated) error {
	l, err := s.GetLeaderboard(ctx, GetLeaderboardRequest{
		SessionCode: e.SessionCode,
	})
	if err != nil {
		return fmt.Errorf("get leaderboard failed: session=%s: %w", e.SessionCode, err)
	}

	s.eb.Publish(ctx, domain.EventLeaderboardUpdated{
		Leaderboard: *l,
	})

	return s.redis.Set(ctx, s.getLeaderboardTimeKey(e.SessionCode), e.UpdateTime.UnixMilli(), publishInterval).Err()
}

// CloseSession drops the mirror for a closed or expired session.
func (s *Service) CloseSession(ctx context.Context, code string) error {
	return s.redis.Del(ctx, s.getLeaderboardKey(code), s.getLeaderboardTimeKey(code)).Err()
}

func (s *Service) getLeaderboardKey(code string) string {
	return fmt.Sprintf("%s:%s:leaderboard", s.prefix, code)
}

func (s *Service) getLeaderboardTimeKey(code string) string {
	return fmt.Sprintf("%s:%s:time", s.prefix, code)
}
