package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/vocaquiz/vocaquiz/internal/domain"
)

const maxConcurrent = 100

type (
	Notification struct {
		Event string `json:"event"`
		Data  any    `json:"data"`
	}

	Leaderboard struct {
		SessionCode string             `json:"session_code"`
		Entries     []LeaderboardEntry `json:"entries"`
	}

	LeaderboardEntry struct {
		PlayerID string `json:"player_id"`
		Score    string `json:"score"`
	}
)

// PublishLeaderboardUpdated pushes the mirrored leaderboard to the session's
// display channel and to each player's own channel.
func (a *API) PublishLeaderboardUpdated(ctx context.Context, e domain.EventLeaderboardUpdated) error {
	l := e.Leaderboard

	data := Leaderboard{
		SessionCode: l.SessionCode,
		Entries:     make([]LeaderboardEntry, 0, len(l.Entries)),
	}

	for _, entry := range l.Entries {
		data.Entries = append(data.Entries, LeaderboardEntry{
			PlayerID: entry.PlayerID,
			Score:    strconv.FormatFloat(entry.Score, 'f', -1, 64),
		})
	}

	var eg errgroup.Group
	eg.SetLimit(maxConcurrent)

	eg.Go(func() error {
		channel := fmt.Sprintf("%s:session:%s", a.prefix, l.SessionCode)
		return a.publishNotification(ctx, channel, e.Name(), data)
	})

	for _, entry := range data.Entries {
		entry := entry
		eg.Go(func() error {
			channel := fmt.Sprintf("%s:player:%s", a.prefix, entry.PlayerID)
			return a.publishNotification(ctx, channel, e.Name(), data)
		})
	}

	return eg.Wait()
}

func (a *API) publishNotification(ctx context.Context, channel, event string, data any) error {
	n := Notification{
		Event: event,
		Data:  data,
	}

	b, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("pubsub: marshal %s: %v", event, err)
	}

	return a.redis.Publish(ctx, channel, b).Err()
}
