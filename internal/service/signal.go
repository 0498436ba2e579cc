package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/totegamma/weird/internal/domain"
)

const ProfileEventChannel = "weird:profile"

type SignalService struct {
	rdb *redis.Client
}

func NewSignalService(redisClient *redis.Client) *SignalService {
	return &SignalService{
		rdb: redisClient,
	}
}

func (s *SignalService) PublishProfileEvent(ctx context.Context, event domain.ProfileEvent) error {

	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	err = s.rdb.Publish(ctx, ProfileEventChannel, jsonstr).Err()
	if err != nil {
		return err

	}

	return nil
}

// Realtime forwards published profile events whose link starts with one of
// the most recently requested prefixes. It returns when ctx is done or
// request is closed.
func (s *SignalService) Realtime(ctx context.Context, request <-chan []string, response chan<- domain.ProfileEvent) {
	pubsub := s.rdb.Subscribe(ctx, ProfileEventChannel)
	defer pubsub.Close()

	messages := pubsub.Channel()
	var prefixes []string

	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-request:
			if !ok {
				return
			}
			prefixes = p
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var event domain.ProfileEvent
			err := json.Unmarshal([]byte(msg.Payload), &event)
			if err != nil {
				slog.WarnContext(
					ctx, "malformed profile event",
					slog.String("error", err.Error()),
					slog.String("module", "signal"),
				)
				continue
			}
			if !matchPrefixes(event.Link, prefixes) {
				continue
			}
			select {
			case response <- event:
			case <-ctx.Done():
				return
			}
		}
	}
}

func matchPrefixes(link string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(link, p) {
			return true
		}
	}
	return false
}
