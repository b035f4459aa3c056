package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/2beens/whoopgrid/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultStateTTL = 10 * time.Minute
	stateKeyPrefix  = "whoop-oauth-state||"
	stateValue      = "pending"
)

// Service keeps track of the OAuth state values handed out on login,
// so that a callback can only be completed once and only for a state we issued.
type Service struct {
	redisClient redis.Cmdable
	ttl         time.Duration
	// ability to inject random string generator func for states (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewStateService(ttl time.Duration, redisClient redis.Cmdable) *Service {
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func (s *Service) NewState(ctx context.Context) (string, error) {
	state, err := s.RandStringFunc(24)
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}

	if err := s.redisClient.Set(ctx, stateKeyPrefix+state, stateValue, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store state: %w", err)
	}

	return state, nil
}

// ConsumeState removes the state and reports whether it was issued by us and not yet used.
func (s *Service) ConsumeState(ctx context.Context, state string) (bool, error) {
	if state == "" {
		return false, nil
	}

	deleted, err := s.redisClient.Del(ctx, stateKeyPrefix+state).Result()
	if err != nil {
		return false, fmt.Errorf("consume state: %w", err)
	}
	if deleted == 0 {
		log.Debugf("oauth state [%s] unknown or expired", state)
	}

	return deleted == 1, nil
}
