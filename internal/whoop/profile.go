package whoop

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/2beens/whoopgrid/internal/telemetry/tracing"
	"github.com/2beens/whoopgrid/pkg"

	log "github.com/sirupsen/logrus"
)

const profileCacheExpireSeconds = 60 * 60

type Profile struct {
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Profile returns the basic profile of the token owner.
// Profiles are cached in memory for an hour per access token.
func (c *Client) Profile(ctx context.Context, token string) (profile *Profile, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "whoop.client.profile")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if token == "" {
		return nil, ErrMissingCredential
	}

	profile = &Profile{}
	cacheKey := []byte("profile::" + pkg.Fingerprint(token))
	if profileBytes, err := c.profileCache.Get(cacheKey); err == nil {
		if err = json.Unmarshal(profileBytes, profile); err == nil {
			log.Tracef("found whoop profile %d in cache", profile.UserID)
			return profile, nil
		}
		log.Errorf("failed to unmarshal cached whoop profile: %s", err)
	}

	status, respBytes, err := c.get(ctx, token, "/v2/user/profile/basic", nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status > 299 {
		return nil, &StatusError{StatusCode: status, Body: string(respBytes)}
	}

	if err := json.Unmarshal(respBytes, profile); err != nil {
		return nil, fmt.Errorf("unmarshal whoop profile: %w", err)
	}

	if err := c.profileCache.Set(cacheKey, respBytes, profileCacheExpireSeconds); err != nil {
		log.Errorf("failed to cache whoop profile %d: %s", profile.UserID, err)
	}

	return profile, nil
}
