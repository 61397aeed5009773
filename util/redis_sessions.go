package util

import (
	"context"
	"fmt"
	"time"

	"github.com/rakibhasan/carebook/config"
)

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// AddSessionToUserSet adds the session token to the per-user Redis set and
// extends the set's TTL to cover the longest-lived member. No-op when Redis
// is unavailable; the DB session row remains authoritative.
func AddSessionToUserSet(userID uint, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := userSessionsKey(userID)
	if err := rdb.SAdd(ctx, key, token).Err(); err != nil {
		return err
	}
	if ttl > 0 {
		return rdb.Expire(ctx, key, ttl).Err()
	}
	return nil
}

// RemoveSessionTokenFromUserSet removes a single session token from the
// per-user set. If the set becomes empty after removal, it is deleted.
func RemoveSessionTokenFromUserSet(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := userSessionsKey(userID)
	if err := rdb.SRem(ctx, key, token).Err(); err != nil {
		return err
	}
	n, err := rdb.SCard(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return rdb.Del(ctx, key).Err()
	}
	return nil
}

// InvalidateUserSessions drops every cached session for the user: each
// session:<token> entry plus the per-user set itself. Called on password
// change so stolen tokens die immediately.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()
	key := userSessionsKey(userID)

	tokens, err := rdb.SMembers(ctx, key).Result()
	if err != nil {
		return err
	}
	for _, token := range tokens {
		if err := rdb.Del(ctx, fmt.Sprintf("session:%s", token)).Err(); err != nil {
			return err
		}
	}
	return rdb.Del(ctx, key).Err()
}
