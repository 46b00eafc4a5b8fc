package util

import (
	"context"
	"fmt"
	"time"

	"github.com/medibook/medibook/config"
	"github.com/redis/go-redis/v9"
)

// Sessions are mirrored to Redis under two key shapes:
//
//	session:<token>        -> "<userID>:<role>", expiring with the token
//	user_sessions:<userID> -> set of the user's active tokens, no TTL
//
// All operations are best-effort no-ops when Redis is not connected.

func sessionKey(token string) string {
	return "session:" + token
}

func userSessionsKey(userID uint) string {
	return fmt.Sprintf("user_sessions:%d", userID)
}

// removeTokenScript drops a token from the per-user set and deletes the set
// once it is empty, in one round trip.
const removeTokenScript = `
local removed = redis.call('SREM', KEYS[1], ARGV[1])
if removed > 0 and redis.call('SCARD', KEYS[1]) == 0 then
	redis.call('DEL', KEYS[1])
end
return removed
`

// MirrorSession records a freshly issued access token in Redis so other
// instances can resolve it without the database.
func MirrorSession(userID uint, role, token string, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()

	value := fmt.Sprintf("%d:%s", userID, role)
	if err := rdb.Set(ctx, sessionKey(token), value, ttl).Err(); err != nil {
		return err
	}
	setKey := userSessionsKey(userID)
	if err := rdb.SAdd(ctx, setKey, token).Err(); err != nil {
		return err
	}
	// The set never expires on its own; RemoveSessionToken and
	// InvalidateUserSessions clean it up.
	return rdb.Persist(ctx, setKey).Err()
}

// RemoveSessionToken drops one token's mirror, deleting the per-user set when
// it was the last one.
func RemoveSessionToken(userID uint, token string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()

	_ = rdb.Del(ctx, sessionKey(token)).Err()
	return rdb.Eval(ctx, removeTokenScript, []string{userSessionsKey(userID)}, token).Err()
}

// InvalidateUserSessions drops every mirrored session for the user, used when
// their password changes.
func InvalidateUserSessions(userID uint) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	ctx := context.Background()

	setKey := userSessionsKey(userID)
	tokens, err := rdb.SMembers(ctx, setKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, token := range tokens {
		_ = rdb.Del(ctx, sessionKey(token)).Err()
	}
	return rdb.Del(ctx, setKey).Err()
}
