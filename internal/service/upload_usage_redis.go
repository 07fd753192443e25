package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisUploadAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

// UploadUsageLimiter controla la cuota diaria de subidas por usuario.
type UploadUsageLimiter interface {
	Allow(userID string) bool
}

type redisUploadUsageLimiter struct {
	client redisEvaler
	max    int
	prefix string
	now    func() time.Time
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisUploadUsageLimiter limita a max subidas por día; la cuenta se
// reinicia a medianoche UTC vía expiración de la clave.
func NewRedisUploadUsageLimiter(client *redis.Client, max int) UploadUsageLimiter {
	if client == nil {
		return nil
	}
	if max <= 0 {
		max = 5
	}
	return &redisUploadUsageLimiter{
		client: client,
		max:    max,
		prefix: "upload:daily:",
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *redisUploadUsageLimiter) Allow(userID string) bool {
	if l == nil || l.client == nil {
		return true
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	now := l.now()
	redisKey := l.prefix + now.Format("2006-01-02") + ":" + userID
	midnight := now.Truncate(24 * time.Hour).Add(24 * time.Hour)
	seconds := int(midnight.Sub(now).Seconds())
	if seconds <= 0 {
		seconds = 60
	}

	count, err := l.client.Eval(ctx, redisUploadAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		// Fail-open: un redis caido no debe bloquear la subida.
		return true
	}
	return count <= l.max
}
