package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type mockRedisEvaler struct {
	lastScript string
	lastKeys   []string
	lastArgs   []interface{}
	result     int64
	err        error
}

func (m *mockRedisEvaler) Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	m.lastScript = script
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRedisUploadUsageLimiterAllow(t *testing.T) {
	noon := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisUploadUsageLimiter
		if !l.Allow("u1") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty user rejected", func(t *testing.T) {
		l := &redisUploadUsageLimiter{client: &mockRedisEvaler{result: 1}, max: 5, prefix: "upload:daily:", now: fixedClock(noon)}
		if l.Allow("   ") {
			t.Fatalf("expected empty user to be rejected")
		}
	})

	t.Run("allow within daily max", func(t *testing.T) {
		mock := &mockRedisEvaler{result: 3}
		l := &redisUploadUsageLimiter{client: mock, max: 5, prefix: "upload:daily:", now: fixedClock(noon)}
		if !l.Allow("u1") {
			t.Fatalf("expected allow when count <= max")
		}
		if len(mock.lastKeys) != 1 || !strings.HasPrefix(mock.lastKeys[0], "upload:daily:2025-03-10:") {
			t.Fatalf("expected day-scoped key, got %+v", mock.lastKeys)
		}
		// A mediodía quedan 12h hasta medianoche.
		if len(mock.lastArgs) != 1 || mock.lastArgs[0] != 12*3600 {
			t.Fatalf("expected TTL to midnight, got %+v", mock.lastArgs)
		}
	})

	t.Run("deny over daily max", func(t *testing.T) {
		l := &redisUploadUsageLimiter{client: &mockRedisEvaler{result: 6}, max: 5, prefix: "upload:daily:", now: fixedClock(noon)}
		if l.Allow("u1") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := &redisUploadUsageLimiter{client: &mockRedisEvaler{err: errors.New("down")}, max: 5, prefix: "upload:daily:", now: fixedClock(noon)}
		if !l.Allow("u1") {
			t.Fatalf("expected fail-open on redis error")
		}
	})
}
