package cache

import (
	"context"
	"errors"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Locker serializes work on a key across goroutines (memory) or replicas (redis).
// Acquire blocks until the lock is held or ctx is done. The returned release
// func is safe to call more than once.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

const (
	ViewTTL = 5 * time.Minute
	LockTTL = 90 * time.Second
)

var ErrLockTimeout = errors.New("lock not acquired")

func ProgressKey(userID string) string { return "progress:" + userID }
func SessionsKey(userID string) string { return "sessions:" + userID }
func SessionLockKey(sessionID string) string { return "lock:session:" + sessionID }
func ProgressLockKey(userID string) string { return "lock:progress:" + userID }
