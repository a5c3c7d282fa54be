package auth

import (
	"sync"
	"time"
)

var (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LoginLimiter はIPごとのログイン失敗回数を追跡し、連続失敗をロックします。
type LoginLimiter struct {
	lock     sync.Mutex
	attempts map[string]*attemptState
}

// NewLoginLimiter は LoginLimiter を作成します。
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{
		attempts: make(map[string]*attemptState),
	}
}

// CheckLock はロック中であれば残り時間を返します。ロックされていなければ0です。
func (l *LoginLimiter) CheckLock(ip string) time.Duration {
	l.lock.Lock()
	defer l.lock.Unlock()

	state, ok := l.attempts[ip]
	if !ok {
		return 0
	}
	now := time.Now()
	if now.After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

// RecordFailure は失敗を記録し、残り試行回数を返します。
func (l *LoginLimiter) RecordFailure(ip string) int {
	l.lock.Lock()
	defer l.lock.Unlock()

	now := time.Now()
	state, ok := l.attempts[ip]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		l.attempts[ip] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset は成功時に失敗履歴を消去します。
func (l *LoginLimiter) Reset(ip string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	delete(l.attempts, ip)
}
