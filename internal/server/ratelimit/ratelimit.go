package ratelimit

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Info describes the limit applied to a request, for response headers.
type Info struct {
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// entry is one client's limiter for one rule, with the last time it was
// touched so idle entries can be dropped.
type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter throttles requests per client and endpoint rule.
type Limiter struct {
	mu      sync.Mutex
	entries map[string]*entry
	cfg     *Config
	stop    chan struct{}
	once    sync.Once
}

// NewLimiter creates a limiter and starts its idle-entry cleanup loop.
func NewLimiter(cfg *Config) *Limiter {
	l := &Limiter{
		entries: make(map[string]*entry),
		cfg:     cfg,
		stop:    make(chan struct{}),
	}
	if cfg.Enabled && cfg.CleanupInterval > 0 {
		go l.cleanupLoop()
	}
	return l
}

// Allow reports whether the request may proceed, with header info either way.
// Health checks and whitelisted clients are never limited.
func (l *Limiter) Allow(clientID, path, method string) (bool, Info) {
	if !l.cfg.Enabled || path == "/health" || l.cfg.whitelisted(clientID) {
		return true, Info{}
	}

	perMinute := l.cfg.DefaultPerMinute
	burst := l.cfg.DefaultBurst
	key := clientID
	if rule := l.cfg.match(path, method); rule != nil {
		perMinute = rule.PerMinute
		burst = rule.Burst
		key = fmt.Sprintf("%s|%s %s", clientID, rule.Method, rule.PathPrefix)
	}

	lim := l.get(key, perMinute, burst)

	info := Info{Limit: perMinute}
	res := lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		info.Remaining = 0
		info.RetryAfter = delay
		return false, info
	}
	info.Remaining = int(lim.Tokens())
	return true, info
}

// Stop terminates the cleanup loop. Safe to call more than once.
func (l *Limiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *Limiter) get(key string, perMinute, burst int) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)}
		l.entries[key] = e
	}
	e.lastSeen = time.Now()
	return e.limiter
}

func (l *Limiter) cleanupLoop() {
	ticker := time.NewTicker(l.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.cleanup()
		case <-l.stop:
			return
		}
	}
}

// cleanup drops entries idle for more than two cleanup intervals.
func (l *Limiter) cleanup() {
	cutoff := time.Now().Add(-2 * l.cfg.CleanupInterval)
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, e := range l.entries {
		if e.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}
