package session

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"
)

// maxTrackedClients bounds the limiter map.
const maxTrackedClients = 10000

// Throttle rate-limits login attempts per client key (normally the remote IP).
//
// A limiter whose bucket has refilled behaves exactly like a new one, so only
// those are forgotten when the map is full. While every tracked key is still
// draining, unknown keys are refused.
type Throttle struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	maxKeys  int
	clock    clockwork.Clock
}

// NewThrottle allows perSecond attempts per key with the given burst.
func NewThrottle(perSecond float64, burst int) *Throttle {
	return &Throttle{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
		maxKeys:  maxTrackedClients,
		clock:    clockwork.NewRealClock(),
	}
}

// Allow reports whether another attempt from key may proceed now.
func (t *Throttle) Allow(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()
	lim, ok := t.limiters[key]
	if !ok {
		if len(t.limiters) >= t.maxKeys && t.evictIdle(now) == 0 {
			return false
		}
		lim = rate.NewLimiter(t.limit, t.burst)
		t.limiters[key] = lim
	}
	return lim.AllowN(now, 1)
}

// Len returns the number of tracked keys.
func (t *Throttle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.limiters)
}

// evictIdle drops limiters with a full bucket and returns how many went.
func (t *Throttle) evictIdle(now time.Time) int {
	n := 0
	for key, lim := range t.limiters {
		if lim.TokensAt(now) >= float64(t.burst) {
			delete(t.limiters, key)
			n++
		}
	}
	return n
}
