package middleware

import (
	"sync"
	"time"

	autherrors "go-parts-gateway/internal/auth/errors"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const limiterIdleTTL = 10 * time.Minute

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	lastGC   time.Time
}

func newLimiterStore(rps float64, burst int) *limiterStore {
	return &limiterStore{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(rps),
		burst:    burst,
		lastGC:   time.Now(),
	}
}

func (s *limiterStore) get(key string, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.lastGC) > limiterIdleTTL {
		for k, v := range s.visitors {
			if now.Sub(v.lastSeen) > limiterIdleTTL {
				delete(s.visitors, k)
			}
		}
		s.lastGC = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(s.rps, s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

func limitBy(rps float64, burst int, keyFn func(c *gin.Context) string) gin.HandlerFunc {
	store := newLimiterStore(rps, burst)
	return func(c *gin.Context) {
		if !store.get(keyFn(c), time.Now()).Allow() {
			abort(c, autherrors.ErrTooManyRequests)
			return
		}
		c.Next()
	}
}

// RateLimitByUser applies a token bucket per authenticated user, falling back to
// the client IP when no user is attached. Must run after AuthMiddleware.
func RateLimitByUser(rps float64, burst int) gin.HandlerFunc {
	return limitBy(rps, burst, func(c *gin.Context) string {
		if uid := c.GetString("user_id_validated"); uid != "" {
			return "user:" + uid
		}
		return "ip:" + c.ClientIP()
	})
}

func RateLimitByIP(rps float64, burst int) gin.HandlerFunc {
	return limitBy(rps, burst, func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	})
}
