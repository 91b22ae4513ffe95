package ratelimit

import (
	"context"
	"fmt"
	"ms-verify/internal/logger"
	"ms-verify/internal/utils"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix = "verify_rate:"

	DefaultWindow = time.Minute

	MsgTooManyRequests = "Too many requests."
)

// Limiter is a fixed-window request counter shared across replicas through Redis.
type Limiter struct {
	Client *redis.Client
	Limit  int
	Window time.Duration
	Logger *logger.Logger
	// TrustedProxies are the peers whose X-Forwarded-For is believed
	TrustedProxies []*net.IPNet

	now func() time.Time
}

func NewLimiter(client *redis.Client, limit int, window time.Duration, logger *logger.Logger) *Limiter {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{
		Client: client,
		Limit:  limit,
		Window: window,
		Logger: logger,
		now:    time.Now,
	}
}

// Allow counts one request for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.Limit <= 0 {
		return true, nil
	}

	size := l.window()
	window := l.now().UnixNano() / int64(size)
	redisKey := keyPrefix + key + ":" + strconv.FormatInt(window, 10)

	var incr *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.Expire(ctx, redisKey, size)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("rate limit counter %s: %w", redisKey, err)
	}

	return incr.Val() <= int64(l.Limit), nil
}

// Middleware rejects clients over the limit with 429. Redis failures let the request through.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		client := l.clientIP(r)
		ok, err := l.Allow(r.Context(), client)
		if err != nil {
			l.Logger.Warn("RATELIMIT", fmt.Sprintf("Skipping rate limit for %s: %v", client, err))
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			l.Logger.LogSecurity("RATE_LIMIT", fmt.Sprintf("%s exceeded %d requests per %s", client, l.Limit, l.window()))
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window().Seconds())))
			utils.WriteError(w, http.StatusTooManyRequests, MsgTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) window() time.Duration {
	if l.Window <= 0 {
		return DefaultWindow
	}
	return l.Window
}

// clientIP keys requests on the TCP peer. X-Forwarded-For is only read when
// the peer is a trusted proxy, walking right to left to the first hop that
// is not one.
func (l *Limiter) clientIP(r *http.Request) string {
	peer := remoteHost(r.RemoteAddr)
	if !l.trusted(peer) {
		return peer
	}

	hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
	for i := len(hops) - 1; i >= 0; i-- {
		hop := strings.TrimSpace(hops[i])
		if hop == "" {
			continue
		}
		if net.ParseIP(hop) == nil {
			return peer
		}
		if !l.trusted(hop) {
			return hop
		}
	}
	return peer
}

func (l *Limiter) trusted(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, n := range l.TrustedProxies {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func remoteHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// ParseTrustedProxies accepts CIDRs or bare IPs.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			if ip.To4() != nil {
				entry += "/32"
			} else {
				entry += "/128"
			}
		}
		_, n, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		nets = append(nets, n)
	}
	return nets, nil
}
