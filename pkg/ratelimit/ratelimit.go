// Package ratelimit provides a token-bucket limiter for outbound fetch
// traffic, shared by every host family apm talks to.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/apm-tool/apm/pkg/logger"
)

var log = logger.New("ratelimit")

// ErrContextCanceled is returned when the context is canceled while waiting
// for a token.
var ErrContextCanceled = errors.New("context canceled while waiting for rate limit")

// ErrInvalidConfig is returned when a rate limiter configuration is invalid.
var ErrInvalidConfig = errors.New("invalid rate limiter configuration")

// OperationType identifies which host family a rate limiter's traffic
// belongs to, since GitHub and Azure DevOps enforce different API limits.
type OperationType string

const (
	// OperationGitHubAPI covers github.com and GitHub Enterprise raw-content
	// and contents-API requests.
	OperationGitHubAPI OperationType = "github-api"
	// OperationAzureDevOpsAPI covers Azure DevOps Items REST requests.
	OperationAzureDevOpsAPI OperationType = "azure-devops-api"
)

// Config holds a token bucket's rate and retry behavior.
type Config struct {
	Rate              float64
	Burst             int
	Interval          time.Duration
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// DefaultConfigs provides sensible defaults per host family. GitHub's
// documented primary rate limit is 5000 requests/hour for authenticated
// callers; apm budgets well under that since a single install can issue
// many small file fetches in a burst.
var DefaultConfigs = map[OperationType]Config{
	OperationGitHubAPI: {
		Rate:              100,
		Burst:             100,
		Interval:          time.Hour,
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		MaxBackoff:        5 * time.Minute,
		BackoffMultiplier: 2.0,
	},
	OperationAzureDevOpsAPI: {
		Rate:              60,
		Burst:             60,
		Interval:          time.Minute,
		MaxRetries:        3,
		InitialBackoff:    time.Second,
		MaxBackoff:        2 * time.Minute,
		BackoffMultiplier: 2.0,
	},
}

// TokenBucket implements a token bucket rate limiter for one operation type.
type TokenBucket struct {
	mu            sync.Mutex
	config        Config
	operationType OperationType
	tokens        float64
	lastRefill    time.Time
}

// NewTokenBucket creates a token bucket for opType, using DefaultConfigs
// unless config overrides it.
func NewTokenBucket(opType OperationType, config *Config) (*TokenBucket, error) {
	cfg := DefaultConfigs[opType]
	if config != nil {
		cfg = *config
	}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &TokenBucket{
		config:        cfg,
		operationType: opType,
		tokens:        float64(cfg.Burst),
		lastRefill:    time.Now(),
	}, nil
}

func validateConfig(cfg Config) error {
	if cfg.Rate <= 0 {
		return fmt.Errorf("rate must be positive, got %.2f", cfg.Rate)
	}
	if cfg.Burst <= 0 {
		return fmt.Errorf("burst must be positive, got %d", cfg.Burst)
	}
	if cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", cfg.Interval)
	}
	if cfg.MaxRetries < 0 {
		return fmt.Errorf("max retries must be non-negative, got %d", cfg.MaxRetries)
	}
	if cfg.BackoffMultiplier < 1.0 {
		return fmt.Errorf("backoff multiplier must be >= 1.0, got %.2f", cfg.BackoffMultiplier)
	}
	return nil
}

func (tb *TokenBucket) refill() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)
	tokensToAdd := (elapsed.Seconds() / tb.config.Interval.Seconds()) * tb.config.Rate
	tb.tokens = math.Min(float64(tb.config.Burst), tb.tokens+tokensToAdd)
	tb.lastRefill = now
}

// Allow reports whether a request may proceed now, consuming a token if so.
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// Wait blocks until a token is available or ctx is canceled.
func (tb *TokenBucket) Wait(ctx context.Context) error {
	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ErrContextCanceled
		default:
			if tb.Allow() {
				if waited := time.Since(start); waited > time.Millisecond {
					log.Printf("request allowed after wait: operation=%s wait=%v", tb.operationType, waited)
				}
				return nil
			}
			waitTime := tb.timeUntilNextToken()
			if waitTime > 0 {
				select {
				case <-ctx.Done():
					return ErrContextCanceled
				case <-time.After(waitTime):
				}
			}
		}
	}
}

func (tb *TokenBucket) timeUntilNextToken() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	if tb.tokens >= 1 {
		return 0
	}
	tokensNeeded := 1.0 - tb.tokens
	secondsNeeded := (tokensNeeded / tb.config.Rate) * tb.config.Interval.Seconds()
	return time.Duration(secondsNeeded * float64(time.Second))
}

// Config returns the limiter's active configuration, including its retry
// budget and backoff curve.
func (tb *TokenBucket) Config() Config {
	return tb.config
}

// Backoff calculates the delay before retry attempt, counting from 0.
func (tb *TokenBucket) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		return tb.config.InitialBackoff
	}
	backoff := float64(tb.config.InitialBackoff) * math.Pow(tb.config.BackoffMultiplier, float64(attempt))
	if backoff > float64(tb.config.MaxBackoff) {
		return tb.config.MaxBackoff
	}
	return time.Duration(backoff)
}

// RateLimiterGroup lazily creates and caches one TokenBucket per operation
// type, so every fetch caller shares the same bucket for a given host
// family instead of racing independent limiters.
type RateLimiterGroup struct {
	mu       sync.RWMutex
	limiters map[OperationType]*TokenBucket
}

// NewRateLimiterGroup creates an empty group.
func NewRateLimiterGroup() *RateLimiterGroup {
	return &RateLimiterGroup{limiters: make(map[OperationType]*TokenBucket)}
}

// GetOrCreate returns the group's limiter for opType, creating it with
// DefaultConfigs on first use.
func (g *RateLimiterGroup) GetOrCreate(opType OperationType) (*TokenBucket, error) {
	g.mu.RLock()
	limiter, exists := g.limiters[opType]
	g.mu.RUnlock()
	if exists {
		return limiter, nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if limiter, exists = g.limiters[opType]; exists {
		return limiter, nil
	}
	limiter, err := NewTokenBucket(opType, nil)
	if err != nil {
		return nil, err
	}
	g.limiters[opType] = limiter
	return limiter, nil
}

// DefaultGroup is the process-wide group every fetch call shares.
var DefaultGroup = NewRateLimiterGroup()

// Wait waits for a token from the default group's limiter for opType.
func Wait(ctx context.Context, opType OperationType) error {
	limiter, err := DefaultGroup.GetOrCreate(opType)
	if err != nil {
		log.Printf("failed to get rate limiter for %s: %v", opType, err)
		return nil
	}
	return limiter.Wait(ctx)
}

// BucketFor returns the default group's limiter for opType, for callers
// that need Config()/Backoff() directly instead of going through Wait.
func BucketFor(opType OperationType) (*TokenBucket, error) {
	return DefaultGroup.GetOrCreate(opType)
}
