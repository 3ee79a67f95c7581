package ratelimit

import (
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/founder-match/internal/config"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path    string        // Endpoint path pattern (supports prefix matching)
	Method  string        // HTTP method (GET, POST, etc.)
	Refresh bool          // Applies only to requests asking for a fresh generation
	Limit   int           // Maximum requests per window
	Window  time.Duration // Time window
	Burst   int           // Burst capacity (defaults to Limit if 0)
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	DefaultBurst    int
	CleanupInterval time.Duration
	Whitelist       map[string]bool
	EndpointConfigs []EndpointConfig
}

// NewConfig builds the limiter configuration from service settings.
func NewConfig(cfg config.RateLimitConfig) *Config {
	if !cfg.Enabled {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    cfg.RequestsPerMinute,
		DefaultWindow:   time.Minute,
		DefaultBurst:    cfg.Burst,
		CleanupInterval: 5 * time.Minute,
		Whitelist:       parseIPList(cfg.Whitelist),
		EndpointConfigs: RecommendationEndpointConfigs(cfg.RefreshPerHour, cfg.RefreshBurst),
	}
}

// RecommendationEndpointConfigs returns the endpoint-specific configurations.
// A refresh bypasses the cache and calls the scoring oracle, so it is limited
// per hour rather than per minute.
func RecommendationEndpointConfigs(refreshPerHour, refreshBurst int) []EndpointConfig {
	return []EndpointConfig{
		{Path: "/recommendations", Method: http.MethodGet, Refresh: true, Limit: refreshPerHour, Window: time.Hour, Burst: refreshBurst},
	}
}

// parseIPList turns a list of IP addresses into a lookup set.
func parseIPList(list []string) map[string]bool {
	result := make(map[string]bool, len(list))
	for _, ip := range list {
		ip = strings.TrimSpace(ip)
		if ip != "" {
			result[ip] = true
		}
	}
	return result
}
