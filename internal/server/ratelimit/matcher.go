package ratelimit

import (
	"strings"
)

// MatchEndpoint matches a request to an endpoint configuration.
// Returns the matching EndpointConfig or nil if no match is found.
// Path matching supports prefix matching (e.g., "/runs/" matches "/runs/{id}").
// A config with Refresh set only matches refresh requests.
func MatchEndpoint(path, method string, refresh bool, configs []EndpointConfig) *EndpointConfig {
	// Health and metrics are unlimited
	if (path == "/health" || path == "/metrics") && method == "GET" {
		return &EndpointConfig{Limit: 0}
	}

	matches := func(config *EndpointConfig) bool {
		return config.Method == method && (!config.Refresh || refresh)
	}

	// Try exact match first
	for i := range configs {
		config := &configs[i]
		if config.Path == path && matches(config) {
			return config
		}
	}

	// Try prefix match (for paths ending with "/")
	for i := range configs {
		config := &configs[i]
		if matches(config) && strings.HasSuffix(config.Path, "/") && strings.HasPrefix(path, config.Path) {
			return config
		}
	}

	return nil
}
