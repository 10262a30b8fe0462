package ratelimit

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EndpointConfig represents rate limiting configuration for a specific endpoint.
type EndpointConfig struct {
	Path   string // exact path, or a prefix when it ends in "/"
	Method string // HTTP method
	Limit  int    // requests per Window
	Window time.Duration
	Burst  int // bucket size, Limit when 0
}

// LoadConfig reads RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	v := viper.New()
	v.SetEnvPrefix("RATE_LIMIT")
	v.AutomaticEnv()

	v.SetDefault("enabled", true)
	v.SetDefault("default_limit", 1000)
	v.SetDefault("default_window", time.Minute)
	v.SetDefault("cleanup_interval", 5*time.Minute)
	v.SetDefault("idle_timeout", time.Hour)
	v.SetDefault("whitelist", "")
	v.SetDefault("blacklist", "")

	if !v.GetBool("enabled") {
		return &Config{Enabled: false}
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    v.GetInt("default_limit"),
		DefaultWindow:   v.GetDuration("default_window"),
		CleanupInterval: v.GetDuration("cleanup_interval"),
		IdleTimeout:     v.GetDuration("idle_timeout"),
		Whitelist:       parseIPList(v.GetString("whitelist")),
		Blacklist:       parseIPList(v.GetString("blacklist")),
		EndpointConfigs: DefaultEndpointConfigs(),
	}
}

// DefaultEndpointConfigs returns the default endpoint-specific configurations.
// Everything else uses the default limit; GET /health is unlimited.
func DefaultEndpointConfigs() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/api/candidate", Method: "POST", Limit: 100, Window: time.Minute, Burst: 10},
	}
}

// parseIPList parses a comma-separated list of IP addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
