// Package util holds small helpers for reading configuration from the
// environment.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseBoolEnv reads a boolean environment variable, falling back to def
// when the variable is unset or unrecognized. true/1/yes/on and
// false/0/no/off are accepted in any case.
func ParseBoolEnv(key string, def bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		slog.Warn("Unrecognized boolean environment value, using default", "key", key, "value", val, "default", def)
		return def
	}
}
