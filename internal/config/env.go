package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Typed environment getters, grounded on the shape of ManuGH/xg2g's
// internal/config/env.go (ParseString/ParseInt/ParseDuration with
// source-logging), re-expressed with log/slog — the teacher's logging
// library — instead of zerolog.

func envString(key, def string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config: invalid integer, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config: invalid boolean, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config: invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envRequired returns the value and true, or "" and false if the key is
// unset/empty. Callers in enabled sections turn a false into a CONFIG error.
func envRequired(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return v, true
}
