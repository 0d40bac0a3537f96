package env

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

func successOrDie[T any](value T, err error) T {
	if err != nil {
		log.Fatal(err)
	}

	return value
}

// lookup parses a non-empty environment variable. Unset and empty variables
// yield the fallback.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) (T, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}

	parsed, err := parse(raw)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("environment variable %q: %w", key, err)
	}

	return parsed, nil
}

// GetWithFallback returns the value of the environment variable or the
// fallback if it's unset or empty.
func GetWithFallback(key, fallback string) string {
	return successOrDie(lookup(key, fallback, func(s string) (string, error) {
		return s, nil
	}))
}

func GetBool(key string, fallback bool) (bool, error) {
	return lookup(key, fallback, strconv.ParseBool)
}

func MustGetBool(key string, fallback bool) bool {
	return successOrDie(GetBool(key, fallback))
}

func GetInt(key string, fallback int) (int, error) {
	return lookup(key, fallback, strconv.Atoi)
}

func MustGetInt(key string, fallback int) int {
	return successOrDie(GetInt(key, fallback))
}

// GetDuration parses values such as "30s" or "5m".
func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	return lookup(key, fallback, time.ParseDuration)
}

func MustGetDuration(key string, fallback time.Duration) time.Duration {
	return successOrDie(GetDuration(key, fallback))
}
