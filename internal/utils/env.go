package utils

import (
	"os"
	"strconv"
)

// SafeEnv returns the environment variable value for key, or fallback if empty.
func SafeEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

// SafeEnvBool parses the environment variable as a boolean, returning
// fallback when it is empty or malformed.
func SafeEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
