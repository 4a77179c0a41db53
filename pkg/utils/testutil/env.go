package testutil

import (
	"os"
	"testing"
)

// GetEnvOrSkip returns the value of key. Tests that need a cloud resource skip when it is not set.
func GetEnvOrSkip(t *testing.T, key string) string {
	t.Helper()
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		t.Skipf("%s is not set, skipping test", key)
	}
	return value
}

// GetEnvOrDefault returns the value of key, or def when it is empty.
func GetEnvOrDefault(key, def string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return def
}
