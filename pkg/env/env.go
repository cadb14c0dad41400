// Package env holds the low-level environment lookups that run before the
// structured config is available.
package env

import "os"

// String reads key from the environment, returning fallback when the
// variable is unset or empty.
func String(key, fallback string) string {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback
	}
	return value
}
