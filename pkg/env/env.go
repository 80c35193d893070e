package env

import "os"

// Get returns the value of the given environment variable or a fallback.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// InstanceID identifies the running process in logs (dyno name, pod name or "local").
func InstanceID() string {
	for _, key := range []string{"DYNO", "HOSTNAME"} {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return "local"
}
