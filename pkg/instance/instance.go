package instance

import "os"

// GetID identifies the running process for log correlation across instances.
// It prefers the platform dyno name, then the hostname.
func GetID() string {
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
