package instance

import (
	"os"
	"strings"
)

const EnvInstanceID = "GLASSOPS_INSTANCE_ID"

// ID names this process in logs. GLASSOPS_INSTANCE_ID wins, then the
// platform's DYNO name, then the hostname.
func ID() string {
	for _, key := range []string{EnvInstanceID, "DYNO"} {
		if id := strings.TrimSpace(os.Getenv(key)); id != "" {
			return id
		}
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
