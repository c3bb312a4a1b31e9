package instance

import (
	"fmt"
	"os"
	"strings"
)

// EnvInstanceID overrides the derived identity, e.g. the pod name.
const EnvInstanceID = "SALONBOOK_INSTANCE_ID"

// GetID names this process for lock ownership and Pub/Sub consumer logs.
// Without the override it is "<hostname>-<pid>".
func GetID() string {
	if id := strings.TrimSpace(os.Getenv(EnvInstanceID)); id != "" {
		return id
	}
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
