package instance

import "os"

const EnvInstanceID = "HANGOUT_INSTANCE_ID"

// GetID identifies this process in logs. It prefers HANGOUT_INSTANCE_ID, then
// the hostname, which is the pod name on Cloud Run and Kubernetes.
func GetID() string {
	if id := os.Getenv(EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
