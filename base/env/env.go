// Package env reads the identity the orchestrator gives this process.
// Application settings live in base/config, not here.
package env

import (
	"os"
)

// PodName example: walrens-gateway-6868d88fbd-bz8zv. Kubernetes sets
// HOSTNAME to the pod name, so it is used when PODNAME is not injected.
func PodName() string {
	if name := os.Getenv("PODNAME"); name != "" {
		return name
	}
	return os.Getenv("HOSTNAME")
}
