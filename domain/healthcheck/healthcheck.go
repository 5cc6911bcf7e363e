package healthcheck

import (
	"github.com/walrens/gateway/base/ctx"
)

const (
	ComponentCache    = "cache"
	ComponentUpstream = "upstream"

	StatusOK = "ok"
)

// Report maps a component onto StatusOK or the reason it is down
type Report map[string]string

// HealthCheckUsecase represents the healthCheck's usecases. Check fails only
// when the gateway cannot serve at all, a down upstream is reported but still
// leaves cached content servable.
type HealthCheckUsecase interface {
	Check(c ctx.Ctx) (Report, error)
}

// HealthCheckRepo is repository layer of healthCheck
type HealthCheckRepo interface {
	PingCache(c ctx.Ctx) error
	PingUpstream(c ctx.Ctx) error
}
