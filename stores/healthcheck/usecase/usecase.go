package usecase

import (
	"github.com/walrens/gateway/base/ctx"
	hcdomain "github.com/walrens/gateway/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

// New creates new healthCheckUsecase object representation of HealthCheckUsecase interface
func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(c ctx.Ctx) (hcdomain.Report, error) {
	report := hcdomain.Report{
		hcdomain.ComponentCache:    hcdomain.StatusOK,
		hcdomain.ComponentUpstream: hcdomain.StatusOK,
	}

	if err := im.repo.PingUpstream(c); err != nil {
		report[hcdomain.ComponentUpstream] = "unreachable"
	}

	cacheErr := im.repo.PingCache(c)
	if cacheErr != nil {
		report[hcdomain.ComponentCache] = "unavailable"
	}
	return report, cacheErr
}
