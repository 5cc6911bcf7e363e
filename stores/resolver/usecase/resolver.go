package usecase

import (
	"errors"

	goens "github.com/wealdtech/go-ens/v3"
	"golang.org/x/xerrors"

	"github.com/walrens/gateway/base/ctx"
	"github.com/walrens/gateway/base/log"
	"github.com/walrens/gateway/domain"
	"github.com/walrens/gateway/domain/resolver"
	"github.com/walrens/gateway/service/ens"
)

// DefaultSteps tries the current key before the legacy one. Resolver steps
// only run when the text strategy is unavailable for the name.
var DefaultSteps = []resolver.Step{
	{Key: resolver.KeyWalrusSite, Strategy: resolver.StrategyText},
	{Key: resolver.KeyWalrus, Strategy: resolver.StrategyText},
	{Key: resolver.KeyWalrusSite, Strategy: resolver.StrategyResolver},
	{Key: resolver.KeyWalrus, Strategy: resolver.StrategyResolver},
}

type impl struct {
	ens   ens.ENS
	steps []resolver.Step
}

func New(ens ens.ENS, steps []resolver.Step) resolver.Usecase {
	if len(steps) == 0 {
		steps = DefaultSteps
	}
	return &impl{ens, steps}
}

func (im *impl) read(c ctx.Ctx, name string, step resolver.Step) (string, error) {
	if step.Strategy == resolver.StrategyResolver {
		return im.ens.ResolverTextRecord(c, name, step.Key)
	}
	return im.ens.TextRecord(c, name, step.Key)
}

func (im *impl) Resolve(c ctx.Ctx, name string) (*resolver.Record, error) {
	name, err := goens.NormaliseDomain(name)
	if err != nil || name == "" {
		return nil, domain.ErrInvalidName
	}

	unavailable := map[resolver.Strategy]bool{}
	for _, step := range im.steps {
		if unavailable[step.Strategy] {
			continue
		}
		if step.Strategy == resolver.StrategyResolver && !unavailable[resolver.StrategyText] {
			continue
		}

		val, err := im.read(c, name, step)
		switch {
		case err == nil && val != "":
			return &resolver.Record{Name: name, Key: step.Key, Value: val, Strategy: step.Strategy}, nil
		case err == nil, errors.Is(err, ens.ErrNoRecord):
			continue
		case errors.Is(err, ens.ErrUnavailable):
			c.WithFields(log.Fields{
				"name":     name,
				"strategy": step.Strategy,
				"err":      err,
			}).Debug("lookup unavailable")
			unavailable[step.Strategy] = true
		default:
			return nil, xerrors.Errorf("%w: %v", domain.ErrResolutionFailed, err)
		}
	}

	return nil, domain.ErrRecordNotFound
}

func (im *impl) Owner(c ctx.Ctx, name string) (string, error) {
	addr, err := im.ens.Resolve(c, name)
	if err != nil {
		return "", xerrors.Errorf("%w: %v", domain.ErrResolutionFailed, err)
	}
	return addr, nil
}
