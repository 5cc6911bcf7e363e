package resolver

import (
	"github.com/walrens/gateway/base/ctx"
)

const (
	// KeyWalrusSite is the current text record key
	KeyWalrusSite = "walrus-site"
	// KeyWalrus is the legacy text record key
	KeyWalrus = "walrus"
)

// Strategy is the mechanism a record was read with
type Strategy string

const (
	// StrategyText reads through the registry resolver
	StrategyText Strategy = "text"
	// StrategyResolver calls the resolver contract directly
	StrategyResolver Strategy = "resolver"
)

// Step is one attempt of the ordered lookup
type Step struct {
	Key      string
	Strategy Strategy
}

// Record is the first non empty text record found for a name
type Record struct {
	Name     string   `json:"name"`
	Key      string   `json:"key"`
	Value    string   `json:"value"`
	Strategy Strategy `json:"strategy"`
}

// Usecase finds the text record carrying the walrus mapping of a name.
// Resolve returns domain.ErrRecordNotFound when no step yields a value and
// wraps domain.ErrResolutionFailed on transport failures.
type Usecase interface {
	Resolve(c ctx.Ctx, name string) (*Record, error)
	// Owner is the address name points to, best effort
	Owner(c ctx.Ctx, name string) (string, error)
}
