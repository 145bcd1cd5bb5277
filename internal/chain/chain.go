package chain

import (
	"errors"
	"fmt"
	"sort"

	"pulse_ledger/internal/domain"
	"pulse_ledger/internal/ledger"
)

// ErrUnknownNetwork is returned for networks the registry does not serve.
var ErrUnknownNetwork = errors.New("unknown network")

// Failure is the network-specific encoding of a rejected call.
type Failure struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Adapter translates between a network's conventions and the shared ledger:
// account formats, failure encodings and profile layout.
type Adapter interface {
	Network() domain.Network
	ParseAccount(raw string) (domain.Account, error)
	EncodeFailure(err *ledger.Error) Failure
	ProfileView(p domain.UserProfile) any
}

// Entry binds an adapter to the ledger instance serving its network.
type Entry struct {
	Adapter Adapter
	Ledger  ledger.Ledger
}

// Registry holds one entry per served network.
type Registry struct {
	entries map[domain.Network]Entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[domain.Network]Entry)}
}

func (r *Registry) Register(a Adapter, l ledger.Ledger) error {
	if a.Network() != l.Network() {
		return fmt.Errorf("adapter %s bound to ledger %s", a.Network(), l.Network())
	}
	if _, ok := r.entries[a.Network()]; ok {
		return fmt.Errorf("network %s already registered", a.Network())
	}
	r.entries[a.Network()] = Entry{Adapter: a, Ledger: l}
	return nil
}

func (r *Registry) Lookup(n domain.Network) (Entry, error) {
	e, ok := r.entries[n]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownNetwork, n)
	}
	return e, nil
}

// Networks returns the served networks in name order.
func (r *Registry) Networks() []domain.Network {
	out := make([]domain.Network, 0, len(r.entries))
	for n := range r.entries {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// AdapterFor returns the built-in adapter of a network.
func AdapterFor(n domain.Network) (Adapter, error) {
	switch n {
	case domain.NetworkBase:
		return EVM{}, nil
	case domain.NetworkStacks:
		return Stacks{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, n)
	}
}

// Canonical rewrites an account of network n into the adapter's canonical
// form, so one wallet is one ledger account whatever case it arrived in.
func Canonical(n domain.Network, account domain.Account) (domain.Account, error) {
	a, err := AdapterFor(n)
	if err != nil {
		return "", err
	}
	return a.ParseAccount(string(account))
}
