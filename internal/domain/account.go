package domain

// Network identifies the chain a ledger instance is served for.
type Network string

const (
	NetworkBase   Network = "base"
	NetworkStacks Network = "stacks"
)

func (n Network) Valid() bool {
	return n == NetworkBase || n == NetworkStacks
}

// Account is an opaque, already-canonicalized account identifier.
// Canonical form is decided by the network adapter that produced it.
type Account string

func (a Account) String() string { return string(a) }

func (a Account) IsZero() bool { return a == "" }
