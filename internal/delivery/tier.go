package delivery

import "context"

// Kind tells how a tier produces resources.
type Kind int

const (
	// KindLiteral tiers hold concrete resource IDs.
	KindLiteral Kind = iota
	// KindNamedSet tiers hold set names resolved at attempt time.
	KindNamedSet
)

func (k Kind) String() string {
	switch k {
	case KindLiteral:
		return "literal"
	case KindNamedSet:
		return "named_set"
	default:
		return "unknown"
	}
}

// Tier is one fallback level. Tiers are tried in order.
type Tier struct {
	Kind  Kind
	Label string
	// Resources are file IDs for KindLiteral and set names for KindNamedSet.
	Resources []string
}

// LiteralTier builds a tier of concrete resource IDs.
func LiteralTier(label string, ids ...string) Tier {
	return Tier{Kind: KindLiteral, Label: label, Resources: ids}
}

// NamedSetTier builds a tier whose resources come from resolving set names.
func NamedSetTier(label string, names ...string) Tier {
	return Tier{Kind: KindNamedSet, Label: label, Resources: names}
}

// SetResolver expands a set name into resource IDs.
type SetResolver interface {
	ResolveSet(ctx context.Context, name string) ([]string, error)
}

// AttemptFunc sends one resource to target.
type AttemptFunc func(ctx context.Context, target int64, resource string) error

// Result describes a successful delivery.
type Result struct {
	Tier     string
	Resource string
	Attempts int
}
