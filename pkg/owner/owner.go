// Package owner expresses chain identity as a total sum type instead of
// the optional-fields pattern of the reference model, per this module's
// design notes: {Root, Provider(P), Address(P,A)}.
package owner

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoProvider is returned by ProviderOwner when called on the root
// owner, which has no parent tier to resolve.
var ErrNoProvider = errors.New("owner: root has no provider owner")

// Kind identifies which of the three chain tiers an Owner names.
type Kind int

const (
	// Root names the chain with both provider and address absent.
	Root Kind = iota
	// Provider names the per-tenant chain with only provider set.
	Provider
	// Address names the leaf chain with both provider and address set.
	Address
)

// Owner is a two-level chain identity: a provider and, under it, an
// address. Both may be absent (the root chain); address may not be set
// without a provider.
type Owner struct {
	kind     Kind
	provider string
	address  string
}

// NewRoot returns the root owner {∅,∅}.
func NewRoot() Owner {
	return Owner{kind: Root}
}

// NewProvider returns the provider-level owner {P,∅}.
func NewProvider(provider string) Owner {
	return Owner{kind: Provider, provider: provider}
}

// NewAddress returns the address-level owner {P,A}.
func NewAddress(provider, address string) Owner {
	return Owner{kind: Address, provider: provider, address: address}
}

// ParseSubject constructs an Owner from a colon-delimited subject string
// "P[:A]". Only the first colon splits. An empty subject yields the root
// owner.
func ParseSubject(subject string) (Owner, error) {
	if subject == "" {
		return NewRoot(), nil
	}
	provider, address, hasAddress := strings.Cut(subject, ":")
	if provider == "" {
		return Owner{}, fmt.Errorf("owner: subject %q has an empty provider", subject)
	}
	if !hasAddress {
		return NewProvider(provider), nil
	}
	return NewAddress(provider, address), nil
}

// Kind reports which chain tier this Owner names.
func (o Owner) Kind() Kind {
	return o.kind
}

// Provider returns the provider component, or "" for the root owner.
func (o Owner) Provider() string {
	return o.provider
}

// Address returns the address component, or "" for root/provider owners.
func (o Owner) Address() string {
	return o.address
}

// ProviderOwner returns the provider-level owner that is this owner's
// parent tier. It fails if called on the root owner, which has no parent.
func (o Owner) ProviderOwner() (Owner, error) {
	if o.kind == Root {
		return Owner{}, ErrNoProvider
	}
	return NewProvider(o.provider), nil
}

// Subject renders the canonical "P[:A]" form. The root owner renders "".
func (o Owner) Subject() string {
	switch o.kind {
	case Root:
		return ""
	case Provider:
		return o.provider
	default:
		return o.provider + ":" + o.address
	}
}

// MetadataKey returns the object-store key of this owner's metadata
// document.
func (o Owner) MetadataKey() string {
	switch o.kind {
	case Root:
		return "providers/metadata.json"
	case Provider:
		return fmt.Sprintf("providers/%s/metadata.json", o.provider)
	default:
		return fmt.Sprintf("providers/%s/%s/metadata.json", o.provider, o.address)
	}
}

// SignerKey returns the object-store key of this owner's provider's
// signer record. Valid for Provider and Address owners only.
func (o Owner) SignerKey() string {
	return fmt.Sprintf("%s.key", o.provider)
}

// BlockKey returns the object-store key for a block with the given id
// under this owner. Block keys deliberately omit the "providers/" prefix
// that metadata keys carry.
func (o Owner) BlockKey(id string) string {
	return fmt.Sprintf("%s/%s/%s.block", o.provider, o.address, id)
}

func (o Owner) String() string {
	switch o.kind {
	case Root:
		return "owner{root}"
	case Provider:
		return fmt.Sprintf("owner{provider=%s}", o.provider)
	default:
		return fmt.Sprintf("owner{provider=%s,address=%s}", o.provider, o.address)
	}
}
