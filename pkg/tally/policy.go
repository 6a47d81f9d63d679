package tally

import (
	"errors"
	"fmt"
)

// CountPolicy selects how cartons are counted per state.
type CountPolicy string

const (
	// PolicyRows counts every record in a group.
	PolicyRows CountPolicy = "rows"

	// PolicyDistinctCartons counts distinct carton identifiers in a group,
	// so a resampled carton counts once.
	PolicyDistinctCartons CountPolicy = "distinct-cartons"
)

// DefaultCountPolicy is used when no policy is configured.
const DefaultCountPolicy = PolicyDistinctCartons

// ErrUnknownPolicy is returned for a count policy other than rows or
// distinct-cartons.
var ErrUnknownPolicy = errors.New("unknown count policy")

// ParseCountPolicy parses a policy name, returning an error for unknown names.
// The empty string selects DefaultCountPolicy.
func ParseCountPolicy(name string) (CountPolicy, error) {
	switch CountPolicy(name) {
	case "":
		return DefaultCountPolicy, nil
	case PolicyRows, PolicyDistinctCartons:
		return CountPolicy(name), nil
	default:
		return "", fmt.Errorf("%w %q; valid policies: rows, distinct-cartons", ErrUnknownPolicy, name)
	}
}

// IsValid returns true if the policy is a known policy.
func (p CountPolicy) IsValid() bool {
	return p == PolicyRows || p == PolicyDistinctCartons
}

// String returns the policy name.
func (p CountPolicy) String() string {
	return string(p)
}

// JoinAnchor selects which state keys the report is built over.
type JoinAnchor string

const (
	// AnchorTotal keeps exactly the states present in the total partial.
	// States seen only in another partial are dropped.
	AnchorTotal JoinAnchor = "total"

	// AnchorUnion keeps every state present in any partial, zero-filling
	// the total when it is absent.
	AnchorUnion JoinAnchor = "union"
)

// DefaultJoinAnchor is used when no anchor is configured.
const DefaultJoinAnchor = AnchorTotal

// ParseJoinAnchor parses an anchor name. The empty string selects DefaultJoinAnchor.
func ParseJoinAnchor(name string) (JoinAnchor, error) {
	switch JoinAnchor(name) {
	case "":
		return DefaultJoinAnchor, nil
	case AnchorTotal, AnchorUnion:
		return JoinAnchor(name), nil
	default:
		return "", fmt.Errorf("unknown join anchor %q; valid anchors: total, union", name)
	}
}

// IsValid returns true if the anchor is a known anchor.
func (a JoinAnchor) IsValid() bool {
	return a == AnchorTotal || a == AnchorUnion
}

// String returns the anchor name.
func (a JoinAnchor) String() string {
	return string(a)
}
