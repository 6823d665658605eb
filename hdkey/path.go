// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

package hdkey

import (
	"fmt"
	"strconv"
	"strings"
)

// CIP-1852 derivation path constants.
// Full path: m/1852'/1815'/account'/role/index
const (
	// Purpose is the CIP-1852 purpose field (hardened).
	Purpose uint32 = 1852

	// CoinType is the registered ADA coin type (hardened).
	CoinType uint32 = 1815

	// RoleExternal is the payment chain for receiving addresses.
	RoleExternal uint32 = 0

	// RoleInternal is the payment chain for change addresses.
	RoleInternal uint32 = 1

	// RoleStaking is the staking key chain.
	RoleStaking uint32 = 2
)

// Segment is one step of a derivation path.
type Segment struct {
	Index    uint32
	Hardened bool
}

// Hard returns a hardened segment.
func Hard(index uint32) Segment {
	return Segment{Index: index, Hardened: true}
}

// Soft returns a non-hardened segment.
func Soft(index uint32) Segment {
	return Segment{Index: index}
}

func (s Segment) String() string {
	if s.Hardened {
		return strconv.FormatUint(uint64(s.Index), 10) + "'"
	}
	return strconv.FormatUint(uint64(s.Index), 10)
}

// Path is a sequence of derivation segments starting at the root.
type Path []Segment

// CIP1852 returns m/1852'/1815'/account'/role/index.
func CIP1852(account, role, index uint32) Path {
	return Path{Hard(Purpose), Hard(CoinType), Hard(account), Soft(role), Soft(index)}
}

// String renders the path as m/1852'/1815'/0'/0/0.
func (p Path) String() string {
	var b strings.Builder
	b.WriteString("m")
	for _, s := range p {
		b.WriteByte('/')
		b.WriteString(s.String())
	}
	return b.String()
}

// ParsePath parses a path such as "m/1852'/1815'/0'/0/0". The leading "m" is
// optional and hardened segments may be marked with ', h or H.
func ParsePath(s string) (Path, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "m")
	s = strings.TrimPrefix(s, "/")
	if s == "" {
		return Path{}, nil
	}

	parts := strings.Split(s, "/")
	path := make(Path, 0, len(parts))
	for _, part := range parts {
		hardened := false
		if n := len(part); n > 0 && (part[n-1] == '\'' || part[n-1] == 'h' || part[n-1] == 'H') {
			hardened = true
			part = part[:n-1]
		}
		idx, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid path segment %q: %w", part, err)
		}
		if uint32(idx) >= HardenedOffset {
			return nil, fmt.Errorf("%w: %d is not below 2^31", ErrInvalidIndex, idx)
		}
		path = append(path, Segment{Index: uint32(idx), Hardened: hardened})
	}
	return path, nil
}
